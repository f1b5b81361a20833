package command

import (
	"context"
	"fmt"

	"github.com/r-Techsupport/turingbot/internal/engine"
)

// RegisterPing registers the ping root: no policy, no dependencies.
func RegisterPing(t *engine.Tree) error {
	return t.Register(engine.NewNode(engine.NodeSpec{
		Name:        "ping",
		Description: "Check that the bot is alive",
		Execute: func(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
			if lp, ok := inv.Data.(LatencyProvider); ok {
				return &engine.Response{
					Content: fmt.Sprintf("🏓 Pong! %dms", lp.Latency().Milliseconds()),
				}, nil
			}
			return &engine.Response{Content: "🏓 Pong!"}, nil
		},
	}))
}
