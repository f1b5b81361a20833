package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/r-Techsupport/turingbot/internal/engine"
)

// RegisterMod registers the moderation root with its kick/mute/purge
// children. Policy (capabilities, allow/deny lists, submodule overrides)
// comes entirely from the module's config section.
func RegisterMod(t *engine.Tree) error {
	mod := engine.NewNode(engine.NodeSpec{
		Name:        "mod",
		Description: "Moderation commands",
	})
	if err := t.Register(mod); err != nil {
		return err
	}

	children := []*engine.Node{
		engine.NewNode(engine.NodeSpec{
			Name:        "kick",
			Description: "Kick a member",
			Options: []engine.Option{
				{Name: "user", Description: "Member to kick", Type: engine.OptionUser, Required: true},
				{Name: "reason", Description: "Reason", Type: engine.OptionString},
			},
			Execute: modAction(func(ctx context.Context, api ModerationAPI, args []string) (string, error) {
				if len(args) < 1 {
					return "", fmt.Errorf("usage: mod kick <user> [reason]")
				}
				reason := strings.Join(args[1:], " ")
				if err := api.Kick(ctx, args[0], reason); err != nil {
					return "", err
				}
				return fmt.Sprintf("Kicked <@%s>.", args[0]), nil
			}),
		}),
		engine.NewNode(engine.NodeSpec{
			Name:        "mute",
			Description: "Time out a member",
			Options: []engine.Option{
				{Name: "user", Description: "Member to mute", Type: engine.OptionUser, Required: true},
				{Name: "minutes", Description: "Duration in minutes", Type: engine.OptionInteger},
			},
			Execute: modAction(func(ctx context.Context, api ModerationAPI, args []string) (string, error) {
				if len(args) < 1 {
					return "", fmt.Errorf("usage: mod mute <user> [minutes]")
				}
				minutes := 10
				if len(args) > 1 {
					m, err := strconv.Atoi(args[1])
					if err != nil || m < 1 {
						return "", fmt.Errorf("minutes must be a positive number")
					}
					minutes = m
				}
				if err := api.Mute(ctx, args[0], time.Duration(minutes)*time.Minute); err != nil {
					return "", err
				}
				return fmt.Sprintf("Muted <@%s> for %d minute(s).", args[0], minutes), nil
			}),
		}),
		engine.NewNode(engine.NodeSpec{
			Name:        "purge",
			Description: "Bulk-delete recent messages in this channel",
			Options: []engine.Option{
				{Name: "count", Description: "How many messages", Type: engine.OptionInteger, Required: true},
			},
			Execute: func(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
				api, ok := inv.Data.(ModerationAPI)
				if !ok {
					return nil, fmt.Errorf("moderation is not available on this transport")
				}
				if len(inv.Args) < 1 {
					return &engine.Response{Content: "usage: mod purge <count>", Ephemeral: true}, nil
				}
				count, err := strconv.Atoi(inv.Args[0])
				if err != nil || count < 1 || count > 100 {
					return &engine.Response{Content: "count must be 1-100", Ephemeral: true}, nil
				}
				deleted, err := api.Purge(ctx, inv.Request.ChannelID, count)
				if err != nil {
					return nil, err
				}
				return &engine.Response{
					Content:   fmt.Sprintf("Deleted %d message(s).", deleted),
					Ephemeral: true,
				}, nil
			},
		}),
	}
	for _, child := range children {
		if err := t.RegisterChild(mod, child); err != nil {
			return err
		}
	}
	return nil
}

// modAction adapts a ModerationAPI call into an executor, handling the
// transport assertion once.
func modAction(fn func(ctx context.Context, api ModerationAPI, args []string) (string, error)) engine.Executor {
	return func(ctx context.Context, inv *engine.Invocation) (*engine.Response, error) {
		api, ok := inv.Data.(ModerationAPI)
		if !ok {
			return nil, fmt.Errorf("moderation is not available on this transport")
		}
		msg, err := fn(ctx, api, inv.Args)
		if err != nil {
			return nil, err
		}
		return &engine.Response{Content: msg}, nil
	}
}
