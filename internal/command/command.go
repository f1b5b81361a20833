// Package command holds the bot's feature modules and the bootstrap that
// assembles them into a command tree. Adapters (Discord, CLI) supply the
// platform surface through the Invocation's Data payload.
package command

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/r-Techsupport/turingbot/internal/engine"
	"github.com/r-Techsupport/turingbot/internal/storage"
)

// ModerationAPI is the platform surface the mod module acts through.
type ModerationAPI interface {
	Kick(ctx context.Context, userID, reason string) error
	Mute(ctx context.Context, userID string, duration time.Duration) error
	Purge(ctx context.Context, channelID string, count int) (int, error)
}

// LatencyProvider is implemented by adapter payloads that know their
// transport round-trip time.
type LatencyProvider interface {
	Latency() time.Duration
}

// Services are the external collaborators the feature modules bind to.
type Services struct {
	// OpenStore supplies the datastore-backed storage; invoked through the
	// note module's "store" dependency.
	OpenStore func(ctx context.Context) (*storage.Storage, error)
	// HTTPClient is used by modules that call external APIs.
	HTTPClient *http.Client
	// DictionaryURL is the base URL of the dictionary API.
	DictionaryURL string
}

// BuildTree assembles the full command tree. Roots whose config section is
// missing stay registered but disabled (already logged by the tree); any
// other registration error aborts the build.
func BuildTree(cfg engine.ConfigProvider, svc Services, logger *log.Logger) (*engine.Tree, error) {
	if svc.HTTPClient == nil {
		svc.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}

	t := engine.NewTree(cfg, logger)
	registrars := []func(*engine.Tree) error{
		RegisterPing,
		RegisterRoll,
		RegisterMod,
		func(t *engine.Tree) error { return RegisterNote(t, svc.OpenStore) },
		func(t *engine.Tree) error { return RegisterDefine(t, svc.HTTPClient, svc.DictionaryURL) },
	}
	for _, register := range registrars {
		if err := register(t); err != nil && !errors.Is(err, engine.ErrConfigurationMissing) {
			return nil, err
		}
	}
	return t, nil
}
