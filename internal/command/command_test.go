package command_test

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r-Techsupport/turingbot/internal/command"
	"github.com/r-Techsupport/turingbot/internal/config"
	"github.com/r-Techsupport/turingbot/internal/engine"
	"github.com/r-Techsupport/turingbot/internal/storage"
)

const testModules = `
modules:
  ping: {enabled: true}
  roll: {enabled: true}
  note: {enabled: true}
  define: {enabled: true}
  mod:
    enabled: true
    permissions:
      submodules:
        kick: {capabilities: [ban]}
`

func buildBot(t *testing.T, dictURL string) *engine.Dispatcher {
	t.Helper()
	modules, err := config.ParseModules([]byte(testModules))
	require.NoError(t, err)

	store, err := storage.New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tree, err := command.BuildTree(modules, command.Services{
		OpenStore:     func(context.Context) (*storage.Storage, error) { return store, nil },
		DictionaryURL: dictURL,
	}, log.New(io.Discard, "", 0))
	require.NoError(t, err)

	d := engine.NewDispatcher(tree, log.New(io.Discard, "", 0), 0)
	d.InitializeAll(context.Background())
	return d
}

func cliRequest(caps ...string) *engine.RequestContext {
	rc := &engine.RequestContext{
		UserID:       "u1",
		ChannelID:    "c1",
		Capabilities: map[string]bool{},
	}
	for _, c := range caps {
		rc.Capabilities[c] = true
	}
	return rc
}

func TestPingRespondsAndTyposAreSilent(t *testing.T) {
	d := buildBot(t, dictServer(t).URL)

	resp := d.Handle(context.Background(), []string{"ping"}, cliRequest(), nil)
	require.NotNil(t, resp)
	assert.Contains(t, resp.Content, "Pong")

	assert.Nil(t, d.Handle(context.Background(), []string{"png"}, cliRequest(), nil))
}

func TestModKickRequiresBanCapability(t *testing.T) {
	d := buildBot(t, dictServer(t).URL)

	resp := d.Handle(context.Background(), []string{"mod", "kick", "u2"}, cliRequest(), nil)
	require.NotNil(t, resp)
	assert.Contains(t, resp.Content, "missing capability: ban")
}

func TestNoteAddAndList(t *testing.T) {
	d := buildBot(t, dictServer(t).URL)
	ctx := context.Background()

	resp := d.Handle(ctx, []string{"note", "add", "remember", "this"}, cliRequest(), nil)
	require.NotNil(t, resp)
	assert.Contains(t, resp.Content, "#1")

	resp = d.Handle(ctx, []string{"note", "list"}, cliRequest(), nil)
	require.NotNil(t, resp)
	assert.Contains(t, resp.Content, "remember this")
}

func TestNoteStoreFailureReportsDependency(t *testing.T) {
	modules, err := config.ParseModules([]byte(testModules))
	require.NoError(t, err)

	tree, err := command.BuildTree(modules, command.Services{
		OpenStore: func(context.Context) (*storage.Storage, error) {
			return nil, assert.AnError
		},
		DictionaryURL: dictServer(t).URL,
	}, log.New(io.Discard, "", 0))
	require.NoError(t, err)

	d := engine.NewDispatcher(tree, log.New(io.Discard, "", 0), 0)
	d.InitializeAll(context.Background())

	resp := d.Handle(context.Background(), []string{"note", "list"}, cliRequest(), nil)
	require.NotNil(t, resp)
	assert.Equal(t, "dependency unavailable: store", resp.Content)
}

func TestRollRejectsBadNotation(t *testing.T) {
	d := buildBot(t, dictServer(t).URL)

	resp := d.Handle(context.Background(), []string{"roll", "banana"}, cliRequest(), nil)
	require.NotNil(t, resp)
	assert.Contains(t, resp.Content, "expected NdM")

	resp = d.Handle(context.Background(), []string{"roll", "2d6"}, cliRequest(), nil)
	require.NotNil(t, resp)
	assert.Contains(t, resp.Content, "2d6")
}

func TestDefineLooksUpWord(t *testing.T) {
	d := buildBot(t, dictServer(t).URL)

	resp := d.Handle(context.Background(), []string{"define", "hello"}, cliRequest(), nil)
	require.NotNil(t, resp)
	assert.Contains(t, resp.Content, "greeting")
}

// dictServer fakes the dictionary API: every word resolves to one definition.
func dictServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"word":"hello","meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"a greeting"}]}]}]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}
