package storage_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r-Techsupport/turingbot/internal/storage"
)

func openStore(t *testing.T) *storage.Storage {
	t.Helper()
	s, err := storage.New(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNotesRoundTrip(t *testing.T) {
	s := openStore(t)

	n, err := s.AddNote("u1", "buy milk")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = s.AddNote("u1", "walk dog")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	notes, err := s.Notes("u1")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "buy milk", notes[0].Text)

	// Other users are isolated.
	other, err := s.Notes("u2")
	require.NoError(t, err)
	assert.Empty(t, other)

	require.NoError(t, s.DeleteNote("u1", 1))
	notes, err = s.Notes("u1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "walk dog", notes[0].Text)

	assert.Error(t, s.DeleteNote("u1", 5))
}

func TestCommandHistoryTrims(t *testing.T) {
	s := openStore(t)

	for i := 0; i < 60; i++ {
		require.NoError(t, s.AppendCommandRecord(storage.CommandRecord{
			UserID:   "u1",
			Command:  "ping",
			Datetime: time.Now(),
		}))
	}
	history, err := s.CommandHistory()
	require.NoError(t, err)
	assert.Len(t, history, 50)
}

func TestNotesSurviveReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")

	s, err := storage.New(path)
	require.NoError(t, err)
	_, err = s.AddNote("u1", "persisted")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := storage.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	notes, err := reopened.Notes("u1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "persisted", notes[0].Text)
}
