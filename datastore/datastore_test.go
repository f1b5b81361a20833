package datastore_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r-Techsupport/turingbot/datastore"
)

func TestSetGetDelete(t *testing.T) {
	s, err := datastore.Open(filepath.Join(t.TempDir(), "data.json"))
	require.NoError(t, err)
	defer s.Close()

	s.Set("k", "v")
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	s.Delete("k")
	_, ok = s.Get("k")
	assert.False(t, ok)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	s, err := datastore.Open(path)
	require.NoError(t, err)
	s.Set("answer", 42)
	require.NoError(t, s.Close())

	reopened, err := datastore.Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok := reopened.Get("answer")
	require.True(t, ok)
	// JSON numbers come back as float64.
	assert.EqualValues(t, 42, v)
	assert.Equal(t, []string{"answer"}, reopened.Keys())
}

func TestOpenRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))

	_, err := datastore.Open(path)
	assert.Error(t, err)
}

func TestConcurrentSavesAndWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, err := datastore.OpenWithOptions(path, datastore.Options{
		AutoSaveInterval: time.Millisecond,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Set(fmt.Sprintf("k%d", n), j)
				assert.NoError(t, s.Save())
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, s.Close())

	reopened, err := datastore.Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Len(t, reopened.Keys(), 8)
}

func TestSaveSkipsWhenUnchanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s, err := datastore.Open(path)
	require.NoError(t, err)
	defer s.Close()

	s.Set("k", "v")
	require.NoError(t, s.Save())
	info1, err := os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, s.Save())
	info2, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, info1.ModTime(), info2.ModTime())
}
