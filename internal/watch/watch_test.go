// SPDX-License-Identifier: MIT

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sybila/biodivine/internal/cache"
	"github.com/sybila/biodivine/internal/store"
)

const toggleModel = "a -> b\nb -| a\n$a: !b\n$b: a\n"

type watchEnv struct {
	dir    string
	models *store.Store
}

func startWatcher(t *testing.T) *watchEnv {
	t.Helper()

	models, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, models.Close()) })

	results := cache.NewMemory(time.Minute)
	t.Cleanup(func() { require.NoError(t, results.Close()) })

	dir := t.TempDir()
	w := New(dir, models, results)
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})

	return &watchEnv{dir: dir, models: models}
}

func (e *watchEnv) awaitModel(t *testing.T, name string) store.Model {
	t.Helper()
	require.Eventually(t, func() bool {
		_, err := e.models.ModelByName(context.Background(), name)
		return err == nil
	}, 10*time.Second, 20*time.Millisecond)
	model, err := e.models.ModelByName(context.Background(), name)
	require.NoError(t, err)
	return model
}

func TestWatcherImportsExistingFiles(t *testing.T) {
	models, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer func() { require.NoError(t, models.Close()) }()

	results := cache.NewMemory(time.Minute)
	defer func() { require.NoError(t, results.Close()) }()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toggle.aeon"), []byte(toggleModel), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a model"), 0o600))

	w := New(dir, models, results)
	require.NoError(t, w.sweep(context.Background()))

	model, err := models.ModelByName(context.Background(), "toggle")
	require.NoError(t, err)
	assert.Equal(t, 2, model.Variables)

	list, err := models.ListModels(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestWatcherImportsNewFile(t *testing.T) {
	env := startWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "toggle.aeon"), []byte(toggleModel), 0o600))

	model := env.awaitModel(t, "toggle")
	assert.Equal(t, 2, model.Variables)
}

func TestWatcherReimportsChangedFile(t *testing.T) {
	env := startWatcher(t)
	path := filepath.Join(env.dir, "toggle.aeon")

	require.NoError(t, os.WriteFile(path, []byte(toggleModel), 0o600))
	first := env.awaitModel(t, "toggle")
	assert.Equal(t, 2, first.Regulations)

	require.NoError(t, os.WriteFile(path, []byte("a -> b\n$b: a\n"), 0o600))
	require.Eventually(t, func() bool {
		model, err := env.models.ModelByName(context.Background(), "toggle")
		return err == nil && model.Regulations == 1
	}, 10*time.Second, 20*time.Millisecond)
}

func TestWatcherSkipsInvalidFile(t *testing.T) {
	env := startWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "broken.aeon"), []byte("$x: y"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(env.dir, "toggle.aeon"), []byte(toggleModel), 0o600))

	env.awaitModel(t, "toggle")
	_, err := env.models.ModelByName(context.Background(), "broken")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
