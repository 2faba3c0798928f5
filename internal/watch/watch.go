// SPDX-License-Identifier: MIT

// Package watch imports Boolean network files from a directory into
// the model store, picking up new and changed files automatically.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sybila/biodivine/internal/cache"
	"github.com/sybila/biodivine/internal/log"
	"github.com/sybila/biodivine/internal/metrics"
	"github.com/sybila/biodivine/internal/store"
)

// modelExt is the file extension of Boolean network sources.
const modelExt = ".aeon"

// defaultDebounce absorbs bursts of write events while an editor or
// atomic-rename copy is still producing the file.
const defaultDebounce = 200 * time.Millisecond

// Watcher mirrors a directory of .aeon files into the model store.
// The model name is the file name without extension.
type Watcher struct {
	dir      string
	models   *store.Store
	results  cache.Cache
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher over dir. Imports invalidate cached analyses
// of the replaced model through results.
func New(dir string, models *store.Store, results cache.Cache) *Watcher {
	return &Watcher{
		dir:      dir,
		models:   models,
		results:  results,
		debounce: defaultDebounce,
		timers:   make(map[string]*time.Timer),
	}
}

// Run imports all existing model files, then watches the directory
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	logger := log.WithComponent("watch")

	if err := w.sweep(ctx); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create directory watcher: %w", err)
	}
	defer func() {
		_ = fw.Close()
		w.stopTimers()
	}()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger.Info().Str(log.FieldPath, w.dir).Msg("watching model directory")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if strings.ToLower(filepath.Ext(event.Name)) != modelExt {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watcher error")
		}
	}
}

// sweep imports every model file already present in the directory.
func (w *Watcher) sweep(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read model directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.ToLower(filepath.Ext(entry.Name())) != modelExt {
			continue
		}
		w.importFile(ctx, filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

// schedule arms (or re-arms) the debounce timer for one file.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[path]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.importFile(ctx, path)
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) importFile(ctx context.Context, path string) {
	logger := log.WithComponent("watch").With().Str(log.FieldPath, path).Logger()

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the watched directory
	if err != nil {
		// Renamed-away files still produce events; nothing to import.
		if os.IsNotExist(err) {
			return
		}
		metrics.ModelImports.WithLabelValues("error").Inc()
		logger.Warn().Err(err).Msg("read model file")
		return
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	model, err := w.models.SaveModel(ctx, name, string(data))
	if err != nil {
		outcome := "error"
		if errors.Is(err, store.ErrInvalidModel) {
			outcome = "invalid"
		}
		metrics.ModelImports.WithLabelValues(outcome).Inc()
		logger.Warn().Err(err).Msg("rejected model file")
		return
	}

	w.results.Invalidate(ctx, cache.ModelPrefix(model.ID))
	metrics.ModelImports.WithLabelValues("imported").Inc()
	logger.Info().
		Str(log.FieldModelID, model.ID).
		Int(log.FieldVariables, model.Variables).
		Msg("imported model")
}
