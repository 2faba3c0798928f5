// SPDX-License-Identifier: MIT

// Package cache stores serialized analysis results so repeated
// reachability queries over the same model can be answered without
// recomputation.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sybila/biodivine/internal/config"
	"github.com/sybila/biodivine/internal/log"
)

// Cache is the analysis-result cache. Values are opaque byte slices,
// typically JSON-encoded reachability results. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	// Invalidate removes every entry whose key starts with prefix.
	// Used when a model changes and its cached results become stale.
	Invalidate(ctx context.Context, prefix string)
	Close() error
}

// New builds the cache backend selected by cfg.
func New(cfg config.Cache) (Cache, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemory(cfg.TTL), nil
	case "redis":
		return NewRedis(cfg)
	case "none":
		return noop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Key derives the cache key for one analysis request. Results do not
// depend on worker count, so the key does not include it. Keys share
// the model id as prefix so Invalidate can drop a whole model at once.
func Key(modelID, direction string, initialState uint32) string {
	return fmt.Sprintf("analysis:%s:%s:%d", modelID, direction, initialState)
}

// ModelPrefix returns the key prefix covering all cached analyses of
// one model.
func ModelPrefix(modelID string) string {
	return "analysis:" + modelID + ":"
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process TTL cache with a background janitor.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	stop    chan struct{}
	done    chan struct{}
}

// NewMemory creates a memory cache whose entries expire after ttl.
// A non-positive ttl keeps entries until they are invalidated.
func NewMemory(ttl time.Duration) *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go m.janitor()
	return m
}

func (m *Memory) janitor() {
	defer close(m.done)
	interval := m.ttl
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep(time.Now())
		}
	}
}

func (m *Memory) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, entry := range m.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte) {
	entry := memoryEntry{value: value}
	if m.ttl > 0 {
		entry.expiresAt = time.Now().Add(m.ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
}

func (m *Memory) Invalidate(_ context.Context, prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
}

// Close stops the janitor goroutine.
func (m *Memory) Close() error {
	close(m.stop)
	<-m.done
	return nil
}

// len reports the current entry count, used by tests.
func (m *Memory) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// noop satisfies Cache without storing anything. Selected with the
// "none" backend when caching is undesirable (e.g. benchmarking).
type noop struct{}

func (noop) Get(context.Context, string) ([]byte, bool) { return nil, false }
func (noop) Set(context.Context, string, []byte)        {}
func (noop) Invalidate(context.Context, string)         {}
func (noop) Close() error                               { return nil }

var warnOnce sync.Once

// WarnIfDisabled logs once when the cache is a no-op so operators can
// tell recomputation is expected.
func WarnIfDisabled(c Cache) {
	if _, ok := c.(noop); ok {
		warnOnce.Do(func() {
			logger := log.WithComponent("cache")
			logger.Warn().Msg("analysis cache disabled, every query recomputes")
		})
	}
}
