// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/sybila/biodivine/internal/cache"
	"github.com/sybila/biodivine/internal/store"
)

// The model "b copies a, a is an unknown constant" has four states and
// a unit parameter set with two valuations.
const testModelSource = "a -> b\n$b: a"

type runnerEnv struct {
	models *store.Store
	runner *Runner
	model  store.Model
	export string
}

func newRunnerEnv(t *testing.T, opts Options) *runnerEnv {
	t.Helper()

	models, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, models.Close()) })

	jobStore, err := OpenStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, jobStore.Close()) })

	results := cache.NewMemory(time.Minute)
	t.Cleanup(func() { require.NoError(t, results.Close()) })

	model, err := models.SaveModel(context.Background(), "copy chain", testModelSource)
	require.NoError(t, err)

	if opts.ExportDir == "" {
		opts.ExportDir = t.TempDir()
	}
	runner := NewRunner(models, jobStore, results, opts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, runner.Shutdown(ctx))
	})

	return &runnerEnv{models: models, runner: runner, model: model, export: opts.ExportDir}
}

func awaitJob(t *testing.T, r *Runner, id string) Job {
	t.Helper()
	require.Eventually(t, func() bool {
		loaded, err := r.Job(id)
		return err == nil && (loaded.Status == StatusDone || loaded.Status == StatusFailed)
	}, 10*time.Second, 10*time.Millisecond)
	job, err := r.Job(id)
	require.NoError(t, err)
	return job
}

func TestRunnerForwardAnalysis(t *testing.T) {
	env := newRunnerEnv(t, Options{Workers: 2})

	submitted, err := env.runner.Submit(context.Background(), Request{
		ModelID:      env.model.ID,
		Direction:    DirectionForward,
		InitialState: 0b01,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, submitted.Status)
	assert.Equal(t, "copy chain", submitted.ModelName)

	job := awaitJob(t, env.runner, submitted.ID)
	require.Equal(t, StatusDone, job.Status, "job error: %s", job.Error)
	require.NotNil(t, job.Result)
	assert.False(t, job.Result.Cached)
	assert.Equal(t, 4, job.Result.ReachableStates)
	want := []StateResult{
		{State: 0b00, Parameters: 1},
		{State: 0b01, Parameters: 2},
		{State: 0b10, Parameters: 1},
		{State: 0b11, Parameters: 2},
	}
	if diff := cmp.Diff(want, job.Result.States); diff != "" {
		t.Errorf("unexpected result states (-want +got):\n%s", diff)
	}
	assert.False(t, job.StartedAt.IsZero())
	assert.False(t, job.FinishedAt.IsZero())
}

func TestRunnerServesSecondRequestFromCache(t *testing.T) {
	env := newRunnerEnv(t, Options{})
	ctx := context.Background()

	first, err := env.runner.Submit(ctx, Request{
		ModelID: env.model.ID, Direction: DirectionBackward, InitialState: 0b11,
	})
	require.NoError(t, err)
	done := awaitJob(t, env.runner, first.ID)
	require.Equal(t, StatusDone, done.Status)
	require.False(t, done.Result.Cached)

	second, err := env.runner.Submit(ctx, Request{
		ModelID: env.model.ID, Direction: DirectionBackward, InitialState: 0b11,
	})
	require.NoError(t, err)
	cached := awaitJob(t, env.runner, second.ID)
	require.Equal(t, StatusDone, cached.Status)
	assert.True(t, cached.Result.Cached)
	assert.Equal(t, done.Result.States, cached.Result.States)
}

func TestRunnerExportsResultFile(t *testing.T) {
	export := t.TempDir()
	env := newRunnerEnv(t, Options{ExportDir: export})

	submitted, err := env.runner.Submit(context.Background(), Request{
		ModelID: env.model.ID, Direction: DirectionForward, InitialState: 0,
	})
	require.NoError(t, err)
	job := awaitJob(t, env.runner, submitted.ID)
	require.Equal(t, StatusDone, job.Status)

	matches, err := filepath.Glob(filepath.Join(export, "copy-chain-forward-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	var exported Job
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Equal(t, job.ID, exported.ID)
	assert.Equal(t, job.Result.ReachableStates, exported.Result.ReachableStates)
}

func TestRunnerRejectsInvalidRequests(t *testing.T) {
	env := newRunnerEnv(t, Options{})
	ctx := context.Background()

	_, err := env.runner.Submit(ctx, Request{Direction: DirectionForward})
	assert.Error(t, err)

	_, err = env.runner.Submit(ctx, Request{ModelID: env.model.ID, Direction: "sideways"})
	assert.Error(t, err)

	_, err = env.runner.Submit(ctx, Request{ModelID: "missing", Direction: DirectionForward})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunnerFailsOnOutOfRangeState(t *testing.T) {
	env := newRunnerEnv(t, Options{})

	submitted, err := env.runner.Submit(context.Background(), Request{
		ModelID: env.model.ID, Direction: DirectionForward, InitialState: 4,
	})
	require.NoError(t, err)

	job := awaitJob(t, env.runner, submitted.ID)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Contains(t, job.Error, "out of range")
}

func TestRunnerRateLimitsSubmissions(t *testing.T) {
	env := newRunnerEnv(t, Options{SubmitRate: rate.Every(time.Hour), SubmitBurst: 1})
	ctx := context.Background()

	_, err := env.runner.Submit(ctx, Request{
		ModelID: env.model.ID, Direction: DirectionForward, InitialState: 0,
	})
	require.NoError(t, err)

	_, err = env.runner.Submit(ctx, Request{
		ModelID: env.model.ID, Direction: DirectionForward, InitialState: 1,
	})
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestRunnerRejectsSubmitAfterShutdown(t *testing.T) {
	env := newRunnerEnv(t, Options{})
	ctx := context.Background()

	job, err := env.runner.Submit(ctx, Request{
		ModelID: env.model.ID, Direction: DirectionForward, InitialState: 0,
	})
	require.NoError(t, err)
	awaitJob(t, env.runner, job.ID)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, env.runner.Shutdown(shutdownCtx))

	_, err = env.runner.Submit(ctx, Request{
		ModelID: env.model.ID, Direction: DirectionForward, InitialState: 0,
	})
	assert.ErrorIs(t, err, ErrShutdown)
}

func TestRunnerShutdownWaitsForQueuedJobs(t *testing.T) {
	env := newRunnerEnv(t, Options{MaxConcurrent: 1, Workers: 1})
	ctx := context.Background()

	// More submissions than execution slots, so some jobs take the
	// queued hand-off path before Shutdown starts.
	var ids []string
	for i := 0; i < 4; i++ {
		job, err := env.runner.Submit(ctx, Request{
			ModelID: env.model.ID, Direction: DirectionForward, InitialState: 0,
		})
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	require.NoError(t, env.runner.Shutdown(shutdownCtx))

	for _, id := range ids {
		job, err := env.runner.Job(id)
		require.NoError(t, err)
		assert.Equal(t, StatusDone, job.Status, id)
	}
}
