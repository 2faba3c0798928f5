// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sybila/biodivine/internal/async"
	"github.com/sybila/biodivine/internal/cache"
	"github.com/sybila/biodivine/internal/graph"
	"github.com/sybila/biodivine/internal/log"
	"github.com/sybila/biodivine/internal/metrics"
	"github.com/sybila/biodivine/internal/params"
	"github.com/sybila/biodivine/internal/reach"
	"github.com/sybila/biodivine/internal/store"
	"github.com/sybila/biodivine/internal/telemetry"
)

// ErrRateLimited is returned by Submit when the submission limiter
// rejects the request. The API maps it to 429.
var ErrRateLimited = errors.New("job submission rate exceeded")

// ErrShutdown is returned by Submit once Shutdown has started. The API
// maps it to 503.
var ErrShutdown = errors.New("runner is shutting down")

// Options tunes the runner. Zero values fall back to sane defaults.
type Options struct {
	// Workers is the default reachability parallelism; zero means
	// runtime.NumCPU.
	Workers int
	// MaxConcurrent caps simultaneously running analyses.
	MaxConcurrent int
	// ExportDir receives one JSON file per finished job. Empty
	// disables exports.
	ExportDir string
	// SubmitRate / SubmitBurst configure the submission limiter.
	// A zero rate disables limiting.
	SubmitRate  rate.Limit
	SubmitBurst int
}

// Runner executes analysis jobs in the background.
type Runner struct {
	models  *store.Store
	jobs    *Store
	cache   cache.Cache
	limiter *rate.Limiter
	opts    Options

	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	// mu guards closed and the scheduling step in Submit so no job can
	// be registered with the group after Shutdown stops accepting work.
	mu       sync.Mutex
	closed   bool
	fallback sync.WaitGroup
}

// NewRunner wires the runner to its model store, job store and result
// cache. Call Shutdown to wait for in-flight jobs.
func NewRunner(models *store.Store, jobs *Store, results cache.Cache, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}

	var limiter *rate.Limiter
	if opts.SubmitRate > 0 {
		burst := opts.SubmitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(opts.SubmitRate, burst)
	}

	ctx, cancel := context.WithCancel(context.Background())
	group := &errgroup.Group{}
	group.SetLimit(opts.MaxConcurrent)

	return &Runner{
		models:  models,
		jobs:    jobs,
		cache:   results,
		limiter: limiter,
		opts:    opts,
		group:   group,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Submit validates the request, persists a pending job and schedules
// its execution. The returned job is in status pending.
func (r *Runner) Submit(ctx context.Context, req Request) (Job, error) {
	if err := req.Validate(); err != nil {
		return Job{}, err
	}
	if r.limiter != nil && !r.limiter.Allow() {
		return Job{}, ErrRateLimited
	}

	model, err := r.models.Model(ctx, req.ModelID)
	if err != nil {
		return Job{}, err
	}

	job := Job{
		ID:          uuid.NewString(),
		Request:     req,
		ModelName:   model.Name,
		Status:      StatusPending,
		SubmittedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return Job{}, ErrShutdown
	}
	if err := r.jobs.Put(job); err != nil {
		return Job{}, err
	}
	metrics.JobsSubmitted.Inc()

	scheduled := r.group.TryGo(func() error {
		r.run(job)
		return nil
	})
	if !scheduled {
		// All execution slots are busy; run once a slot frees up.
		// Shutdown waits for the handoff so the job is never abandoned.
		r.fallback.Add(1)
		go func() {
			defer r.fallback.Done()
			r.group.Go(func() error {
				r.run(job)
				return nil
			})
		}()
	}
	return job, nil
}

// Job returns the stored record for id.
func (r *Runner) Job(id string) (Job, error) {
	return r.jobs.Get(id)
}

// Jobs lists all stored jobs, newest first.
func (r *Runner) Jobs() ([]Job, error) {
	return r.jobs.List()
}

// Shutdown stops accepting submissions and waits for running jobs until
// ctx expires, then aborts the stragglers. Jobs interrupted this way are
// recorded as failed.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.fallback.Wait()
		_ = r.group.Wait()
		close(done)
	}()
	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		<-done
		return fmt.Errorf("waiting for running jobs: %w", ctx.Err())
	}
}

func (r *Runner) run(job Job) {
	logger := log.WithComponent("jobs").With().
		Str(log.FieldJobID, job.ID).
		Str(log.FieldModelID, job.ModelID).
		Str(log.FieldDirection, string(job.Direction)).
		Logger()

	ctx, span := telemetry.Tracer().Start(r.ctx, "jobs.run")
	defer span.End()

	job.Status = StatusRunning
	job.StartedAt = time.Now().UTC()
	if err := r.jobs.Put(job); err != nil {
		logger.Error().Err(err).Msg("persist running job")
	}

	result, err := r.analyse(ctx, &job)
	job.FinishedAt = time.Now().UTC()
	if err != nil {
		job.Status = StatusFailed
		job.Error = err.Error()
		metrics.JobsCompleted.WithLabelValues(string(StatusFailed)).Inc()
		logger.Warn().Err(err).Msg("analysis failed")
	} else {
		job.Status = StatusDone
		job.Result = result
		metrics.JobsCompleted.WithLabelValues(string(StatusDone)).Inc()
		metrics.JobDuration.Observe(job.FinishedAt.Sub(job.StartedAt).Seconds())
		metrics.ReachableStates.Observe(float64(result.ReachableStates))
		logger.Info().
			Int(log.FieldStates, result.ReachableStates).
			Bool("cached", result.Cached).
			Msg("analysis finished")
	}

	if err := r.jobs.Put(job); err != nil {
		logger.Error().Err(err).Msg("persist finished job")
	}
	if job.Status == StatusDone && r.opts.ExportDir != "" {
		if path, err := exportResult(r.opts.ExportDir, job); err != nil {
			logger.Warn().Err(err).Msg("export result")
		} else {
			logger.Debug().Str(log.FieldPath, path).Msg("exported result")
		}
	}
}

func (r *Runner) analyse(ctx context.Context, job *Job) (*Result, error) {
	key := cache.Key(job.ModelID, string(job.Direction), uint32(job.InitialState))
	if data, ok := r.cache.Get(ctx, key); ok {
		var cached Result
		if err := json.Unmarshal(data, &cached); err == nil {
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			cached.Cached = true
			return &cached, nil
		}
	}
	metrics.CacheRequests.WithLabelValues("miss").Inc()

	model, err := r.models.Model(ctx, job.ModelID)
	if err != nil {
		return nil, err
	}
	network, err := model.Network()
	if err != nil {
		return nil, err
	}
	g, err := async.New(network)
	if err != nil {
		return nil, err
	}
	if int(job.InitialState) >= g.NumStates() {
		return nil, fmt.Errorf("initial state %d out of range, model has %d states", job.InitialState, g.NumStates())
	}

	op := g.Fwd()
	if job.Direction == DirectionBackward {
		op = g.Bwd()
	}

	initial := make([]params.Set, g.NumStates())
	for i := range initial {
		initial[i] = g.EmptyParams()
	}
	initial[job.InitialState] = g.UnitParams()

	workers := job.Workers
	if workers <= 0 {
		workers = r.opts.Workers
	}

	started := time.Now()
	reached, err := reach.Compute(ctx, op, initial, workers)
	if err != nil {
		return nil, err
	}

	result := &Result{DurationMS: time.Since(started).Milliseconds()}
	for state, set := range reached {
		if set.IsEmpty() {
			continue
		}
		result.ReachableStates++
		result.States = append(result.States, StateResult{
			State:      graph.State(state), // #nosec G115 -- bounded by NumStates
			Parameters: set.Cardinality(),
		})
	}

	if data, err := json.Marshal(result); err == nil {
		r.cache.Set(ctx, key, data)
	}
	return result, nil
}
