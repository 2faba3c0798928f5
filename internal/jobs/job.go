// SPDX-License-Identifier: MIT

// Package jobs runs asynchronous reachability analyses over stored
// Boolean network models and persists their lifecycle.
package jobs

import (
	"fmt"
	"time"

	"github.com/sybila/biodivine/internal/graph"
)

// Direction selects which evolution operator an analysis uses.
type Direction string

const (
	// DirectionForward computes states reachable from the initial state.
	DirectionForward Direction = "forward"
	// DirectionBackward computes states that can reach the initial state.
	DirectionBackward Direction = "backward"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionForward || d == DirectionBackward
}

// Status is the lifecycle phase of a job.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Request describes one reachability analysis.
type Request struct {
	ModelID      string      `json:"model_id"`
	Direction    Direction   `json:"direction"`
	InitialState graph.State `json:"initial_state"`
	// Workers overrides the configured parallelism when positive.
	Workers int `json:"workers,omitempty"`
}

// Validate checks the request fields that do not need the model.
func (r Request) Validate() error {
	if r.ModelID == "" {
		return fmt.Errorf("model_id must not be empty")
	}
	if !r.Direction.Valid() {
		return fmt.Errorf("direction must be %q or %q, got %q", DirectionForward, DirectionBackward, r.Direction)
	}
	if r.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", r.Workers)
	}
	return nil
}

// StateResult reports, for one reached state, how many parameter
// valuations witness the reachability.
type StateResult struct {
	State      graph.State `json:"state"`
	Parameters int         `json:"parameters"`
}

// Result is the outcome of a finished analysis.
type Result struct {
	// ReachableStates counts states reached under at least one
	// parameter valuation. The initial state is always included.
	ReachableStates int `json:"reachable_states"`
	// States lists the reached states in ascending order.
	States []StateResult `json:"states"`
	// Cached marks results served from the analysis cache.
	Cached bool `json:"cached,omitempty"`

	DurationMS int64 `json:"duration_ms"`
}

// Job is the persisted record of one analysis.
type Job struct {
	ID string `json:"id"`
	Request
	ModelName string `json:"model_name"`

	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`
	StartedAt   time.Time `json:"started_at,omitzero"`
	FinishedAt  time.Time `json:"finished_at,omitzero"`

	Result *Result `json:"result,omitempty"`
}
