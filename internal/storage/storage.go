// Package storage defines persistence for pipeline run history.
package storage

import (
	"context"
	"time"
)

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// RunRecord is one pipeline run. Error holds the surfaced stage error
// for failed runs.
type RunRecord struct {
	ID         string    `json:"id"`
	Topic      string    `json:"topic"`
	Provider   string    `json:"provider,omitempty"`
	Status     RunStatus `json:"status"`
	PostID     string    `json:"post_id,omitempty"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// ListOptions filters and pages run listings.
type ListOptions struct {
	Status RunStatus
	Limit  int
	Offset int
}

// RunStore persists run records.
type RunStore interface {
	CreateRun(ctx context.Context, run *RunRecord) error
	FinishRun(ctx context.Context, id string, status RunStatus, postID, errDetail string) error
	GetRun(ctx context.Context, id string) (*RunRecord, error)
	ListRuns(ctx context.Context, opts ListOptions) ([]*RunRecord, error)
	Close() error
}

// Nop is a RunStore that records nothing, for storage type "none".
type Nop struct{}

func (Nop) CreateRun(context.Context, *RunRecord) error { return nil }

func (Nop) FinishRun(context.Context, string, RunStatus, string, string) error { return nil }

func (Nop) GetRun(context.Context, string) (*RunRecord, error) { return nil, ErrRunNotFound }

func (Nop) ListRuns(context.Context, ListOptions) ([]*RunRecord, error) { return nil, nil }

func (Nop) Close() error { return nil }
