// Package memory is an in-memory RunStore for tests and the default
// storage configuration.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/postforge/postforge/internal/storage"
)

// Store is an in-memory implementation of RunStore.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*storage.RunRecord
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{runs: make(map[string]*storage.RunRecord)}
}

func (s *Store) CreateRun(ctx context.Context, run *storage.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = storage.RunRunning
	}

	cp := *run
	s.runs[run.ID] = &cp
	return nil
}

func (s *Store) FinishRun(ctx context.Context, id string, status storage.RunStatus, postID, errDetail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, ok := s.runs[id]
	if !ok {
		return storage.ErrRunNotFound
	}
	run.Status = status
	run.PostID = postID
	run.Error = errDetail
	run.FinishedAt = time.Now().UTC()
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*storage.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, storage.ErrRunNotFound
	}
	cp := *run
	return &cp, nil
}

func (s *Store) ListRuns(ctx context.Context, opts storage.ListOptions) ([]*storage.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*storage.RunRecord
	for _, run := range s.runs {
		if opts.Status != "" && run.Status != opts.Status {
			continue
		}
		cp := *run
		result = append(result, &cp)
	}

	// Newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartedAt.After(result[j].StartedAt)
	})

	start := opts.Offset
	if start >= len(result) {
		return []*storage.RunRecord{}, nil
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}
	return result[start:end], nil
}

func (s *Store) Close() error { return nil }

var _ storage.RunStore = (*Store)(nil)
