package memory

import (
	"context"
	"testing"
	"time"

	"github.com/postforge/postforge/internal/storage"
)

func TestCreateAndFinishRun(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CreateRun(ctx, &storage.RunRecord{ID: "r1", Topic: "go"}); err != nil {
		t.Fatalf("CreateRun() error = %v", err)
	}

	run, err := s.GetRun(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.Status != storage.RunRunning {
		t.Errorf("status = %q, want running", run.Status)
	}
	if run.StartedAt.IsZero() {
		t.Error("StartedAt should be set")
	}

	if err := s.FinishRun(ctx, "r1", storage.RunSucceeded, "urn:li:share:999", ""); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	run, _ = s.GetRun(ctx, "r1")
	if run.Status != storage.RunSucceeded || run.PostID != "urn:li:share:999" {
		t.Errorf("run = %+v", run)
	}
	if run.FinishedAt.IsZero() {
		t.Error("FinishedAt should be set")
	}
}

func TestFinishUnknownRun(t *testing.T) {
	s := New()
	err := s.FinishRun(context.Background(), "missing", storage.RunFailed, "", "boom")
	if err != storage.ErrRunNotFound {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestListRunsOrderAndFilter(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"r1", "r2", "r3"} {
		s.CreateRun(ctx, &storage.RunRecord{ID: id, StartedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	s.FinishRun(ctx, "r2", storage.RunFailed, "", "publish error (status 429): rate limited")

	runs, err := s.ListRuns(ctx, storage.ListOptions{})
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != "r3" {
		t.Errorf("expected newest first, got %q", runs[0].ID)
	}

	failed, _ := s.ListRuns(ctx, storage.ListOptions{Status: storage.RunFailed})
	if len(failed) != 1 || failed[0].ID != "r2" {
		t.Errorf("failed runs = %+v", failed)
	}

	paged, _ := s.ListRuns(ctx, storage.ListOptions{Limit: 1, Offset: 1})
	if len(paged) != 1 || paged[0].ID != "r2" {
		t.Errorf("paged runs = %+v", paged)
	}
}
