// Package sqlite is a SQLite-backed RunStore.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/postforge/postforge/internal/storage"
)

// Store is a SQLite implementation of RunStore.
type Store struct {
	db *sql.DB
}

var _ storage.RunStore = (*Store)(nil)

// New opens (or creates) the database at dbPath and initializes the
// schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		provider TEXT,
		status TEXT NOT NULL,
		post_id TEXT,
		error TEXT,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	)`)
	return err
}

func (s *Store) CreateRun(ctx context.Context, run *storage.RunRecord) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = storage.RunRunning
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, topic, provider, status, post_id, error, started_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Topic, run.Provider, string(run.Status), run.PostID, run.Error, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

func (s *Store) FinishRun(ctx context.Context, id string, status storage.RunStatus, postID, errDetail string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, post_id = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(status), postID, errDetail, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrRunNotFound
	}
	return nil
}

func (s *Store) GetRun(ctx context.Context, id string) (*storage.RunRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, topic, provider, status, post_id, error, started_at, finished_at FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

func (s *Store) ListRuns(ctx context.Context, opts storage.ListOptions) ([]*storage.RunRecord, error) {
	query := `SELECT id, topic, provider, status, post_id, error, started_at, finished_at FROM runs`
	var args []any
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY started_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*storage.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*storage.RunRecord, error) {
	var run storage.RunRecord
	var status string
	var postID, errDetail, provider sql.NullString
	var finishedAt sql.NullTime

	err := row.Scan(&run.ID, &run.Topic, &provider, &status, &postID, &errDetail, &run.StartedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, storage.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Status = storage.RunStatus(status)
	run.Provider = provider.String
	run.PostID = postID.String
	run.Error = errDetail.String
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return &run, nil
}
