package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// UploadStore keeps an audit trail of uploads and their publish outcome.
// It is not a job queue: nothing is rescheduled from it.
type UploadStore interface {
	RecordUpload(ctx context.Context, rec UploadRecord) error
	MarkTriggered(ctx context.Context, uploadID string, at time.Time, triggerErr error) error
	Close() error
}

// OpenUploadStore connects to Postgres. It returns (nil, nil) when dbURL is empty.
func OpenUploadStore(ctx context.Context, dbURL string) (UploadStore, error) {
	if dbURL == "" {
		return nil, nil
	}
	db, err := NewDatabase(ctx, dbURL)
	if err != nil {
		return nil, err
	}
	if err := InitDB(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &pqStore{db: db}, nil
}

// NewDatabase creates a new database connection
func NewDatabase(ctx context.Context, dbURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// InitDB initializes the database schema
func InitDB(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS uploads (
		upload_id TEXT PRIMARY KEY,
		repo_name TEXT NOT NULL,
		schedule_time TIMESTAMPTZ NOT NULL,
		folder_path TEXT NOT NULL,
		file_count INTEGER DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
		triggered_at TIMESTAMPTZ,
		trigger_error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_uploads_repo_name ON uploads(repo_name);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	return nil
}

type pqStore struct {
	db *sql.DB
}

// RecordUpload upserts rec; same-second uploads of one repo share an id.
func (s *pqStore) RecordUpload(ctx context.Context, rec UploadRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO uploads (upload_id, repo_name, schedule_time, folder_path, file_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (upload_id) DO UPDATE SET
			schedule_time = EXCLUDED.schedule_time,
			file_count = EXCLUDED.file_count,
			triggered_at = NULL,
			trigger_error = NULL`,
		rec.UploadID, rec.RepoName, rec.ScheduleAt, rec.FolderPath, rec.FileCount, rec.CreatedAt)
	return err
}

func (s *pqStore) MarkTriggered(ctx context.Context, uploadID string, at time.Time, triggerErr error) error {
	var errText sql.NullString
	if triggerErr != nil {
		errText = sql.NullString{String: triggerErr.Error(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		"UPDATE uploads SET triggered_at = $1, trigger_error = $2 WHERE upload_id = $3",
		at, errText, uploadID)
	return err
}

func (s *pqStore) Close() error {
	return s.db.Close()
}
