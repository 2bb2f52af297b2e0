package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one recorded job outcome. The ledger is observational only: it
// never gates processing and gives the pipeline no idempotency guarantee.
type Entry struct {
	ID          string
	CandidateID string
	Title       string
	Stage       string
	FailedStage string
	PublicURL   string
	MediaID     string
	Error       string
	CreatedAt   time.Time
}

// Ledger persists job outcomes in SQLite.
type Ledger struct {
	db *sql.DB
}

// NewLedger creates a new ledger on the given database, creating the posts
// table if needed.
func NewLedger(db *sql.DB) (*Ledger, error) {
	ledger := &Ledger{db: db}
	if err := ledger.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return ledger, nil
}

// createTables ensures that the required tables exist
func (l *Ledger) createTables() error {
	createPostsTable := `
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		candidate_id TEXT NOT NULL,
		title TEXT NOT NULL,
		stage TEXT NOT NULL,
		failed_stage TEXT NOT NULL,
		public_url TEXT NOT NULL,
		media_id TEXT NOT NULL,
		error TEXT NOT NULL,
		created_at TEXT NOT NULL
	);`

	_, err := l.db.Exec(createPostsTable)
	return err
}

// Record stores one job outcome.
func (l *Ledger) Record(ctx context.Context, entry *Entry) error {
	query := `
	INSERT INTO posts (id, candidate_id, title, stage, failed_stage, public_url, media_id, error, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := l.db.ExecContext(ctx, query,
		entry.ID,
		entry.CandidateID,
		entry.Title,
		entry.Stage,
		entry.FailedStage,
		entry.PublicURL,
		entry.MediaID,
		entry.Error,
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record post: %w", err)
	}

	return nil
}

// Recent returns the most recent outcomes, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	query := `
	SELECT id, candidate_id, title, stage, failed_stage, public_url, media_id, error, created_at
	FROM posts ORDER BY created_at DESC LIMIT ?`

	rows, err := l.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry := &Entry{}
		var createdAtStr string
		err := rows.Scan(
			&entry.ID, &entry.CandidateID, &entry.Title, &entry.Stage, &entry.FailedStage,
			&entry.PublicURL, &entry.MediaID, &entry.Error, &createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		createdAt, err := time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		entry.CreatedAt = createdAt

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return entries, nil
}
