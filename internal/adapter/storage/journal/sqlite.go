// Package journal keeps an append-only SQLite trail of order commits.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MikeRez0/storefront/internal/core/domain"
	"github.com/MikeRez0/storefront/internal/core/port"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS commit_journal (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    order_id       TEXT NOT NULL,
    status         TEXT NOT NULL,
    current_step   TEXT NOT NULL DEFAULT '',
    payload        TEXT,
    error_messages TEXT NOT NULL DEFAULT '[]',
    trace_id       TEXT NOT NULL DEFAULT '',
    span_id        TEXT NOT NULL DEFAULT '',
    recorded_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_commit_journal_order ON commit_journal(order_id, recorded_at);
CREATE INDEX IF NOT EXISTS idx_commit_journal_trace ON commit_journal(trace_id);
`

type Journal struct {
	db *sql.DB
}

var _ port.CommitJournal = (*Journal)(nil)

// Open opens or creates the journal file at path.
func Open(path string) (*Journal, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: open %q: %w", path, err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Save(ctx context.Context, entry *domain.JournalEntry) error {
	const q = `
		INSERT INTO commit_journal
			(order_id, status, current_step, payload, error_messages, trace_id, span_id, recorded_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	errs := "[]"
	if len(entry.Errors) > 0 {
		b, err := json.Marshal(entry.Errors)
		if err != nil {
			return fmt.Errorf("journal: encode errors: %w", err)
		}
		errs = string(b)
	}

	var payload any
	if entry.Payload != "" {
		payload = entry.Payload
	}

	recorded := entry.RecordedAt
	if recorded.IsZero() {
		recorded = time.Now()
	}

	_, err := j.db.ExecContext(ctx, q,
		entry.OrderID,
		string(entry.Status),
		entry.CurrentStep,
		payload,
		errs,
		entry.TraceID,
		entry.SpanID,
		recorded.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("journal: save entry for %q: %w", entry.OrderID, err)
	}
	return nil
}

const selectColumns = `order_id, status, current_step, COALESCE(payload, ''), error_messages,
	trace_id, span_id, recorded_at`

// GetLatest returns the most recent entry of an order commit.
func (j *Journal) GetLatest(ctx context.Context, orderID string) (*domain.JournalEntry, error) {
	q := `SELECT ` + selectColumns + `
		FROM  commit_journal
		WHERE order_id = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`

	entry, err := scanEntry(j.db.QueryRowContext(ctx, q, orderID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDataNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("journal: get latest for %q: %w", orderID, err)
	}
	return entry, nil
}

// History returns every entry of an order commit, oldest first.
func (j *Journal) History(ctx context.Context, orderID string) ([]*domain.JournalEntry, error) {
	q := `SELECT ` + selectColumns + `
		FROM  commit_journal
		WHERE order_id = ?
		ORDER BY id`

	rows, err := j.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, fmt.Errorf("journal: history for %q: %w", orderID, err)
	}
	defer rows.Close()

	var list []*domain.JournalEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("journal: history for %q: %w", orderID, err)
		}
		list = append(list, entry)
	}
	return list, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	var errs, recorded string
	err := row.Scan(
		&entry.OrderID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.Payload,
		&errs,
		&entry.TraceID,
		&entry.SpanID,
		&recorded,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(errs), &entry.Errors); err != nil {
		return nil, fmt.Errorf("decode errors: %w", err)
	}
	if len(entry.Errors) == 0 {
		entry.Errors = nil
	}
	entry.RecordedAt, err = time.Parse(timeLayout, recorded)
	if err != nil {
		return nil, fmt.Errorf("parse recorded_at: %w", err)
	}
	return &entry, nil
}
