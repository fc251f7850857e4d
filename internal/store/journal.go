package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrSubmissionNotFound is returned when no journal entry matches.
var ErrSubmissionNotFound = errors.New("submission not found")

// Submission is one checkout attempt as recorded in the journal.
// Token is the attempt's idempotency token and its identity.
type Submission struct {
	Seq            int64
	Token          string
	DraftHash      string
	State          string
	Stage          string
	FailureKind    string
	OrderID        string
	CheckoutURL    string
	Error          string
	DeliveryMethod string
	ItemCount      int
	Subtotal       string
	Total          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RecordSubmission inserts the attempt, or updates its outcome fields if the
// token was already recorded. Seq and CreatedAt are assigned on first insert
// and never change.
func (s *Store) RecordSubmission(ctx context.Context, sub Submission) error {
	if sub.Token == "" {
		return fmt.Errorf("record submission: token is required")
	}
	ts := s.timestamp()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions
		(token, draft_hash, state, stage, failure_kind, order_id, checkout_url, error,
		 delivery_method, item_count, subtotal, total, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			state = excluded.state,
			stage = excluded.stage,
			failure_kind = excluded.failure_kind,
			order_id = excluded.order_id,
			checkout_url = excluded.checkout_url,
			error = excluded.error,
			updated_at = excluded.updated_at
	`,
		sub.Token,
		sub.DraftHash,
		sub.State,
		sub.Stage,
		sub.FailureKind,
		sub.OrderID,
		sub.CheckoutURL,
		sub.Error,
		sub.DeliveryMethod,
		sub.ItemCount,
		sub.Subtotal,
		sub.Total,
		ts,
		ts,
	)
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}

const submissionColumns = `seq, token, draft_hash, state, stage, failure_kind, order_id, checkout_url, error,
	delivery_method, item_count, subtotal, total, created_at, updated_at`

// ListSubmissions returns journal entries newest first.
// A limit <= 0 returns all entries. Returns an empty slice (not nil) when the
// journal is empty.
func (s *Store) ListSubmissions(ctx context.Context, limit int) ([]Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions ORDER BY seq DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	return s.querySubmissions(ctx, query, args...)
}

// AbandonedSubmissions returns attempts that created an order but failed
// afterwards, oldest first. These are orders the backend holds unpaid.
func (s *Store) AbandonedSubmissions(ctx context.Context) ([]Submission, error) {
	return s.querySubmissions(ctx, `
		SELECT `+submissionColumns+`
		FROM submissions
		WHERE state = 'failed' AND order_id != ''
		ORDER BY seq ASC
	`)
}

// SubmissionByToken returns the entry for an idempotency token.
func (s *Store) SubmissionByToken(ctx context.Context, token string) (Submission, error) {
	subs, err := s.querySubmissions(ctx, `
		SELECT `+submissionColumns+` FROM submissions WHERE token = ?
	`, token)
	if err != nil {
		return Submission{}, err
	}
	if len(subs) == 0 {
		return Submission{}, ErrSubmissionNotFound
	}
	return subs[0], nil
}

// SubmissionByOrderID returns the latest entry that created the given order.
func (s *Store) SubmissionByOrderID(ctx context.Context, orderID string) (Submission, error) {
	subs, err := s.querySubmissions(ctx, `
		SELECT `+submissionColumns+` FROM submissions WHERE order_id = ? ORDER BY seq DESC LIMIT 1
	`, orderID)
	if err != nil {
		return Submission{}, err
	}
	if len(subs) == 0 {
		return Submission{}, ErrSubmissionNotFound
	}
	return subs[0], nil
}

func (s *Store) querySubmissions(ctx context.Context, query string, args ...any) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	subs := []Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return subs, nil
}

func scanSubmission(rows *sql.Rows) (Submission, error) {
	var sub Submission
	var createdAt, updatedAt string
	err := rows.Scan(
		&sub.Seq,
		&sub.Token,
		&sub.DraftHash,
		&sub.State,
		&sub.Stage,
		&sub.FailureKind,
		&sub.OrderID,
		&sub.CheckoutURL,
		&sub.Error,
		&sub.DeliveryMethod,
		&sub.ItemCount,
		&sub.Subtotal,
		&sub.Total,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return Submission{}, fmt.Errorf("scan submission: %w", err)
	}
	if sub.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Submission{}, fmt.Errorf("scan submission: created_at: %w", err)
	}
	if sub.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return Submission{}, fmt.Errorf("scan submission: updated_at: %w", err)
	}
	return sub, nil
}
