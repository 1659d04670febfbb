// Package store is the document-store layer for user site records.
//
// Each user owns exactly one row in site_users, addressed by the key the
// identity resolver derives from the normalized email. The row is treated
// as a single document: history is a JSONB blob, and every commit rewrites
// the artifact, history, balance, and timestamp in one UPDATE. Single-row
// atomicity is the only consistency guarantee relied upon; concurrent
// commits for the same user are last-writer-wins.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pagesmith/pagesmith/internal/history"
)

// ErrNotFound indicates the requested user record does not exist.
var ErrNotFound = errors.New("user record not found")

// UserDoc is a user's full site record as stored.
type UserDoc struct {
	ID              string
	Email           string
	CurrentArtifact string
	CreditBalance   int
	History         []history.Entry

	// HistoryTracked is false for legacy records stored before history
	// tracking existed (NULL history column). The identity resolver
	// normalizes such records in memory; callers above it never see the
	// distinction.
	HistoryTracked bool

	CreatedAt    time.Time
	LastEditedAt time.Time
}

// Store persists user site records in PostgreSQL.
// Safe for concurrent use.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New creates a Store. A nil logger falls back to slog.Default().
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

const docColumns = `id, email, current_artifact, credit_balance, history, created_at, last_edited_at`

// Get retrieves a record by its document key.
// Returns ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, id string) (*UserDoc, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+docColumns+` FROM site_users WHERE id = $1`, id)

	doc, err := scanDoc(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return doc, nil
}

// FindByEmail retrieves a record by its stored email field. This is the
// fallback lookup for records stored under a pre-normalization key.
// Duplicate emails tie-break deterministically on earliest created_at.
// Returns ErrNotFound if no record matches.
func (s *Store) FindByEmail(ctx context.Context, email string) (*UserDoc, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+docColumns+` FROM site_users WHERE email = $1 ORDER BY created_at ASC LIMIT 1`, email)

	doc, err := scanDoc(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return doc, nil
}

// Create inserts a new record. The document is written exactly as given;
// history is stored as an empty JSON array so new records are never legacy.
func (s *Store) Create(ctx context.Context, doc *UserDoc) error {
	raw, err := marshalHistory(doc.History)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO site_users (id, email, current_artifact, credit_balance, history, created_at, last_edited_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		doc.ID, doc.Email, doc.CurrentArtifact, doc.CreditBalance, raw, doc.CreatedAt, doc.LastEditedAt)
	if err != nil {
		return fmt.Errorf("create user %s: %w", doc.ID, err)
	}

	s.logger.Debug("created user record", "id", doc.ID, "balance", doc.CreditBalance)
	return nil
}

// CommitEdit applies the result of a completed edit as one document update:
// new artifact, updated history, debited balance, and edit timestamp.
//
// balance is the value captured at credit-check time minus the edit cost,
// written as-is rather than decremented in SQL. A concurrent edit that read
// the same starting balance will overwrite this write entirely.
func (s *Store) CommitEdit(ctx context.Context, id, artifact string, entries []history.Entry, balance int, editedAt time.Time) error {
	raw, err := marshalHistory(entries)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE site_users
		 SET current_artifact = $2, history = $3, credit_balance = $4, last_edited_at = $5
		 WHERE id = $1`,
		id, artifact, raw, balance, editedAt)
	if err != nil {
		return fmt.Errorf("commit edit for user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.logger.Debug("committed edit",
		"id", id,
		"balance", balance,
		"history_len", len(entries))
	return nil
}

// ReplaceArtifact overwrites the current artifact without touching balance
// or history. Used when an existing user regenerates their page from scratch.
func (s *Store) ReplaceArtifact(ctx context.Context, id, artifact string, editedAt time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE site_users SET current_artifact = $2, last_edited_at = $3 WHERE id = $1`,
		id, artifact, editedAt)
	if err != nil {
		return fmt.Errorf("replace artifact for user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.logger.Debug("replaced artifact", "id", id)
	return nil
}

// scanDoc scans one site_users row. A NULL history column marks a legacy
// record from before history tracking.
func scanDoc(row pgx.Row) (*UserDoc, error) {
	var doc UserDoc
	var rawHistory []byte

	if err := row.Scan(&doc.ID, &doc.Email, &doc.CurrentArtifact, &doc.CreditBalance,
		&rawHistory, &doc.CreatedAt, &doc.LastEditedAt); err != nil {
		return nil, err
	}

	if rawHistory != nil {
		doc.HistoryTracked = true
		if err := json.Unmarshal(rawHistory, &doc.History); err != nil {
			return nil, fmt.Errorf("decode history for user %s: %w", doc.ID, err)
		}
	}

	return &doc, nil
}

func marshalHistory(entries []history.Entry) ([]byte, error) {
	if entries == nil {
		entries = []history.Entry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return raw, nil
}
