// Package identity maps a user-supplied email to exactly one stored record.
//
// The document key is derived deterministically from the normalized email.
// Records created before the key derivation changed live under an older key,
// so resolution falls back to a query on the stored email field; the resolver
// stays correct for both generations of records without a backfill.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pagesmith/pagesmith/internal/history"
	"github.com/pagesmith/pagesmith/internal/store"
)

// ErrUserNotFound indicates both lookup strategies were exhausted.
var ErrUserNotFound = errors.New("user not found")

// Directory is the record lookup surface the resolver needs.
// Implemented by *store.Store.
type Directory interface {
	Get(ctx context.Context, id string) (*store.UserDoc, error)
	FindByEmail(ctx context.Context, email string) (*store.UserDoc, error)
}

// Resolver resolves emails to user records.
type Resolver struct {
	dir    Directory
	logger *slog.Logger
}

// New creates a Resolver. A nil logger falls back to slog.Default().
func New(dir Directory, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{dir: dir, logger: logger}
}

// Resolve finds the record for rawEmail, trying the derived document key
// first and the stored email field second. Legacy records (no history field)
// are normalized into the current shape in memory before being returned.
// The returned document's ID is the record's actual stored key, which may
// differ from the derived key for legacy records; commits must target it.
func (r *Resolver) Resolve(ctx context.Context, rawEmail string) (*store.UserDoc, error) {
	email := NormalizeEmail(rawEmail)

	doc, err := r.dir.Get(ctx, DocumentKey(email))
	if errors.Is(err, store.ErrNotFound) {
		doc, err = r.dir.FindByEmail(ctx, email)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
		}
		if err == nil {
			r.logger.Debug("resolved user via legacy email lookup",
				"email", email, "stored_key", doc.ID)
		}
	}
	if err != nil {
		return nil, err
	}

	return normalizeLegacy(doc), nil
}

// NormalizeEmail produces the canonical form of an address: trimmed and
// lower-cased. Distinct raw emails that normalize identically collide by
// design; the trade-off is accepted for a stable, human-readable key.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// DocumentKey derives the document-store key from a normalized email.
// Runes the store does not allow in a path segment are substituted with
// an underscore.
func DocumentKey(email string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == '@', r == '.', r == '+', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, email)
}

// normalizeLegacy gives records stored without a history field the current
// in-memory shape, so call sites never branch on record vintage.
func normalizeLegacy(doc *store.UserDoc) *store.UserDoc {
	if doc.HistoryTracked {
		return doc
	}
	normalized := *doc
	normalized.History = []history.Entry{}
	normalized.HistoryTracked = true
	return &normalized
}
