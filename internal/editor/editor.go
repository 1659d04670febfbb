// Package editor orchestrates the credit-gated edit pipeline: identity
// resolution, credit check, prompt construction, streaming generation,
// sanitization, history append, and the final commit.
//
// Within one request the steps are strictly ordered; every failure before
// generation is fail-fast, and no credits are ever debited for an edit that
// does not commit. Across requests there is no serialization: two concurrent
// edits for the same user may both pass the credit check and the later commit
// wins the whole record. That gap is accepted, see DESIGN.md.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pagesmith/pagesmith/internal/credit"
	"github.com/pagesmith/pagesmith/internal/generate"
	"github.com/pagesmith/pagesmith/internal/history"
	"github.com/pagesmith/pagesmith/internal/identity"
	"github.com/pagesmith/pagesmith/internal/prompt"
	"github.com/pagesmith/pagesmith/internal/sanitize"
	"github.com/pagesmith/pagesmith/internal/store"
)

// Identities resolves emails to user records. Implemented by *identity.Resolver.
type Identities interface {
	Resolve(ctx context.Context, rawEmail string) (*store.UserDoc, error)
}

// Documents is the write surface of the document store the pipeline needs.
// Implemented by *store.Store.
type Documents interface {
	Create(ctx context.Context, doc *store.UserDoc) error
	CommitEdit(ctx context.Context, id, artifact string, entries []history.Entry, balance int, editedAt time.Time) error
	ReplaceArtifact(ctx context.Context, id, artifact string, editedAt time.Time) error
}

// Generator streams text generation. Implemented by *generate.Adapter.
type Generator interface {
	Generate(ctx context.Context, req prompt.Request, onChunk generate.ChunkFunc) (string, error)
}

// Config contains the service's dependencies.
type Config struct {
	Identities Identities
	Documents  Documents
	Generator  Generator
	Logger     *slog.Logger

	// Now overrides the clock, for tests. nil = time.Now.
	Now func() time.Time
}

// Service runs the edit pipeline. Stateless; all cross-request state lives
// in the document store.
type Service struct {
	users  Identities
	docs   Documents
	gen    Generator
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Identities == nil {
		return nil, errors.New("identity resolver is required")
	}
	if cfg.Documents == nil {
		return nil, errors.New("document store is required")
	}
	if cfg.Generator == nil {
		return nil, errors.New("generator is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Service{
		users:  cfg.Identities,
		docs:   cfg.Documents,
		gen:    cfg.Generator,
		logger: logger,
		now:    now,
	}, nil
}

// EditRequest is an inbound edit from the UI layer.
type EditRequest struct {
	Email       string
	Instruction string

	// BaseVersionID optionally selects a history snapshot as the editing
	// base instead of the current artifact.
	BaseVersionID string
}

// EditResult is the outcome of a committed edit. RemainingCredits is the
// out-of-band signal the caller displays without re-reading the store.
type EditResult struct {
	Artifact         string
	RemainingCredits int
	UserID           string
}

// Edit runs one edit through the full pipeline, forwarding generation chunks
// to onChunk as they arrive. The commit happens only after the stream
// completes; a failure at any earlier step leaves the stored record exactly
// as it was and debits nothing.
func (s *Service) Edit(ctx context.Context, req EditRequest, onChunk generate.ChunkFunc) (*EditResult, error) {
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return nil, ErrMissingInstruction
	}

	doc, err := s.users.Resolve(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	base := doc.CurrentArtifact
	if req.BaseVersionID != "" {
		entry, ok := history.Find(doc.History, req.BaseVersionID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrVersionNotFound, req.BaseVersionID)
		}
		base = entry.Snapshot
	}

	// Advisory check: the balance captured here is what the commit writes.
	remaining, err := credit.Check(doc.CreditBalance)
	if err != nil {
		return nil, &InsufficientCreditsError{Balance: doc.CreditBalance}
	}

	raw, err := s.gen.Generate(ctx, prompt.BuildEdit(base, instruction, remaining), onChunk)
	if err != nil {
		return nil, err
	}

	clean := sanitize.Clean(raw)
	if clean == "" {
		return nil, generate.ErrEmptyResult
	}

	now := s.now()
	entries := history.Append(doc.History, doc.CurrentArtifact, clean, instruction, now)

	if err := s.docs.CommitEdit(ctx, doc.ID, clean, entries, remaining, now); err != nil {
		// The artifact was already streamed to the caller; the store now
		// disagrees with what they saw. Loud by design.
		s.logger.Error("edit generated but commit failed",
			"user_id", doc.ID,
			"error", err)
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	s.logger.Info("edit committed",
		"user_id", doc.ID,
		"remaining_credits", remaining,
		"history_len", len(entries))

	return &EditResult{
		Artifact:         clean,
		RemainingCredits: remaining,
		UserID:           doc.ID,
	}, nil
}

// CreateRequest is an inbound first-generation request.
type CreateRequest struct {
	Email               string
	BusinessDescription string
}

// CreateResult is the outcome of a first generation.
type CreateResult struct {
	Artifact      string
	CreditBalance int
	UserID        string

	// Created is false when the user already existed and the page was
	// regenerated in place.
	Created bool
}

// Create generates a site from a business description. A new user record is
// created only on successful generation, seeded with the initial credit
// grant. For an existing user the artifact is replaced without touching
// balance or history: a fresh start, not an edit.
func (s *Service) Create(ctx context.Context, req CreateRequest, onChunk generate.ChunkFunc) (*CreateResult, error) {
	description := strings.TrimSpace(req.BusinessDescription)
	if description == "" {
		return nil, ErrMissingDescription
	}

	doc, err := s.users.Resolve(ctx, req.Email)
	if err != nil && !errors.Is(err, identity.ErrUserNotFound) {
		return nil, err
	}

	raw, err := s.gen.Generate(ctx, prompt.BuildCreate(description), onChunk)
	if err != nil {
		return nil, err
	}

	clean := sanitize.Clean(raw)
	if clean == "" {
		return nil, generate.ErrEmptyResult
	}

	now := s.now()

	if doc != nil {
		if err := s.docs.ReplaceArtifact(ctx, doc.ID, clean, now); err != nil {
			s.logger.Error("regeneration succeeded but replace failed",
				"user_id", doc.ID,
				"error", err)
			return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
		}
		s.logger.Info("regenerated site", "user_id", doc.ID)
		return &CreateResult{Artifact: clean, CreditBalance: doc.CreditBalance, UserID: doc.ID}, nil
	}

	email := identity.NormalizeEmail(req.Email)
	newDoc := &store.UserDoc{
		ID:              identity.DocumentKey(email),
		Email:           email,
		CurrentArtifact: clean,
		CreditBalance:   credit.InitialGrant,
		History:         []history.Entry{},
		HistoryTracked:  true,
		CreatedAt:       now,
		LastEditedAt:    now,
	}
	if err := s.docs.Create(ctx, newDoc); err != nil {
		s.logger.Error("generation succeeded but record creation failed",
			"user_id", newDoc.ID,
			"error", err)
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	s.logger.Info("created site",
		"user_id", newDoc.ID,
		"initial_credits", credit.InitialGrant)

	return &CreateResult{
		Artifact:      clean,
		CreditBalance: credit.InitialGrant,
		UserID:        newDoc.ID,
		Created:       true,
	}, nil
}

// Site returns the stored record for an email.
func (s *Service) Site(ctx context.Context, email string) (*store.UserDoc, error) {
	return s.users.Resolve(ctx, email)
}

// Versions returns the user's history, newest first.
func (s *Service) Versions(ctx context.Context, email string) ([]history.Entry, error) {
	doc, err := s.users.Resolve(ctx, email)
	if err != nil {
		return nil, err
	}
	return doc.History, nil
}
