// Package generate adapts the external text-generation service into a
// streaming call the edit pipeline can consume.
//
// Generate forwards chunks to the caller as they arrive while accumulating
// the full text internally, and returns the completed text only when the
// upstream stream ends cleanly. A failure mid-stream fails the whole
// operation: partial output is never handed back as a result, so nothing
// partial can ever be committed.
package generate

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/pagesmith/pagesmith/internal/prompt"
)

// Sentinel errors for generation outcomes.
var (
	// ErrNotConfigured indicates no generation client is available
	// (missing API key). Checked at call time, never a panic.
	ErrNotConfigured = errors.New("generation service not configured")

	// ErrUnavailable indicates the upstream service errored.
	ErrUnavailable = errors.New("generation service unavailable")

	// ErrEmptyResult indicates the stream completed with no usable text.
	ErrEmptyResult = errors.New("generation returned empty result")
)

// ChunkFunc receives each text chunk as it arrives. Returning an error
// aborts the stream.
type ChunkFunc func(ctx context.Context, text string) error

// Config contains the adapter's dependencies.
type Config struct {
	// Client is the genai client. nil means unconfigured; Generate will
	// return ErrNotConfigured.
	Client *genai.Client

	// Model is the model identifier (e.g. "gemini-2.5-flash").
	Model string

	Temperature float32

	// Limiter throttles upstream calls proactively. nil = default
	// (2 requests/sec sustained, burst of 4).
	Limiter *rate.Limiter

	Logger *slog.Logger
}

// Adapter invokes the generation service. Safe for concurrent use.
type Adapter struct {
	client      *genai.Client
	model       string
	temperature float32
	limiter     *rate.Limiter
	logger      *slog.Logger
}

// New creates an Adapter.
func New(cfg Config) *Adapter {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(2, 4)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		client:      cfg.Client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		limiter:     limiter,
		logger:      logger,
	}
}

// Generate runs the request against the generation service, forwarding each
// chunk to onChunk (which may be nil) and returning the full concatenated
// text on clean completion. Generation is not retried: the cost of a call is
// real, so a failed attempt surfaces immediately and the caller resubmits.
func (a *Adapter) Generate(ctx context.Context, req prompt.Request, onChunk ChunkFunc) (string, error) {
	if a.client == nil {
		return "", ErrNotConfigured
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(a.temperature),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	a.logger.Debug("starting generation stream",
		"model", a.model,
		"request_len", len(req.Text))

	stream := a.client.Models.GenerateContentStream(ctx, a.model, genai.Text(req.Text), config)
	text, err := consume(ctx, stream, onChunk)
	if err != nil {
		return "", err
	}

	a.logger.Debug("generation stream completed", "result_len", len(text))
	return text, nil
}

// consume drains a generation stream, forwarding non-empty chunks and
// accumulating the full text. Split from Generate so the streaming contract
// is testable without a live client.
func consume(ctx context.Context, stream iter.Seq2[*genai.GenerateContentResponse, error], onChunk ChunkFunc) (string, error) {
	var full strings.Builder

	for resp, err := range stream {
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
		}

		chunk := resp.Text()
		if chunk == "" {
			continue
		}

		full.WriteString(chunk)
		if onChunk != nil {
			if err := onChunk(ctx, chunk); err != nil {
				return "", fmt.Errorf("forwarding chunk: %w", err)
			}
		}
	}

	if strings.TrimSpace(full.String()) == "" {
		return "", ErrEmptyResult
	}
	return full.String(), nil
}
