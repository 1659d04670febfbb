package generate

import (
	"context"
	"errors"
	"iter"
	"testing"

	"google.golang.org/genai"

	"github.com/pagesmith/pagesmith/internal/log"
	"github.com/pagesmith/pagesmith/internal/prompt"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func fakeStream(chunks []string, failAfter int, failErr error) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for i, c := range chunks {
			if failErr != nil && i == failAfter {
				yield(nil, failErr)
				return
			}
			if !yield(textResponse(c), nil) {
				return
			}
		}
		if failErr != nil && failAfter >= len(chunks) {
			yield(nil, failErr)
		}
	}
}

func TestConsume(t *testing.T) {
	ctx := context.Background()

	t.Run("accumulates and forwards in order", func(t *testing.T) {
		var forwarded []string
		onChunk := func(_ context.Context, text string) error {
			forwarded = append(forwarded, text)
			return nil
		}

		full, err := consume(ctx, fakeStream([]string{"<html>", "<body>hi</body>", "</html>"}, 0, nil), onChunk)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if full != "<html><body>hi</body></html>" {
			t.Errorf("full text = %q", full)
		}
		if len(forwarded) != 3 || forwarded[0] != "<html>" {
			t.Errorf("forwarded chunks = %v", forwarded)
		}
	})

	t.Run("nil callback still accumulates", func(t *testing.T) {
		full, err := consume(ctx, fakeStream([]string{"a", "b"}, 0, nil), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if full != "ab" {
			t.Errorf("full text = %q", full)
		}
	})

	t.Run("mid-stream failure discards partial output", func(t *testing.T) {
		upstream := errors.New("quota exceeded")
		var forwarded int
		onChunk := func(_ context.Context, _ string) error {
			forwarded++
			return nil
		}

		full, err := consume(ctx, fakeStream([]string{"partial", "never"}, 1, upstream), onChunk)
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("got %v, want ErrUnavailable", err)
		}
		if !errors.Is(err, upstream) {
			t.Errorf("upstream cause not wrapped: %v", err)
		}
		if full != "" {
			t.Errorf("partial output leaked: %q", full)
		}
		if forwarded != 1 {
			t.Errorf("forwarded %d chunks before failure, want 1", forwarded)
		}
	})

	t.Run("callback error aborts", func(t *testing.T) {
		abort := errors.New("client gone")
		onChunk := func(_ context.Context, _ string) error { return abort }

		_, err := consume(ctx, fakeStream([]string{"a", "b"}, 0, nil), onChunk)
		if !errors.Is(err, abort) {
			t.Fatalf("got %v, want callback error", err)
		}
	})

	t.Run("empty stream", func(t *testing.T) {
		_, err := consume(ctx, fakeStream(nil, 0, nil), nil)
		if !errors.Is(err, ErrEmptyResult) {
			t.Fatalf("got %v, want ErrEmptyResult", err)
		}
	})

	t.Run("whitespace-only stream", func(t *testing.T) {
		_, err := consume(ctx, fakeStream([]string{"  ", "\n"}, 0, nil), nil)
		if !errors.Is(err, ErrEmptyResult) {
			t.Fatalf("got %v, want ErrEmptyResult", err)
		}
	})
}

func TestGenerateNotConfigured(t *testing.T) {
	a := New(Config{Logger: log.NewNop()})

	_, err := a.Generate(context.Background(), prompt.BuildCreate("a bakery"), nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("got %v, want ErrNotConfigured", err)
	}
}
