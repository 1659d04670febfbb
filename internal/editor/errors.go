package editor

import (
	"errors"
	"fmt"

	"github.com/pagesmith/pagesmith/internal/credit"
)

// Sentinel errors for pipeline operations. Failures that originate in a
// component keep that component's sentinel (identity.ErrUserNotFound,
// credit.ErrInsufficientCredits, generate.ErrUnavailable and friends) so
// callers can match with errors.Is across the whole pipeline.
var (
	// ErrMissingInstruction indicates an empty or whitespace-only edit
	// instruction. Raised before any store or generation call.
	ErrMissingInstruction = errors.New("missing edit instruction")

	// ErrMissingDescription indicates an empty business description on
	// first generation.
	ErrMissingDescription = errors.New("missing business description")

	// ErrVersionNotFound indicates the requested baseVersionId does not
	// exist in the user's history.
	ErrVersionNotFound = errors.New("version not found")

	// ErrPersistenceFailed indicates the final write failed after a
	// successful generation. The text was already streamed to the caller,
	// so the caller and the store now disagree; this is logged loudly.
	ErrPersistenceFailed = errors.New("persisting edit failed")
)

// InsufficientCreditsError carries the current balance so the transport
// layer can surface a top-up prompt without re-reading the store.
// Matches credit.ErrInsufficientCredits under errors.Is.
type InsufficientCreditsError struct {
	Balance int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: balance %d, edit costs %d", e.Balance, credit.EditCost)
}

func (e *InsufficientCreditsError) Unwrap() error {
	return credit.ErrInsufficientCredits
}
