// Package credit enforces the per-user credit balance that gates edits.
//
// The check is advisory: it runs once before generation starts, and the
// eventual debit is applied by the commit using the balance captured here,
// not a fresh read. Two near-simultaneous edits can both pass the check and
// both commit; that gap is an accepted product decision, not something this
// package papers over.
package credit

import "errors"

const (
	// EditCost is the fixed number of credits debited per committed edit.
	EditCost = 3

	// InitialGrant is the balance a user starts with when their record is
	// created on first generation.
	InitialGrant = 15
)

// ErrInsufficientCredits indicates the balance cannot cover EditCost.
var ErrInsufficientCredits = errors.New("insufficient credits")

// Check verifies balance covers a single edit. It returns the balance that
// will remain after the edit commits, so callers can thread the captured
// value through prompt construction and the final debit.
func Check(balance int) (remaining int, err error) {
	if balance < EditCost {
		return balance, ErrInsufficientCredits
	}
	return balance - EditCost, nil
}
