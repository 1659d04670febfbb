package credit

import (
	"errors"
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name          string
		balance       int
		wantRemaining int
		wantErr       error
	}{
		{name: "ample balance", balance: 15, wantRemaining: 12},
		{name: "exactly the cost", balance: 3, wantRemaining: 0},
		{name: "one short", balance: 2, wantRemaining: 2, wantErr: ErrInsufficientCredits},
		{name: "zero", balance: 0, wantRemaining: 0, wantErr: ErrInsufficientCredits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remaining, err := Check(tt.balance)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Check(%d) error = %v, want %v", tt.balance, err, tt.wantErr)
			}
			if remaining != tt.wantRemaining {
				t.Errorf("Check(%d) remaining = %d, want %d", tt.balance, remaining, tt.wantRemaining)
			}
		})
	}
}
