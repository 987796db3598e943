package billing

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrWalletNotInitialized is returned when no wallet exists for the user.
	ErrWalletNotInitialized = errors.New("billing: wallet not initialized")
)

// InsufficientCreditsError names the shortfall. Its message is surfaced
// verbatim to the caller.
type InsufficientCreditsError struct {
	Balance int64
	Cost    int64
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("Insufficient Credits: balance %d, required %d (short %d)", e.Balance, e.Cost, e.Cost-e.Balance)
}

// CostClass is a fixed price tier for a tool invocation.
type CostClass int64

const (
	CostFree     CostClass = 0
	CostLight    CostClass = 10
	CostStandard CostClass = 50
	CostHeavy    CostClass = 120
)

// Entry is one audit row. An entry never exists without a matching balance
// decrement of equal magnitude, and vice versa.
type Entry struct {
	WalletID      string    `json:"wallet_id"`
	BalanceBefore int64     `json:"balance_before"`
	AmountDebited int64     `json:"amount_debited"` // negative for debits
	Description   string    `json:"description"`
	Timestamp     time.Time `json:"timestamp"`
}

// Receipt reports a successful debit.
type Receipt struct {
	Allowed          bool  `json:"allowed"`
	RemainingBalance int64 `json:"remaining_balance"`
}

// Ledger is the transactional debit-and-receipt boundary. Debit has no
// retry semantics of its own; callers treat any failure as terminal for
// the current mission attempt.
type Ledger interface {
	// Debit atomically checks the balance, decrements it, and appends an
	// audit entry. All-or-nothing: no partial debit, no orphaned entry.
	Debit(ctx context.Context, userID string, cost CostClass, description string) (Receipt, error)
	// Balance reads the current balance.
	Balance(ctx context.Context, userID string) (int64, error)
	// Entries lists audit rows for a wallet, oldest first.
	Entries(ctx context.Context, userID string) ([]Entry, error)
}
