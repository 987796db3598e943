package billing

import (
	"context"
	"sync"
	"time"
)

// MemoryLedger holds wallets and audit rows in process memory. The mutex is
// the critical section making balance check and decrement atomic relative
// to each other under concurrent debits.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int64
	entries  map[string][]Entry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: map[string]int64{},
		entries:  map[string][]Entry{},
	}
}

// Credit initializes or tops up a wallet.
func (l *MemoryLedger) Credit(ctx context.Context, userID string, amount int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] += amount
	return nil
}

func (l *MemoryLedger) Debit(ctx context.Context, userID string, cost CostClass, description string) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	bal, ok := l.balances[userID]
	if !ok {
		return Receipt{}, ErrWalletNotInitialized
	}
	amount := int64(cost)
	if bal < amount {
		return Receipt{}, &InsufficientCreditsError{Balance: bal, Cost: amount}
	}

	l.balances[userID] = bal - amount
	l.entries[userID] = append(l.entries[userID], Entry{
		WalletID:      userID,
		BalanceBefore: bal,
		AmountDebited: -amount,
		Description:   description,
		Timestamp:     time.Now().UTC(),
	})
	return Receipt{Allowed: true, RemainingBalance: bal - amount}, nil
}

func (l *MemoryLedger) Balance(ctx context.Context, userID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bal, ok := l.balances[userID]
	if !ok {
		return 0, ErrWalletNotInitialized
	}
	return bal, nil
}

func (l *MemoryLedger) Entries(ctx context.Context, userID string) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries[userID]))
	copy(out, l.entries[userID])
	return out, nil
}
