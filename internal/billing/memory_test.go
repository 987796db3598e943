package billing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestDebitMissingWallet(t *testing.T) {
	l := NewMemoryLedger()
	_, err := l.Debit(context.Background(), "ghost", CostStandard, "mission")
	if !errors.Is(err, ErrWalletNotInitialized) {
		t.Fatalf("err = %v, want ErrWalletNotInitialized", err)
	}
}

func TestDebitInsufficientCreditsWritesNoEntry(t *testing.T) {
	l := NewMemoryLedger()
	l.Credit(context.Background(), "u1", 40)

	_, err := l.Debit(context.Background(), "u1", CostStandard, "mission")
	if err == nil {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(err.Error(), "Insufficient Credits") {
		t.Fatalf("error message = %q", err)
	}
	entries, _ := l.Entries(context.Background(), "u1")
	if len(entries) != 0 {
		t.Fatalf("no audit row may exist for a rejected debit, got %v", entries)
	}
	if bal, _ := l.Balance(context.Background(), "u1"); bal != 40 {
		t.Fatalf("balance = %d, want untouched 40", bal)
	}
}

func TestDebitSuccessWritesExactlyOneEntry(t *testing.T) {
	l := NewMemoryLedger()
	l.Credit(context.Background(), "u1", 100)

	rec, err := l.Debit(context.Background(), "u1", CostStandard, "mission")
	if err != nil {
		t.Fatalf("Debit() error = %v", err)
	}
	if !rec.Allowed || rec.RemainingBalance != 50 {
		t.Fatalf("receipt = %+v", rec)
	}
	entries, _ := l.Entries(context.Background(), "u1")
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.AmountDebited != -50 || e.BalanceBefore != 100 {
		t.Fatalf("entry = %+v", e)
	}
}

func TestConcurrentDebitsNoDoubleSpend(t *testing.T) {
	l := NewMemoryLedger()
	l.Credit(context.Background(), "u1", 100)

	const cost = CostClass(60)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Debit(context.Background(), "u1", cost, "concurrent")
		}(i)
	}
	wg.Wait()

	okCount := 0
	for _, err := range errs {
		if err == nil {
			okCount++
		} else {
			var ice *InsufficientCreditsError
			if !errors.As(err, &ice) {
				t.Fatalf("unexpected error: %v", err)
			}
		}
	}
	if okCount != 1 {
		t.Fatalf("%d debits succeeded, want exactly 1", okCount)
	}
	if bal, _ := l.Balance(context.Background(), "u1"); bal != 40 {
		t.Fatalf("balance = %d, want 40", bal)
	}
	entries, _ := l.Entries(context.Background(), "u1")
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want exactly 1", len(entries))
	}
}

func TestAtomicityLawUnderContention(t *testing.T) {
	l := NewMemoryLedger()
	l.Credit(context.Background(), "u1", 1000)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = l.Debit(context.Background(), "u1", CostLight, "stress")
		}()
	}
	wg.Wait()

	bal, _ := l.Balance(context.Background(), "u1")
	entries, _ := l.Entries(context.Background(), "u1")
	var debited int64
	for _, e := range entries {
		debited += -e.AmountDebited
	}
	if bal+debited != 1000 {
		t.Fatalf("audit total %d + balance %d != initial 1000", debited, bal)
	}
}
