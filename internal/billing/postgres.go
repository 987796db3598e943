package billing

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresLedger backs the ledger with a wallets table and an append-only
// ledger_entries table. The debit is one transaction: row-locked balance
// read, conditional decrement, audit insert. Either all of it commits or
// none of it does.
type PostgresLedger struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

func NewPostgresLedger(dsn string) (*PostgresLedger, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &PostgresLedger{db: db}, nil
}

func (l *PostgresLedger) Close() error { return l.db.Close() }

func (l *PostgresLedger) ensureSchema(ctx context.Context) error {
	l.schemaOnce.Do(func() {
		_, err := l.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS wallets (
    user_id TEXT PRIMARY KEY,
    balance BIGINT NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS ledger_entries (
    id BIGSERIAL PRIMARY KEY,
    wallet_id TEXT NOT NULL REFERENCES wallets(user_id),
    balance_before BIGINT NOT NULL,
    amount_debited BIGINT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`)
		l.schemaErr = err
	})
	return l.schemaErr
}

// Credit initializes or tops up a wallet.
func (l *PostgresLedger) Credit(ctx context.Context, userID string, amount int64) error {
	if err := l.ensureSchema(ctx); err != nil {
		return err
	}
	_, err := l.db.ExecContext(ctx, `
INSERT INTO wallets (user_id, balance) VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + EXCLUDED.balance`,
		userID, amount)
	return err
}

func (l *PostgresLedger) Debit(ctx context.Context, userID string, cost CostClass, description string) (Receipt, error) {
	var zero Receipt
	if err := l.ensureSchema(ctx); err != nil {
		return zero, err
	}
	amount := int64(cost)

	tx, err := l.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return zero, err
	}
	defer func() { _ = tx.Rollback() }()

	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM wallets WHERE user_id = $1 FOR UPDATE`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, ErrWalletNotInitialized
	}
	if err != nil {
		return zero, err
	}
	if balance < amount {
		return zero, &InsufficientCreditsError{Balance: balance, Cost: amount}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE wallets SET balance = balance - $2 WHERE user_id = $1`, userID, amount); err != nil {
		return zero, err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (wallet_id, balance_before, amount_debited, description) VALUES ($1, $2, $3, $4)`,
		userID, balance, -amount, description); err != nil {
		return zero, err
	}
	if err := tx.Commit(); err != nil {
		return zero, err
	}
	return Receipt{Allowed: true, RemainingBalance: balance - amount}, nil
}

func (l *PostgresLedger) Balance(ctx context.Context, userID string) (int64, error) {
	if err := l.ensureSchema(ctx); err != nil {
		return 0, err
	}
	var balance int64
	err := l.db.QueryRowContext(ctx,
		`SELECT balance FROM wallets WHERE user_id = $1`, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrWalletNotInitialized
	}
	return balance, err
}

func (l *PostgresLedger) Entries(ctx context.Context, userID string) ([]Entry, error) {
	if err := l.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := l.db.QueryContext(ctx, `
SELECT wallet_id, balance_before, amount_debited, description, created_at
FROM ledger_entries WHERE wallet_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts time.Time
		if err := rows.Scan(&e.WalletID, &e.BalanceBefore, &e.AmountDebited, &e.Description, &ts); err != nil {
			return nil, err
		}
		e.Timestamp = ts
		out = append(out, e)
	}
	return out, rows.Err()
}
