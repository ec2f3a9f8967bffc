package credit

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"voiceagent-platform/pkg/utils"
)

// PostgresStore persists balances in the credit_accounts table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, accountID int64) (Balance, error) {
	const q = `SELECT account_id, credits, updated_at FROM credit_accounts WHERE account_id = $1`
	var b Balance
	err := s.db.QueryRowContext(ctx, q, accountID).Scan(&b.AccountID, &b.Credits, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Balance{}, ErrNotFound
	}
	if err != nil {
		return Balance{}, err
	}
	return b, nil
}

func (s *PostgresStore) Debit(ctx context.Context, accountID int64, amount float64) (Balance, error) {
	const q = `
UPDATE credit_accounts
SET credits = credits - $2, updated_at = $3
WHERE account_id = $1
RETURNING account_id, credits, updated_at`
	var b Balance
	err := s.db.QueryRowContext(ctx, q, accountID, amount, time.Now().UTC()).
		Scan(&b.AccountID, &b.Credits, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Balance{}, ErrNotFound
	}
	if err != nil {
		return Balance{}, err
	}
	return b, nil
}

func (s *PostgresStore) Adjust(ctx context.Context, accountID int64, op AdjustOp, amount float64) (Balance, error) {
	var b Balance
	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		const sel = `SELECT credits FROM credit_accounts WHERE account_id = $1 FOR UPDATE`
		var credits float64
		if err := tx.QueryRowContext(ctx, sel, accountID).Scan(&credits); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		switch op {
		case OpAdd:
			credits += amount
		case OpSubtract:
			if credits-amount < 0 {
				return ErrInsufficientCredits
			}
			credits -= amount
		case OpSet:
			credits = amount
		default:
			return ErrInvalidOp
		}

		const upd = `
UPDATE credit_accounts
SET credits = $2, updated_at = $3
WHERE account_id = $1
RETURNING account_id, credits, updated_at`
		return tx.QueryRowContext(ctx, upd, accountID, credits, time.Now().UTC()).
			Scan(&b.AccountID, &b.Credits, &b.UpdatedAt)
	})
	if err != nil {
		return Balance{}, err
	}
	return b, nil
}
