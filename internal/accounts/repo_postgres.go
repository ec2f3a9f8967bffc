package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"voiceagent-platform/internal/rbac"
)

// PostgresDirectory reads accounts from the accounts table.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

const accountColumns = `id, email, name, role, agency_id, outbound_rate, inbound_rate, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (Account, error) {
	var a Account
	var agencyID sql.NullInt64
	if err := row.Scan(
		&a.ID,
		&a.Email,
		&a.Name,
		&a.Role,
		&agencyID,
		&a.OutboundRate,
		&a.InboundRate,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return Account{}, err
	}
	if agencyID.Valid {
		a.AgencyID = &agencyID.Int64
	}
	return a, nil
}

func (d *PostgresDirectory) Get(ctx context.Context, id int64) (Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	a, err := scanAccount(d.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (d *PostgresDirectory) ListVisibleTo(ctx context.Context, requesterID int64, requesterRole string) ([]Account, error) {
	var (
		q    string
		args []any
	)
	switch {
	case rbac.IsOwner(requesterRole):
		q = `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`
	case rbac.IsAgency(requesterRole):
		q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 OR agency_id = $1 ORDER BY id`
		args = append(args, requesterID)
	default:
		q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
		args = append(args, requesterID)
	}

	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (d *PostgresDirectory) UpdateFlatRates(ctx context.Context, id int64, outbound, inbound float64) (Account, error) {
	const q = `
UPDATE accounts
SET outbound_rate = $2, inbound_rate = $3, updated_at = $4
WHERE id = $1
RETURNING ` + accountColumns
	a, err := scanAccount(d.db.QueryRowContext(ctx, q, id, outbound, inbound, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}
