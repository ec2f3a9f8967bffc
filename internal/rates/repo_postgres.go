package rates

import (
	"context"
	"database/sql"
	"time"

	"voiceagent-platform/pkg/utils"
)

// PostgresRepo persists rates in model_rates / transcriber_rates.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListModelRates(ctx context.Context, scope int64) ([]ModelRate, error) {
	const q = `
SELECT provider, model, scope, rate_per_minute, updated_at
FROM model_rates
WHERE scope = $1
ORDER BY provider, model
`
	rows, err := r.db.QueryContext(ctx, q, scope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ModelRate
	for rows.Next() {
		var m ModelRate
		if err := rows.Scan(&m.Provider, &m.Model, &m.Scope, &m.RatePerMinute, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) ListTranscriberRates(ctx context.Context, scope int64) ([]TranscriberRate, error) {
	const q = `
SELECT provider, scope, rate_per_minute, updated_at
FROM transcriber_rates
WHERE scope = $1
ORDER BY provider
`
	rows, err := r.db.QueryContext(ctx, q, scope)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TranscriberRate
	for rows.Next() {
		var t TranscriberRate
		if err := rows.Scan(&t.Provider, &t.Scope, &t.RatePerMinute, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) UpsertModelRates(ctx context.Context, scope int64, in []ModelRateInput) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		now := time.Now().UTC()
		const q = `
INSERT INTO model_rates (provider, model, scope, rate_per_minute, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (provider, model, scope)
DO UPDATE SET rate_per_minute = EXCLUDED.rate_per_minute, updated_at = EXCLUDED.updated_at
`
		for _, e := range in {
			if _, err := tx.ExecContext(ctx, q, e.Provider, e.Model, scope, e.Rate, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresRepo) UpsertTranscriberRates(ctx context.Context, scope int64, in []TranscriberRateInput) error {
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		now := time.Now().UTC()
		const q = `
INSERT INTO transcriber_rates (provider, scope, rate_per_minute, updated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (provider, scope)
DO UPDATE SET rate_per_minute = EXCLUDED.rate_per_minute, updated_at = EXCLUDED.updated_at
`
		for _, e := range in {
			if _, err := tx.ExecContext(ctx, q, e.Provider, scope, e.Rate, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresRepo) HasGlobalRates(ctx context.Context) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM model_rates WHERE scope = 0)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *PostgresRepo) SeedGlobalDefaults(ctx context.Context, models []ModelRateInput, transcribers []TranscriberRateInput) error {
	// ON CONFLICT DO NOTHING keeps seeding idempotent and safe to race.
	return utils.WithTx(ctx, r.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		now := time.Now().UTC()
		const qm = `
INSERT INTO model_rates (provider, model, scope, rate_per_minute, updated_at)
VALUES ($1,$2,0,$3,$4)
ON CONFLICT (provider, model, scope) DO NOTHING
`
		for _, e := range models {
			if _, err := tx.ExecContext(ctx, qm, e.Provider, e.Model, e.Rate, now); err != nil {
				return err
			}
		}
		const qt = `
INSERT INTO transcriber_rates (provider, scope, rate_per_minute, updated_at)
VALUES ($1,0,$2,$3)
ON CONFLICT (provider, scope) DO NOTHING
`
		for _, e := range transcribers {
			if _, err := tx.ExecContext(ctx, qt, e.Provider, e.Rate, now); err != nil {
				return err
			}
		}
		return nil
	})
}
