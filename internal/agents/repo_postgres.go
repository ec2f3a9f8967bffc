package agents

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresDirectory reads agents from the agents table.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

const agentColumns = `id, account_id, name, upstream_assistant_id,
       model_provider, model_name, transcriber_provider,
       forward_url, forward_secret, created_at, updated_at`

func scanAgent(row interface{ Scan(...any) error }) (Agent, error) {
	var a Agent
	if err := row.Scan(
		&a.ID,
		&a.AccountID,
		&a.Name,
		&a.UpstreamAssistantID,
		&a.Pricing.ModelProvider,
		&a.Pricing.ModelName,
		&a.Pricing.TranscriberProvider,
		&a.ForwardURL,
		&a.ForwardSecret,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return Agent{}, err
	}
	return a, nil
}

func (d *PostgresDirectory) ByUpstreamAssistant(ctx context.Context, assistantID string) (Agent, bool, error) {
	if assistantID == "" {
		return Agent{}, false, nil
	}
	const q = `SELECT ` + agentColumns + ` FROM agents WHERE upstream_assistant_id = $1 LIMIT 1`
	a, err := scanAgent(d.db.QueryRowContext(ctx, q, assistantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Agent{}, false, nil
		}
		return Agent{}, false, err
	}
	return a, true, nil
}

func (d *PostgresDirectory) ByID(ctx context.Context, id int64) (Agent, bool, error) {
	const q = `SELECT ` + agentColumns + ` FROM agents WHERE id = $1`
	a, err := scanAgent(d.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Agent{}, false, nil
		}
		return Agent{}, false, err
	}
	return a, true, nil
}
