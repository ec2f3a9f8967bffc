package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"voiceagent-platform/internal/calls"
)

// PostgresStore persists ledger entries in the call_ledger table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const entryColumns = `id, external_call_id, account_id, agent_id, direction,
duration_seconds, cost_charged, billed, outcome, ended_reason, customer_number,
summary, transcript, structured_data, recording_url, started_at, ended_at,
created_at, updated_at`

func scanEntry(row interface{ Scan(...any) error }) (Entry, error) {
	var e Entry
	var (
		agentID        sql.NullInt64
		endedReason    sql.NullString
		customerNumber sql.NullString
		summary        sql.NullString
		transcript     sql.NullString
		structured     []byte
		recordingURL   sql.NullString
		startedAt      sql.NullTime
		endedAt        sql.NullTime
	)
	if err := row.Scan(
		&e.ID,
		&e.ExternalCallID,
		&e.AccountID,
		&agentID,
		&e.Direction,
		&e.DurationSeconds,
		&e.CostCharged,
		&e.Billed,
		&e.Outcome,
		&endedReason,
		&customerNumber,
		&summary,
		&transcript,
		&structured,
		&recordingURL,
		&startedAt,
		&endedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return Entry{}, err
	}
	if agentID.Valid {
		e.AgentID = &agentID.Int64
	}
	e.EndedReason = endedReason.String
	e.CustomerNumber = customerNumber.String
	e.Summary = summary.String
	e.Transcript = transcript.String
	e.StructuredData = structured
	e.RecordingURL = recordingURL.String
	if startedAt.Valid {
		t := startedAt.Time
		e.StartedAt = &t
	}
	if endedAt.Valid {
		t := endedAt.Time
		e.EndedAt = &t
	}
	return e, nil
}

func (s *PostgresStore) ByExternalID(ctx context.Context, externalCallID string) (Entry, error) {
	const q = `SELECT ` + entryColumns + ` FROM call_ledger WHERE external_call_id = $1`
	e, err := scanEntry(s.db.QueryRowContext(ctx, q, externalCallID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	const q = `
INSERT INTO call_ledger (
	id, external_call_id, account_id, agent_id, direction,
	duration_seconds, cost_charged, billed, outcome, ended_reason,
	customer_number, summary, transcript, structured_data, recording_url,
	started_at, ended_at, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18)
ON CONFLICT (external_call_id) DO UPDATE SET
	account_id       = EXCLUDED.account_id,
	agent_id         = EXCLUDED.agent_id,
	direction        = EXCLUDED.direction,
	duration_seconds = EXCLUDED.duration_seconds,
	cost_charged     = EXCLUDED.cost_charged,
	billed           = EXCLUDED.billed,
	outcome          = EXCLUDED.outcome,
	ended_reason     = EXCLUDED.ended_reason,
	customer_number  = EXCLUDED.customer_number,
	summary          = EXCLUDED.summary,
	transcript       = EXCLUDED.transcript,
	structured_data  = EXCLUDED.structured_data,
	recording_url    = EXCLUDED.recording_url,
	started_at       = EXCLUDED.started_at,
	ended_at         = EXCLUDED.ended_at,
	updated_at       = EXCLUDED.updated_at
RETURNING ` + entryColumns
	var structured []byte
	if len(e.StructuredData) > 0 {
		structured = e.StructuredData
	}
	return scanEntry(s.db.QueryRowContext(ctx, q,
		e.ID,
		e.ExternalCallID,
		e.AccountID,
		e.AgentID,
		e.Direction,
		e.DurationSeconds,
		e.CostCharged,
		e.Billed,
		e.Outcome,
		nullString(e.EndedReason),
		nullString(e.CustomerNumber),
		nullString(e.Summary),
		nullString(e.Transcript),
		structured,
		nullString(e.RecordingURL),
		e.StartedAt,
		e.EndedAt,
		time.Now().UTC(),
	))
}

func (s *PostgresStore) SetOutcome(ctx context.Context, externalCallID string, outcome calls.Outcome) error {
	const q = `UPDATE call_ledger SET outcome = $2, updated_at = $3 WHERE external_call_id = $1`
	res, err := s.db.ExecContext(ctx, q, externalCallID, outcome, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) SetBilled(ctx context.Context, externalCallID string, billed bool) error {
	const q = `UPDATE call_ledger SET billed = $2, updated_at = $3 WHERE external_call_id = $1`
	res, err := s.db.ExecContext(ctx, q, externalCallID, billed, time.Now().UTC())
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *PostgresStore) List(ctx context.Context, f ListFilter) ([]Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM call_ledger`
	var args []any
	if f.AccountID != 0 {
		args = append(args, f.AccountID)
		q += fmt.Sprintf(` WHERE account_id = $%d`, len(args))
	}
	if f.Outcome != "" {
		args = append(args, f.Outcome)
		if len(args) == 1 {
			q += fmt.Sprintf(` WHERE outcome = $%d`, len(args))
		} else {
			q += fmt.Sprintf(` AND outcome = $%d`, len(args))
		}
	}
	q += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
