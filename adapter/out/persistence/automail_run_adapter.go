package persistence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"automail_server/core/domain"
	"automail_server/core/port/out"
)

// RunAdapter records orchestration runs in Postgres.
type RunAdapter struct {
	db *sqlx.DB
}

func NewRunAdapter(db *sqlx.DB) out.RunRepository {
	return &RunAdapter{db: db}
}

func (a *RunAdapter) RecordRun(ctx context.Context, run domain.ProcessingRun) error {
	const query = `
		INSERT INTO processing_runs
			(id, kind, processed, errored, services_used, duration_ms, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := a.db.ExecContext(ctx, query,
		run.ID, string(run.Kind), run.Processed, run.Errored,
		pq.Array(run.ServicesUsed), run.Duration.Milliseconds(), run.StartedAt)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}
