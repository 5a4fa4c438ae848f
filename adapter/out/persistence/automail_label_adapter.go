package persistence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"automail_server/core/domain"
	"automail_server/core/port/out"
)

// LabelAdapter reads user-defined label definitions from Postgres.
type LabelAdapter struct {
	db *sqlx.DB
}

func NewLabelAdapter(db *sqlx.DB) out.LabelRepository {
	return &LabelAdapter{db: db}
}

func (a *LabelAdapter) ListLabels(ctx context.Context) ([]domain.LabelDef, error) {
	const query = `SELECT name, COALESCE(description, '') AS description, COALESCE(color, '') AS color FROM email_labels`

	var labels []domain.LabelDef
	if err := a.db.SelectContext(ctx, &labels, query); err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return labels, nil
}
