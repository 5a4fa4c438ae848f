package out

import (
	"context"
	"time"

	"automail_server/core/domain"
)

// TransactionRepository persists extracted financial transactions.
type TransactionRepository interface {
	// SaveTransactions inserts transactions idempotently, returning
	// one outcome per item. The error is non-nil only when the
	// database itself is unreachable.
	SaveTransactions(ctx context.Context, transactions []domain.Transaction) ([]domain.SaveOutcome, error)
}

// ReminderRepository persists extracted reminders.
type ReminderRepository interface {
	SaveReminders(ctx context.Context, reminders []domain.Reminder) ([]domain.SaveOutcome, error)
}

// LabelRepository reads user-defined label definitions.
type LabelRepository interface {
	ListLabels(ctx context.Context) ([]domain.LabelDef, error)
}

// RunRepository records orchestration runs for auditing.
type RunRepository interface {
	RecordRun(ctx context.Context, run domain.ProcessingRun) error
}

// SnapshotRepository stores aggregate analytics documents.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snapshot *domain.AnalyticsSnapshot) error
	LatestSnapshot(ctx context.Context) (*domain.AnalyticsSnapshot, error)
}

// Deduper guards against double-processing of webhook notifications.
type Deduper interface {
	// TryAcquire claims key for ttl, returning false when another
	// worker already holds it.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
