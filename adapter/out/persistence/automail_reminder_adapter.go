package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"automail_server/core/domain"
	"automail_server/core/port/out"
	"automail_server/pkg/logger"
)

// reminderNamespace scopes deterministic reminder ids.
var reminderNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("automail/reminders"))

// ReminderAdapter implements out.ReminderRepository on Postgres.
type ReminderAdapter struct {
	db  *sqlx.DB
	log *logger.Logger
}

func NewReminderAdapter(db *sqlx.DB) out.ReminderRepository {
	return &ReminderAdapter{db: db, log: logger.WithComponent("reminder-repo")}
}

// reminderRow is the reminders table shape.
type reminderRow struct {
	ID            string     `db:"id"`
	EmailID       string     `db:"email_id"`
	EmailThreadID string     `db:"email_thread_id"`
	Sender        string     `db:"sender"`
	Subject       string     `db:"subject"`
	Task          string     `db:"task"`
	Context       string     `db:"context"`
	Deadline      *time.Time `db:"deadline"`
	Priority      string     `db:"priority"`
	ExtractedAt   string     `db:"extracted_at"`
	CreatedAt     time.Time  `db:"created_at"`
	Completed     bool       `db:"completed"`
}

// ReminderID derives a stable id from the reminder's identifying
// content, matching the idempotent conflict clause.
func ReminderID(r domain.Reminder) string {
	key := strings.Join([]string{r.EmailID, r.Task, r.Deadline, r.Sender}, "|")
	return uuid.NewSHA1(reminderNamespace, []byte(key)).String()
}

// NormalizeReminder maps an extracted reminder onto a row. Deadlines
// outside strict YYYY-MM-DD become NULL, with the original text folded
// into the context unless it already mentions one.
func NormalizeReminder(r domain.Reminder, now time.Time) reminderRow {
	reminderContext := r.Context

	var deadline *time.Time
	if r.Deadline != "" {
		if isoDate.MatchString(r.Deadline) {
			if parsed, err := time.Parse("2006-01-02", r.Deadline); err == nil {
				deadline = &parsed
			}
		} else {
			lower := strings.ToLower(reminderContext)
			if reminderContext != "" && !strings.Contains(lower, "due") && !strings.Contains(lower, "deadline") {
				reminderContext += fmt.Sprintf(" (Deadline: %s)", r.Deadline)
			}
		}
	}

	priority, _ := domain.NormalizePriority(r.Priority)

	extractedAt := r.ExtractedAt
	if extractedAt == "" {
		extractedAt = now.Format(time.RFC3339)
	}

	return reminderRow{
		ID:            ReminderID(r),
		EmailID:       r.EmailID,
		EmailThreadID: r.EmailThreadID,
		Sender:        r.Sender,
		Subject:       r.SourceSubject,
		Task:          r.Task,
		Context:       reminderContext,
		Deadline:      deadline,
		Priority:      priority,
		ExtractedAt:   extractedAt,
		CreatedAt:     now,
		Completed:     false,
	}
}

// SaveReminders inserts reminders one by one, idempotently.
func (a *ReminderAdapter) SaveReminders(ctx context.Context, reminders []domain.Reminder) ([]domain.SaveOutcome, error) {
	if len(reminders) == 0 {
		a.log.Info("no reminders to save")
		return []domain.SaveOutcome{}, nil
	}
	if err := a.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	const query = `
		INSERT INTO reminders
			(id, email_id, email_thread_id, sender, subject, task, context, deadline,
			 priority, extracted_at, created_at, completed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`

	now := time.Now()
	outcomes := make([]domain.SaveOutcome, 0, len(reminders))
	for _, reminder := range reminders {
		row := NormalizeReminder(reminder, now)
		if row.Deadline == nil && reminder.Deadline != "" {
			a.log.WithField("deadline", reminder.Deadline).
				Info("using NULL for deadline not in YYYY-MM-DD format")
		}

		res, err := a.db.ExecContext(ctx, query,
			row.ID, row.EmailID, row.EmailThreadID, row.Sender, row.Subject,
			row.Task, row.Context, row.Deadline, row.Priority,
			row.ExtractedAt, row.CreatedAt, row.Completed)
		if err != nil {
			a.log.WithError(err).WithField("id", row.ID).Error("failed to insert reminder")
			outcomes = append(outcomes, domain.SaveOutcome{
				ID:     row.ID,
				Status: domain.SaveFailed,
				Reason: err.Error(),
			})
			continue
		}

		affected, _ := res.RowsAffected()
		if affected == 0 {
			outcomes = append(outcomes, domain.SaveOutcome{
				ID:     row.ID,
				Status: domain.SaveSkipped,
				Reason: "duplicate",
			})
		} else {
			outcomes = append(outcomes, domain.SaveOutcome{ID: row.ID, Status: domain.SaveInserted})
		}
	}

	a.log.Info("saved %d of %d reminders", domain.CountInserted(outcomes), len(reminders))
	return outcomes, nil
}
