package persistence

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"automail_server/core/domain"
	"automail_server/core/port/out"
	"automail_server/pkg/logger"
)

// isoDate matches strict YYYY-MM-DD dates; anything else falls back.
var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// txNamespace scopes deterministic transaction ids.
var txNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("automail/email_transactions"))

// TransactionAdapter implements out.TransactionRepository on Postgres.
type TransactionAdapter struct {
	db  *sqlx.DB
	log *logger.Logger
}

func NewTransactionAdapter(db *sqlx.DB) out.TransactionRepository {
	return &TransactionAdapter{db: db, log: logger.WithComponent("tx-repo")}
}

// transactionRow is the email_transactions table shape.
type transactionRow struct {
	ID          string    `db:"id"`
	EmailID     string    `db:"email_id"`
	Date        time.Time `db:"date"`
	Description string    `db:"description"`
	Amount      float64   `db:"amount"`
	Currency    string    `db:"currency"`
	Type        string    `db:"type"`
	Category    string    `db:"category"`
	Source      string    `db:"source"`
	RawText     string    `db:"raw_text"`
}

// TransactionID derives a stable id from the transaction's identifying
// content, so re-saving the same extraction hits the conflict clause
// instead of inserting a duplicate.
func TransactionID(tx domain.Transaction) string {
	amount := ""
	if tx.Amount != nil {
		amount = fmt.Sprintf("%.2f", *tx.Amount)
	}
	key := strings.Join([]string{
		tx.EmailID, strings.ToLower(tx.Type), amount, tx.Currency, tx.Description, tx.Date,
	}, "|")
	return uuid.NewSHA1(txNamespace, []byte(key)).String()
}

// NormalizeTransaction maps an extracted transaction onto a row.
// Returns false for transactions whose type maps to neither income nor
// expense; those are skipped, not failed.
func NormalizeTransaction(tx domain.Transaction, now time.Time) (transactionRow, bool) {
	kind := tx.Kind()
	if kind == domain.KindUnknown {
		return transactionRow{}, false
	}

	amount := 0.0
	if tx.Amount != nil {
		amount = *tx.Amount
	}
	if amount < 0 {
		amount = -amount
	}

	currency := tx.Currency
	if currency == "" {
		currency = "USD"
	}

	date := now
	if tx.Date != "" && isoDate.MatchString(tx.Date) {
		if parsed, err := time.Parse("2006-01-02", tx.Date); err == nil {
			date = parsed
		}
	}

	rawText := fmt.Sprintf("Subject: %s\n", tx.SourceSubject)
	if tx.Body != "" {
		rawText += tx.Body
	}

	return transactionRow{
		ID:          TransactionID(tx),
		EmailID:     tx.EmailID,
		Date:        date,
		Description: tx.Description,
		Amount:      amount,
		Currency:    currency,
		Type:        kind.String(),
		Category:    tx.Category,
		Source:      tx.SourceSender,
		RawText:     rawText,
	}, true
}

// SaveTransactions inserts transactions one by one, idempotently.
// Unknown types produce skip outcomes; row-level failures are reported
// and do not abort the batch.
func (a *TransactionAdapter) SaveTransactions(ctx context.Context, transactions []domain.Transaction) ([]domain.SaveOutcome, error) {
	if len(transactions) == 0 {
		a.log.Info("no transactions to save")
		return []domain.SaveOutcome{}, nil
	}
	if err := a.db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}

	const query = `
		INSERT INTO email_transactions
			(id, email_id, date, description, amount, currency, type, category, source, raw_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`

	now := time.Now()
	outcomes := make([]domain.SaveOutcome, 0, len(transactions))
	for _, tx := range transactions {
		row, ok := NormalizeTransaction(tx, now)
		if !ok {
			a.log.WithField("type", tx.Type).Warn("skipping transaction with unknown type")
			outcomes = append(outcomes, domain.SaveOutcome{
				ID:     TransactionID(tx),
				Status: domain.SaveSkipped,
				Reason: fmt.Sprintf("unknown transaction type %q", tx.Type),
			})
			continue
		}

		res, err := a.db.ExecContext(ctx, query,
			row.ID, row.EmailID, row.Date, row.Description, row.Amount,
			row.Currency, row.Type, row.Category, row.Source, row.RawText)
		if err != nil {
			a.log.WithError(err).WithField("id", row.ID).Error("failed to insert transaction")
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

	a.log.Info("saved %d of %d transactions", domain.CountInserted(outcomes), len(transactions))
	return outcomes, nil
}
