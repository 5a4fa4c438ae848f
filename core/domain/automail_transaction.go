package domain

import "strings"

// TransactionKind buckets the free-form LLM transaction type into the
// direction it moves money.
type TransactionKind int

const (
	KindUnknown TransactionKind = iota
	KindIncome
	KindExpense
)

func (k TransactionKind) String() string {
	switch k {
	case KindIncome:
		return "income"
	case KindExpense:
		return "expense"
	default:
		return "unknown"
	}
}

// Transaction is a financial event extracted from one email.
// Amount is a pointer so an absent amount is distinguishable from zero.
type Transaction struct {
	Type        string   `json:"type,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Currency    string   `json:"currency,omitempty"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date,omitempty"`
	Category    string   `json:"category,omitempty"`
	Recurring   bool     `json:"recurring,omitempty"`

	// Provenance
	EmailID       string `json:"email_id,omitempty"`
	EmailThreadID string `json:"email_thread_id,omitempty"`
	EmailDate     string `json:"email_date,omitempty"`
	Source        string `json:"source,omitempty"`
	SourceSubject string `json:"source_subject,omitempty"`
	SourceSender  string `json:"source_sender,omitempty"`
	ExtractedAt   string `json:"extracted_at,omitempty"`
	Body          string `json:"body,omitempty"`
}

// Kind maps the LLM-reported type onto income or expense. Unrecognized
// types map to KindUnknown so callers skip them instead of guessing.
func (t Transaction) Kind() TransactionKind {
	switch strings.ToLower(t.Type) {
	case "income", "refund", "credit":
		return KindIncome
	case "expense", "bill", "charge", "payment", "debit":
		return KindExpense
	default:
		return KindUnknown
	}
}
