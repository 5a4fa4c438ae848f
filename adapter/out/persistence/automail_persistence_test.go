package persistence

import (
	"strings"
	"testing"
	"time"

	"automail_server/core/domain"
)

func amount(v float64) *float64 { return &v }

func TestTransactionIDDeterministic(t *testing.T) {
	tx := domain.Transaction{
		EmailID:     "msg-1",
		Type:        "expense",
		Amount:      amount(9.99),
		Currency:    "USD",
		Description: "Netflix",
		Date:        "2026-01-05",
	}

	first := TransactionID(tx)
	second := TransactionID(tx)
	if first != second {
		t.Errorf("expected stable id, got %q and %q", first, second)
	}

	tx.Type = "EXPENSE"
	if TransactionID(tx) != first {
		t.Error("expected id to ignore type casing")
	}

	tx.Description = "Spotify"
	if TransactionID(tx) == first {
		t.Error("expected different id for different description")
	}
}

func TestNormalizeTransaction(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		tx           domain.Transaction
		wantOK       bool
		wantAmount   float64
		wantCurrency string
		wantType     string
		wantDate     time.Time
	}{
		{
			name: "basic expense",
			tx: domain.Transaction{
				Type: "bill", Amount: amount(42.50), Currency: "EUR", Date: "2026-01-20",
			},
			wantOK:       true,
			wantAmount:   42.50,
			wantCurrency: "EUR",
			wantType:     "expense",
			wantDate:     time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "negative amount stored absolute",
			tx: domain.Transaction{
				Type: "refund", Amount: amount(-12), Currency: "USD", Date: "2026-01-20",
			},
			wantOK:       true,
			wantAmount:   12,
			wantCurrency: "USD",
			wantType:     "income",
			wantDate:     time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "missing currency defaults to USD",
			tx: domain.Transaction{
				Type: "charge", Amount: amount(3), Date: "2026-01-20",
			},
			wantOK:       true,
			wantAmount:   3,
			wantCurrency: "USD",
			wantType:     "expense",
			wantDate:     time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "loose date falls back to now",
			tx: domain.Transaction{
				Type: "payment", Amount: amount(3), Currency: "USD", Date: "Jan 20, 2026",
			},
			wantOK:       true,
			wantAmount:   3,
			wantCurrency: "USD",
			wantType:     "expense",
			wantDate:     now,
		},
		{
			name:   "unknown type skipped",
			tx:     domain.Transaction{Type: "balance", Amount: amount(100), Currency: "USD"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := NormalizeTransaction(tt.tx, now)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			if row.Amount != tt.wantAmount {
				t.Errorf("expected amount %v, got %v", tt.wantAmount, row.Amount)
			}
			if row.Currency != tt.wantCurrency {
				t.Errorf("expected currency %q, got %q", tt.wantCurrency, row.Currency)
			}
			if row.Type != tt.wantType {
				t.Errorf("expected type %q, got %q", tt.wantType, row.Type)
			}
			if !row.Date.Equal(tt.wantDate) {
				t.Errorf("expected date %v, got %v", tt.wantDate, row.Date)
			}
		})
	}
}

func TestNormalizeTransactionRawText(t *testing.T) {
	row, ok := NormalizeTransaction(domain.Transaction{
		Type:          "expense",
		Amount:        amount(1),
		Currency:      "USD",
		SourceSubject: "Your receipt",
		Body:          "Charged $1",
	}, time.Now())
	if !ok {
		t.Fatal("expected normalization to succeed")
	}
	if !strings.HasPrefix(row.RawText, "Subject: Your receipt\n") {
		t.Errorf("expected raw text to start with subject line, got %q", row.RawText)
	}
	if !strings.Contains(row.RawText, "Charged $1") {
		t.Errorf("expected raw text to contain body, got %q", row.RawText)
	}
}

func TestReminderIDDeterministic(t *testing.T) {
	r := domain.Reminder{EmailID: "msg-1", Task: "Submit report", Deadline: "2026-03-01", Sender: "boss@corp.com"}

	if ReminderID(r) != ReminderID(r) {
		t.Error("expected stable reminder id")
	}

	other := r
	other.Task = "Review report"
	if ReminderID(other) == ReminderID(r) {
		t.Error("expected different id for different task")
	}
}

func TestNormalizeReminder(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	t.Run("iso deadline parsed", func(t *testing.T) {
		row := NormalizeReminder(domain.Reminder{Task: "x", Deadline: "2026-03-01"}, now)
		if row.Deadline == nil {
			t.Fatal("expected parsed deadline")
		}
		want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		if !row.Deadline.Equal(want) {
			t.Errorf("expected %v, got %v", want, row.Deadline)
		}
	})

	t.Run("loose deadline folded into context", func(t *testing.T) {
		row := NormalizeReminder(domain.Reminder{
			Task: "x", Deadline: "next Friday", Context: "from standup",
		}, now)
		if row.Deadline != nil {
			t.Errorf("expected NULL deadline, got %v", row.Deadline)
		}
		if row.Context != "from standup (Deadline: next Friday)" {
			t.Errorf("unexpected context %q", row.Context)
		}
	})

	t.Run("context already mentioning deadline untouched", func(t *testing.T) {
		row := NormalizeReminder(domain.Reminder{
			Task: "x", Deadline: "next Friday", Context: "due next Friday",
		}, now)
		if row.Context != "due next Friday" {
			t.Errorf("unexpected context %q", row.Context)
		}
	})

	t.Run("empty context stays empty", func(t *testing.T) {
		row := NormalizeReminder(domain.Reminder{Task: "x", Deadline: "soon"}, now)
		if row.Context != "" {
			t.Errorf("expected empty context, got %q", row.Context)
		}
	})

	t.Run("priority normalized", func(t *testing.T) {
		row := NormalizeReminder(domain.Reminder{Task: "x", Priority: "URGENT"}, now)
		if row.Priority != domain.PriorityMedium {
			t.Errorf("expected medium fallback, got %q", row.Priority)
		}

		row = NormalizeReminder(domain.Reminder{Task: "x", Priority: "High"}, now)
		if row.Priority != domain.PriorityHigh {
			t.Errorf("expected high, got %q", row.Priority)
		}
	})

	t.Run("extracted_at defaulted", func(t *testing.T) {
		row := NormalizeReminder(domain.Reminder{Task: "x"}, now)
		if row.ExtractedAt != now.Format(time.RFC3339) {
			t.Errorf("unexpected extracted_at %q", row.ExtractedAt)
		}
	})
}
