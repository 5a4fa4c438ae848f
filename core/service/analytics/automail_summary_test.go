package analytics

import (
	"testing"

	"automail_server/core/domain"
)

func amount(v float64) *float64 { return &v }

func TestCalculateFinancialSummaryEmpty(t *testing.T) {
	summary := CalculateFinancialSummary(nil)
	if summary.Currency != "USD" {
		t.Errorf("expected default currency USD, got %q", summary.Currency)
	}
	if summary.Period != "Recent transactions" {
		t.Errorf("unexpected period %q", summary.Period)
	}
	if summary.TotalIncome != 0 || summary.TotalExpenses != 0 {
		t.Errorf("expected zero totals, got %+v", summary)
	}
}

func TestCalculateFinancialSummarySkipsIncomplete(t *testing.T) {
	transactions := []domain.Transaction{
		{Type: "expense", Currency: "USD"},                       // no amount
		{Type: "expense", Amount: amount(5)},                     // no currency
		{Type: "balance", Amount: amount(100), Currency: "USD"},  // unknown type
		{Type: "expense", Amount: amount(10), Currency: "USD"},
	}

	summary := CalculateFinancialSummary(transactions)
	if summary.TotalExpenses != 10 {
		t.Errorf("expected expenses 10, got %v", summary.TotalExpenses)
	}
	if summary.TotalIncome != 0 {
		t.Errorf("expected income 0, got %v", summary.TotalIncome)
	}
}

func TestCalculateFinancialSummaryTypeBuckets(t *testing.T) {
	transactions := []domain.Transaction{
		{Type: "income", Amount: amount(100), Currency: "USD"},
		{Type: "refund", Amount: amount(20), Currency: "USD"},
		{Type: "credit", Amount: amount(5), Currency: "USD"},
		{Type: "expense", Amount: amount(30), Currency: "USD"},
		{Type: "bill", Amount: amount(40), Currency: "USD"},
		{Type: "Payment", Amount: amount(10), Currency: "USD"},
	}

	summary := CalculateFinancialSummary(transactions)
	if summary.TotalIncome != 125 {
		t.Errorf("expected income 125, got %v", summary.TotalIncome)
	}
	if summary.TotalExpenses != 80 {
		t.Errorf("expected expenses 80, got %v", summary.TotalExpenses)
	}
	if summary.NetCashFlow != 45 {
		t.Errorf("expected net 45, got %v", summary.NetCashFlow)
	}
}

func TestCalculateFinancialSummaryCategories(t *testing.T) {
	transactions := []domain.Transaction{
		{Type: "expense", Amount: amount(15), Currency: "USD", Category: "subscription", Recurring: true},
		{Type: "expense", Amount: amount(25), Currency: "USD", Category: "subscription"},
		{Type: "income", Amount: amount(1000), Currency: "USD", Category: "salary", Recurring: true},
		{Type: "expense", Amount: amount(7), Currency: "USD"},
	}

	summary := CalculateFinancialSummary(transactions)

	sub := summary.ByCategory["subscription"]
	if sub.Expenses != 40 {
		t.Errorf("expected subscription expenses 40, got %v", sub.Expenses)
	}
	if summary.ByCategory["salary"].Income != 1000 {
		t.Errorf("expected salary income 1000, got %v", summary.ByCategory["salary"].Income)
	}
	if summary.ByCategory["uncategorized"].Expenses != 7 {
		t.Errorf("expected uncategorized expenses 7, got %v", summary.ByCategory["uncategorized"].Expenses)
	}
	if summary.Recurring.Income != 1000 || summary.Recurring.Expenses != 15 {
		t.Errorf("unexpected recurring totals: %+v", summary.Recurring)
	}
}

func TestCalculateFinancialSummaryMultiCurrency(t *testing.T) {
	transactions := []domain.Transaction{
		{Type: "income", Amount: amount(500), Currency: "EUR"},
		{Type: "expense", Amount: amount(100), Currency: "EUR"},
		{Type: "expense", Amount: amount(50), Currency: "USD"},
	}

	summary := CalculateFinancialSummary(transactions)
	if summary.Currency != "EUR" {
		t.Fatalf("expected primary currency EUR, got %q", summary.Currency)
	}
	if summary.TotalIncome != 500 || summary.TotalExpenses != 100 {
		t.Errorf("unexpected primary totals: %+v", summary)
	}

	other, ok := summary.OtherCurrencies["USD"]
	if !ok {
		t.Fatal("expected USD in other currencies")
	}
	if other.TotalExpenses != 50 || other.NetCashFlow != -50 {
		t.Errorf("unexpected USD totals: %+v", other)
	}
}

func TestCalculateFinancialSummaryCurrencyTieBreak(t *testing.T) {
	transactions := []domain.Transaction{
		{Type: "expense", Amount: amount(100), Currency: "USD"},
		{Type: "expense", Amount: amount(100), Currency: "EUR"},
	}

	summary := CalculateFinancialSummary(transactions)
	if summary.Currency != "EUR" {
		t.Errorf("expected alphabetical tie-break to EUR, got %q", summary.Currency)
	}
}

func TestSortMeetings(t *testing.T) {
	meetings := []domain.Meeting{
		{Title: "undated"},
		{Title: "later", Date: "2026-06-01"},
		{Title: "sooner", Date: "2026-01-15"},
	}

	SortMeetings(meetings)

	expected := []string{"sooner", "later", "undated"}
	for i, want := range expected {
		if meetings[i].Title != want {
			t.Errorf("position %d: expected %q, got %q", i, want, meetings[i].Title)
		}
	}
}

func TestSortTodos(t *testing.T) {
	todos := []domain.Reminder{
		{Task: "low dated", Priority: "low", Deadline: "2026-01-01"},
		{Task: "high undated", Priority: "high"},
		{Task: "high dated", Priority: "high", Deadline: "2026-02-01"},
		{Task: "medium", Priority: "medium", Deadline: "2026-01-15"},
		{Task: "unknown priority", Priority: "urgent", Deadline: "2026-01-10"},
	}

	SortTodos(todos)

	expected := []string{"high dated", "high undated", "unknown priority", "medium", "low dated"}
	for i, want := range expected {
		if todos[i].Task != want {
			t.Errorf("position %d: expected %q, got %q", i, want, todos[i].Task)
		}
	}
}
