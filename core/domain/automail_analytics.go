package domain

// CategoryTotals holds income and expense sums for one category.
type CategoryTotals struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// RecurringTotals holds recurring income and expense sums.
type RecurringTotals struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

// CurrencyTotals summarizes a non-primary currency.
type CurrencyTotals struct {
	TotalIncome   float64 `json:"total_income"`
	TotalExpenses float64 `json:"total_expenses"`
	NetCashFlow   float64 `json:"net_cash_flow"`
}

// FinancialSummary aggregates transactions in the dominant currency,
// with smaller currencies broken out separately.
type FinancialSummary struct {
	TotalIncome     float64                   `json:"total_income"`
	TotalExpenses   float64                   `json:"total_expenses"`
	NetCashFlow     float64                   `json:"net_cash_flow"`
	Currency        string                    `json:"currency"`
	Period          string                    `json:"period"`
	ByCategory      map[string]CategoryTotals `json:"by_category"`
	Recurring       RecurringTotals           `json:"recurring"`
	OtherCurrencies map[string]CurrencyTotals `json:"other_currencies,omitempty"`
}

// NeedsReplyItem identifies an email the reply policy judged as
// awaiting a response.
type NeedsReplyItem struct {
	EmailID  string `json:"email_id"`
	ThreadID string `json:"thread_id"`
	Subject  string `json:"subject"`
	Sender   string `json:"sender"`
	Date     string `json:"date"`
	Snippet  string `json:"snippet"`
}

// Finances pairs raw transactions with their computed summary.
type Finances struct {
	Transactions []Transaction     `json:"transactions"`
	Summary      *FinancialSummary `json:"summary"`
}

// Analytics is the aggregate view over a window of recent emails.
type Analytics struct {
	Finances   Finances         `json:"finances"`
	Meetings   []Meeting        `json:"meetings"`
	Todos      []Reminder       `json:"todos"`
	NeedsReply []NeedsReplyItem `json:"needs_reply"`
}
