package analytics

import (
	"sort"
	"strings"

	"automail_server/core/domain"
)

// CalculateFinancialSummary aggregates transactions by currency and
// reports the dominant currency's totals, with the rest broken out in
// OtherCurrencies. Transactions without an amount or currency are
// ignored; unknown transaction types contribute to neither side.
func CalculateFinancialSummary(transactions []domain.Transaction) *domain.FinancialSummary {
	summary := &domain.FinancialSummary{
		Currency:   "USD",
		Period:     "Recent transactions",
		ByCategory: map[string]domain.CategoryTotals{},
	}

	type currencyBucket struct {
		income     float64
		expenses   float64
		byCategory map[string]domain.CategoryTotals
		recurring  domain.RecurringTotals
	}
	byCurrency := make(map[string]*currencyBucket)

	for _, tx := range transactions {
		if tx.Amount == nil || tx.Currency == "" {
			continue
		}
		amount := *tx.Amount
		category := tx.Category
		if category == "" {
			category = "uncategorized"
		}

		bucket, ok := byCurrency[tx.Currency]
		if !ok {
			bucket = &currencyBucket{byCategory: map[string]domain.CategoryTotals{}}
			byCurrency[tx.Currency] = bucket
		}
		totals := bucket.byCategory[category]

		switch tx.Kind() {
		case domain.KindIncome:
			bucket.income += amount
			totals.Income += amount
			if tx.Recurring {
				bucket.recurring.Income += amount
			}
		case domain.KindExpense:
			bucket.expenses += amount
			totals.Expenses += amount
			if tx.Recurring {
				bucket.recurring.Expenses += amount
			}
		default:
			continue
		}
		bucket.byCategory[category] = totals
	}

	if len(byCurrency) == 0 {
		return summary
	}

	// Primary currency is the one moving the most money. Ties break
	// alphabetically so the result is deterministic.
	var primary string
	var primaryVolume float64
	for currency, bucket := range byCurrency {
		volume := bucket.income + bucket.expenses
		if primary == "" || volume > primaryVolume ||
			(volume == primaryVolume && currency < primary) {
			primary = currency
			primaryVolume = volume
		}
	}

	main := byCurrency[primary]
	summary.Currency = primary
	summary.TotalIncome = main.income
	summary.TotalExpenses = main.expenses
	summary.NetCashFlow = main.income - main.expenses
	summary.ByCategory = main.byCategory
	summary.Recurring = main.recurring

	if len(byCurrency) > 1 {
		summary.OtherCurrencies = make(map[string]domain.CurrencyTotals, len(byCurrency)-1)
		for currency, bucket := range byCurrency {
			if currency == primary {
				continue
			}
			summary.OtherCurrencies[currency] = domain.CurrencyTotals{
				TotalIncome:   bucket.income,
				TotalExpenses: bucket.expenses,
				NetCashFlow:   bucket.income - bucket.expenses,
			}
		}
	}
	return summary
}

// SortMeetings orders meetings ascending by date, undated last.
func SortMeetings(meetings []domain.Meeting) {
	sort.SliceStable(meetings, func(i, j int) bool {
		return strings.Compare(meetings[i].SortDate(), meetings[j].SortDate()) < 0
	})
}

// SortTodos orders todos by priority rank then deadline, undated last
// within each priority.
func SortTodos(todos []domain.Reminder) {
	sort.SliceStable(todos, func(i, j int) bool {
		ri, rj := domain.PriorityRank(todos[i].Priority), domain.PriorityRank(todos[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return strings.Compare(todos[i].SortDeadline(), todos[j].SortDeadline()) < 0
	})
}
