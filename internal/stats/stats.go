// Package stats contains the pure aggregation and filtering functions
// that power the dashboard, budget, and chart views. Every function
// operates on a caller-supplied transaction slice and keeps no state.
//
// Classification is always by amount sign (see model.Transaction.Type),
// never by a stored label, so income/expense splits cannot disagree
// with the amounts they summarize.
package stats

import (
	"math"
	"strings"

	"tally/internal/model"
)

// DefaultCeiling is the budget applied to a category with no explicit
// budget entry. An absent entry is not zero.
const DefaultCeiling = 1000

// FilterAll is the sentinel value meaning "no restriction" for the
// category and type filters.
const FilterAll = "all"

// TotalIncome sums all income amounts in the list.
func TotalIncome(list []model.Transaction) float64 {
	var sum float64
	for _, t := range list {
		if t.Amount > 0 {
			sum += t.Amount
		}
	}
	return sum
}

// TotalExpense sums the absolute value of all expense amounts.
// TotalIncome(list) - TotalExpense(list) always equals the arithmetic
// sum of every amount in the list.
func TotalExpense(list []model.Transaction) float64 {
	var sum float64
	for _, t := range list {
		if t.Amount < 0 {
			sum += math.Abs(t.Amount)
		}
	}
	return sum
}

// SpendingByCategory sums the absolute amounts of expenses in the given
// category.
func SpendingByCategory(list []model.Transaction, category string) float64 {
	var sum float64
	for _, t := range list {
		if t.Category == category && t.Amount < 0 {
			sum += math.Abs(t.Amount)
		}
	}
	return sum
}

// Filter restricts a transaction list. Zero values and the FilterAll
// sentinel are no-ops; the conditions compose with logical AND.
type Filter struct {
	Search   string
	Category string
	Type     string
}

// Apply returns the transactions matching the filter, preserving input
// order. The result is always a fresh slice.
func Apply(list []model.Transaction, f Filter) []model.Transaction {
	result := make([]model.Transaction, 0, len(list))
	search := strings.ToLower(f.Search)

	for _, t := range list {
		if search != "" && !strings.Contains(strings.ToLower(t.Description), search) {
			continue
		}
		if f.Category != "" && f.Category != FilterAll && t.Category != f.Category {
			continue
		}
		if f.Type != "" && f.Type != FilterAll && string(t.Type()) != f.Type {
			continue
		}
		result = append(result, t)
	}

	return result
}

// BudgetProgress reports spent as a fraction of the ceiling. A zero
// ceiling yields zero progress rather than infinity or NaN.
func BudgetProgress(spent, ceiling float64) float64 {
	if ceiling == 0 {
		return 0
	}
	return spent / ceiling
}

// Ceiling returns the configured budget for a category, falling back to
// DefaultCeiling when no explicit entry exists.
func Ceiling(budgets map[string]float64, category string) float64 {
	if ceiling, ok := budgets[category]; ok {
		return ceiling
	}
	return DefaultCeiling
}

// BudgetStatus is the budget view of a single category.
type BudgetStatus struct {
	Category string
	Spent    float64
	Ceiling  float64
	Progress float64
}

// BudgetOverview computes budget status for every category except the
// reserved income category, in category order.
func BudgetOverview(list []model.Transaction, categories []string, budgets map[string]float64) []BudgetStatus {
	overview := make([]BudgetStatus, 0, len(categories))
	for _, cat := range categories {
		if cat == model.ReservedIncomeCategory {
			continue
		}
		spent := SpendingByCategory(list, cat)
		ceiling := Ceiling(budgets, cat)
		overview = append(overview, BudgetStatus{
			Category: cat,
			Spent:    spent,
			Ceiling:  ceiling,
			Progress: BudgetProgress(spent, ceiling),
		})
	}
	return overview
}

// CategoryTotal is an expense total for one category.
type CategoryTotal struct {
	Category string
	Amount   float64
}

// CategoryBreakdown computes expense totals per category, skipping the
// reserved income category and preserving category order. Categories
// with no spending appear with a zero total.
func CategoryBreakdown(list []model.Transaction, categories []string) []CategoryTotal {
	breakdown := make([]CategoryTotal, 0, len(categories))
	for _, cat := range categories {
		if cat == model.ReservedIncomeCategory {
			continue
		}
		breakdown = append(breakdown, CategoryTotal{
			Category: cat,
			Amount:   SpendingByCategory(list, cat),
		})
	}
	return breakdown
}
