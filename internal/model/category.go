package model

// ReservedIncomeCategory is the category used for income transactions.
// Budget and spending views skip it.
const ReservedIncomeCategory = "Income"

// DefaultCategories seeds every fresh ledger. The list is ordered and
// never becomes empty: no operation removes a category.
func DefaultCategories() []string {
	return []string{"Food", "Transport", "Entertainment", "Bills", ReservedIncomeCategory}
}
