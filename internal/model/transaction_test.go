package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_Type(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		want   TransactionType
	}{
		{name: "positive amount is income", amount: 1250.00, want: TypeIncome},
		{name: "negative amount is expense", amount: -4.50, want: TypeExpense},
		{name: "zero amount classifies as income", amount: 0, want: TypeIncome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := Transaction{Amount: tt.amount}
			assert.Equal(t, tt.want, txn.Type())
		})
	}
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()

	assert.Equal(t, []string{"Food", "Transport", "Entertainment", "Bills", "Income"}, cats)
	assert.Contains(t, cats, ReservedIncomeCategory)

	// Callers get a fresh slice each time; mutating one must not leak.
	cats[0] = "Mutated"
	assert.Equal(t, "Food", DefaultCategories()[0])
}
