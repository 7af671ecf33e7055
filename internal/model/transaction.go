// Package model defines the core domain types shared across the application.
package model

import "time"

// TransactionType classifies a transaction for aggregation and filtering.
type TransactionType string

const (
	// TypeIncome marks money coming in (non-negative amounts).
	TypeIncome TransactionType = "income"
	// TypeExpense marks money going out (negative amounts).
	TypeExpense TransactionType = "expense"
)

// Transaction is a single ledger entry. Records are immutable once
// created: they are added and deleted, never updated in place.
type Transaction struct {
	Date        time.Time
	ID          string
	Description string
	Category    string
	Amount      float64 // Signed: positive = income, negative = expense
}

// Type derives the transaction classification from the amount sign.
// The sign is the single source of truth; no independent type field is
// stored, so the two can never disagree.
func (t Transaction) Type() TransactionType {
	if t.Amount < 0 {
		return TypeExpense
	}
	return TypeIncome
}

// NewTransaction is the input shape for creating a transaction. The
// ledger assigns the id and timestamp. No validation happens here or in
// the ledger; that is the responsibility of the form boundary.
type NewTransaction struct {
	Description string
	Category    string
	Amount      float64
}
