// Package remote bridges the in-memory ledger to durable storage. It
// defines the opaque document store contract, provides SQLite and
// in-memory implementations, and hosts the sync adapter that translates
// ledger records to and from the persisted wire shape.
package remote

import "context"

// Document is a loosely-typed key/value record as understood by the
// document store. Shape translation in both directions is the adapter's
// responsibility, not the store's.
type Document map[string]any

// Stored is a document read back from the store, together with the
// store-assigned identifier.
type Stored struct {
	Fields Document
	ID     string
}

// Store is the contract for the remote persistence service: an opaque
// document store with insert and query-by-field operations.
type Store interface {
	// Insert stores a document in the named collection and returns the
	// store-assigned document id.
	Insert(ctx context.Context, collection string, doc Document) (string, error)

	// QueryByField returns all documents in the collection whose field
	// equals the given value, in insertion order.
	QueryByField(ctx context.Context, collection, field string, value any) ([]Stored, error)

	// Close releases any resources held by the store.
	Close() error
}

// Collection names used by the application.
const (
	TransactionsCollection = "transactions"
	UsersCollection        = "users"
)
