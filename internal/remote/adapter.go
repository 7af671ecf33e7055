package remote

import (
	"context"
	"fmt"
	"time"

	"tally/internal/common"
	"tally/internal/model"
)

// Persisted record field names, the wire contract with the remote store.
const (
	fieldDescription = "description"
	fieldAmount      = "amount"
	fieldDate        = "date"
	fieldCategory    = "category"
	fieldType        = "type"
	fieldUserID      = "userId"
)

// Adapter translates ledger records into persistence calls and back.
// Writes go through an outbox so callers never wait on the store;
// reads map remote documents into local transactions, with the
// store-assigned document id superseding any locally-generated id.
type Adapter struct {
	store  Store
	outbox *Outbox
}

// NewAdapter creates an adapter over the given document store.
func NewAdapter(store Store) *Adapter {
	return &Adapter{
		store:  store,
		outbox: NewOutbox(store),
	}
}

// Outbox exposes the write queue for lifecycle control and status.
func (a *Adapter) Outbox() *Outbox {
	return a.outbox
}

// Persist schedules a write of the record tagged with its owner. It
// returns before any I/O happens; a failed write is retried by the
// outbox and, if it fails permanently, logged and remembered but never
// surfaced to the caller or rolled back from the ledger.
func (a *Adapter) Persist(txn model.Transaction, ownerID string) {
	a.outbox.Enqueue(txn, ownerID)
}

// LoadForOwner queries the remote store for all records tagged with the
// owner id and maps them into the local transaction shape. Documents
// that cannot be decoded are skipped with a warning rather than failing
// the whole hydration.
func (a *Adapter) LoadForOwner(ctx context.Context, ownerID string) ([]model.Transaction, error) {
	docs, err := a.store.QueryByField(ctx, TransactionsCollection, fieldUserID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for owner: %w", err)
	}

	transactions := make([]model.Transaction, 0, len(docs))
	for _, doc := range docs {
		txn, err := decodeTransaction(doc)
		if err != nil {
			common.LogError(err, "skipping malformed remote document", common.Fields{
				"document_id": doc.ID,
			})
			continue
		}
		transactions = append(transactions, txn)
	}

	return transactions, nil
}

// encodeTransaction produces the persisted record shape. The type label
// is derived from the amount sign at write time.
func encodeTransaction(txn model.Transaction, ownerID string) Document {
	return Document{
		fieldDescription: txn.Description,
		fieldAmount:      txn.Amount,
		fieldDate:        txn.Date.Format(time.RFC3339),
		fieldCategory:    txn.Category,
		fieldType:        string(txn.Type()),
		fieldUserID:      ownerID,
	}
}

// decodeTransaction maps a stored document back into a transaction.
// The document id becomes the transaction id. The stored type label is
// ignored on read-back: the amount sign is the canonical discriminator.
func decodeTransaction(doc Stored) (model.Transaction, error) {
	description, ok := doc.Fields[fieldDescription].(string)
	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: missing description", common.ErrInvalidRecord)
	}

	amount, ok := doc.Fields[fieldAmount].(float64)
	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: missing amount", common.ErrInvalidRecord)
	}

	category, _ := doc.Fields[fieldCategory].(string)

	dateStr, ok := doc.Fields[fieldDate].(string)
	if !ok {
		return model.Transaction{}, fmt.Errorf("%w: missing date", common.ErrInvalidRecord)
	}
	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: bad date %q: %v", common.ErrInvalidRecord, dateStr, err)
	}

	return model.Transaction{
		ID:          doc.ID,
		Description: description,
		Amount:      amount,
		Date:        date,
		Category:    category,
	}, nil
}
