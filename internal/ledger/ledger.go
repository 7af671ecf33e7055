// Package ledger owns the canonical in-memory transaction state for a
// session: the transaction sequence, the category list, and the budget
// map, together with the identity they belong to.
//
// Mutations are applied synchronously and atomically from the caller's
// point of view: the post-mutation state is observable as soon as the
// call returns. Persistence is scheduled through an injected Persister
// and never awaited.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"tally/internal/model"
)

// Persister schedules a durable write of a transaction tagged with its
// owner. Implementations must return without blocking on I/O.
type Persister interface {
	Persist(txn model.Transaction, ownerID string)
}

// Ledger holds a single session's state. A ledger belongs to at most
// one identity at a time; switching identities fully discards the
// previous content.
type Ledger struct {
	mu        sync.Mutex
	persister Persister

	userID       string
	transactions []model.Transaction
	categories   []string
	budgets      map[string]float64

	// Hydration bookkeeping. Mutations dispatched while a remote load is
	// in flight are buffered and replayed on top of the loaded snapshot
	// instead of being silently overwritten by it.
	hydrating      bool
	interimAdds    []model.Transaction
	interimDeletes map[string]bool

	subs    map[int]func()
	nextSub int
}

// New creates an unbound ledger with default content.
func New(persister Persister) *Ledger {
	return &Ledger{
		persister:  persister,
		categories: model.DefaultCategories(),
		budgets:    make(map[string]float64),
		subs:       make(map[int]func()),
	}
}

// Add assigns a fresh id and the current timestamp to the input,
// prepends the record (newest first), schedules its persistence, and
// returns the id. The store performs no validation; the form boundary
// owns that.
func (l *Ledger) Add(input model.NewTransaction) string {
	l.mu.Lock()

	txn := model.Transaction{
		ID:          uuid.NewString(),
		Description: input.Description,
		Amount:      input.Amount,
		Category:    input.Category,
		Date:        time.Now(),
	}

	l.transactions = append([]model.Transaction{txn}, l.transactions...)
	if l.hydrating {
		l.interimAdds = append([]model.Transaction{txn}, l.interimAdds...)
	}

	persister := l.persister
	ownerID := l.userID
	l.mu.Unlock()

	if persister != nil && ownerID != "" {
		persister.Persist(txn, ownerID)
	}

	l.notify()
	return txn.ID
}

// Delete removes the record with the given id. A missing id is not an
// error: delete is idempotent.
func (l *Ledger) Delete(id string) {
	l.mu.Lock()
	for i, txn := range l.transactions {
		if txn.ID == id {
			l.transactions = append(l.transactions[:i], l.transactions[i+1:]...)
			break
		}
	}
	if l.hydrating {
		l.interimDeletes[id] = true
		for i, txn := range l.interimAdds {
			if txn.ID == id {
				l.interimAdds = append(l.interimAdds[:i], l.interimAdds[i+1:]...)
				break
			}
		}
	}
	l.mu.Unlock()

	l.notify()
}

// AddCategory appends a category. Duplicates are not rejected; a caller
// adding an existing name produces a duplicate entry.
func (l *Ledger) AddCategory(name string) {
	l.mu.Lock()
	l.categories = append(l.categories, name)
	l.mu.Unlock()

	l.notify()
}

// SetBudget upserts the budget ceiling for a category. Any value is
// accepted, including zero and negative ceilings.
func (l *Ledger) SetBudget(category string, amount float64) {
	l.mu.Lock()
	l.budgets[category] = amount
	l.mu.Unlock()

	l.notify()
}

// Load replaces the entire transaction sequence wholesale. Categories
// and budgets are untouched.
func (l *Ledger) Load(records []model.Transaction) {
	l.mu.Lock()
	l.transactions = append([]model.Transaction(nil), records...)
	l.mu.Unlock()

	l.notify()
}

// BeginHydration binds the ledger to an identity and marks a remote
// load as in flight. Mutations from here until CompleteHydration are
// buffered for replay.
func (l *Ledger) BeginHydration(userID string) {
	l.mu.Lock()
	l.userID = userID
	l.hydrating = true
	l.interimAdds = nil
	l.interimDeletes = make(map[string]bool)
	l.mu.Unlock()

	l.notify()
}

// CompleteHydration installs the loaded snapshot for the identity and
// replays the buffered interim mutations on top of it: interim adds
// stay newest-first ahead of the loaded records, interim deletes are
// honored. If the identity changed while the load was in flight the
// stale snapshot is discarded.
func (l *Ledger) CompleteHydration(userID string, records []model.Transaction) {
	l.mu.Lock()
	if l.userID != userID {
		l.mu.Unlock()
		return
	}

	merged := append([]model.Transaction(nil), l.interimAdds...)
	for _, txn := range records {
		if l.interimDeletes[txn.ID] {
			continue
		}
		merged = append(merged, txn)
	}

	l.transactions = merged
	l.hydrating = false
	l.interimAdds = nil
	l.interimDeletes = nil
	l.mu.Unlock()

	l.notify()
}

// Reset synchronously restores all state to initial defaults and
// unbinds the identity. No partial reset: all four fields change
// together.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.userID = ""
	l.transactions = nil
	l.categories = model.DefaultCategories()
	l.budgets = make(map[string]float64)
	l.hydrating = false
	l.interimAdds = nil
	l.interimDeletes = nil
	l.mu.Unlock()

	l.notify()
}

// Transactions returns a copy of the transaction sequence, newest first.
func (l *Ledger) Transactions() []model.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Transaction(nil), l.transactions...)
}

// Categories returns a copy of the ordered category list.
func (l *Ledger) Categories() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.categories...)
}

// Budgets returns a copy of the budget map.
func (l *Ledger) Budgets() map[string]float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	budgets := make(map[string]float64, len(l.budgets))
	for k, v := range l.budgets {
		budgets[k] = v
	}
	return budgets
}

// UserID returns the bound identity, or "" when unbound.
func (l *Ledger) UserID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.userID
}

// Bound reports whether an identity is attached to the ledger.
func (l *Ledger) Bound() bool {
	return l.UserID() != ""
}

// Subscribe registers a callback invoked after every state change. The
// returned function cancels the subscription.
func (l *Ledger) Subscribe(fn func()) func() {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

func (l *Ledger) notify() {
	l.mu.Lock()
	fns := make([]func(), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
