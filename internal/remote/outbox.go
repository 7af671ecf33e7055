package remote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"tally/internal/common"
	"tally/internal/model"
)

// FailedWrite records a persistence write that exhausted its retries.
// The local ledger keeps the record regardless; the divergence from
// durable storage is visible here and in the logs only.
type FailedWrite struct {
	Enqueued    time.Time
	Err         error
	OwnerID     string
	Transaction model.Transaction
}

type pendingWrite struct {
	enqueued time.Time
	ownerID  string
	txn      model.Transaction
}

// Outbox queues persistence writes and drains them in the background
// with retry and backoff. Enqueue never blocks on I/O, which keeps the
// ledger's add path synchronous and fast.
type Outbox struct {
	store Store
	retry common.RetryOptions

	mu     sync.Mutex
	queue  []pendingWrite
	failed []FailedWrite

	wake    chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewOutbox creates an outbox writing to the given store.
func NewOutbox(store Store) *Outbox {
	return &Outbox{
		store: store,
		retry: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
		},
		wake: make(chan struct{}, 1),
	}
}

// Enqueue adds a write to the queue and signals the worker.
func (o *Outbox) Enqueue(txn model.Transaction, ownerID string) {
	o.mu.Lock()
	o.queue = append(o.queue, pendingWrite{
		txn:      txn,
		ownerID:  ownerID,
		enqueued: time.Now(),
	})
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// Start launches the background worker. Returns an error if already
// running.
func (o *Outbox) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return fmt.Errorf("outbox is already running")
	}
	o.running = true
	o.stopCh = make(chan struct{})
	o.doneCh = make(chan struct{})
	o.mu.Unlock()

	go o.runLoop(ctx)

	slog.Debug("outbox started")
	return nil
}

// Stop drains the queue and stops the worker, waiting for completion or
// context cancellation.
func (o *Outbox) Stop(ctx context.Context) error {
	o.mu.Lock()
	if !o.running {
		o.mu.Unlock()
		return nil
	}
	o.mu.Unlock()

	close(o.stopCh)

	select {
	case <-o.doneCh:
	case <-ctx.Done():
		slog.Warn("outbox stop timed out")
		return ctx.Err()
	}

	o.mu.Lock()
	o.running = false
	o.mu.Unlock()

	return nil
}

// Flush synchronously drains the queue. Commands that exit immediately
// after a mutation use this instead of the background worker.
func (o *Outbox) Flush(ctx context.Context) {
	o.drain(ctx)
}

// Pending reports how many writes await delivery.
func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

// Failed returns the writes that failed permanently.
func (o *Outbox) Failed() []FailedWrite {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]FailedWrite(nil), o.failed...)
}

func (o *Outbox) runLoop(ctx context.Context) {
	defer close(o.doneCh)

	for {
		select {
		case <-o.stopCh:
			// Final drain so queued writes survive a clean shutdown.
			o.drain(ctx)
			return
		case <-ctx.Done():
			return
		case <-o.wake:
			o.drain(ctx)
		}
	}
}

func (o *Outbox) drain(ctx context.Context) {
	for {
		write, ok := o.next()
		if !ok {
			return
		}
		o.deliver(ctx, write)
	}
}

func (o *Outbox) next() (pendingWrite, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.queue) == 0 {
		return pendingWrite{}, false
	}
	write := o.queue[0]
	o.queue = o.queue[1:]
	return write, true
}

func (o *Outbox) deliver(ctx context.Context, write pendingWrite) {
	err := common.WithRetry(ctx, func() error {
		_, insertErr := o.store.Insert(ctx, TransactionsCollection, encodeTransaction(write.txn, write.ownerID))
		return insertErr
	}, o.retry)

	if err == nil {
		slog.Debug("persisted transaction",
			"transaction_id", write.txn.ID,
			"owner_id", write.ownerID)
		return
	}

	o.mu.Lock()
	o.failed = append(o.failed, FailedWrite{
		Transaction: write.txn,
		OwnerID:     write.ownerID,
		Enqueued:    write.enqueued,
		Err:         err,
	})
	o.mu.Unlock()

	// Not surfaced to the caller: the local ledger keeps the record and
	// may now diverge from durable storage.
	common.LogError(err, "persistence write failed permanently", common.Fields{
		"transaction_id": write.txn.ID,
		"owner_id":       write.ownerID,
	})
}
