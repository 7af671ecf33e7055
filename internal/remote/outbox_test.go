package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/common"
	"tally/internal/model"
)

func fastRetry() common.RetryOptions {
	return common.RetryOptions{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestOutbox_FlushDelivers(t *testing.T) {
	store := NewMemoryStore()
	outbox := NewOutbox(store)

	outbox.Enqueue(model.Transaction{ID: "t1", Description: "A", Amount: -1, Date: time.Now()}, "u1")
	outbox.Enqueue(model.Transaction{ID: "t2", Description: "B", Amount: -2, Date: time.Now()}, "u1")
	assert.Equal(t, 2, outbox.Pending())

	outbox.Flush(context.Background())

	assert.Equal(t, 0, outbox.Pending())
	assert.Equal(t, 2, store.Len(TransactionsCollection))
	assert.Empty(t, outbox.Failed())
}

func TestOutbox_WorkerDelivers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	outbox := NewOutbox(store)

	require.NoError(t, outbox.Start(ctx))
	require.Error(t, outbox.Start(ctx), "double start is rejected")

	outbox.Enqueue(model.Transaction{ID: "t1", Description: "A", Amount: -1, Date: time.Now()}, "u1")

	// Stop drains whatever is still queued.
	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, outbox.Stop(stopCtx))

	assert.Equal(t, 1, store.Len(TransactionsCollection))
	assert.Equal(t, 0, outbox.Pending())
}

func TestOutbox_FailureIsSilentButVisible(t *testing.T) {
	store := NewMemoryStore()
	store.InsertErr = assert.AnError

	outbox := NewOutbox(store)
	outbox.retry = fastRetry()

	txn := model.Transaction{ID: "t1", Description: "Doomed", Amount: -1, Date: time.Now()}
	outbox.Enqueue(txn, "u1")

	// Flush returns normally: the failure is not surfaced to the caller.
	outbox.Flush(context.Background())

	failed := outbox.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "t1", failed[0].Transaction.ID)
	assert.Equal(t, "u1", failed[0].OwnerID)
	assert.ErrorIs(t, failed[0].Err, common.ErrMaxRetries)
	assert.Equal(t, 0, store.Len(TransactionsCollection))
}

func TestOutbox_RetriesTransientFailure(t *testing.T) {
	store := NewMemoryStore()
	store.InsertErr = assert.AnError

	outbox := NewOutbox(store)
	outbox.retry = common.RetryOptions{MaxAttempts: 5, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	outbox.Enqueue(model.Transaction{ID: "t1", Description: "A", Amount: -1, Date: time.Now()}, "u1")

	// Clear the fault before the retries run out.
	go func() {
		time.Sleep(2 * time.Millisecond)
		store.mu.Lock()
		store.InsertErr = nil
		store.mu.Unlock()
	}()

	outbox.Flush(context.Background())

	assert.Empty(t, outbox.Failed())
	assert.Equal(t, 1, store.Len(TransactionsCollection))
}

func TestOutbox_StopWithoutStart(t *testing.T) {
	outbox := NewOutbox(NewMemoryStore())
	assert.NoError(t, outbox.Stop(context.Background()))
}
