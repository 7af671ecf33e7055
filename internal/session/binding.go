// Package session reacts to identity changes by loading or resetting
// the ledger. It is the only component that drives the ledger's
// bound/unbound transitions.
package session

import (
	"context"

	"tally/internal/auth"
	"tally/internal/common"
	"tally/internal/ledger"
	"tally/internal/model"
)

// Loader fetches the persisted transactions for an owner. Satisfied by
// the remote sync adapter.
type Loader interface {
	LoadForOwner(ctx context.Context, ownerID string) ([]model.Transaction, error)
}

// Binding connects an identity provider to a ledger. One active
// subscription per session.
type Binding struct {
	ledger *ledger.Ledger
	loader Loader
	cancel func()
}

// NewBinding creates a binding for the given ledger and loader.
func NewBinding(l *ledger.Ledger, loader Loader) *Binding {
	return &Binding{ledger: l, loader: loader}
}

// Watch subscribes to identity changes: a present identity triggers
// hydration, a lost identity resets the ledger synchronously with no
// remote call. If an identity is already present it is bound
// immediately. Call Close to drop the subscription.
func (b *Binding) Watch(ctx context.Context, provider auth.Provider) {
	if identity, ok := provider.Current(); ok {
		b.hydrate(ctx, identity.UserID)
	}

	b.cancel = provider.Subscribe(func(identity auth.Identity, present bool) {
		if !present {
			b.ledger.Reset()
			return
		}
		b.hydrate(ctx, identity.UserID)
	})
}

// Refresh performs a one-shot synchronous bind for the current
// identity. Short-lived commands use this instead of Watch.
func (b *Binding) Refresh(ctx context.Context, provider auth.Provider) {
	identity, ok := provider.Current()
	if !ok {
		b.ledger.Reset()
		return
	}
	b.hydrate(ctx, identity.UserID)
}

// Close drops the identity subscription, if any.
func (b *Binding) Close() {
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
}

// hydrate runs the load-then-swap sequence. A failed query is logged
// and hydration completes with an empty snapshot; the ledger stays
// bound and usable, it just starts empty.
func (b *Binding) hydrate(ctx context.Context, userID string) {
	b.ledger.BeginHydration(userID)

	records, err := b.loader.LoadForOwner(ctx, userID)
	if err != nil {
		common.LogError(err, "hydration query failed", common.Fields{
			"user_id": userID,
		})
		records = nil
	}

	b.ledger.CompleteHydration(userID, records)
}
