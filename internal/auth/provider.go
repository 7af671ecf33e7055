// Package auth defines the identity provider contract the rest of the
// application depends on, plus a local email/password implementation.
// The ledger and session code only ever see this interface.
package auth

import (
	"context"
	"errors"
)

// Distinguished provider errors. ErrEmailInUse gets its own user-facing
// message at the UI layer; every other sign-in failure maps to a
// generic one.
var (
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Identity is the signed-in user as seen by the rest of the system.
type Identity struct {
	UserID string
	Email  string
}

// Provider exposes the current identity, a change subscription, and the
// asynchronous sign-in/out operations.
type Provider interface {
	// Current returns the present identity, if any.
	Current() (Identity, bool)

	// Subscribe registers a callback invoked on every identity
	// transition: (identity, true) on sign-in, (zero, false) on
	// sign-out. The returned function cancels the subscription.
	Subscribe(fn func(Identity, bool)) func()

	SignUp(ctx context.Context, email, password string) (Identity, error)
	SignIn(ctx context.Context, email, password string) (Identity, error)
	SignOut(ctx context.Context) error
}
