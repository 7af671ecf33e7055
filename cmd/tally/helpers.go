package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/viper"

	"tally/internal/auth"
	"tally/internal/ledger"
	"tally/internal/remote"
	"tally/internal/session"
)

// app wires the store, sync adapter, identity provider, ledger, and
// session binding together for a single command invocation.
type app struct {
	store    remote.Store
	adapter  *remote.Adapter
	provider *auth.LocalProvider
	ledger   *ledger.Ledger
	binding  *session.Binding
}

// initApp builds the application from config and binds the ledger to
// the current identity, if any.
func initApp(ctx context.Context) (*app, error) {
	store, err := remote.NewSQLiteStore(expandPath(viper.GetString("database.path")))
	if err != nil {
		return nil, err
	}

	provider, err := auth.NewLocalProvider(store, auth.Config{
		JWTSecret:   viper.GetString("auth.jwt_secret"),
		SessionFile: expandPath(viper.GetString("auth.session_file")),
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	adapter := remote.NewAdapter(store)
	l := ledger.New(adapter)
	binding := session.NewBinding(l, adapter)
	binding.Watch(ctx, provider)

	return &app{
		store:    store,
		adapter:  adapter,
		provider: provider,
		ledger:   l,
		binding:  binding,
	}, nil
}

// close drains pending persistence writes and releases the store. The
// process is short-lived, so queued writes are flushed here instead of
// by a long-running worker.
func (a *app) close(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	a.adapter.Outbox().Flush(flushCtx)

	a.binding.Close()
	_ = a.store.Close()
}

// expandPath expands environment variables and a leading tilde.
func expandPath(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return os.ExpandEnv(path)
}
