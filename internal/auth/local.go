package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tally/internal/common"
	"tally/internal/remote"
)

// User document fields in the remote store.
const (
	fieldEmail        = "email"
	fieldPasswordHash = "passwordHash"
)

// Config holds local provider settings.
type Config struct {
	// JWTSecret signs session tokens. Required.
	JWTSecret string
	// SessionFile persists the session token between invocations.
	// Empty disables persistence.
	SessionFile string
	// TokenTTL bounds session lifetime. Defaults to 30 days.
	TokenTTL time.Duration
}

// LocalProvider implements Provider with credentials stored in the
// remote document store (bcrypt password hashes) and HS256 JWT session
// tokens persisted to a session file.
type LocalProvider struct {
	store  remote.Store
	secret []byte
	file   string
	ttl    time.Duration

	mu      sync.Mutex
	current *Identity
	subs    map[int]func(Identity, bool)
	nextSub int
}

// NewLocalProvider creates a provider and restores any persisted
// session whose token is still valid.
func NewLocalProvider(store remote.Store, cfg Config) (*LocalProvider, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: jwt secret is required", common.ErrMissingConfig)
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * 24 * time.Hour
	}

	p := &LocalProvider{
		store:  store,
		secret: []byte(cfg.JWTSecret),
		file:   cfg.SessionFile,
		ttl:    cfg.TokenTTL,
		subs:   make(map[int]func(Identity, bool)),
	}

	p.restoreSession()
	return p, nil
}

// Current returns the present identity, if any.
func (p *LocalProvider) Current() (Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return Identity{}, false
	}
	return *p.current, true
}

// Subscribe registers an identity change callback.
func (p *LocalProvider) Subscribe(fn func(Identity, bool)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// SignUp registers a new user. A duplicate email fails with
// ErrEmailInUse, the one registration error the UI distinguishes.
func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (Identity, error) {
	email = normalizeEmail(email)

	existing, err := p.store.QueryByField(ctx, remote.UsersCollection, fieldEmail, email)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to check existing users: %w", err)
	}
	if len(existing) > 0 {
		return Identity{}, ErrEmailInUse
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := p.store.Insert(ctx, remote.UsersCollection, remote.Document{
		fieldEmail:        email,
		fieldPasswordHash: string(hash),
	})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to create user: %w", err)
	}

	identity := Identity{UserID: userID, Email: email}
	if err := p.establishSession(identity); err != nil {
		return Identity{}, err
	}
	return identity, nil
}

// SignIn authenticates an existing user. Every failure other than
// infrastructure errors collapses to ErrInvalidCredentials.
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (Identity, error) {
	email = normalizeEmail(email)

	users, err := p.store.QueryByField(ctx, remote.UsersCollection, fieldEmail, email)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if len(users) == 0 {
		return Identity{}, ErrInvalidCredentials
	}

	user := users[0]
	hash, _ := user.Fields[fieldPasswordHash].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Identity{}, ErrInvalidCredentials
	}

	identity := Identity{UserID: user.ID, Email: email}
	if err := p.establishSession(identity); err != nil {
		return Identity{}, err
	}
	return identity, nil
}

// SignOut clears the session and notifies subscribers.
func (p *LocalProvider) SignOut(_ context.Context) error {
	if p.file != "" {
		if err := os.Remove(p.file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove session file: %w", err)
		}
	}

	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()

	p.notify(Identity{}, false)
	return nil
}

func (p *LocalProvider) establishSession(identity Identity) error {
	token, err := p.issueToken(identity)
	if err != nil {
		return err
	}

	if p.file != "" {
		if err := os.MkdirAll(filepath.Dir(p.file), 0750); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
		if err := os.WriteFile(p.file, []byte(token), 0600); err != nil {
			return fmt.Errorf("failed to write session file: %w", err)
		}
	}

	p.mu.Lock()
	p.current = &identity
	p.mu.Unlock()

	p.notify(identity, true)
	return nil
}

func (p *LocalProvider) issueToken(identity Identity) (string, error) {
	claims := jwt.MapClaims{
		"sub":   identity.UserID,
		"email": identity.Email,
		"exp":   time.Now().Add(p.ttl).Unix(),
		"iat":   time.Now().Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// restoreSession silently restores the identity from a persisted token.
// An expired or tampered token just means signed-out.
func (p *LocalProvider) restoreSession() {
	if p.file == "" {
		return
	}

	raw, err := os.ReadFile(p.file)
	if err != nil {
		return
	}

	token, err := jwt.Parse(strings.TrimSpace(string(raw)), func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return
	}
	userID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if userID == "" {
		return
	}

	p.current = &Identity{UserID: userID, Email: email}
}

func (p *LocalProvider) notify(identity Identity, present bool) {
	p.mu.Lock()
	fns := make([]func(Identity, bool), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(identity, present)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
