// Package auth owns the Glowmarkt session: it logs in, tracks token expiry
// and refreshes the token when the server stops accepting it.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/energy-tools/glow-atlas/pkg/models/api"
	"github.com/energy-tools/glow-atlas/pkg/models/domain"
	"github.com/energy-tools/glow-atlas/pkg/store/glowmarkt"
)

// expiryMargin is how long before the recorded expiry a token is already
// treated as stale, so in-flight requests don't race the cutoff.
const expiryMargin = time.Minute

// Authenticator is the slice of the Glowmarkt client the manager needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*api.AuthResponse, error)
}

type Manager interface {
	// Authenticate establishes a session, logging in unless a pre-issued
	// token was supplied.
	Authenticate(ctx context.Context) (*domain.Session, error)
	// EnsureValid returns the current session, re-authenticating first when
	// it is missing or about to expire. Concurrent callers share one login
	// round trip.
	EnsureValid(ctx context.Context) (*domain.Session, error)
	// Refresh replaces a session the server has rejected. When the stale
	// session has already been replaced, the current one is returned without
	// another round trip.
	Refresh(ctx context.Context, stale *domain.Session) (*domain.Session, error)
}

type manager struct {
	client Authenticator
	creds  domain.Credentials
	now    func() time.Time

	mu      sync.Mutex
	session *domain.Session
}

func NewManager(client Authenticator, creds domain.Credentials) Manager {
	return &manager{
		client: client,
		creds:  creds,
		now:    time.Now,
	}
}

func (m *manager) Authenticate(ctx context.Context) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticateLocked(ctx, true)
}

func (m *manager) EnsureValid(ctx context.Context) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil && !m.session.ExpiresWithin(m.now(), expiryMargin) {
		return m.session, nil
	}

	return m.authenticateLocked(ctx, true)
}

func (m *manager) Refresh(ctx context.Context, stale *domain.Session) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil && (stale == nil || m.session.Token != stale.Token) {
		return m.session, nil
	}

	if m.creds.Username == "" || m.creds.Password == "" {
		return nil, &glowmarkt.AuthError{Message: "token rejected and no credentials available to re-authenticate"}
	}

	m.session = nil
	return m.authenticateLocked(ctx, false)
}

// authenticateLocked performs the actual login. allowPreIssued lets a
// configured token be adopted; refreshes pass false so a rejected token is
// never handed back.
func (m *manager) authenticateLocked(ctx context.Context, allowPreIssued bool) (*domain.Session, error) {
	logger := zerolog.Ctx(ctx)

	if allowPreIssued && m.session == nil && m.creds.Token != "" {
		issued, expires := tokenWindow(m.creds.Token)
		m.session = &domain.Session{Token: m.creds.Token, IssuedAt: issued, ExpiresAt: expires}
		logger.Debug().Time("expires_at", expires).Msg("adopted pre-issued glowmarkt token")
		return m.session, nil
	}

	if m.creds.Username == "" || m.creds.Password == "" {
		return nil, fmt.Errorf("no glowmarkt credentials configured")
	}

	resp, err := m.client.Login(ctx, m.creds.Username, m.creds.Password)
	if err != nil {
		return nil, fmt.Errorf("glowmarkt login: %w", err)
	}

	issued, expires := tokenWindow(resp.Token)
	m.session = &domain.Session{Token: resp.Token, IssuedAt: issued, ExpiresAt: expires}

	logger.Info().
		Time("expires_at", expires).
		Msg("authenticated with glowmarkt")

	return m.session, nil
}

// tokenWindow extracts iat and exp from the token without verifying the
// signature; we only need the timing hints. Unparseable tokens yield zero
// times and stay in use until the server rejects them.
func tokenWindow(token string) (issued, expires time.Time) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, time.Time{}
	}

	if iat, err := parsed.Claims.GetIssuedAt(); err == nil && iat != nil {
		issued = iat.Time
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		expires = exp.Time
	}

	return issued, expires
}
