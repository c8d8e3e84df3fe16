package provider

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// CredentialProvider supplies a bearer token for the gateway adapter. The
// OAuth2 acquisition flow itself lives outside this module; implementations
// here only cache and hand out tokens.
type CredentialProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a CredentialProvider backed by a fixed token.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", fmt.Errorf("credentials: empty static token")
	}
	return string(t), nil
}

// TokenSource fetches a fresh token and reports when it expires.
type TokenSource func(ctx context.Context) (token string, expiresAt time.Time, err error)

// CachedCredentials wraps a TokenSource with a read-mostly cache. Concurrent
// pipelines share one instance; reads take the shared lock and a refresh
// takes the exclusive lock, so an expired token is fetched once rather than
// once per in-flight pipeline.
type CachedCredentials struct {
	source TokenSource
	skew   time.Duration

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

// NewCachedCredentials creates a caching wrapper around source. Tokens are
// treated as expired slightly early so a token never dies mid-request.
func NewCachedCredentials(source TokenSource) *CachedCredentials {
	return &CachedCredentials{
		source: source,
		skew:   30 * time.Second,
	}
}

func (c *CachedCredentials) Token(ctx context.Context) (string, error) {
	c.mu.RLock()
	token, ok := c.cachedLocked()
	c.mu.RUnlock()
	if ok {
		return token, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another pipeline may have refreshed while we waited for the lock.
	if token, ok := c.cachedLocked(); ok {
		return token, nil
	}

	token, expiresAt, err := c.source(ctx)
	if err != nil {
		return "", fmt.Errorf("credentials: refresh token: %w", err)
	}

	c.token = token
	c.expiresAt = expiresAt
	return token, nil
}

func (c *CachedCredentials) cachedLocked() (string, bool) {
	if c.token == "" {
		return "", false
	}
	if !c.expiresAt.IsZero() && time.Now().After(c.expiresAt.Add(-c.skew)) {
		return "", false
	}
	return c.token, true
}
