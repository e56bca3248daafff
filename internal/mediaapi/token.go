package mediaapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mediakit/offload/internal/apperrors"
	"github.com/mediakit/offload/internal/logger"
	"github.com/mediakit/offload/internal/metrics"
	"github.com/mediakit/offload/internal/models"
)

// TokenCache acquires scoped bearer credentials via the client-credentials
// grant and caches them per scope for the process lifetime (or until the
// grant-provided expiry passes).
//
// Scopes are independent: a grant in flight for UPLOAD never blocks a
// caller asking for DELETE. A failed grant caches nothing, so the next
// call retries.
type TokenCache struct {
	cfg        Config
	httpClient *http.Client
	logger     logger.Logger

	// Overridable in tests
	now func() time.Time

	// Guards the entries map only; each entry carries its own lock
	mu      sync.Mutex
	entries map[models.Scope]*scopeEntry
}

type scopeEntry struct {
	mu    sync.Mutex
	token models.AccessToken
}

func NewTokenCache(cfg Config, l logger.Logger) *TokenCache {
	cfg = cfg.withDefaults()

	return &TokenCache{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     l,
		now:        time.Now,
		entries:    make(map[models.Scope]*scopeEntry),
	}
}

// Token returns a valid credential for the scope, granting a new one when
// the cache holds nothing usable. Errors wrap apperrors.ErrAuthFailed.
func (c *TokenCache) Token(ctx context.Context, scope models.Scope) (models.AccessToken, error) {
	entry := c.entry(scope)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.token.Valid(c.now()) {
		return entry.token, nil
	}

	token, err := c.grant(ctx, scope)
	if err != nil {
		return models.AccessToken{}, err
	}

	entry.token = token
	return token, nil
}

func (c *TokenCache) entry(scope models.Scope) *scopeEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[scope]
	if !ok {
		entry = &scopeEntry{}
		c.entries[scope] = entry
	}
	return entry
}

type grantResponse struct {
	TokenType   string `json:"token_type"`
	AccessToken string `json:"access_token"`

	// Seconds until expiry; zero or absent means the grant did not say
	ExpiresIn int64 `json:"expires_in"`
}

func (c *TokenCache) grant(ctx context.Context, scope models.Scope) (models.AccessToken, error) {
	var token models.AccessToken

	ctx, cancel := context.WithTimeout(ctx, c.cfg.TokenTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", string(scope))

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.cfg.endpoint("/api/oauth2/token"),
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return token, fmt.Errorf("failed to create token request: %w", apperrors.ErrAuthFailed)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TokenGrants.WithLabelValues(string(scope), metrics.OutcomeError).Inc()
		return token, fmt.Errorf("token endpoint unreachable: %v: %w", err, apperrors.ErrAuthFailed)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.TokenGrants.WithLabelValues(string(scope), metrics.OutcomeRejected).Inc()
		c.logger.Warn("Credential grant rejected", "scope", scope, "status_code", resp.StatusCode)
		return token, fmt.Errorf("token endpoint returned status %d: %w", resp.StatusCode, apperrors.ErrAuthFailed)
	}

	var grant grantResponse
	if err := json.NewDecoder(resp.Body).Decode(&grant); err != nil {
		metrics.TokenGrants.WithLabelValues(string(scope), metrics.OutcomeError).Inc()
		return token, fmt.Errorf("failed to decode token response: %v: %w", err, apperrors.ErrAuthFailed)
	}

	if grant.AccessToken == "" || grant.TokenType == "" {
		metrics.TokenGrants.WithLabelValues(string(scope), metrics.OutcomeError).Inc()
		return token, fmt.Errorf("token response misses token_type or access_token: %w", apperrors.ErrAuthFailed)
	}

	token = models.AccessToken{
		TokenType: grant.TokenType,
		Token:     grant.AccessToken,
		Scope:     scope,
	}
	if grant.ExpiresIn > 0 {
		token.ExpiresAt = c.now().Add(time.Duration(grant.ExpiresIn) * time.Second)
	}

	metrics.TokenGrants.WithLabelValues(string(scope), metrics.OutcomeOK).Inc()
	c.logger.Debug("Credential granted", "scope", scope, "expires_at", token.ExpiresAt)
	return token, nil
}
