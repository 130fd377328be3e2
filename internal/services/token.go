package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TokenCache owns the process-wide bearer credential for the upstream API. It fetches the token
// lazily, reuses it until its expiry instant has passed, and coordinates concurrent callers so
// that at most one refresh request is ever in flight: callers arriving during a refresh wait for
// it and share its result, success or failure alike.
//
// A failed refresh leaves the cache in the absent state, so the next Acquire retries. The cache
// never retries internally; that decision belongs to the caller.
type TokenCache struct {
	tokenURL     string
	clientID     string
	clientSecret string

	client *http.Client
	now    func() time.Time
	logger *slog.Logger

	group singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// NewTokenCache creates a TokenCache for the given token endpoint and client credentials.
func NewTokenCache(tokenURL, clientID, clientSecret string, logger *slog.Logger) *TokenCache {
	return &TokenCache{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{},
		now:          time.Now,
		logger:       logger.With(slog.String("module", "token")),
	}
}

// Acquire returns a valid bearer token, fetching a new one when none is cached or the cached one
// has expired. Concurrent callers with no valid token share a single fetch.
func (t *TokenCache) Acquire(ctx context.Context) (string, error) {
	if token, ok := t.cached(); ok {
		return token, nil
	}

	v, err, _ := t.group.Do("token", func() (any, error) {
		// A caller that queued behind a successful refresh finds the fresh token here.
		if token, ok := t.cached(); ok {
			return token, nil
		}
		return t.fetch(ctx)
	})
	if err != nil {
		return "", err
	}

	token, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("unexpected token type %T", v)
	}
	return token, nil
}

func (t *TokenCache) cached() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token == "" {
		return "", false
	}
	if !t.now().Before(t.expiresAt) {
		return "", false
	}
	return t.token, true
}

func (t *TokenCache) fetch(ctx context.Context) (string, error) {
	t.logger.Info("Fetching new token")

	body, err := json.Marshal(tokenRequest{
		ClientID:     t.clientID,
		ClientSecret: t.clientSecret,
		GrantType:    "client_credentials",
	})
	if err != nil {
		return "", &AuthError{Err: fmt.Errorf("error marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.tokenURL, bytes.NewReader(body))
	if err != nil {
		return "", &AuthError{Err: fmt.Errorf("error creating request: %w", err)}
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", &AuthError{Err: fmt.Errorf("error sending request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		t.logger.Error("Token fetch failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(errBody)))
		return "", &AuthError{Status: resp.StatusCode, Body: string(errBody)}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", &AuthError{Err: fmt.Errorf("error unmarshaling response: %w", err)}
	}
	if tr.AccessToken == "" {
		return "", &AuthError{Err: fmt.Errorf("empty access token in response")}
	}

	t.mu.Lock()
	t.token = tr.AccessToken
	if tr.ExpiresIn > 0 {
		t.expiresAt = t.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	t.mu.Unlock()

	t.logger.Info("Token refreshed", slog.Int("expiresIn", tr.ExpiresIn))
	return tr.AccessToken, nil
}
