package services

import "time"

// SetNow overrides the cache's clock in tests.
func SetNow(t *TokenCache, now func() time.Time) {
	t.now = now
}
