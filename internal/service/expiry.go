package service

import (
	"codelive/internal/cache"
	"codelive/internal/model"
	"codelive/internal/repository"
	"context"
	"log"
	"time"
)

// SessionMaxAge is how long a session may run before it is deactivated
const SessionMaxAge = 24 * time.Hour

// sessionExpired is the single expiry predicate. Both the on-access path
// and the batch sweep use it, so the two can never disagree on what
// "expired" means.
func sessionExpired(s *model.Session, now time.Time) bool {
	return now.Sub(s.ExpiryBase()) > SessionMaxAge
}

// deactivateSession is the single deactivation mutator. Returns true only
// when this call made the active->inactive transition; deactivating an
// already-inactive session is a no-op.
func deactivateSession(ctx context.Context, repo repository.SessionRepo, sessionCache cache.SessionCache, code string, now time.Time) (bool, error) {
	transitioned, err := repo.Deactivate(ctx, code, now)
	if err != nil {
		return false, err
	}
	if transitioned {
		if cacheErr := sessionCache.SetInactive(ctx, code); cacheErr != nil {
			// Cache is a hot path, not the source of truth; entries also
			// carry a TTL, so a stale flag corrects itself
			log.Printf("Failed to mark session %s inactive in cache: %v", code, cacheErr)
		}
		log.Printf("Deactivated session: code=%s", code)
	}
	return transitioned, nil
}
