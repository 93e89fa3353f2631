package service

import (
	"codelive/internal/cache"
	"codelive/internal/repository"
	"context"
	"fmt"
	"log"
	"time"
)

// SweeperService is the batch half of session expiry. The lazy on-access
// path in join/read-live handles sessions someone is still looking at; the
// sweep catches abandoned ones.
type SweeperService struct {
	repo         repository.SessionRepo
	sessionCache cache.SessionCache
}

// NewSweeperService creates a new sweeper service
func NewSweeperService(repo repository.SessionRepo, sessionCache cache.SessionCache) *SweeperService {
	return &SweeperService{
		repo:         repo,
		sessionCache: sessionCache,
	}
}

// Sweep deactivates every active session past the expiry window and
// returns how many it actually transitioned, not how many it inspected.
// Safe to run concurrently with lazy deactivation: whoever loses the race
// sees a no-op. A failure on one session is logged and the rest of the
// batch continues.
func (s *SweeperService) Sweep(ctx context.Context) (int, error) {
	now := time.Now()
	cutoff := now.Add(-SessionMaxAge)

	sessions, err := s.repo.ListActiveStartedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list expirable sessions: %w", err)
	}

	deactivated := 0
	for _, session := range sessions {
		if !sessionExpired(session, now) {
			continue
		}
		transitioned, err := deactivateSession(ctx, s.repo, s.sessionCache, session.JoinCode, now)
		if err != nil {
			log.Printf("Sweep failed to deactivate session %s: %v", session.JoinCode, err)
			continue
		}
		if transitioned {
			deactivated++
		}
	}

	if deactivated > 0 {
		log.Printf("Sweep deactivated %d expired session(s)", deactivated)
	}
	return deactivated, nil
}

// Run sweeps on the given interval until the context is canceled. Started
// in main so a single-node deployment expires sessions without an external
// scheduler; the cron endpoint stays available for multi-node setups.
func (s *SweeperService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				log.Printf("Background sweep failed: %v", err)
			}
		}
	}
}
