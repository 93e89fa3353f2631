package service

import (
	"codelive/internal/cache"
	"codelive/internal/model"
	"codelive/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestEnv() (repository.SessionRepo, cache.SessionCache) {
	return repository.NewMemoryRepo(), cache.NewMemoryCache()
}

// seedSession inserts an active session directly into the store, letting
// tests pick the start time to exercise expiry.
func seedSession(t *testing.T, repo repository.SessionRepo, sessionCache cache.SessionCache, code, trainerID string, startedAt time.Time) *model.Session {
	t.Helper()

	session := &model.Session{
		JoinCode:     code,
		Title:        "Intro to Go",
		Language:     "go",
		TrainerID:    trainerID,
		IsActive:     true,
		StartedAt:    startedAt,
		CreatedAt:    startedAt,
		Participants: []model.Participant{},
		Scratchpads:  map[string]*model.Snapshot{},
	}
	require.NoError(t, repo.Create(context.Background(), session))
	require.NoError(t, sessionCache.SetMeta(context.Background(), code, &model.SessionMeta{
		Title:     session.Title,
		Language:  session.Language,
		TrainerID: trainerID,
		IsActive:  true,
		StartedAt: startedAt,
		CreatedAt: startedAt,
	}))
	return session
}
