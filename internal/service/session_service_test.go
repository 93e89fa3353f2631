package service

import (
	"codelive/internal/cache"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collidingCache reports every join code as taken
type collidingCache struct {
	cache.SessionCache
}

func (collidingCache) Exists(context.Context, string) (bool, error) {
	return true, nil
}

func TestCreateSessionValidation(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewSessionService(repo, sessionCache)

	_, err := svc.CreateSession(context.Background(), "t_1", "", "go")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateSession(context.Background(), "t_1", "Intro", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateSessionGeneratesUniqueUpperCaseCodes(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewSessionService(repo, sessionCache)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := svc.CreateSession(context.Background(), "t_1", "Intro", "go")
		require.NoError(t, err)
		assert.Len(t, session.JoinCode, 6)
		assert.Equal(t, NormalizeCode(session.JoinCode), session.JoinCode)
		assert.False(t, seen[session.JoinCode], "join code %s issued twice", session.JoinCode)
		seen[session.JoinCode] = true
		assert.True(t, session.IsActive)
		assert.False(t, session.StartedAt.IsZero())
	}
}

// Code generation consults the cache before attempting the insert, so a
// cache that answers "taken" for everything exhausts the retry budget.
func TestCreateSessionChecksCacheForCodeCollisions(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewSessionService(repo, collidingCache{sessionCache})

	_, err := svc.CreateSession(context.Background(), "t_1", "Intro", "go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unique join code")
}

func TestMetadataLookupIsCaseInsensitive(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewSessionService(repo, sessionCache)
	seedSession(t, repo, sessionCache, "ZX9Q2A", "t_1", time.Now())

	meta, err := svc.Metadata(context.Background(), "zx9q2a")
	require.NoError(t, err)
	assert.Equal(t, "ZX9Q2A", meta.JoinCode)
	assert.Equal(t, "t_1", meta.TrainerID)
	assert.Equal(t, 0, meta.ParticipantCount)

	_, err = svc.Metadata(context.Background(), "QQQQQQ")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestEndSessionTrainerOnly(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewSessionService(repo, sessionCache)
	seedSession(t, repo, sessionCache, "ZX9Q2A", "t_1", time.Now())

	err := svc.EndSession(context.Background(), "ZX9Q2A", "t_other")
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.EndSession(context.Background(), "zx9q2a", "t_1"))

	meta, err := svc.Metadata(context.Background(), "ZX9Q2A")
	require.NoError(t, err)
	assert.False(t, meta.IsActive)
	require.NotNil(t, meta.EndedAt)

	// Inactive is absorbing; ending again succeeds without effect
	endedAt := *meta.EndedAt
	require.NoError(t, svc.EndSession(context.Background(), "ZX9Q2A", "t_1"))
	meta, err = svc.Metadata(context.Background(), "ZX9Q2A")
	require.NoError(t, err)
	assert.False(t, meta.IsActive)
	assert.Equal(t, endedAt, *meta.EndedAt)

	err = svc.EndSession(context.Background(), "MISSING", "t_1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
