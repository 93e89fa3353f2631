package service

import (
	"codelive/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishTrainerOnly(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewBroadcastService(repo, sessionCache)
	seedSession(t, repo, sessionCache, "ZX9Q2A", "t_1", time.Now())

	err := svc.Publish(context.Background(), "ZX9Q2A", "t_intruder", model.Snapshot{Code: "print(1)"})
	assert.ErrorIs(t, err, ErrForbidden)

	err = svc.Publish(context.Background(), "NOPE99", "t_1", model.Snapshot{Code: "print(1)"})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, svc.Publish(context.Background(), "zx9q2a", "t_1", model.Snapshot{Code: "print(1)", Language: "python"}))
}

func TestBroadcastLastWriteWins(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewBroadcastService(repo, sessionCache)
	seedSession(t, repo, sessionCache, "ZX9Q2A", "t_1", time.Now())

	require.NoError(t, svc.Publish(context.Background(), "ZX9Q2A", "t_1", model.Snapshot{Code: "print(1)", Language: "python"}))
	require.NoError(t, svc.Publish(context.Background(), "ZX9Q2A", "t_1", model.Snapshot{Code: "print(2)", Language: "python"}))

	view, err := svc.ReadLive(context.Background(), "ZX9Q2A")
	require.NoError(t, err)
	assert.Equal(t, "print(2)", view.Code)
	assert.Equal(t, "python", view.Language)
	assert.True(t, view.IsActive)
}

func TestReadLiveCarriesRosterAndFileReference(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewBroadcastService(repo, sessionCache)
	seedSession(t, repo, sessionCache, "ZX9Q2A", "t_1", time.Now())

	now := time.Now()
	_, err := repo.UpsertParticipant(context.Background(), "ZX9Q2A", model.Participant{UserID: "s1", Name: "Ada", JoinedAt: now, LastSeenAt: now})
	require.NoError(t, err)

	require.NoError(t, svc.Publish(context.Background(), "ZX9Q2A", "t_1", model.Snapshot{
		Code:              "print(1)",
		Language:          "python",
		Output:            map[string]interface{}{"stdout": "1\n", "exitCode": float64(0)},
		WorkspaceFileID:   "wf_42",
		WorkspaceFileName: "main.py",
	}))

	view, err := svc.ReadLive(context.Background(), "ZX9Q2A")
	require.NoError(t, err)
	assert.Equal(t, 1, view.ParticipantCount)
	assert.Equal(t, "wf_42", view.TrainerWorkspaceFileID)
	assert.Equal(t, "main.py", view.TrainerWorkspaceFileName)
	assert.Equal(t, map[string]interface{}{"stdout": "1\n", "exitCode": float64(0)}, view.Output)
	require.NotNil(t, view.UpdatedAt)
}

func TestReadLiveUnknownCode(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewBroadcastService(repo, sessionCache)

	_, err := svc.ReadLive(context.Background(), "NOPE99")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// An ended session still serves its last broadcast so clients can show a
// terminal banner over the final code.
func TestReadLiveAfterEndKeepsLastBroadcast(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewBroadcastService(repo, sessionCache)
	seedSession(t, repo, sessionCache, "ZX9Q2A", "t_1", time.Now())

	require.NoError(t, svc.Publish(context.Background(), "ZX9Q2A", "t_1", model.Snapshot{Code: "print(1)", Language: "python"}))
	_, err := repo.Deactivate(context.Background(), "ZX9Q2A", time.Now())
	require.NoError(t, err)

	view, err := svc.ReadLive(context.Background(), "ZX9Q2A")
	require.NoError(t, err)
	assert.False(t, view.IsActive)
	assert.Equal(t, "print(1)", view.Code)
}

func TestReadLiveDeactivatesExpiredSession(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewBroadcastService(repo, sessionCache)
	seedSession(t, repo, sessionCache, "OLD111", "t_1", time.Now().Add(-25*time.Hour))

	view, err := svc.ReadLive(context.Background(), "OLD111")
	require.NoError(t, err)
	assert.False(t, view.IsActive, "caller observes the deactivated state in the same response")

	session, err := repo.GetByCode(context.Background(), "OLD111")
	require.NoError(t, err)
	assert.False(t, session.IsActive)
	require.NotNil(t, session.EndedAt)
}

func TestBroadcastLanguageFallsBackToSession(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewBroadcastService(repo, sessionCache)
	seedSession(t, repo, sessionCache, "ZX9Q2A", "t_1", time.Now())

	view, err := svc.ReadLive(context.Background(), "ZX9Q2A")
	require.NoError(t, err)
	assert.Equal(t, "go", view.Language)
	assert.Empty(t, view.Code)
}
