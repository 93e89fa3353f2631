package service

import (
	"codelive/internal/model"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchpadSlotsAreIsolatedPerStudent(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewScratchpadService(repo)
	seedSession(t, repo, sessionCache, "ZX9Q2A", "t_1", time.Now())

	require.NoError(t, svc.Submit(context.Background(), "ZX9Q2A", "s1", model.Snapshot{Code: "print(1)"}))
	require.NoError(t, svc.Submit(context.Background(), "ZX9Q2A", "s2", model.Snapshot{Code: "print(2)"}))
	require.NoError(t, svc.Submit(context.Background(), "zx9q2a", "s1", model.Snapshot{Code: "print(3)"}))

	entries, err := svc.ListAll(context.Background(), "ZX9Q2A", "t_1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "print(3)", entries["s1"].Code, "same student overwrites their own slot")
	assert.Equal(t, "print(2)", entries["s2"].Code, "other students' slots are untouched")
}

func TestScratchpadSubmitUnknownSession(t *testing.T) {
	repo, _ := newTestEnv()
	svc := NewScratchpadService(repo)

	err := svc.Submit(context.Background(), "NOPE99", "s1", model.Snapshot{Code: "x"})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// A trailing write from a session that just ended must not error out
func TestScratchpadSubmitAfterEndIsAccepted(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewScratchpadService(repo)
	seedSession(t, repo, sessionCache, "ZX9Q2A", "t_1", time.Now())
	_, err := repo.Deactivate(context.Background(), "ZX9Q2A", time.Now())
	require.NoError(t, err)

	require.NoError(t, svc.Submit(context.Background(), "ZX9Q2A", "s1", model.Snapshot{Code: "late"}))

	entries, err := svc.ListAll(context.Background(), "ZX9Q2A", "t_1")
	require.NoError(t, err)
	assert.Equal(t, "late", entries["s1"].Code)
}

func TestListAllTrainerOnly(t *testing.T) {
	repo, sessionCache := newTestEnv()
	svc := NewScratchpadService(repo)
	seedSession(t, repo, sessionCache, "ZX9Q2A", "t_1", time.Now())

	_, err := svc.ListAll(context.Background(), "ZX9Q2A", "t_other")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.ListAll(context.Background(), "NOPE99", "t_1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	entries, err := svc.ListAll(context.Background(), "ZX9Q2A", "t_1")
	require.NoError(t, err)
	assert.Empty(t, entries, "students who never submitted have no entry")
}
