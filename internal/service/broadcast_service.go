package service

import (
	"codelive/internal/cache"
	"codelive/internal/model"
	"codelive/internal/repository"
	"context"
	"fmt"
	"time"
)

// BroadcastService is the trainer-to-students push path. The session holds
// a single broadcast slot; each publish overwrites it and students pick up
// the latest value on their next poll.
type BroadcastService struct {
	repo         repository.SessionRepo
	sessionCache cache.SessionCache
}

// NewBroadcastService creates a new broadcast service
func NewBroadcastService(repo repository.SessionRepo, sessionCache cache.SessionCache) *BroadcastService {
	return &BroadcastService{
		repo:         repo,
		sessionCache: sessionCache,
	}
}

// Publish overwrites the session's broadcast slot. Only the owning trainer
// may publish.
func (s *BroadcastService) Publish(ctx context.Context, code, trainerID string, snap model.Snapshot) error {
	code = NormalizeCode(code)

	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return ErrSessionNotFound
	}
	if session.TrainerID != trainerID {
		return ErrForbidden
	}

	snap.UpdatedAt = time.Now()
	found, err := s.repo.SetBroadcast(ctx, code, &snap)
	if err != nil {
		return fmt.Errorf("failed to publish broadcast: %w", err)
	}
	if !found {
		return ErrSessionNotFound
	}
	return nil
}

// ReadLive returns the view students poll: the latest broadcast plus
// session status and roster size. Reading a session past its expiry window
// deactivates it in place, so the caller sees isActive=false in the same
// response. An ended session still serves its last broadcast.
func (s *BroadcastService) ReadLive(ctx context.Context, code string) (*model.LiveView, error) {
	code = NormalizeCode(code)

	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	now := time.Now()
	if session.IsActive && sessionExpired(session, now) {
		if _, err := deactivateSession(ctx, s.repo, s.sessionCache, code, now); err != nil {
			return nil, fmt.Errorf("failed to deactivate expired session: %w", err)
		}
		session.IsActive = false
		session.EndedAt = &now
	}

	view := &model.LiveView{
		JoinCode:         session.JoinCode,
		Title:            session.Title,
		Language:         session.Language,
		IsActive:         session.IsActive,
		ParticipantCount: session.ParticipantCount(),
	}
	if session.Broadcast != nil {
		view.Code = session.Broadcast.Code
		view.Output = session.Broadcast.Output
		view.TrainerWorkspaceFileID = session.Broadcast.WorkspaceFileID
		view.TrainerWorkspaceFileName = session.Broadcast.WorkspaceFileName
		view.UpdatedAt = &session.Broadcast.UpdatedAt
		if session.Broadcast.Language != "" {
			view.Language = session.Broadcast.Language
		}
	}
	return view, nil
}
