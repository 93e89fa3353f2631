package service

import (
	"codelive/internal/cache"
	"codelive/internal/model"
	"codelive/internal/repository"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JoinResponse is returned when a student joins a session
type JoinResponse struct {
	UserID           string `json:"userId"`
	Token            string `json:"token"`
	Title            string `json:"title"`
	Language         string `json:"language"`
	ParticipantCount int    `json:"participantCount"`
}

// ParticipantService tracks who is in a session
type ParticipantService struct {
	repo         repository.SessionRepo
	sessionCache cache.SessionCache
	authSvc      *AuthService
}

// NewParticipantService creates a new participant service
func NewParticipantService(repo repository.SessionRepo, sessionCache cache.SessionCache, authSvc *AuthService) *ParticipantService {
	return &ParticipantService{
		repo:         repo,
		sessionCache: sessionCache,
		authSvc:      authSvc,
	}
}

// Join adds a student to a session's roster, or refreshes lastSeenAt if
// they are already on it. Joining twice with the same userId keeps the
// roster size unchanged.
func (s *ParticipantService) Join(ctx context.Context, code, userID, name string) (*JoinResponse, error) {
	code = NormalizeCode(code)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}

	// Ended sessions are rejected from the cached status without a store
	// read: the inactive flag is only ever written through after the store
	// transition, so it cannot be ahead of the truth. A miss or a
	// stale-active entry falls through to the store.
	if meta, err := s.sessionCache.GetMeta(ctx, code); err == nil && meta != nil && !meta.IsActive {
		return nil, ErrSessionExpired
	}

	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if !session.IsActive {
		return nil, ErrSessionExpired
	}

	now := time.Now()
	if sessionExpired(session, now) {
		// Aged out; deactivate before answering so every later read
		// already sees the session inactive
		if _, err := deactivateSession(ctx, s.repo, s.sessionCache, code, now); err != nil {
			return nil, fmt.Errorf("failed to deactivate expired session: %w", err)
		}
		return nil, ErrSessionExpired
	}

	// Platform accounts bring their own id; anonymous students get one
	if userID == "" {
		userID = "s_" + uuid.New().String()[:8]
	}

	updated, err := s.repo.UpsertParticipant(ctx, code, model.Participant{
		UserID:     userID,
		Name:       name,
		JoinedAt:   now,
		LastSeenAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join session: %w", err)
	}
	if updated == nil {
		return nil, ErrSessionNotFound
	}

	token, err := s.authSvc.GenerateStudentToken(code, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	log.Printf("Student joined session: code=%s user=%s count=%d", code, userID, updated.ParticipantCount())

	return &JoinResponse{
		UserID:           userID,
		Token:            token,
		Title:            updated.Title,
		Language:         updated.Language,
		ParticipantCount: updated.ParticipantCount(),
	}, nil
}

// Leave removes a student from the roster. It never returns an error:
// leave runs on teardown paths where the session may already be gone, and
// a student navigating away must not be blocked by a failed call.
func (s *ParticipantService) Leave(ctx context.Context, code, userID string) {
	code = NormalizeCode(code)

	if err := s.repo.RemoveParticipant(ctx, code, userID); err != nil {
		log.Printf("Failed to remove participant: code=%s user=%s err=%v", code, userID, err)
	}
}

// Count returns the current roster size, 0 for unknown sessions
func (s *ParticipantService) Count(ctx context.Context, code string) int {
	session, err := s.repo.GetByCode(ctx, NormalizeCode(code))
	if err != nil || session == nil {
		return 0
	}
	return session.ParticipantCount()
}
