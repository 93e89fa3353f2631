package service

import (
	"codelive/internal/cache"
	"codelive/internal/model"
	"codelive/internal/repository"
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"strings"
	"time"
)

// SessionService handles session lifecycle operations
type SessionService struct {
	repo         repository.SessionRepo
	sessionCache cache.SessionCache
}

// NewSessionService creates a new session service
func NewSessionService(repo repository.SessionRepo, sessionCache cache.SessionCache) *SessionService {
	return &SessionService{
		repo:         repo,
		sessionCache: sessionCache,
	}
}

// CreateSession creates a new live session owned by the trainer
func (s *SessionService) CreateSession(ctx context.Context, trainerID, title, language string) (*model.Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if language == "" {
		return nil, fmt.Errorf("%w: language is required", ErrValidation)
	}

	now := time.Now()
	session := &model.Session{
		Title:        title,
		Language:     language,
		TrainerID:    trainerID,
		IsActive:     true,
		StartedAt:    now,
		CreatedAt:    now,
		Participants: []model.Participant{},
		Scratchpads:  map[string]*model.Snapshot{},
	}

	// Insert under a fresh code, retrying on the rare collision
	for attempts := 0; attempts < 10; attempts++ {
		code, err := randomJoinCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}
		session.JoinCode = code

		// The cache answers existence cheaper than an insert round trip;
		// Mongo's unique _id stays the arbiter on a cache miss
		exists, err := s.sessionCache.Exists(ctx, code)
		if err != nil {
			log.Printf("Failed to check join code in cache: %v", err)
		} else if exists {
			continue
		}

		err = s.repo.Create(ctx, session)
		if err == repository.ErrDuplicateCode {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create session: %w", err)
		}

		// Cache in Redis for join-code lookups and metadata polling
		if err := s.sessionCache.SetMeta(ctx, code, metaOf(session)); err != nil {
			return nil, fmt.Errorf("failed to cache session: %w", err)
		}

		log.Printf("Created session: code=%s trainer=%s language=%s", code, trainerID, language)
		return session, nil
	}

	return nil, fmt.Errorf("failed to generate unique join code")
}

// Metadata returns the descriptive record for a session
func (s *SessionService) Metadata(ctx context.Context, code string) (*model.SessionMetadata, error) {
	code = NormalizeCode(code)

	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	meta := &model.SessionMetadata{
		JoinCode:         session.JoinCode,
		Title:            session.Title,
		Language:         session.Language,
		TrainerID:        session.TrainerID,
		IsActive:         session.IsActive,
		StartedAt:        session.StartedAt,
		EndedAt:          session.EndedAt,
		CreatedAt:        session.CreatedAt,
		ParticipantCount: session.ParticipantCount(),
	}
	if session.Broadcast != nil {
		meta.TrainerWorkspaceFileID = session.Broadcast.WorkspaceFileID
		meta.TrainerWorkspaceFileName = session.Broadcast.WorkspaceFileName
	}
	return meta, nil
}

// EndSession deactivates a session. Only the owning trainer may end it;
// ending an already-ended session succeeds without effect.
func (s *SessionService) EndSession(ctx context.Context, code, trainerID string) error {
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

	if _, err := deactivateSession(ctx, s.repo, s.sessionCache, code, time.Now()); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// NormalizeCode canonicalizes a join code for lookup. Codes are stored
// upper-case, so "zx9q" and "ZX9Q" resolve to the same session.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func metaOf(session *model.Session) *model.SessionMeta {
	return &model.SessionMeta{
		Title:     session.Title,
		Language:  session.Language,
		TrainerID: session.TrainerID,
		IsActive:  session.IsActive,
		StartedAt: session.StartedAt,
		CreatedAt: session.CreatedAt,
	}
}

// randomJoinCode creates a 6-char code from an alphabet without the
// lookalike characters 0/O/1/I
func randomJoinCode() (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	const codeLen = 6

	b := make([]byte, codeLen)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	code := make([]byte, codeLen)
	for i := range code {
		code[i] = chars[int(b[i])%len(chars)]
	}
	return string(code), nil
}
