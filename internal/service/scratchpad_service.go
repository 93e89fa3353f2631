package service

import (
	"codelive/internal/model"
	"codelive/internal/repository"
	"context"
	"fmt"
	"time"
)

// ScratchpadService is the student-to-trainer push path. Every student owns
// exactly one slot keyed by their id, so two students can never overwrite
// each other.
type ScratchpadService struct {
	repo repository.SessionRepo
}

// NewScratchpadService creates a new scratchpad service
func NewScratchpadService(repo repository.SessionRepo) *ScratchpadService {
	return &ScratchpadService{repo: repo}
}

// Submit upserts the student's own slot. Inactive sessions are accepted: a
// trailing in-flight write from a session that just ended should not error
// out, and clients stop submitting once they observe inactivity.
func (s *ScratchpadService) Submit(ctx context.Context, code, studentID string, snap model.Snapshot) error {
	code = NormalizeCode(code)

	snap.UpdatedAt = time.Now()
	found, err := s.repo.SetScratchpad(ctx, code, studentID, &snap)
	if err != nil {
		return fmt.Errorf("failed to save scratchpad: %w", err)
	}
	if !found {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns every student's current slot for the trainer's roster
// view. Students who joined but never submitted have no entry.
func (s *ScratchpadService) ListAll(ctx context.Context, code, trainerID string) (map[string]*model.Snapshot, error) {
	code = NormalizeCode(code)

	session, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	if session.TrainerID != trainerID {
		return nil, ErrForbidden
	}

	if session.Scratchpads == nil {
		return map[string]*model.Snapshot{}, nil
	}
	return session.Scratchpads, nil
}
