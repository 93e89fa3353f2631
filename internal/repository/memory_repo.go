package repository

import (
	"codelive/internal/model"
	"context"
	"sync"
	"time"
)

// memoryRepo is a map-backed SessionRepo used in tests and single-node
// development. All methods mutate the same cell a Mongo update would, under
// one mutex, so the field-level isolation guarantees match the real store.
type memoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
}

// NewMemoryRepo creates an in-memory session repo
func NewMemoryRepo() SessionRepo {
	return &memoryRepo{
		sessions: make(map[string]*model.Session),
	}
}

func (r *memoryRepo) Create(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.JoinCode]; exists {
		return ErrDuplicateCode
	}
	r.sessions[session.JoinCode] = cloneSession(session)
	return nil
}

func (r *memoryRepo) GetByCode(_ context.Context, code string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[code]
	if !exists {
		return nil, nil
	}
	return cloneSession(session), nil
}

func (r *memoryRepo) SetBroadcast(_ context.Context, code string, snap *model.Snapshot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[code]
	if !exists {
		return false, nil
	}
	session.Broadcast = cloneSnapshot(snap)
	return true, nil
}

func (r *memoryRepo) SetScratchpad(_ context.Context, code, studentID string, snap *model.Snapshot) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[code]
	if !exists {
		return false, nil
	}
	if session.Scratchpads == nil {
		session.Scratchpads = make(map[string]*model.Snapshot)
	}
	session.Scratchpads[studentID] = cloneSnapshot(snap)
	return true, nil
}

func (r *memoryRepo) UpsertParticipant(_ context.Context, code string, p model.Participant) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[code]
	if !exists {
		return nil, nil
	}

	for i := range session.Participants {
		if session.Participants[i].UserID == p.UserID {
			session.Participants[i].LastSeenAt = p.LastSeenAt
			session.Participants[i].Name = p.Name
			return cloneSession(session), nil
		}
	}
	session.Participants = append(session.Participants, p)
	return cloneSession(session), nil
}

func (r *memoryRepo) RemoveParticipant(_ context.Context, code, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[code]
	if !exists {
		return nil
	}
	for i := range session.Participants {
		if session.Participants[i].UserID == userID {
			session.Participants = append(session.Participants[:i], session.Participants[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *memoryRepo) Deactivate(_ context.Context, code string, endedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[code]
	if !exists || !session.IsActive {
		return false, nil
	}
	session.IsActive = false
	session.EndedAt = &endedAt
	return true, nil
}

func (r *memoryRepo) ListActiveStartedBefore(_ context.Context, cutoff time.Time) ([]*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sessions []*model.Session
	for _, session := range r.sessions {
		if session.IsActive && session.ExpiryBase().Before(cutoff) {
			sessions = append(sessions, cloneSession(session))
		}
	}
	return sessions, nil
}

// cloneSession copies a session so callers never alias internal state
func cloneSession(s *model.Session) *model.Session {
	out := *s
	out.Broadcast = cloneSnapshot(s.Broadcast)
	out.Participants = append([]model.Participant(nil), s.Participants...)
	if s.Scratchpads != nil {
		out.Scratchpads = make(map[string]*model.Snapshot, len(s.Scratchpads))
		for id, snap := range s.Scratchpads {
			out.Scratchpads[id] = cloneSnapshot(snap)
		}
	}
	if s.EndedAt != nil {
		endedAt := *s.EndedAt
		out.EndedAt = &endedAt
	}
	return &out
}

func cloneSnapshot(s *model.Snapshot) *model.Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}
