package model

import "time"

// Snapshot is one code/output push, either the trainer's broadcast or a
// single student's scratchpad. Output comes from the external code runner
// and is stored as an opaque JSON value.
type Snapshot struct {
	Code              string      `json:"code" bson:"code"`
	Language          string      `json:"language" bson:"language"`
	Output            interface{} `json:"output,omitempty" bson:"output,omitempty"`
	WorkspaceFileID   string      `json:"workspaceFileId,omitempty" bson:"workspaceFileId,omitempty"`
	WorkspaceFileName string      `json:"workspaceFileName,omitempty" bson:"workspaceFileName,omitempty"`
	UpdatedAt         time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// Participant is one student currently on a session's roster
type Participant struct {
	UserID     string    `json:"userId" bson:"userId"`
	Name       string    `json:"name" bson:"name"`
	JoinedAt   time.Time `json:"joinedAt" bson:"joinedAt"`
	LastSeenAt time.Time `json:"lastSeenAt" bson:"lastSeenAt"`
}

// Session is the persisted record of one live session, keyed by join code
type Session struct {
	JoinCode     string               `json:"joinCode" bson:"_id"`
	Title        string               `json:"title" bson:"title"`
	Language     string               `json:"language" bson:"language"`
	TrainerID    string               `json:"trainerId" bson:"trainerId"`
	IsActive     bool                 `json:"isActive" bson:"isActive"`
	StartedAt    time.Time            `json:"startedAt" bson:"startedAt"`
	EndedAt      *time.Time           `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
	CreatedAt    time.Time            `json:"createdAt" bson:"createdAt"`
	Broadcast    *Snapshot            `json:"broadcast,omitempty" bson:"broadcast,omitempty"`
	Participants []Participant        `json:"participants" bson:"participants"`
	Scratchpads  map[string]*Snapshot `json:"scratchpads" bson:"scratchpads"`
}

// ParticipantCount derives the roster size from the participant set. The
// count is never stored on its own, so it cannot drift from membership.
func (s *Session) ParticipantCount() int {
	return len(s.Participants)
}

// ExpiryBase is the timestamp session age is measured from
func (s *Session) ExpiryBase() time.Time {
	if !s.StartedAt.IsZero() {
		return s.StartedAt
	}
	return s.CreatedAt
}

// SessionMeta is the Redis-cached slice of a session used for join-code
// existence checks and metadata polling
type SessionMeta struct {
	Title     string    `json:"title"`
	Language  string    `json:"language"`
	TrainerID string    `json:"trainerId"`
	IsActive  bool      `json:"isActive"`
	StartedAt time.Time `json:"startedAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionMetadata is the descriptive record served for display. It leaves
// out scratchpad contents, which are visible to the trainer only.
type SessionMetadata struct {
	JoinCode                 string     `json:"joinCode"`
	Title                    string     `json:"title"`
	Language                 string     `json:"language"`
	TrainerID                string     `json:"trainerId"`
	IsActive                 bool       `json:"isActive"`
	StartedAt                time.Time  `json:"startedAt"`
	EndedAt                  *time.Time `json:"endedAt,omitempty"`
	CreatedAt                time.Time  `json:"createdAt"`
	ParticipantCount         int        `json:"participantCount"`
	TrainerWorkspaceFileID   string     `json:"trainerWorkspaceFileId,omitempty"`
	TrainerWorkspaceFileName string     `json:"trainerWorkspaceFileName,omitempty"`
}

// LiveView is the polling payload students consume
type LiveView struct {
	JoinCode                 string      `json:"joinCode"`
	Title                    string      `json:"title"`
	Language                 string      `json:"language"`
	IsActive                 bool        `json:"isActive"`
	Code                     string      `json:"code"`
	Output                   interface{} `json:"output,omitempty"`
	ParticipantCount         int         `json:"participantCount"`
	TrainerWorkspaceFileID   string      `json:"trainerWorkspaceFileId,omitempty"`
	TrainerWorkspaceFileName string      `json:"trainerWorkspaceFileName,omitempty"`
	UpdatedAt                *time.Time  `json:"updatedAt,omitempty"`
}
