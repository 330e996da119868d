package domain

import (
	"time"

	"github.com/google/uuid"
)

// Poll status constants
const (
	PollStatusDraft     = "draft"
	PollStatusPublished = "published"
	PollStatusScheduled = "scheduled"
	PollStatusClosed    = "closed"
)

// PollQuestion is one question of a standalone poll.
type PollQuestion struct {
	ID         string       `json:"id"`
	Text       string       `json:"text"`
	Multi      bool         `json:"multi,omitempty"`
	Options    []PollOption `json:"options"`
	TotalVotes int          `json:"totalVotes"`
}

// PollClient is one entry of the append-only voter log.
type PollClient struct {
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Poll is the standalone single-document poll aggregate, shared through
// a 5-digit code.
type Poll struct {
	ID            string         `json:"id"`
	ShortCode     string         `json:"shortCode"`
	Title         string         `json:"title"`
	Questions     []PollQuestion `json:"questions"`
	TotalVotes    int            `json:"totalVotes"`
	Visitors      int            `json:"visitors"`
	Status        string         `json:"status"`
	ScheduledAt   *time.Time     `json:"scheduledAt,omitempty"`
	PreventRevote bool           `json:"preventRevote,omitempty"`
	Clients       []PollClient   `json:"clients,omitempty"`
	CreatorID     string         `json:"creatorId,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// NewPoll builds a draft poll.
func NewPoll(title, creatorID string) Poll {
	now := time.Now().UTC()
	return Poll{
		ID:        uuid.NewString(),
		Title:     title,
		Questions: []PollQuestion{},
		Status:    PollStatusDraft,
		CreatorID: creatorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Normalize applies lazy status promotion: a scheduled poll whose
// scheduledAt has passed reads back as published. Evaluated on every
// read instead of by a background job.
func (p Poll) Normalize(now time.Time) Poll {
	if p.Status == PollStatusScheduled && p.ScheduledAt != nil && !now.Before(*p.ScheduledAt) {
		p.Status = PollStatusPublished
	}
	return p
}

// AcceptingVotes reports whether ballots may be cast.
func (p Poll) AcceptingVotes(now time.Time) bool {
	return p.Normalize(now).Status == PollStatusPublished
}

// HasVoted reports whether the voter email already appears in the log.
func (p Poll) HasVoted(email string) bool {
	if email == "" {
		return false
	}
	for _, c := range p.Clients {
		if c.Email == email {
			return true
		}
	}
	return false
}

// QuestionByID looks up a question.
func (p Poll) QuestionByID(questionID string) (PollQuestion, bool) {
	for _, q := range p.Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return PollQuestion{}, false
}
