package domain

import "time"

// VoterIdentity identifies an audience member casting a ballot. Email is
// the revote-prevention key.
type VoterIdentity struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// SubmitVoteRequest casts a ballot against the poll element embedded in
// a presentation slide. OptionIDs holds one id for single-select and
// several for multi-select questions.
type SubmitVoteRequest struct {
	SlideID   string        `json:"slide_id"`
	OptionIDs []string      `json:"option_ids"`
	Voter     VoterIdentity `json:"voter"`
}

// VoteResponse reports the updated counters after a ballot.
type VoteResponse struct {
	SlideID    string       `json:"slide_id"`
	Options    []PollOption `json:"options"`
	TotalVotes int          `json:"total_votes"`
	Message    string       `json:"message"`
}

// CreatePresentationRequest starts a new deck.
type CreatePresentationRequest struct {
	Title string `json:"title"`
}

// UpdatePresentationRequest changes deck-level appearance settings.
type UpdatePresentationRequest struct {
	Title       *string `json:"title,omitempty"`
	Theme       *string `json:"theme,omitempty"`
	AspectRatio *string `json:"aspect_ratio,omitempty"`
}

// AddSlideRequest appends a slide built from a layout template.
type AddSlideRequest struct {
	Layout string `json:"layout"`
}

// ReorderSlidesRequest replaces the slide order wholesale.
type ReorderSlidesRequest struct {
	Order []string `json:"order"`
}

// SetPointerRequest moves the presenter's authoritative slide index.
type SetPointerRequest struct {
	Index int `json:"index"`
}

// UpdateSlideRequest changes slide content or appearance. Nil fields are
// left untouched.
type UpdateSlideRequest struct {
	Content    *string `json:"content,omitempty"`
	Background *string `json:"background,omitempty"`
	Layout     *string `json:"layout,omitempty"`
}

// CreateElementRequest inserts an element into a slide.
type CreateElementRequest struct {
	Kind    ElementKind            `json:"kind"`
	X       float64                `json:"x"`
	Y       float64                `json:"y"`
	Width   float64                `json:"width"`
	Height  float64                `json:"height"`
	Content string                 `json:"content,omitempty"`
	Style   map[string]interface{} `json:"style,omitempty"`
}

// UpdateElementRequest patches element fields. Nil fields are left
// untouched.
type UpdateElementRequest struct {
	X        *float64                `json:"x,omitempty"`
	Y        *float64                `json:"y,omitempty"`
	Width    *float64                `json:"width,omitempty"`
	Height   *float64                `json:"height,omitempty"`
	Rotation *float64                `json:"rotation,omitempty"`
	Content  *string                 `json:"content,omitempty"`
	Style    *map[string]interface{} `json:"style,omitempty"`
}

// CreatePollRequest starts a standalone poll.
type CreatePollRequest struct {
	Title         string         `json:"title"`
	Questions     []PollQuestion `json:"questions"`
	PreventRevote bool           `json:"prevent_revote"`
}

// PollVoteRequest casts a ballot on a standalone poll question.
type PollVoteRequest struct {
	QuestionID string        `json:"question_id"`
	OptionIDs  []string      `json:"option_ids"`
	Voter      VoterIdentity `json:"voter"`
}

// SchedulePollRequest publishes a poll at a future time.
type SchedulePollRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}
