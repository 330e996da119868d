package domain

import "errors"

var (
	// ErrNotFound is returned when a presentation or poll id resolved
	// through a user-facing route does not exist.
	ErrNotFound = errors.New("not found")
	// ErrLastSlide rejects deleting the only remaining slide.
	ErrLastSlide = errors.New("cannot remove the last slide")
	// ErrDuplicateVote rejects a second ballot from the same voter
	// identity when revote prevention is enabled.
	ErrDuplicateVote = errors.New("voter has already voted")
	// ErrStaleSave rejects a save whose base revision is older than the
	// stored document.
	ErrStaleSave = errors.New("document was modified by a newer save")
	// ErrPollClosed rejects votes on a closed or unpublished poll.
	ErrPollClosed = errors.New("poll is not accepting votes")
	// ErrNoPollTarget is returned when a vote names no existing option.
	ErrNoPollTarget = errors.New("no matching poll option")
)
