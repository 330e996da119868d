package service

import (
	"context"
	"fmt"
	"time"

	"deckcast/internal/domain"
	"deckcast/internal/repository"
	"deckcast/pkg/redis"

	"go.uber.org/zap"
)

// VoteService is the aggregator for ballots cast by audience viewers.
// It always reads the current persisted state before incrementing, so a
// vote merges into whatever the editor saved last rather than into the
// voter's possibly stale copy. There is no atomic counter: two ballots
// landing in the same read-write window can lose one increment, an
// accepted risk at this scale.
type VoteService struct {
	presentations repository.PresentationStore
	polls         repository.PollStore
	redis         *redis.Client
	logger        *zap.Logger
}

func NewVoteService(presentations repository.PresentationStore, polls repository.PollStore, redisClient *redis.Client, logger *zap.Logger) *VoteService {
	return &VoteService{
		presentations: presentations,
		polls:         polls,
		redis:         redisClient,
		logger:        logger,
	}
}

// SubmitDeckVote casts a ballot against the poll element embedded in a
// presentation slide. Every selected option gains one vote; the
// question's total gains one regardless of how many options the ballot
// selected. When the voter supplies an email, a Redis marker blocks a
// second ballot from the same identity.
func (s *VoteService) SubmitDeckVote(ctx context.Context, presentationID string, req *domain.SubmitVoteRequest) (*domain.VoteResponse, error) {
	if len(req.OptionIDs) == 0 {
		return nil, domain.ErrNoPollTarget
	}

	p, err := s.presentations.Load(ctx, presentationID)
	if err != nil {
		return nil, err
	}

	slide, ok := p.SlideByID(req.SlideID)
	if !ok {
		return nil, domain.ErrNotFound
	}

	elements := slide.Elements()
	idx := pollElementIndex(elements)
	if idx < 0 {
		return nil, domain.ErrNoPollTarget
	}

	payload := domain.DecodePollPayload(elements[idx].Content)
	matched := 0
	for i := range payload.Options {
		for _, want := range req.OptionIDs {
			if payload.Options[i].ID == want {
				payload.Options[i].Votes++
				matched++
				break
			}
		}
	}
	if matched == 0 {
		return nil, domain.ErrNoPollTarget
	}
	payload.TotalVotes++

	// The ballot is applicable; only now is the voter identity spent.
	lockKey := ""
	if req.Voter.Email != "" && s.redis != nil {
		lockKey = s.redis.KeyBuilder.KeyDeckVoter(presentationID, req.Voter.Email)
		first, err := s.redis.SetNX(ctx, lockKey, "1", redis.TTLVoterLock)
		if err != nil {
			// Redis being down must not block voting; the lock is an
			// optimization over the accepted lost-update window.
			s.logger.Warn("revote lock unavailable",
				zap.String("presentation_id", presentationID),
				zap.Error(err))
			lockKey = ""
		} else if !first {
			return nil, domain.ErrDuplicateVote
		}
	}

	elements[idx].Content = domain.EncodePollPayload(payload)
	next := p.ReplaceSlide(slide.WithElements(elements)).Touch()
	if err := s.presentations.Save(ctx, next); err != nil {
		s.releaseLock(ctx, lockKey)
		return nil, fmt.Errorf("failed to save vote: %w", err)
	}
	s.invalidateSnapshot(ctx, presentationID)

	s.logger.Info("deck vote recorded",
		zap.String("presentation_id", presentationID),
		zap.String("slide_id", req.SlideID),
		zap.Int("options", matched))

	return &domain.VoteResponse{
		SlideID:    req.SlideID,
		Options:    payload.Options,
		TotalVotes: payload.TotalVotes,
		Message:    "Vote recorded",
	}, nil
}

// SubmitPollVote casts a ballot on a standalone poll resolved by its
// share code. With revote prevention enabled, a voter email already in
// the append-only client log rejects the ballot without mutating
// anything.
func (s *VoteService) SubmitPollVote(ctx context.Context, shortCode string, req *domain.PollVoteRequest) (*domain.Poll, error) {
	if len(req.OptionIDs) == 0 {
		return nil, domain.ErrNoPollTarget
	}

	p, err := s.polls.LoadByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p = p.Normalize(now)

	if p.Status != domain.PollStatusPublished {
		return nil, domain.ErrPollClosed
	}
	if p.PreventRevote && p.HasVoted(req.Voter.Email) {
		return nil, domain.ErrDuplicateVote
	}

	applied := false
	for qi := range p.Questions {
		if p.Questions[qi].ID != req.QuestionID {
			continue
		}
		matched := 0
		for oi := range p.Questions[qi].Options {
			for _, want := range req.OptionIDs {
				if p.Questions[qi].Options[oi].ID == want {
					p.Questions[qi].Options[oi].Votes++
					matched++
					break
				}
			}
		}
		if matched == 0 {
			return nil, domain.ErrNoPollTarget
		}
		p.Questions[qi].TotalVotes++
		applied = true
		break
	}
	if !applied {
		return nil, domain.ErrNotFound
	}

	// Same ordering as the deck path: the fast-path lock is only taken
	// for a ballot that will actually be recorded.
	lockKey := ""
	if p.PreventRevote && req.Voter.Email != "" && s.redis != nil {
		lockKey = s.redis.KeyBuilder.KeyPollVoter(p.ID, req.Voter.Email)
		first, err := s.redis.SetNX(ctx, lockKey, "1", redis.TTLVoterLock)
		if err != nil {
			s.logger.Warn("revote lock unavailable",
				zap.String("poll_id", p.ID),
				zap.Error(err))
			lockKey = ""
		} else if !first {
			return nil, domain.ErrDuplicateVote
		}
	}

	p.TotalVotes++
	p.Clients = append(p.Clients, domain.PollClient{
		Name:        req.Voter.Name,
		Email:       req.Voter.Email,
		SubmittedAt: now,
	})
	p.UpdatedAt = now

	if err := s.polls.Save(ctx, p); err != nil {
		s.releaseLock(ctx, lockKey)
		return nil, fmt.Errorf("failed to save poll vote: %w", err)
	}

	s.logger.Info("poll vote recorded",
		zap.String("poll_id", p.ID),
		zap.String("question_id", req.QuestionID))
	return &p, nil
}

// pollElementIndex finds the votable widget on a slide: the first
// element whose kind carries a poll payload.
func pollElementIndex(elements []domain.CanvasElement) int {
	for i, e := range elements {
		switch e.Kind {
		case domain.KindPollTmpl, domain.KindQuizTmpl, domain.KindPollWidget:
			return i
		}
	}
	return -1
}

// releaseLock frees a revote lock taken for a ballot that failed to
// persist, so the voter is not locked out of retrying.
func (s *VoteService) releaseLock(ctx context.Context, key string) {
	if key == "" || s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to release revote lock",
			zap.String("key", key),
			zap.Error(err))
	}
}

func (s *VoteService) invalidateSnapshot(ctx context.Context, presentationID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Delete(ctx, s.redis.KeyBuilder.KeyDeckSnapshot(presentationID)); err != nil {
		s.logger.Warn("failed to invalidate snapshot cache",
			zap.String("presentation_id", presentationID),
			zap.Error(err))
	}
}
