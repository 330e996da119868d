package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"deckcast/internal/domain"
	"deckcast/internal/repository"
	"deckcast/pkg/redis"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// shortCodeAttempts bounds the retry loop for the globally-unique code.
const shortCodeAttempts = 10

// PollService manages the standalone poll lifecycle: create, publish
// (assigning the 5-digit share code), schedule, close, and the lazy
// promotion of scheduled polls on read.
type PollService struct {
	polls  repository.PollStore
	redis  *redis.Client
	logger *zap.Logger
}

func NewPollService(polls repository.PollStore, redisClient *redis.Client, logger *zap.Logger) *PollService {
	return &PollService{
		polls:  polls,
		redis:  redisClient,
		logger: logger,
	}
}

// Create starts a draft poll. Questions and options without ids get
// generated ones.
func (s *PollService) Create(ctx context.Context, req *domain.CreatePollRequest, creatorID string) (domain.Poll, error) {
	p := domain.NewPoll(req.Title, creatorID)
	p.PreventRevote = req.PreventRevote

	for _, q := range req.Questions {
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		for i := range q.Options {
			if q.Options[i].ID == "" {
				q.Options[i].ID = strconv.Itoa(i + 1)
			}
			q.Options[i].Votes = 0
		}
		q.TotalVotes = 0
		p.Questions = append(p.Questions, q)
	}

	if err := s.polls.Save(ctx, p); err != nil {
		return domain.Poll{}, fmt.Errorf("failed to create poll: %w", err)
	}
	s.logger.Info("poll created",
		zap.String("poll_id", p.ID),
		zap.String("creator_id", creatorID))
	return p, nil
}

// Get loads a poll by id with lazy status promotion applied and, when
// promotion changed the status, written back.
func (s *PollService) Get(ctx context.Context, id string) (domain.Poll, error) {
	p, err := s.polls.Load(ctx, id)
	if err != nil {
		return domain.Poll{}, err
	}
	return s.normalized(ctx, p), nil
}

// GetByShortCode resolves a poll for a viewer and counts the visitor
// once per identity.
func (s *PollService) GetByShortCode(ctx context.Context, code, visitorID string) (domain.Poll, error) {
	p, err := s.loadByCode(ctx, code)
	if err != nil {
		return domain.Poll{}, err
	}
	p = s.normalized(ctx, p)

	if visitorID != "" && s.redis != nil {
		key := s.redis.KeyBuilder.KeyPollVisitor(p.ID, visitorID)
		first, err := s.redis.SetNX(ctx, key, "1", redis.TTLVisitorSeen)
		if err == nil && first {
			p.Visitors++
			p.UpdatedAt = time.Now().UTC()
			if err := s.polls.Save(ctx, p); err != nil {
				s.logger.Warn("failed to persist visitor count",
					zap.String("poll_id", p.ID),
					zap.Error(err))
			}
		}
	}
	return p, nil
}

// Publish moves a poll to published, assigning its share code on first
// publish.
func (s *PollService) Publish(ctx context.Context, id string) (domain.Poll, error) {
	p, err := s.polls.Load(ctx, id)
	if err != nil {
		return domain.Poll{}, err
	}

	if p.ShortCode == "" {
		code, err := s.generateShortCode(ctx)
		if err != nil {
			return domain.Poll{}, err
		}
		p.ShortCode = code
	}
	p.Status = domain.PollStatusPublished
	p.ScheduledAt = nil
	p.UpdatedAt = time.Now().UTC()

	if err := s.polls.Save(ctx, p); err != nil {
		return domain.Poll{}, fmt.Errorf("failed to publish poll: %w", err)
	}
	s.logger.Info("poll published",
		zap.String("poll_id", p.ID),
		zap.String("short_code", p.ShortCode))
	return p, nil
}

// Schedule publishes a poll at a future time. The promotion itself is
// evaluated lazily on read, not by a background job.
func (s *PollService) Schedule(ctx context.Context, id string, at time.Time) (domain.Poll, error) {
	p, err := s.polls.Load(ctx, id)
	if err != nil {
		return domain.Poll{}, err
	}

	if p.ShortCode == "" {
		code, err := s.generateShortCode(ctx)
		if err != nil {
			return domain.Poll{}, err
		}
		p.ShortCode = code
	}
	p.Status = domain.PollStatusScheduled
	scheduled := at.UTC()
	p.ScheduledAt = &scheduled
	p.UpdatedAt = time.Now().UTC()

	if err := s.polls.Save(ctx, p); err != nil {
		return domain.Poll{}, fmt.Errorf("failed to schedule poll: %w", err)
	}
	return p, nil
}

// Close stops a poll from accepting further ballots.
func (s *PollService) Close(ctx context.Context, id string) (domain.Poll, error) {
	p, err := s.polls.Load(ctx, id)
	if err != nil {
		return domain.Poll{}, err
	}
	p.Status = domain.PollStatusClosed
	p.UpdatedAt = time.Now().UTC()

	if err := s.polls.Save(ctx, p); err != nil {
		return domain.Poll{}, fmt.Errorf("failed to close poll: %w", err)
	}
	return p, nil
}

// Delete removes a poll.
func (s *PollService) Delete(ctx context.Context, id string) error {
	return s.polls.Delete(ctx, id)
}

// loadByCode resolves a share code to its poll, caching the code→id
// mapping so the join page does not scan on every hit. The store stays
// authoritative: a stale cache entry falls through to the scan.
func (s *PollService) loadByCode(ctx context.Context, code string) (domain.Poll, error) {
	if s.redis != nil {
		key := s.redis.KeyBuilder.KeyPollByCode(code)
		id, err := s.redis.Get(ctx, key)
		if err == nil {
			if p, loadErr := s.polls.Load(ctx, id); loadErr == nil && p.ShortCode == code {
				return p, nil
			}
		} else if !redis.IsNil(err) {
			s.logger.Warn("short code cache read failed",
				zap.String("short_code", code),
				zap.Error(err))
		}
	}

	p, err := s.polls.LoadByShortCode(ctx, code)
	if err != nil {
		return domain.Poll{}, err
	}
	if s.redis != nil {
		_ = s.redis.Set(ctx, s.redis.KeyBuilder.KeyPollByCode(code), p.ID, redis.TTLPollByCode)
	}
	return p, nil
}

// normalized applies lazy scheduled→published promotion and writes the
// promoted status back so later reads agree.
func (s *PollService) normalized(ctx context.Context, p domain.Poll) domain.Poll {
	promoted := p.Normalize(time.Now().UTC())
	if promoted.Status != p.Status {
		promoted.UpdatedAt = time.Now().UTC()
		if err := s.polls.Save(ctx, promoted); err != nil {
			s.logger.Warn("failed to persist scheduled promotion",
				zap.String("poll_id", p.ID),
				zap.Error(err))
		}
	}
	return promoted
}

// generateShortCode draws 5-digit codes until one is globally unused.
func (s *PollService) generateShortCode(ctx context.Context) (string, error) {
	for i := 0; i < shortCodeAttempts; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(100000))
		if err != nil {
			return "", fmt.Errorf("failed to generate short code: %w", err)
		}
		code := fmt.Sprintf("%05d", n.Int64())

		taken, err := s.polls.ShortCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check short code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not find a free short code after %d attempts", shortCodeAttempts)
}
