package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"opscurator/internal/domain"
)

const recentChallengeLimit = 30

type CommunityService struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewCommunityService(repo Repository, logger *zap.Logger) *CommunityService {
	return &CommunityService{
		repo:   repo,
		logger: logger.Named("community-service"),
		now:    time.Now,
	}
}

func (s *CommunityService) AddComment(ctx context.Context, userID, labID, text string, rating int) (*domain.LabComment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment cannot be empty", domain.ErrInvalidInput)
	}
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", domain.ErrInvalidInput, domain.MinRating, domain.MaxRating)
	}

	if err := s.requireLab(ctx, labID); err != nil {
		return nil, err
	}

	comment := &domain.LabComment{
		ID:        uuid.New().String(),
		LabID:     labID,
		UserID:    userID,
		Comment:   text,
		Rating:    rating,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to save comment: %w", err)
	}
	return comment, nil
}

func (s *CommunityService) LabFeedback(ctx context.Context, labID string) (*domain.LabFeedback, error) {
	if err := s.requireLab(ctx, labID); err != nil {
		return nil, err
	}

	comments, err := s.repo.ListComments(ctx, labID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of lab %s: %w", labID, err)
	}
	avg, err := s.repo.AverageRating(ctx, labID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rating of lab %s: %w", labID, err)
	}
	return &domain.LabFeedback{LabID: labID, AverageRating: avg, Comments: comments}, nil
}

func (s *CommunityService) requireLab(ctx context.Context, labID string) error {
	lab, err := s.repo.GetLabByID(ctx, labID)
	if err != nil {
		return fmt.Errorf("failed to fetch lab %s: %w", labID, err)
	}
	if lab == nil {
		return fmt.Errorf("%w: lab %s", domain.ErrNotFound, labID)
	}
	return nil
}

// TodayChallenge returns the challenge for the current UTC date.
func (s *CommunityService) TodayChallenge(ctx context.Context) (*domain.DailyChallenge, error) {
	today := s.now().UTC().Format(domain.ChallengeDateLayout)
	c, err := s.repo.GetChallengeByDate(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch challenge for %s: %w", today, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: no challenge for %s", domain.ErrNotFound, today)
	}
	return c, nil
}

func (s *CommunityService) ListChallenges(ctx context.Context) ([]*domain.DailyChallenge, error) {
	cs, err := s.repo.ListChallenges(ctx, recentChallengeLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return cs, nil
}

// CreateChallenge schedules a challenge. An empty date means today.
func (s *CommunityService) CreateChallenge(ctx context.Context, c *domain.DailyChallenge) (*domain.DailyChallenge, error) {
	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		return nil, fmt.Errorf("%w: challenge title is required", domain.ErrInvalidInput)
	}
	if !c.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, c.Category)
	}
	if !c.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", domain.ErrInvalidInput, c.Difficulty)
	}
	if c.Date == "" {
		c.Date = s.now().UTC().Format(domain.ChallengeDateLayout)
	}
	if _, err := time.Parse(domain.ChallengeDateLayout, c.Date); err != nil {
		return nil, fmt.Errorf("%w: date must look like %s", domain.ErrInvalidInput, domain.ChallengeDateLayout)
	}

	c.ID = uuid.New().String()
	c.CompletedBy = []string{}
	c.CreatedAt = s.now().UTC()
	if err := s.repo.CreateChallenge(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	s.logger.Info("challenge scheduled", zap.String("challenge_id", c.ID), zap.String("date", c.Date))
	return c, nil
}

// CompleteChallenge is idempotent per user.
func (s *CommunityService) CompleteChallenge(ctx context.Context, userID, challengeID string) (*domain.DailyChallenge, error) {
	c, err := s.repo.GetChallengeByID(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch challenge %s: %w", challengeID, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: challenge %s", domain.ErrNotFound, challengeID)
	}

	added, err := s.repo.AddChallengeCompletion(ctx, challengeID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to complete challenge %s: %w", challengeID, err)
	}
	if added {
		c.CompletedBy = append(c.CompletedBy, userID)
	}
	return c, nil
}
