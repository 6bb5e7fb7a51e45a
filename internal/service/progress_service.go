package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"opscurator/internal/domain"
)

type ProgressService struct {
	repo   Repository
	mirror ProfileMirror
	logger *zap.Logger
}

func NewProgressService(repo Repository, mirror ProfileMirror, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		repo:   repo,
		mirror: mirror,
		logger: logger.Named("progress-service"),
	}
}

func (s *ProgressService) Progress(ctx context.Context, userID string) (*domain.Progress, error) {
	completed, err := s.repo.ListCompletedLabIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completions: %w", err)
	}
	labs, err := s.repo.ListLabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list labs: %w", err)
	}

	p := domain.ComputeProgress(labs, completed)
	return &p, nil
}

func (s *ProgressService) UpdateProfile(ctx context.Context, userID string, profile domain.Profile) (*domain.User, error) {
	profile.Name = strings.TrimSpace(profile.Name)
	profile.WorkTitle = strings.TrimSpace(profile.WorkTitle)
	profile.MobileNumber = strings.TrimSpace(profile.MobileNumber)
	profile.Company = strings.TrimSpace(profile.Company)
	profile.ExperienceLevel = strings.TrimSpace(profile.ExperienceLevel)
	if profile.Name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	if err := s.repo.UpdateProfile(ctx, userID, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile of %s: %w", userID, err)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user %s: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, userID)
	}

	mirrorProfile(ctx, s.mirror, user, s.logger)
	return user, nil
}
