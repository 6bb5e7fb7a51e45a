package service

import (
	"context"
	"fmt"

	"opscurator/internal/domain"
)

type AdminService struct {
	repo Repository
}

func NewAdminService(repo Repository) *AdminService {
	return &AdminService{repo: repo}
}

// Stats: completion rate is completions over every possible (user, lab)
// pair, as a percentage; average minutes is per completion.
func (s *AdminService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	labs, err := s.repo.ListLabs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list labs: %w", err)
	}
	completions, err := s.repo.CountCompletions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count completions: %w", err)
	}
	minutes, err := s.repo.SumCompletedMinutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum minutes: %w", err)
	}

	stats := &domain.AdminStats{TotalUsers: users, ActiveLabs: len(labs)}
	if possible := users * len(labs); possible > 0 {
		stats.CompletionRate = float64(completions) / float64(possible) * 100
	}
	if completions > 0 {
		stats.AverageMinutes = float64(minutes) / float64(completions)
	}
	return stats, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.UserSummary, error) {
	users, err := s.repo.ListUserSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
