package service

import (
	"context"
	"time"

	"opscurator/internal/domain"
)

// ExecutionResult is one line of run output.
type ExecutionResult struct {
	Line string
}

type ExecutionFinalState struct {
	WorkspaceID string
	Success     bool
	Output      string
	Error       error
}

type Executor interface {
	Execute(ctx context.Context, config domain.RunConfig) (<-chan ExecutionResult, <-chan ExecutionFinalState, error)
}

// Repository lookups return (nil, nil) when the row does not exist.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, profile domain.Profile) error
	ListUserSummaries(ctx context.Context) ([]*domain.UserSummary, error)
	CountUsers(ctx context.Context) (int, error)
}

type LabRepository interface {
	GetLabByID(ctx context.Context, labID string) (*domain.Lab, error)
	ListLabs(ctx context.Context) ([]*domain.Lab, error)
	ListLabsByCategory(ctx context.Context, category domain.Category) ([]*domain.Lab, error)
	CreateLab(ctx context.Context, lab *domain.Lab) error
	UpsertLab(ctx context.Context, lab *domain.Lab) error
	UpdateLab(ctx context.Context, lab *domain.Lab) error
	DeleteLab(ctx context.Context, labID string) error
}

type WorkspaceRepository interface {
	GetWorkspace(ctx context.Context, userID, labID string) (*domain.Workspace, error)
	CreateWorkspace(ctx context.Context, userID string, lab *domain.Lab) (*domain.Workspace, error)
	UpdateWorkspaceCode(ctx context.Context, workspaceID string, code string) error
	UpdateWorkspaceStatus(ctx context.Context, workspaceID string, status string) error
}

type ProgressRepository interface {
	// AddCompletion reports false when the lab was already completed.
	AddCompletion(ctx context.Context, userID, labID string) (bool, error)
	ListCompletedLabIDs(ctx context.Context, userID string) ([]string, error)
	CountCompletions(ctx context.Context) (int, error)
	SumCompletedMinutes(ctx context.Context) (int, error)
}

type CommunityRepository interface {
	AddComment(ctx context.Context, comment *domain.LabComment) error
	ListComments(ctx context.Context, labID string) ([]*domain.LabComment, error)
	AverageRating(ctx context.Context, labID string) (float64, error)

	CreateChallenge(ctx context.Context, challenge *domain.DailyChallenge) error
	GetChallengeByID(ctx context.Context, id string) (*domain.DailyChallenge, error)
	GetChallengeByDate(ctx context.Context, date string) (*domain.DailyChallenge, error)
	ListChallenges(ctx context.Context, limit int) ([]*domain.DailyChallenge, error)
	AddChallengeCompletion(ctx context.Context, challengeID, userID string) (bool, error)
}

type Repository interface {
	UserRepository
	LabRepository
	WorkspaceRepository
	ProgressRepository
	CommunityRepository
	Ping(ctx context.Context) error
	Close() error
}

// SessionStore tracks live tokens so that logout can revoke them.
type SessionStore interface {
	Put(ctx context.Context, tokenID, userID string, ttl time.Duration) error
	Get(ctx context.Context, tokenID string) (string, error)
	Delete(ctx context.Context, tokenID string) error
}

// ProfileMirror copies user profiles to a hosted backend.
type ProfileMirror interface {
	UpsertProfile(ctx context.Context, user *domain.User) error
	Ping(ctx context.Context) error
}
