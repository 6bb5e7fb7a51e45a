package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"opscurator/internal/domain"
)

type LabService struct {
	repo     Repository
	executor Executor
	mirror   ProfileMirror
	logger   *zap.Logger
}

func NewLabService(repo Repository, executor Executor, mirror ProfileMirror, logger *zap.Logger) *LabService {
	return &LabService{
		repo:     repo,
		executor: executor,
		mirror:   mirror,
		logger:   logger.Named("lab-service"),
	}
}

// ListLabs returns the catalog, optionally narrowed to one category.
func (s *LabService) ListLabs(ctx context.Context, category string) ([]*domain.Lab, error) {
	if category == "" {
		labs, err := s.repo.ListLabs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list labs: %w", err)
		}
		return labs, nil
	}

	c := domain.Category(strings.ToLower(category))
	if !c.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, category)
	}
	labs, err := s.repo.ListLabsByCategory(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s labs: %w", c, err)
	}
	return labs, nil
}

func (s *LabService) ListCategories(ctx context.Context) ([]domain.CategoryGroup, error) {
	labs, err := s.ListLabs(ctx, "")
	if err != nil {
		return nil, err
	}
	return domain.GroupByCategory(labs), nil
}

func (s *LabService) getLab(ctx context.Context, labID string) (*domain.Lab, error) {
	lab, err := s.repo.GetLabByID(ctx, labID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lab %s: %w", labID, err)
	}
	if lab == nil {
		return nil, fmt.Errorf("%w: lab %s", domain.ErrNotFound, labID)
	}
	return lab, nil
}

func (s *LabService) workspaceFor(ctx context.Context, userID string, lab *domain.Lab) (*domain.Workspace, error) {
	ws, err := s.repo.GetWorkspace(ctx, userID, lab.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workspace for lab %s: %w", lab.ID, err)
	}
	if ws == nil {
		ws, err = s.repo.CreateWorkspace(ctx, userID, lab)
		if err != nil {
			return nil, fmt.Errorf("failed to create workspace: %w", err)
		}
	}
	return ws, nil
}

// GetLabDetails returns the lab with the user's workspace, creating the
// workspace from the starter code on first visit.
func (s *LabService) GetLabDetails(ctx context.Context, userID, labID string) (*domain.Lab, *domain.Workspace, error) {
	lab, err := s.getLab(ctx, labID)
	if err != nil {
		return nil, nil, err
	}
	ws, err := s.workspaceFor(ctx, userID, lab)
	if err != nil {
		return nil, nil, err
	}
	return lab, ws, nil
}

func (s *LabService) GetSolution(ctx context.Context, labID string) (string, error) {
	lab, err := s.getLab(ctx, labID)
	if err != nil {
		return "", err
	}
	return lab.Solution, nil
}

func (s *LabService) SaveWorkspace(ctx context.Context, userID, labID, code string) (*domain.Workspace, error) {
	return s.setWorkspaceCode(ctx, userID, labID, func(*domain.Lab) string { return code })
}

// ResetWorkspace puts the starter code back. Completion is not undone.
func (s *LabService) ResetWorkspace(ctx context.Context, userID, labID string) (*domain.Workspace, error) {
	return s.setWorkspaceCode(ctx, userID, labID, func(lab *domain.Lab) string { return lab.StarterCode })
}

func (s *LabService) setWorkspaceCode(ctx context.Context, userID, labID string, code func(*domain.Lab) string) (*domain.Workspace, error) {
	lab, ws, err := s.GetLabDetails(ctx, userID, labID)
	if err != nil {
		return nil, err
	}
	newCode := code(lab)
	if err := s.repo.UpdateWorkspaceCode(ctx, ws.ID, newCode); err != nil {
		return nil, fmt.Errorf("failed to update workspace for lab %s: %w", labID, err)
	}
	ws.UserCode = newCode
	return ws, nil
}

// StreamLab saves the submitted code and starts a simulated run. The caller
// drains both channels and then hands the final state to FinishRun.
func (s *LabService) StreamLab(
	ctx context.Context,
	userID, labID, code string,
) (<-chan ExecutionResult, <-chan ExecutionFinalState, string, error) {
	lab, ws, err := s.GetLabDetails(ctx, userID, labID)
	if err != nil {
		return nil, nil, "", err
	}

	if err := s.repo.UpdateWorkspaceCode(ctx, ws.ID, code); err != nil {
		return nil, nil, "", fmt.Errorf("failed to update workspace for lab %s: %w", labID, err)
	}

	logStream, finalState, err := s.executor.Execute(ctx, domain.RunConfig{
		WorkspaceID: ws.ID,
		Lab:         lab,
		Code:        code,
	})
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to run lab %s: %w", labID, err)
	}

	return logStream, finalState, ws.ID, nil
}

// FinishRun records a successful run as a completion and marks the
// workspace completed.
func (s *LabService) FinishRun(ctx context.Context, userID, labID string, final ExecutionFinalState) (*domain.RunResult, error) {
	if final.Error != nil {
		return nil, fmt.Errorf("run of lab %s aborted: %w", labID, final.Error)
	}

	result := &domain.RunResult{LabID: labID, Success: final.Success, Output: final.Output}
	if !final.Success {
		return result, nil
	}

	added, err := s.RecordCompletion(ctx, userID, labID)
	if err != nil {
		return nil, err
	}
	result.NewlyCompleted = added

	if err := s.repo.UpdateWorkspaceStatus(ctx, final.WorkspaceID, domain.WorkspaceStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to save status of workspace %s: %w", final.WorkspaceID, err)
	}
	return result, nil
}

// SubmitLab is the blocking form of StreamLab + FinishRun.
func (s *LabService) SubmitLab(ctx context.Context, userID, labID, code string) (*domain.RunResult, error) {
	logStream, finalState, _, err := s.StreamLab(ctx, userID, labID, code)
	if err != nil {
		return nil, err
	}

	for range logStream {
	}
	final, ok := <-finalState
	if !ok {
		return nil, fmt.Errorf("run of lab %s ended without a result", labID)
	}
	return s.FinishRun(ctx, userID, labID, final)
}

// RecordCompletion adds labID to the user's completed set and reports
// whether it was new.
func (s *LabService) RecordCompletion(ctx context.Context, userID, labID string) (bool, error) {
	if _, err := s.getLab(ctx, labID); err != nil {
		return false, err
	}

	added, err := s.repo.AddCompletion(ctx, userID, labID)
	if err != nil {
		return false, fmt.Errorf("failed to record completion of lab %s: %w", labID, err)
	}
	if !added {
		return false, nil
	}

	s.logger.Info("lab completed", zap.String("user_id", userID), zap.String("lab_id", labID))
	if s.mirror != nil {
		user, err := s.repo.GetUserByID(ctx, userID)
		if err != nil || user == nil {
			s.logger.Warn("skipping profile mirror", zap.String("user_id", userID), zap.Error(err))
		} else {
			mirrorProfile(ctx, s.mirror, user, s.logger)
		}
	}
	return true, nil
}

// CreateLab adds an admin-authored lab. An id is derived from the category
// when none is given.
func (s *LabService) CreateLab(ctx context.Context, lab *domain.Lab) (*domain.Lab, error) {
	if lab.ID == "" {
		lab.ID = fmt.Sprintf("%s-%s", lab.Category, uuid.New().String()[:8])
	}
	if err := lab.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateLab(ctx, lab); err != nil {
		return nil, fmt.Errorf("failed to create lab: %w", err)
	}
	s.logger.Info("lab created", zap.String("lab_id", lab.ID))
	return lab, nil
}

func (s *LabService) UpdateLab(ctx context.Context, lab *domain.Lab) (*domain.Lab, error) {
	if err := lab.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateLab(ctx, lab); err != nil {
		return nil, fmt.Errorf("failed to update lab %s: %w", lab.ID, err)
	}
	return s.getLab(ctx, lab.ID)
}

func (s *LabService) DeleteLab(ctx context.Context, labID string) error {
	if err := s.repo.DeleteLab(ctx, labID); err != nil {
		return fmt.Errorf("failed to delete lab %s: %w", labID, err)
	}
	s.logger.Info("lab deleted", zap.String("lab_id", labID))
	return nil
}

// SeedCatalog upserts labs so restarts pick up edited catalog files.
// Labs created through the admin API are left alone.
func (s *LabService) SeedCatalog(ctx context.Context, labs []*domain.Lab) error {
	for _, lab := range labs {
		if err := s.repo.UpsertLab(ctx, lab); err != nil {
			return fmt.Errorf("failed to seed lab %s: %w", lab.ID, err)
		}
	}
	s.logger.Info("catalog seeded", zap.Int("labs", len(labs)))
	return nil
}
