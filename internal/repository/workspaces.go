package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"opscurator/internal/domain"
)

// GetWorkspace fetches a user's saved progress on a lab.
func (r *sqlRepository) GetWorkspace(ctx context.Context, userID, labID string) (*domain.Workspace, error) {
	query := `SELECT id, user_id, lab_id, user_code, status, updated_at
	          FROM workspaces WHERE user_id = ? AND lab_id = ?`

	row := r.db.QueryRowContext(ctx, query, userID, labID)

	var ws domain.Workspace
	err := row.Scan(
		&ws.ID,
		&ws.UserID,
		&ws.LabID,
		&ws.UserCode,
		&ws.Status,
		&ws.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &ws, nil
}

// CreateWorkspace seeds a workspace with the lab's starter code. An existing
// workspace for the same user and lab is returned untouched.
func (r *sqlRepository) CreateWorkspace(ctx context.Context, userID string, lab *domain.Lab) (*domain.Workspace, error) {
	insertQuery := `INSERT OR IGNORE INTO workspaces (id, user_id, lab_id, user_code, status, updated_at)
	                VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, insertQuery,
		uuid.New().String(),
		userID,
		lab.ID,
		lab.StarterCode,
		domain.WorkspaceStatusInProgress,
		now(),
	)
	if err != nil {
		return nil, err
	}

	ws, err := r.GetWorkspace(ctx, userID, lab.ID)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, sql.ErrNoRows
	}
	return ws, nil
}

func (r *sqlRepository) UpdateWorkspaceCode(ctx context.Context, workspaceID string, code string) error {
	query := `UPDATE workspaces SET user_code = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, code, now(), workspaceID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqlRepository) UpdateWorkspaceStatus(ctx context.Context, workspaceID string, status string) error {
	query := `UPDATE workspaces SET status = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, status, now(), workspaceID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
