package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"opscurator/internal/domain"
)

const labColumns = `id, title, category, difficulty, description, estimated_minutes, instructions, starter_code,
	solution, validation_type, validation_expected, validation_description, checks, success_output, failure_output, created_at`

func scanLab(row rowScanner) (*domain.Lab, error) {
	var lab domain.Lab
	var checks string
	err := row.Scan(
		&lab.ID,
		&lab.Title,
		&lab.Category,
		&lab.Difficulty,
		&lab.Description,
		&lab.EstimatedMinutes,
		&lab.Instructions,
		&lab.StarterCode,
		&lab.Solution,
		&lab.Validation.Type,
		&lab.Validation.Expected,
		&lab.Validation.Description,
		&checks,
		&lab.SuccessOutput,
		&lab.FailureOutput,
		&lab.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(checks), &lab.Checks); err != nil {
		return nil, fmt.Errorf("lab %s: corrupt checks column: %w", lab.ID, err)
	}
	return &lab, nil
}

func labArgs(lab *domain.Lab) ([]any, error) {
	checks, err := json.Marshal(lab.Checks)
	if err != nil {
		return nil, err
	}
	return []any{
		lab.ID,
		lab.Title,
		lab.Category,
		lab.Difficulty,
		lab.Description,
		lab.EstimatedMinutes,
		lab.Instructions,
		lab.StarterCode,
		lab.Solution,
		lab.Validation.Type,
		lab.Validation.Expected,
		lab.Validation.Description,
		string(checks),
		lab.SuccessOutput,
		lab.FailureOutput,
		lab.CreatedAt,
	}, nil
}

func (r *sqlRepository) GetLabByID(ctx context.Context, labID string) (*domain.Lab, error) {
	query := `SELECT ` + labColumns + ` FROM labs WHERE id = ?`

	lab, err := scanLab(r.db.QueryRowContext(ctx, query, labID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not an error: the lab simply does not exist
		}
		return nil, err
	}
	return lab, nil
}

func (r *sqlRepository) ListLabs(ctx context.Context) ([]*domain.Lab, error) {
	return r.queryLabs(ctx, `SELECT `+labColumns+` FROM labs ORDER BY category, id`)
}

func (r *sqlRepository) ListLabsByCategory(ctx context.Context, category domain.Category) ([]*domain.Lab, error) {
	return r.queryLabs(ctx, `SELECT `+labColumns+` FROM labs WHERE category = ? ORDER BY id`, category)
}

func (r *sqlRepository) queryLabs(ctx context.Context, query string, args ...any) ([]*domain.Lab, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labs := []*domain.Lab{}
	for rows.Next() {
		lab, err := scanLab(rows)
		if err != nil {
			return nil, err
		}
		labs = append(labs, lab)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return labs, nil
}

func (r *sqlRepository) CreateLab(ctx context.Context, lab *domain.Lab) error {
	if lab.CreatedAt.IsZero() {
		lab.CreatedAt = now()
	}
	args, err := labArgs(lab)
	if err != nil {
		return err
	}

	query := `INSERT INTO labs (` + labColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: lab %s", domain.ErrConflict, lab.ID)
		}
		return err
	}
	return nil
}

// UpsertLab refreshes a catalog lab in place and keeps its original created_at.
func (r *sqlRepository) UpsertLab(ctx context.Context, lab *domain.Lab) error {
	if lab.CreatedAt.IsZero() {
		lab.CreatedAt = now()
	}
	args, err := labArgs(lab)
	if err != nil {
		return err
	}

	query := `INSERT INTO labs (` + labColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			difficulty = excluded.difficulty,
			description = excluded.description,
			estimated_minutes = excluded.estimated_minutes,
			instructions = excluded.instructions,
			starter_code = excluded.starter_code,
			solution = excluded.solution,
			validation_type = excluded.validation_type,
			validation_expected = excluded.validation_expected,
			validation_description = excluded.validation_description,
			checks = excluded.checks,
			success_output = excluded.success_output,
			failure_output = excluded.failure_output`

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *sqlRepository) UpdateLab(ctx context.Context, lab *domain.Lab) error {
	checks, err := json.Marshal(lab.Checks)
	if err != nil {
		return err
	}

	query := `UPDATE labs SET
			title = ?, category = ?, difficulty = ?, description = ?, estimated_minutes = ?,
			instructions = ?, starter_code = ?, solution = ?,
			validation_type = ?, validation_expected = ?, validation_description = ?,
			checks = ?, success_output = ?, failure_output = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		lab.Title,
		lab.Category,
		lab.Difficulty,
		lab.Description,
		lab.EstimatedMinutes,
		lab.Instructions,
		lab.StarterCode,
		lab.Solution,
		lab.Validation.Type,
		lab.Validation.Expected,
		lab.Validation.Description,
		string(checks),
		lab.SuccessOutput,
		lab.FailureOutput,
		lab.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqlRepository) DeleteLab(ctx context.Context, labID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM labs WHERE id = ?`, labID)
	if err != nil {
		return err
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM workspaces WHERE lab_id = ?`, labID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lab_comments WHERE lab_id = ?`, labID); err != nil {
		return err
	}
	return tx.Commit()
}
