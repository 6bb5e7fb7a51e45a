package repository

import (
	"context"
	"database/sql"
	"fmt"

	"opscurator/internal/domain"
)

const userColumns = `id, email, name, password_hash, role, work_title, mobile_number, company, experience_level, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.WorkTitle,
		&u.MobileNumber,
		&u.Company,
		&u.ExperienceLevel,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *sqlRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	ts := now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = ts
	}
	user.UpdatedAt = ts

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Role,
		user.WorkTitle,
		user.MobileNumber,
		user.Company,
		user.ExperienceLevel,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *sqlRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *sqlRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *sqlRepository) getUser(ctx context.Context, query string, arg string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	completed, err := r.ListCompletedLabIDs(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed labs: %w", err)
	}
	user.CompletedLabs = completed
	return user, nil
}

func (r *sqlRepository) UpdateProfile(ctx context.Context, userID string, profile domain.Profile) error {
	query := `UPDATE users
	          SET name = ?, work_title = ?, mobile_number = ?, company = ?, experience_level = ?, updated_at = ?
	          WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		profile.Name,
		profile.WorkTitle,
		profile.MobileNumber,
		profile.Company,
		profile.ExperienceLevel,
		now(),
		userID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *sqlRepository) ListUserSummaries(ctx context.Context) ([]*domain.UserSummary, error) {
	query := `SELECT u.id, u.name, u.email, u.role, u.created_at, COUNT(l.id)
	          FROM users u
	          LEFT JOIN completions c ON c.user_id = u.id
	          LEFT JOIN labs l ON l.id = c.lab_id
	          GROUP BY u.id
	          ORDER BY u.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []*domain.UserSummary{}
	for rows.Next() {
		var s domain.UserSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Role, &s.JoinedAt, &s.CompletedLabs); err != nil {
			return nil, err
		}
		summaries = append(summaries, &s)
	}
	return summaries, rows.Err()
}

func (r *sqlRepository) CountUsers(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
