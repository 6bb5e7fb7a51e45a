package repository

import (
	"context"
	"database/sql"
	"fmt"

	"opscurator/internal/domain"
)

func (r *sqlRepository) AddComment(ctx context.Context, comment *domain.LabComment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now()
	}

	query := `INSERT INTO lab_comments (id, lab_id, user_id, comment, rating, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		comment.ID,
		comment.LabID,
		comment.UserID,
		comment.Comment,
		comment.Rating,
		comment.CreatedAt,
	)
	return err
}

// ListComments returns the newest comments first.
func (r *sqlRepository) ListComments(ctx context.Context, labID string) ([]*domain.LabComment, error) {
	query := `SELECT id, lab_id, user_id, comment, rating, created_at
	          FROM lab_comments WHERE lab_id = ?
	          ORDER BY created_at DESC, rowid DESC`

	rows, err := r.db.QueryContext(ctx, query, labID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []*domain.LabComment{}
	for rows.Next() {
		var c domain.LabComment
		if err := rows.Scan(&c.ID, &c.LabID, &c.UserID, &c.Comment, &c.Rating, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

func (r *sqlRepository) AverageRating(ctx context.Context, labID string) (float64, error) {
	var avg float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(AVG(rating), 0.0) FROM lab_comments WHERE lab_id = ?`, labID,
	).Scan(&avg)
	return avg, err
}

func (r *sqlRepository) CreateChallenge(ctx context.Context, challenge *domain.DailyChallenge) error {
	if challenge.CreatedAt.IsZero() {
		challenge.CreatedAt = now()
	}

	query := `INSERT INTO daily_challenges (id, title, description, category, difficulty, date, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		challenge.ID,
		challenge.Title,
		challenge.Description,
		challenge.Category,
		challenge.Difficulty,
		challenge.Date,
		challenge.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: a challenge already exists for %s", domain.ErrConflict, challenge.Date)
		}
		return err
	}
	return nil
}

const challengeColumns = `id, title, description, category, difficulty, date, created_at`

func scanChallenge(row rowScanner) (*domain.DailyChallenge, error) {
	var c domain.DailyChallenge
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.Category, &c.Difficulty, &c.Date, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *sqlRepository) GetChallengeByID(ctx context.Context, id string) (*domain.DailyChallenge, error) {
	return r.getChallenge(ctx, `SELECT `+challengeColumns+` FROM daily_challenges WHERE id = ?`, id)
}

func (r *sqlRepository) GetChallengeByDate(ctx context.Context, date string) (*domain.DailyChallenge, error) {
	return r.getChallenge(ctx, `SELECT `+challengeColumns+` FROM daily_challenges WHERE date = ?`, date)
}

func (r *sqlRepository) getChallenge(ctx context.Context, query, arg string) (*domain.DailyChallenge, error) {
	c, err := scanChallenge(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if c.CompletedBy, err = r.listChallengeCompletions(ctx, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

// ListChallenges returns the most recent challenges first.
func (r *sqlRepository) ListChallenges(ctx context.Context, limit int) ([]*domain.DailyChallenge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+challengeColumns+` FROM daily_challenges ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}

	challenges := []*domain.DailyChallenge{}
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		challenges = append(challenges, c)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// the pool holds one connection, so completions are read after rows is closed
	for _, c := range challenges {
		if c.CompletedBy, err = r.listChallengeCompletions(ctx, c.ID); err != nil {
			return nil, err
		}
	}
	return challenges, nil
}

func (r *sqlRepository) listChallengeCompletions(ctx context.Context, challengeID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM challenge_completions WHERE challenge_id = ? ORDER BY completed_at, user_id`, challengeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

func (r *sqlRepository) AddChallengeCompletion(ctx context.Context, challengeID, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO challenge_completions (challenge_id, user_id, completed_at) VALUES (?, ?, ?)`,
		challengeID, userID, now())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
