package repository

import (
	"context"
)

func (r *sqlRepository) AddCompletion(ctx context.Context, userID, labID string) (bool, error) {
	query := `INSERT OR IGNORE INTO completions (user_id, lab_id, completed_at) VALUES (?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query, userID, labID, now())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListCompletedLabIDs returns lab ids in completion order.
func (r *sqlRepository) ListCompletedLabIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT lab_id FROM completions WHERE user_id = ? ORDER BY completed_at, lab_id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountCompletions ignores completions of labs that no longer exist.
func (r *sqlRepository) CountCompletions(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM completions c JOIN labs l ON l.id = c.lab_id`

	var n int
	err := r.db.QueryRowContext(ctx, query).Scan(&n)
	return n, err
}

func (r *sqlRepository) SumCompletedMinutes(ctx context.Context) (int, error) {
	query := `SELECT COALESCE(SUM(l.estimated_minutes), 0) FROM completions c JOIN labs l ON l.id = c.lab_id`

	var n int
	err := r.db.QueryRowContext(ctx, query).Scan(&n)
	return n, err
}
