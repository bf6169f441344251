package postgres

import (
	"context"
	"fmt"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

// LogActivity appends an audit entry.
func (s *Store) LogActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	const query = `
		INSERT INTO activity_logs (account_id, action_type, description, ts, related_object_id)
		VALUES ($1, $2, $3, COALESCE($4::timestamptz, NOW()), $5)
		RETURNING id, ts`
	var ts any
	if !a.Timestamp.IsZero() {
		ts = a.Timestamp
	}
	if err := s.pool.QueryRow(ctx, query, a.AccountID, a.Type, a.Description, ts, a.RelatedID).Scan(&a.ID, &a.Timestamp); err != nil {
		if isForeignKeyViolation(err) {
			return models.Activity{}, storage.ErrNotFound
		}
		return models.Activity{}, fmt.Errorf("log activity: %w", err)
	}
	return a, nil
}

// RecentActivity returns the newest entries for one account, or for all when accountID is 0.
func (s *Store) RecentActivity(ctx context.Context, accountID int64, limit int) ([]models.Activity, error) {
	const query = `
		SELECT l.id, l.account_id, l.action_type, l.description, l.ts, l.related_object_id, a.username
		FROM activity_logs l
		JOIN accounts a ON a.id = l.account_id
		WHERE ($1::bigint = 0 OR l.account_id = $1)
		ORDER BY l.ts DESC, l.id DESC
		LIMIT $2`
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.AccountID, &a.Type, &a.Description, &a.Timestamp, &a.RelatedID, &a.Username); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
