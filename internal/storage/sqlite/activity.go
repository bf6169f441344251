package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

// LogActivity appends an audit entry.
func (s *Store) LogActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	if a.Timestamp.IsZero() {
		a.Timestamp = now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_logs (account_id, action_type, description, ts, related_object_id)
		VALUES (?, ?, ?, ?, ?)`,
		a.AccountID, string(a.Type), a.Description, nanos(a.Timestamp), a.RelatedID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Activity{}, storage.ErrNotFound
		}
		return models.Activity{}, fmt.Errorf("log activity: %w", err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return models.Activity{}, err
	}
	a.Timestamp = fromNanos(nanos(a.Timestamp))
	return a, nil
}

// RecentActivity returns the newest entries for one account, or for all when accountID is 0.
func (s *Store) RecentActivity(ctx context.Context, accountID int64, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.id, l.account_id, l.action_type, l.description, l.ts, l.related_object_id, a.username
		FROM activity_logs l
		JOIN accounts a ON a.id = l.account_id
		WHERE (? = 0 OR l.account_id = ?)
		ORDER BY l.ts DESC, l.id DESC
		LIMIT ?`,
		accountID, accountID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}
	defer rows.Close()

	var out []models.Activity
	for rows.Next() {
		var (
			a       models.Activity
			kind    string
			ts      int64
			related sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.AccountID, &kind, &a.Description, &ts, &related, &a.Username); err != nil {
			return nil, err
		}
		a.Type = models.ActivityType(kind)
		a.Timestamp = fromNanos(ts)
		if related.Valid {
			id := related.Int64
			a.RelatedID = &id
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
