package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

const messageSelect = `
	SELECT m.id, m.account_id, m.subject, m.body, m.message_type, m.status, m.created_at, m.resolved_at,
		m.admin_reply, m.replied_at, m.user_reply, m.user_replied_at,
		COALESCE(NULLIF(TRIM(a.first_name || ' ' || a.last_name), ''), a.username)
	FROM messages m
	JOIN accounts a ON a.id = m.account_id`

const messageWhere = `
	WHERE ($1::bigint = 0 OR m.account_id = $1)
		AND ($2::text = '' OR m.message_type = $2)
		AND ($3::text = '' OR m.status = $3)`

// CreateMessage inserts a message in the pending state.
func (s *Store) CreateMessage(ctx context.Context, m models.Message) (models.Message, error) {
	if m.Type == "" {
		m.Type = models.MessageFromUser
	}
	const query = `
		INSERT INTO messages (account_id, subject, body, message_type, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING id`
	var id int64
	if err := s.pool.QueryRow(ctx, query, m.AccountID, m.Subject, m.Body, m.Type).Scan(&id); err != nil {
		if isForeignKeyViolation(err) {
			return models.Message{}, storage.ErrNotFound
		}
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return s.GetMessage(ctx, id)
}

// GetMessage fetches a message by id.
func (s *Store) GetMessage(ctx context.Context, id int64) (models.Message, error) {
	return scanMessage(s.pool.QueryRow(ctx, messageSelect+` WHERE m.id = $1`, id))
}

// ListMessages returns messages matching filter, newest first.
func (s *Store) ListMessages(ctx context.Context, filter models.MessageFilter) ([]models.Message, error) {
	query := messageSelect + messageWhere + ` ORDER BY m.created_at DESC, m.id DESC`
	args := []any{filter.AccountID, string(filter.Type), string(filter.Status)}
	if filter.Limit > 0 {
		query += ` LIMIT $4`
		args = append(args, filter.Limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// CountMessages counts messages matching filter.
func (s *Store) CountMessages(ctx context.Context, filter models.MessageFilter) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages m`+messageWhere,
		filter.AccountID, string(filter.Type), string(filter.Status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// ResolveMessage closes the message without touching replies.
func (s *Store) ResolveMessage(ctx context.Context, id int64, now time.Time) (models.Message, error) {
	const query = `UPDATE messages SET status = 'resolved', resolved_at = $2 WHERE id = $1`
	if err := affected(s.pool.Exec(ctx, query, id, now)); err != nil {
		return models.Message{}, err
	}
	return s.GetMessage(ctx, id)
}

// ReplyAsAdmin stores the admin reply without touching status.
func (s *Store) ReplyAsAdmin(ctx context.Context, id int64, reply string, now time.Time) (models.Message, error) {
	const query = `UPDATE messages SET admin_reply = $2, replied_at = $3 WHERE id = $1`
	if err := affected(s.pool.Exec(ctx, query, id, reply, now)); err != nil {
		return models.Message{}, err
	}
	return s.GetMessage(ctx, id)
}

// ReplyAsMember stores the owner's reply.
func (s *Store) ReplyAsMember(ctx context.Context, id, accountID int64, reply string, now time.Time) (models.Message, error) {
	const query = `UPDATE messages SET user_reply = $3, user_replied_at = $4 WHERE id = $1 AND account_id = $2`
	if err := affected(s.pool.Exec(ctx, query, id, accountID, reply, now)); err != nil {
		return models.Message{}, err
	}
	return s.GetMessage(ctx, id)
}

func scanMessage(row pgx.Row) (models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.AccountID, &m.Subject, &m.Body, &m.Type, &m.Status, &m.CreatedAt, &m.ResolvedAt,
		&m.AdminReply, &m.RepliedAt, &m.UserReply, &m.UserRepliedAt, &m.FullName)
	if err != nil {
		return models.Message{}, notFound(err)
	}
	return m, nil
}
