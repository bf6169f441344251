package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

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
	WHERE (? = 0 OR m.account_id = ?)
		AND (? = '' OR m.message_type = ?)
		AND (? = '' OR m.status = ?)`

func messageArgs(f models.MessageFilter) []any {
	return []any{f.AccountID, f.AccountID, string(f.Type), string(f.Type), string(f.Status), string(f.Status)}
}

// CreateMessage inserts a message in the pending state.
func (s *Store) CreateMessage(ctx context.Context, m models.Message) (models.Message, error) {
	if m.Type == "" {
		m.Type = models.MessageFromUser
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (account_id, subject, body, message_type, status, created_at)
		VALUES (?, ?, ?, ?, 'pending', ?)`,
		m.AccountID, m.Subject, m.Body, string(m.Type), nanos(now()),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Message{}, storage.ErrNotFound
		}
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Message{}, err
	}
	return s.GetMessage(ctx, id)
}

// GetMessage fetches a message by id.
func (s *Store) GetMessage(ctx context.Context, id int64) (models.Message, error) {
	return scanMessage(s.db.QueryRowContext(ctx, messageSelect+` WHERE m.id = ?`, id))
}

// ListMessages returns messages matching filter, newest first.
func (s *Store) ListMessages(ctx context.Context, filter models.MessageFilter) ([]models.Message, error) {
	query := messageSelect + messageWhere + ` ORDER BY m.created_at DESC, m.id DESC`
	args := messageArgs(filter)
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
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
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages m`+messageWhere, messageArgs(filter)...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// ResolveMessage closes the message without touching replies.
func (s *Store) ResolveMessage(ctx context.Context, id int64, at time.Time) (models.Message, error) {
	err := affected(s.db.ExecContext(ctx, `UPDATE messages SET status = 'resolved', resolved_at = ? WHERE id = ?`, nanos(at), id))
	if err != nil {
		return models.Message{}, err
	}
	return s.GetMessage(ctx, id)
}

// ReplyAsAdmin stores the admin reply without touching status.
func (s *Store) ReplyAsAdmin(ctx context.Context, id int64, reply string, at time.Time) (models.Message, error) {
	err := affected(s.db.ExecContext(ctx, `UPDATE messages SET admin_reply = ?, replied_at = ? WHERE id = ?`, reply, nanos(at), id))
	if err != nil {
		return models.Message{}, err
	}
	return s.GetMessage(ctx, id)
}

// ReplyAsMember stores the owner's reply.
func (s *Store) ReplyAsMember(ctx context.Context, id, accountID int64, reply string, at time.Time) (models.Message, error) {
	err := affected(s.db.ExecContext(ctx,
		`UPDATE messages SET user_reply = ?, user_replied_at = ? WHERE id = ? AND account_id = ?`,
		reply, nanos(at), id, accountID,
	))
	if err != nil {
		return models.Message{}, err
	}
	return s.GetMessage(ctx, id)
}

func scanMessage(row scanner) (models.Message, error) {
	var (
		m                           models.Message
		msgType, status             string
		created                     int64
		resolved, replied, uReplied sql.NullInt64
	)
	err := row.Scan(&m.ID, &m.AccountID, &m.Subject, &m.Body, &msgType, &status, &created, &resolved,
		&m.AdminReply, &replied, &m.UserReply, &uReplied, &m.FullName)
	if err != nil {
		return models.Message{}, notFound(err)
	}
	m.Type = models.MessageType(msgType)
	m.Status = models.MessageStatus(status)
	m.CreatedAt = fromNanos(created)
	m.ResolvedAt = fromNullNanos(resolved)
	m.RepliedAt = fromNullNanos(replied)
	m.UserRepliedAt = fromNullNanos(uReplied)
	return m, nil
}
