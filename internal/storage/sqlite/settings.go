package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

func marks(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func question(int) string { return "?" }

// GetOrCreateUserSettings returns the member's settings, creating defaults first.
func (s *Store) GetOrCreateUserSettings(ctx context.Context, accountID int64) (models.UserSettings, error) {
	cols := storage.AllUserSettingsColumns()
	ts := nanos(now())
	insert := `INSERT INTO user_settings (account_id, created_at, updated_at, ` + strings.Join(storage.Names(cols), ", ") + `)
		VALUES (?, ?, ?, ` + marks(len(cols)) + `)
		ON CONFLICT (account_id) DO NOTHING`
	args := append([]any{accountID, ts, ts}, storage.Values(cols, models.DefaultUserSettings(accountID))...)
	if _, err := s.db.ExecContext(ctx, insert, args...); err != nil {
		if isForeignKeyViolation(err) {
			return models.UserSettings{}, storage.ErrNotFound
		}
		return models.UserSettings{}, fmt.Errorf("create user settings: %w", err)
	}
	return s.getUserSettings(ctx, accountID)
}

func (s *Store) getUserSettings(ctx context.Context, accountID int64) (models.UserSettings, error) {
	cols := storage.AllUserSettingsColumns()
	query := `SELECT account_id, created_at, updated_at, ` + strings.Join(storage.Names(cols), ", ") +
		` FROM user_settings WHERE account_id = ?`
	var (
		us               models.UserSettings
		created, updated int64
	)
	dest := append([]any{&us.AccountID, &created, &updated}, storage.Targets(cols, &us)...)
	if err := s.db.QueryRowContext(ctx, query, accountID).Scan(dest...); err != nil {
		return models.UserSettings{}, notFound(err)
	}
	us.CreatedAt = fromNanos(created)
	us.UpdatedAt = fromNanos(updated)
	return us, nil
}

// UpdateUserSettings writes the columns of one section.
func (s *Store) UpdateUserSettings(ctx context.Context, section models.SettingsSection, us models.UserSettings) (models.UserSettings, error) {
	cols, err := storage.UserSettingsColumns(section)
	if err != nil {
		return models.UserSettings{}, err
	}
	if _, err := s.GetOrCreateUserSettings(ctx, us.AccountID); err != nil {
		return models.UserSettings{}, err
	}
	set, args := storage.Assignments(cols, us, question)
	args = append(args, nanos(now()), us.AccountID)
	if _, err := s.db.ExecContext(ctx, `UPDATE user_settings SET `+set+`, updated_at = ? WHERE account_id = ?`, args...); err != nil {
		return models.UserSettings{}, fmt.Errorf("update user settings: %w", err)
	}
	return s.getUserSettings(ctx, us.AccountID)
}

// GetMessSettings returns the singleton row, creating it with defaults.
func (s *Store) GetMessSettings(ctx context.Context) (models.MessSettings, error) {
	cols := storage.AllMessSettingsColumns()
	names := strings.Join(storage.Names(cols), ", ")
	ts := nanos(now())
	insert := `INSERT INTO mess_settings (id, created_at, updated_at, ` + names + `)
		VALUES (?, ?, ?, ` + marks(len(cols)) + `)
		ON CONFLICT (id) DO NOTHING`
	args := append([]any{models.MessSettingsID, ts, ts}, storage.Values(cols, models.DefaultMessSettings())...)
	if _, err := s.db.ExecContext(ctx, insert, args...); err != nil {
		return models.MessSettings{}, fmt.Errorf("create mess settings: %w", err)
	}

	var (
		ms               models.MessSettings
		created, updated int64
	)
	dest := append([]any{&ms.UPIQRCodePath, &created, &updated}, storage.Targets(cols, &ms)...)
	query := `SELECT upi_qr_code, created_at, updated_at, ` + names + ` FROM mess_settings WHERE id = ?`
	if err := s.db.QueryRowContext(ctx, query, models.MessSettingsID).Scan(dest...); err != nil {
		return models.MessSettings{}, notFound(err)
	}
	ms.CreatedAt = fromNanos(created)
	ms.UpdatedAt = fromNanos(updated)
	return ms, nil
}

// UpdateMessSettings writes the columns of one section.
func (s *Store) UpdateMessSettings(ctx context.Context, section models.SettingsSection, ms models.MessSettings) (models.MessSettings, error) {
	cols, err := storage.MessSettingsColumns(section)
	if err != nil {
		return models.MessSettings{}, err
	}
	if _, err := s.GetMessSettings(ctx); err != nil {
		return models.MessSettings{}, err
	}
	set, args := storage.Assignments(cols, ms, question)
	args = append(args, nanos(now()), models.MessSettingsID)
	if _, err := s.db.ExecContext(ctx, `UPDATE mess_settings SET `+set+`, updated_at = ? WHERE id = ?`, args...); err != nil {
		return models.MessSettings{}, fmt.Errorf("update mess settings: %w", err)
	}
	return s.GetMessSettings(ctx)
}

// SetUPIQRCode stores the path of the uploaded QR image.
func (s *Store) SetUPIQRCode(ctx context.Context, path string) error {
	if _, err := s.GetMessSettings(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `UPDATE mess_settings SET upi_qr_code = ?, updated_at = ? WHERE id = ?`, path, nanos(now()), models.MessSettingsID)
	return err
}
