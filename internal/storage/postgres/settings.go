package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

func placeholders(from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = placeholder(from + i)
	}
	return strings.Join(ph, ", ")
}

// GetOrCreateUserSettings returns the member's settings, creating defaults first.
func (s *Store) GetOrCreateUserSettings(ctx context.Context, accountID int64) (models.UserSettings, error) {
	cols := storage.AllUserSettingsColumns()
	names := strings.Join(storage.Names(cols), ", ")
	insert := `INSERT INTO user_settings (account_id, ` + names + `)
		VALUES ($1, ` + placeholders(2, len(cols)) + `)
		ON CONFLICT (account_id) DO NOTHING`
	args := append([]any{accountID}, storage.Values(cols, models.DefaultUserSettings(accountID))...)
	if _, err := s.pool.Exec(ctx, insert, args...); err != nil {
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
		` FROM user_settings WHERE account_id = $1`
	var us models.UserSettings
	dest := append([]any{&us.AccountID, &us.CreatedAt, &us.UpdatedAt}, storage.Targets(cols, &us)...)
	if err := s.pool.QueryRow(ctx, query, accountID).Scan(dest...); err != nil {
		return models.UserSettings{}, notFound(err)
	}
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
	set, args := storage.Assignments(cols, us, func(n int) string { return placeholder(n + 1) })
	query := `UPDATE user_settings SET ` + set + `, updated_at = NOW() WHERE account_id = $1`
	if err := affected(s.pool.Exec(ctx, query, append([]any{us.AccountID}, args...)...)); err != nil {
		return models.UserSettings{}, fmt.Errorf("update user settings: %w", err)
	}
	return s.getUserSettings(ctx, us.AccountID)
}

// GetMessSettings returns the singleton row, creating it with defaults.
func (s *Store) GetMessSettings(ctx context.Context) (models.MessSettings, error) {
	cols := storage.AllMessSettingsColumns()
	insert := `INSERT INTO mess_settings (id, ` + strings.Join(storage.Names(cols), ", ") + `)
		VALUES ($1, ` + placeholders(2, len(cols)) + `)
		ON CONFLICT (id) DO NOTHING`
	args := append([]any{models.MessSettingsID}, storage.Values(cols, models.DefaultMessSettings())...)
	if _, err := s.pool.Exec(ctx, insert, args...); err != nil {
		return models.MessSettings{}, fmt.Errorf("create mess settings: %w", err)
	}

	query := `SELECT upi_qr_code, created_at, updated_at, ` + strings.Join(storage.Names(cols), ", ") +
		` FROM mess_settings WHERE id = $1`
	var ms models.MessSettings
	dest := append([]any{&ms.UPIQRCodePath, &ms.CreatedAt, &ms.UpdatedAt}, storage.Targets(cols, &ms)...)
	if err := s.pool.QueryRow(ctx, query, models.MessSettingsID).Scan(dest...); err != nil {
		return models.MessSettings{}, notFound(err)
	}
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
	set, args := storage.Assignments(cols, ms, func(n int) string { return placeholder(n + 1) })
	query := `UPDATE mess_settings SET ` + set + `, updated_at = NOW() WHERE id = $1`
	if _, err := s.pool.Exec(ctx, query, append([]any{models.MessSettingsID}, args...)...); err != nil {
		return models.MessSettings{}, fmt.Errorf("update mess settings: %w", err)
	}
	return s.GetMessSettings(ctx)
}

// SetUPIQRCode stores the path of the uploaded QR image.
func (s *Store) SetUPIQRCode(ctx context.Context, path string) error {
	if _, err := s.GetMessSettings(ctx); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `UPDATE mess_settings SET upi_qr_code = $2, updated_at = NOW() WHERE id = $1`, models.MessSettingsID, path)
	return err
}
