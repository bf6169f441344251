package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

const accountSelect = `
	SELECT a.id, a.username, a.email, a.first_name, a.last_name, a.password_hash, a.created_at,
		p.role, p.phone, p.room_no, p.avatar_path, p.dark_mode, p.is_active, p.failed_logins, p.locked_until, p.created_at
	FROM accounts a
	LEFT JOIN profiles p ON p.account_id = a.id`

const profileColumns = `account_id, role, phone, room_no, avatar_path, dark_mode, is_active, failed_logins, locked_until, created_at`

// CreateAccount inserts the account and its profile in one transaction.
func (s *Store) CreateAccount(ctx context.Context, acct models.Account) (models.Account, error) {
	profile := models.Profile{Role: models.RoleMember, Active: true}
	if acct.Profile != nil {
		profile = *acct.Profile
	}
	if profile.Role == "" {
		profile.Role = models.RoleMember
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertAccount = `
		INSERT INTO accounts (username, email, first_name, last_name, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	var id int64
	err = tx.QueryRow(ctx, insertAccount, acct.Username, acct.Email, acct.FirstName, acct.LastName, acct.PasswordHash).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Account{}, storage.ErrAlreadyExists
		}
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}

	const insertProfile = `
		INSERT INTO profiles (account_id, role, phone, room_no, avatar_path, dark_mode, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.Exec(ctx, insertProfile, id, profile.Role, profile.Phone, profile.RoomNo, profile.AvatarPath, profile.DarkMode, profile.Active); err != nil {
		return models.Account{}, fmt.Errorf("insert profile: %w", err)
	}

	created, err := scanAccount(tx.QueryRow(ctx, accountSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return models.Account{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Account{}, fmt.Errorf("commit transaction: %w", err)
	}
	return created, nil
}

// EnsureProfile inserts a profile for accountID unless one already exists.
func (s *Store) EnsureProfile(ctx context.Context, accountID int64, role models.Role) (models.Profile, bool, error) {
	if role == "" {
		role = models.RoleMember
	}
	const insert = `
		INSERT INTO profiles (account_id, role)
		VALUES ($1, $2)
		ON CONFLICT (account_id) DO NOTHING`
	tag, err := s.pool.Exec(ctx, insert, accountID, role)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Profile{}, false, storage.ErrNotFound
		}
		return models.Profile{}, false, fmt.Errorf("ensure profile: %w", err)
	}
	profile, err := scanProfile(s.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE account_id = $1`, accountID))
	if err != nil {
		return models.Profile{}, false, err
	}
	return profile, tag.RowsAffected() == 1, nil
}

// GetAccount fetches an account and its profile by id.
func (s *Store) GetAccount(ctx context.Context, id int64) (models.Account, error) {
	return scanAccount(s.pool.QueryRow(ctx, accountSelect+` WHERE a.id = $1`, id))
}

// FindAccountByIdentifier fetches the first account matching the identifier as username or email.
func (s *Store) FindAccountByIdentifier(ctx context.Context, identifier string) (models.Account, error) {
	const where = ` WHERE a.username = $1 OR LOWER(a.email) = LOWER($1) ORDER BY a.id LIMIT 1`
	return scanAccount(s.pool.QueryRow(ctx, accountSelect+where, identifier))
}

// FindAccountByEmail fetches an account by email address.
func (s *Store) FindAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	const where = ` WHERE LOWER(a.email) = LOWER($1) ORDER BY a.id LIMIT 1`
	return scanAccount(s.pool.QueryRow(ctx, accountSelect+where, email))
}

// ListAccounts returns accounts with role, or every account when role is empty.
func (s *Store) ListAccounts(ctx context.Context, role models.Role) ([]models.Account, error) {
	const where = ` WHERE ($1::text = '' OR p.role = $1) ORDER BY a.username`
	rows, err := s.pool.Query(ctx, accountSelect+where, string(role))
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acct)
	}
	return accounts, rows.Err()
}

// CountAccounts counts profiles with role, optionally only active ones.
func (s *Store) CountAccounts(ctx context.Context, role models.Role, activeOnly bool) (int, error) {
	const query = `
		SELECT COUNT(*) FROM profiles
		WHERE ($1::text = '' OR role = $1) AND (NOT $2::boolean OR is_active)`
	var n int
	if err := s.pool.QueryRow(ctx, query, string(role), activeOnly).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

// UpdateAccount writes the identity fields and, when present, the profile.
func (s *Store) UpdateAccount(ctx context.Context, acct models.Account) (models.Account, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return models.Account{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const updateAccount = `
		UPDATE accounts SET username = $2, email = $3, first_name = $4, last_name = $5
		WHERE id = $1`
	tag, err := tx.Exec(ctx, updateAccount, acct.ID, acct.Username, acct.Email, acct.FirstName, acct.LastName)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Account{}, storage.ErrAlreadyExists
		}
		return models.Account{}, fmt.Errorf("update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.Account{}, storage.ErrNotFound
	}

	if p := acct.Profile; p != nil {
		const upsertProfile = `
			INSERT INTO profiles (account_id, role, phone, room_no, is_active)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (account_id) DO UPDATE
			SET role = EXCLUDED.role, phone = EXCLUDED.phone, room_no = EXCLUDED.room_no, is_active = EXCLUDED.is_active`
		if _, err := tx.Exec(ctx, upsertProfile, acct.ID, p.Role, p.Phone, p.RoomNo, p.Active); err != nil {
			return models.Account{}, fmt.Errorf("update profile: %w", err)
		}
	}

	updated, err := scanAccount(tx.QueryRow(ctx, accountSelect+` WHERE a.id = $1`, acct.ID))
	if err != nil {
		return models.Account{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Account{}, fmt.Errorf("commit transaction: %w", err)
	}
	return updated, nil
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return affected(s.pool.Exec(ctx, `UPDATE accounts SET password_hash = $2 WHERE id = $1`, id, hash))
}

// UpdateAvatar stores the avatar path on the profile.
func (s *Store) UpdateAvatar(ctx context.Context, id int64, path string) error {
	return affected(s.pool.Exec(ctx, `UPDATE profiles SET avatar_path = $2 WHERE account_id = $1`, id, path))
}

// UpdateTheme stores the dark mode preference on the profile.
func (s *Store) UpdateTheme(ctx context.Context, id int64, darkMode bool) error {
	return affected(s.pool.Exec(ctx, `UPDATE profiles SET dark_mode = $2 WHERE account_id = $1`, id, darkMode))
}

// DeleteAccount removes the account; owned rows go with it.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	return affected(s.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id))
}

// RecordLoginFailure bumps the failure counter and opens a lockout window once
// maxAttempts is reached. A lockout that has already expired starts a fresh
// count.
func (s *Store) RecordLoginFailure(ctx context.Context, id int64, maxAttempts int, lockFor time.Duration, now time.Time) (models.Profile, error) {
	const query = `
		UPDATE profiles
		SET failed_logins = CASE WHEN locked_until <= $4::timestamptz THEN 1 ELSE failed_logins + 1 END,
			locked_until = CASE
				WHEN $2 > 0 AND (CASE WHEN locked_until <= $4::timestamptz THEN 1 ELSE failed_logins + 1 END) >= $2 THEN $3::timestamptz
				WHEN locked_until <= $4::timestamptz THEN NULL
				ELSE locked_until
			END
		WHERE account_id = $1
		RETURNING ` + profileColumns
	return scanProfile(s.pool.QueryRow(ctx, query, id, maxAttempts, now.Add(lockFor), now))
}

// ResetLoginFailures clears the counter and any lockout.
func (s *Store) ResetLoginFailures(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `UPDATE profiles SET failed_logins = 0, locked_until = NULL WHERE account_id = $1`, id)
	return err
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var (
		acct      models.Account
		role      *string
		phone     *string
		roomNo    *string
		avatar    *string
		darkMode  *bool
		active    *bool
		failed    *int
		locked    *time.Time
		createdAt *time.Time
	)
	err := row.Scan(&acct.ID, &acct.Username, &acct.Email, &acct.FirstName, &acct.LastName, &acct.PasswordHash, &acct.CreatedAt,
		&role, &phone, &roomNo, &avatar, &darkMode, &active, &failed, &locked, &createdAt)
	if err != nil {
		return models.Account{}, notFound(err)
	}
	if role != nil {
		acct.Profile = &models.Profile{
			AccountID:    acct.ID,
			Role:         models.Role(*role),
			Phone:        *phone,
			RoomNo:       *roomNo,
			AvatarPath:   *avatar,
			DarkMode:     *darkMode,
			Active:       *active,
			FailedLogins: *failed,
			LockedUntil:  locked,
			CreatedAt:    *createdAt,
		}
	}
	return acct, nil
}

func scanProfile(row pgx.Row) (models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.AccountID, &p.Role, &p.Phone, &p.RoomNo, &p.AvatarPath, &p.DarkMode, &p.Active, &p.FailedLogins, &p.LockedUntil, &p.CreatedAt)
	if err != nil {
		return models.Profile{}, notFound(err)
	}
	return p, nil
}
