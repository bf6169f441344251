package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

const accountSelect = `
	SELECT a.id, a.username, a.email, a.first_name, a.last_name, a.password_hash, a.created_at,
		p.role, p.phone, p.room_no, p.avatar_path, p.dark_mode, p.is_active, p.failed_logins, p.locked_until, p.created_at
	FROM accounts a
	LEFT JOIN profiles p ON p.account_id = a.id`

const profileSelect = `
	SELECT account_id, role, phone, room_no, avatar_path, dark_mode, is_active, failed_logins, locked_until, created_at
	FROM profiles`

// CreateAccount inserts the account and its profile in one transaction.
func (s *Store) CreateAccount(ctx context.Context, acct models.Account) (models.Account, error) {
	profile := models.Profile{Role: models.RoleMember, Active: true}
	if acct.Profile != nil {
		profile = *acct.Profile
	}
	if profile.Role == "" {
		profile.Role = models.RoleMember
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Account{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	ts := nanos(now())
	res, err := tx.ExecContext(ctx,
		`INSERT INTO accounts (username, email, first_name, last_name, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		acct.Username, acct.Email, acct.FirstName, acct.LastName, acct.PasswordHash, ts,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Account{}, storage.ErrAlreadyExists
		}
		return models.Account{}, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Account{}, fmt.Errorf("account id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (account_id, role, phone, room_no, avatar_path, dark_mode, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, string(profile.Role), profile.Phone, profile.RoomNo, profile.AvatarPath, profile.DarkMode, profile.Active, ts,
	)
	if err != nil {
		return models.Account{}, fmt.Errorf("insert profile: %w", err)
	}

	created, err := getAccount(ctx, tx, id)
	if err != nil {
		return models.Account{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Account{}, fmt.Errorf("commit transaction: %w", err)
	}
	return created, nil
}

// EnsureProfile inserts a profile for accountID unless one already exists.
func (s *Store) EnsureProfile(ctx context.Context, accountID int64, role models.Role) (models.Profile, bool, error) {
	if role == "" {
		role = models.RoleMember
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (account_id, role, created_at) VALUES (?, ?, ?) ON CONFLICT (account_id) DO NOTHING`,
		accountID, string(role), nanos(now()),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Profile{}, false, storage.ErrNotFound
		}
		return models.Profile{}, false, fmt.Errorf("ensure profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Profile{}, false, err
	}
	profile, err := scanProfile(s.db.QueryRowContext(ctx, profileSelect+` WHERE account_id = ?`, accountID))
	if err != nil {
		return models.Profile{}, false, err
	}
	return profile, n == 1, nil
}

// GetAccount fetches an account and its profile by id.
func (s *Store) GetAccount(ctx context.Context, id int64) (models.Account, error) {
	return getAccount(ctx, s.db, id)
}

func getAccount(ctx context.Context, q querier, id int64) (models.Account, error) {
	return scanAccount(q.QueryRowContext(ctx, accountSelect+` WHERE a.id = ?`, id))
}

// FindAccountByIdentifier fetches the first account matching the identifier as username or email.
func (s *Store) FindAccountByIdentifier(ctx context.Context, identifier string) (models.Account, error) {
	const where = ` WHERE a.username = ? OR a.email = ? ORDER BY a.id LIMIT 1`
	return scanAccount(s.db.QueryRowContext(ctx, accountSelect+where, identifier, identifier))
}

// FindAccountByEmail fetches an account by email address.
func (s *Store) FindAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	return scanAccount(s.db.QueryRowContext(ctx, accountSelect+` WHERE a.email = ? ORDER BY a.id LIMIT 1`, email))
}

// ListAccounts returns accounts with role, or every account when role is empty.
func (s *Store) ListAccounts(ctx context.Context, role models.Role) ([]models.Account, error) {
	const where = ` WHERE (? = '' OR p.role = ?) ORDER BY a.username`
	rows, err := s.db.QueryContext(ctx, accountSelect+where, string(role), string(role))
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
	const query = `SELECT COUNT(*) FROM profiles WHERE (? = '' OR role = ?) AND (? = 0 OR is_active = 1)`
	var n int
	if err := s.db.QueryRowContext(ctx, query, string(role), string(role), activeOnly).Scan(&n); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}

// UpdateAccount writes the identity fields and, when present, the profile.
func (s *Store) UpdateAccount(ctx context.Context, acct models.Account) (models.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Account{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = affected(tx.ExecContext(ctx,
		`UPDATE accounts SET username = ?, email = ?, first_name = ?, last_name = ? WHERE id = ?`,
		acct.Username, acct.Email, acct.FirstName, acct.LastName, acct.ID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Account{}, storage.ErrAlreadyExists
		}
		return models.Account{}, err
	}

	if p := acct.Profile; p != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (account_id, role, phone, room_no, is_active, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (account_id) DO UPDATE
			SET role = excluded.role, phone = excluded.phone, room_no = excluded.room_no, is_active = excluded.is_active`,
			acct.ID, string(p.Role), p.Phone, p.RoomNo, p.Active, nanos(now()),
		)
		if err != nil {
			return models.Account{}, fmt.Errorf("update profile: %w", err)
		}
	}

	updated, err := getAccount(ctx, tx, acct.ID)
	if err != nil {
		return models.Account{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Account{}, fmt.Errorf("commit transaction: %w", err)
	}
	return updated, nil
}

// UpdatePassword replaces the stored password hash.
func (s *Store) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return affected(s.db.ExecContext(ctx, `UPDATE accounts SET password_hash = ? WHERE id = ?`, hash, id))
}

// UpdateAvatar stores the avatar path on the profile.
func (s *Store) UpdateAvatar(ctx context.Context, id int64, path string) error {
	return affected(s.db.ExecContext(ctx, `UPDATE profiles SET avatar_path = ? WHERE account_id = ?`, path, id))
}

// UpdateTheme stores the dark mode preference on the profile.
func (s *Store) UpdateTheme(ctx context.Context, id int64, darkMode bool) error {
	return affected(s.db.ExecContext(ctx, `UPDATE profiles SET dark_mode = ? WHERE account_id = ?`, darkMode, id))
}

// DeleteAccount removes the account; owned rows go with it.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id))
}

// RecordLoginFailure bumps the failure counter and opens a lockout window once
// maxAttempts is reached. A lockout that has already expired starts a fresh
// count.
func (s *Store) RecordLoginFailure(ctx context.Context, id int64, maxAttempts int, lockFor time.Duration, at time.Time) (models.Profile, error) {
	now := nanos(at)
	err := affected(s.db.ExecContext(ctx, `
		UPDATE profiles
		SET failed_logins = CASE WHEN locked_until IS NOT NULL AND locked_until <= ?1 THEN 1 ELSE failed_logins + 1 END,
			locked_until = CASE
				WHEN ?2 > 0 AND (CASE WHEN locked_until IS NOT NULL AND locked_until <= ?1 THEN 1 ELSE failed_logins + 1 END) >= ?2 THEN ?3
				WHEN locked_until IS NOT NULL AND locked_until <= ?1 THEN NULL
				ELSE locked_until
			END
		WHERE account_id = ?4`,
		now, maxAttempts, nanos(at.Add(lockFor)), id,
	))
	if err != nil {
		return models.Profile{}, err
	}
	return scanProfile(s.db.QueryRowContext(ctx, profileSelect+` WHERE account_id = ?`, id))
}

// ResetLoginFailures clears the counter and any lockout.
func (s *Store) ResetLoginFailures(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE profiles SET failed_logins = 0, locked_until = NULL WHERE account_id = ?`, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (models.Account, error) {
	var (
		acct      models.Account
		createdAt int64
		role      sql.NullString
		phone     sql.NullString
		roomNo    sql.NullString
		avatar    sql.NullString
		darkMode  sql.NullBool
		active    sql.NullBool
		failed    sql.NullInt64
		locked    sql.NullInt64
		pCreated  sql.NullInt64
	)
	err := row.Scan(&acct.ID, &acct.Username, &acct.Email, &acct.FirstName, &acct.LastName, &acct.PasswordHash, &createdAt,
		&role, &phone, &roomNo, &avatar, &darkMode, &active, &failed, &locked, &pCreated)
	if err != nil {
		return models.Account{}, notFound(err)
	}
	acct.CreatedAt = fromNanos(createdAt)
	if role.Valid {
		acct.Profile = &models.Profile{
			AccountID:    acct.ID,
			Role:         models.Role(role.String),
			Phone:        phone.String,
			RoomNo:       roomNo.String,
			AvatarPath:   avatar.String,
			DarkMode:     darkMode.Bool,
			Active:       active.Bool,
			FailedLogins: int(failed.Int64),
			LockedUntil:  fromNullNanos(locked),
			CreatedAt:    fromNanos(pCreated.Int64),
		}
	}
	return acct, nil
}

func scanProfile(row scanner) (models.Profile, error) {
	var (
		p       models.Profile
		role    string
		locked  sql.NullInt64
		created int64
	)
	err := row.Scan(&p.AccountID, &role, &p.Phone, &p.RoomNo, &p.AvatarPath, &p.DarkMode, &p.Active, &p.FailedLogins, &locked, &created)
	if err != nil {
		return models.Profile{}, notFound(err)
	}
	p.Role = models.Role(role)
	p.LockedUntil = fromNullNanos(locked)
	p.CreatedAt = fromNanos(created)
	return p, nil
}
