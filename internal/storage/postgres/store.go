package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides Postgres-backed persistence for the mess.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new Store and runs migrations.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id BIGSERIAL PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT UNIQUE NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_lower_idx ON accounts (LOWER(email));`,
		`CREATE TABLE IF NOT EXISTS profiles (
			account_id BIGINT PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
			role TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('admin', 'member')),
			phone TEXT NOT NULL DEFAULT '',
			room_no TEXT NOT NULL DEFAULT '',
			avatar_path TEXT NOT NULL DEFAULT '',
			dark_mode BOOLEAN NOT NULL DEFAULT FALSE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			failed_logins INTEGER NOT NULL DEFAULT 0,
			locked_until TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS payments (
			id BIGSERIAL PRIMARY KEY,
			account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			month_year TEXT NOT NULL,
			amount NUMERIC(10,2) NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'partial', 'paid')),
			transaction_id TEXT NOT NULL DEFAULT '',
			proof_path TEXT NOT NULL DEFAULT '',
			paid_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (account_id, month_year)
		);`,
		`CREATE INDEX IF NOT EXISTS payments_month_idx ON payments (month_year);`,
		`CREATE TABLE IF NOT EXISTS grocery_items (
			id BIGSERIAL PRIMARY KEY,
			item_name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'other',
			quantity TEXT NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			purchase_date DATE NOT NULL,
			month_year TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS grocery_items_month_idx ON grocery_items (month_year);`,
		`CREATE TABLE IF NOT EXISTS fixed_expenses (
			id BIGSERIAL PRIMARY KEY,
			month_year TEXT UNIQUE NOT NULL,
			kitchen_rent NUMERIC(10,2) NOT NULL DEFAULT 0,
			maid_salary NUMERIC(10,2) NOT NULL DEFAULT 0,
			gas_cylinder NUMERIC(10,2) NOT NULL DEFAULT 0,
			other_expenses NUMERIC(10,2) NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id BIGSERIAL PRIMARY KEY,
			account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			subject TEXT NOT NULL,
			body TEXT NOT NULL,
			message_type TEXT NOT NULL DEFAULT 'user' CHECK (message_type IN ('user', 'system')),
			status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'resolved')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			resolved_at TIMESTAMPTZ,
			admin_reply TEXT NOT NULL DEFAULT '',
			replied_at TIMESTAMPTZ,
			user_reply TEXT NOT NULL DEFAULT '',
			user_replied_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS meal_plans (
			id BIGSERIAL PRIMARY KEY,
			date DATE UNIQUE NOT NULL,
			breakfast TEXT NOT NULL DEFAULT '',
			lunch TEXT NOT NULL DEFAULT '',
			dinner TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS activity_logs (
			id BIGSERIAL PRIMARY KEY,
			account_id BIGINT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			action_type TEXT NOT NULL,
			description TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			related_object_id BIGINT
		);`,
		`CREATE INDEX IF NOT EXISTS activity_logs_ts_idx ON activity_logs (ts DESC, id DESC);`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			account_id BIGINT PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
			email_payment_reminders BOOLEAN NOT NULL,
			email_grocery_updates BOOLEAN NOT NULL,
			email_monthly_reports BOOLEAN NOT NULL,
			email_admin_messages BOOLEAN NOT NULL,
			show_phone_to_members BOOLEAN NOT NULL,
			show_payment_status BOOLEAN NOT NULL,
			dashboard_default_view TEXT NOT NULL,
			payment_history_months INTEGER NOT NULL,
			preferred_upi_app TEXT NOT NULL,
			payment_reminder_days INTEGER NOT NULL,
			auto_download_receipt BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS mess_settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			mess_name TEXT NOT NULL,
			address TEXT NOT NULL,
			contact_email TEXT NOT NULL,
			contact_phone TEXT NOT NULL,
			operating_hours TEXT NOT NULL,
			email_signature TEXT NOT NULL,
			default_monthly_fee NUMERIC(10,2) NOT NULL,
			billing_day INTEGER NOT NULL,
			late_payment_penalty NUMERIC(10,2) NOT NULL,
			late_payment_penalty_type TEXT NOT NULL,
			allow_partial_payments BOOLEAN NOT NULL,
			grace_period_days INTEGER NOT NULL,
			admin_upi_id TEXT NOT NULL,
			upi_qr_code TEXT NOT NULL DEFAULT '',
			allow_self_registration BOOLEAN NOT NULL,
			require_admin_approval BOOLEAN NOT NULL,
			max_users_allowed INTEGER NOT NULL,
			inactive_user_cleanup_days INTEGER NOT NULL,
			first_reminder_days INTEGER NOT NULL,
			second_reminder_days INTEGER NOT NULL,
			final_reminder_days INTEGER NOT NULL,
			send_overdue_reminders BOOLEAN NOT NULL,
			auto_generate_monthly_report BOOLEAN NOT NULL,
			report_generation_day INTEGER NOT NULL,
			auto_email_reports BOOLEAN NOT NULL,
			include_payment_details BOOLEAN NOT NULL,
			include_grocery_details BOOLEAN NOT NULL,
			require_strong_passwords BOOLEAN NOT NULL,
			min_password_length INTEGER NOT NULL,
			session_timeout_minutes INTEGER NOT NULL,
			max_login_attempts INTEGER NOT NULL,
			lockout_duration_minutes INTEGER NOT NULL,
			default_theme TEXT NOT NULL,
			currency_symbol TEXT NOT NULL,
			date_format TEXT NOT NULL,
			time_zone TEXT NOT NULL,
			data_retention_months INTEGER NOT NULL,
			auto_backup_enabled BOOLEAN NOT NULL,
			backup_frequency_days INTEGER NOT NULL,
			enable_activity_logging BOOLEAN NOT NULL,
			log_retention_days INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// notFound maps pgx.ErrNoRows to storage.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

// affected returns ErrNotFound when a write touched no rows.
func affected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
