package sqlite

import "database/sql"

// schema runs on startup. Money is TEXT holding a two-place decimal,
// timestamps are unix nanoseconds and dates are YYYY-MM-DD.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE COLLATE NOCASE,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS profiles (
    account_id INTEGER PRIMARY KEY,
    role TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('admin', 'member')),
    phone TEXT NOT NULL DEFAULT '',
    room_no TEXT NOT NULL DEFAULT '',
    avatar_path TEXT NOT NULL DEFAULT '',
    dark_mode INTEGER NOT NULL DEFAULT 0,
    is_active INTEGER NOT NULL DEFAULT 1,
    failed_logins INTEGER NOT NULL DEFAULT 0,
    locked_until INTEGER,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS payments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL,
    month_year TEXT NOT NULL,
    amount TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'partial', 'paid')),
    transaction_id TEXT NOT NULL DEFAULT '',
    proof_path TEXT NOT NULL DEFAULT '',
    paid_date INTEGER,
    created_at INTEGER NOT NULL,
    UNIQUE (account_id, month_year),
    FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS grocery_items (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_name TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'other',
    quantity TEXT NOT NULL,
    price TEXT NOT NULL,
    purchase_date TEXT NOT NULL,
    month_year TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS fixed_expenses (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    month_year TEXT NOT NULL UNIQUE,
    kitchen_rent TEXT NOT NULL DEFAULT '0.00',
    maid_salary TEXT NOT NULL DEFAULT '0.00',
    gas_cylinder TEXT NOT NULL DEFAULT '0.00',
    other_expenses TEXT NOT NULL DEFAULT '0.00'
);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL,
    subject TEXT NOT NULL,
    body TEXT NOT NULL,
    message_type TEXT NOT NULL DEFAULT 'user' CHECK (message_type IN ('user', 'system')),
    status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'resolved')),
    created_at INTEGER NOT NULL,
    resolved_at INTEGER,
    admin_reply TEXT NOT NULL DEFAULT '',
    replied_at INTEGER,
    user_reply TEXT NOT NULL DEFAULT '',
    user_replied_at INTEGER,
    FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS meal_plans (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL UNIQUE,
    breakfast TEXT NOT NULL DEFAULT '',
    lunch TEXT NOT NULL DEFAULT '',
    dinner TEXT NOT NULL DEFAULT '',
    notes TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS activity_logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_id INTEGER NOT NULL,
    action_type TEXT NOT NULL,
    description TEXT NOT NULL,
    ts INTEGER NOT NULL,
    related_object_id INTEGER,
    FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS user_settings (
    account_id INTEGER PRIMARY KEY,
    email_payment_reminders INTEGER NOT NULL,
    email_grocery_updates INTEGER NOT NULL,
    email_monthly_reports INTEGER NOT NULL,
    email_admin_messages INTEGER NOT NULL,
    show_phone_to_members INTEGER NOT NULL,
    show_payment_status INTEGER NOT NULL,
    dashboard_default_view TEXT NOT NULL,
    payment_history_months INTEGER NOT NULL,
    preferred_upi_app TEXT NOT NULL,
    payment_reminder_days INTEGER NOT NULL,
    auto_download_receipt INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (account_id) REFERENCES accounts(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS mess_settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    mess_name TEXT NOT NULL,
    address TEXT NOT NULL,
    contact_email TEXT NOT NULL,
    contact_phone TEXT NOT NULL,
    operating_hours TEXT NOT NULL,
    email_signature TEXT NOT NULL,
    default_monthly_fee TEXT NOT NULL,
    billing_day INTEGER NOT NULL,
    late_payment_penalty TEXT NOT NULL,
    late_payment_penalty_type TEXT NOT NULL,
    allow_partial_payments INTEGER NOT NULL,
    grace_period_days INTEGER NOT NULL,
    admin_upi_id TEXT NOT NULL,
    upi_qr_code TEXT NOT NULL DEFAULT '',
    allow_self_registration INTEGER NOT NULL,
    require_admin_approval INTEGER NOT NULL,
    max_users_allowed INTEGER NOT NULL,
    inactive_user_cleanup_days INTEGER NOT NULL,
    first_reminder_days INTEGER NOT NULL,
    second_reminder_days INTEGER NOT NULL,
    final_reminder_days INTEGER NOT NULL,
    send_overdue_reminders INTEGER NOT NULL,
    auto_generate_monthly_report INTEGER NOT NULL,
    report_generation_day INTEGER NOT NULL,
    auto_email_reports INTEGER NOT NULL,
    include_payment_details INTEGER NOT NULL,
    include_grocery_details INTEGER NOT NULL,
    require_strong_passwords INTEGER NOT NULL,
    min_password_length INTEGER NOT NULL,
    session_timeout_minutes INTEGER NOT NULL,
    max_login_attempts INTEGER NOT NULL,
    lockout_duration_minutes INTEGER NOT NULL,
    default_theme TEXT NOT NULL,
    currency_symbol TEXT NOT NULL,
    date_format TEXT NOT NULL,
    time_zone TEXT NOT NULL,
    data_retention_months INTEGER NOT NULL,
    auto_backup_enabled INTEGER NOT NULL,
    backup_frequency_days INTEGER NOT NULL,
    enable_activity_logging INTEGER NOT NULL,
    log_retention_days INTEGER NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payments_month ON payments(month_year);
CREATE INDEX IF NOT EXISTS idx_grocery_items_month ON grocery_items(month_year);
CREATE INDEX IF NOT EXISTS idx_messages_account ON messages(account_id);
CREATE INDEX IF NOT EXISTS idx_activity_logs_ts ON activity_logs(ts DESC, id DESC);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
