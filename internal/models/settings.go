package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MessSettingsID is the only primary key the settings table accepts.
const MessSettingsID = 1

// SettingsSection names an independently submitted block of settings fields.
type SettingsSection string

// Member settings sections.
const (
	SectionNotifications SettingsSection = "notifications"
	SectionPrivacy       SettingsSection = "privacy"
	SectionDisplay       SettingsSection = "display"
	SectionPayment       SettingsSection = "payment"
)

// Admin settings sections. Display and payment are shared names.
const (
	SectionGeneral   SettingsSection = "general"
	SectionUsers     SettingsSection = "users"
	SectionReminders SettingsSection = "reminders"
	SectionReports   SettingsSection = "reports"
	SectionSecurity  SettingsSection = "security"
	SectionSystem    SettingsSection = "system"
)

// UserSettingsSections lists the sections a member may submit.
var UserSettingsSections = []SettingsSection{
	SectionNotifications, SectionPrivacy, SectionDisplay, SectionPayment,
}

// MessSettingsSections lists the sections an admin may submit.
var MessSettingsSections = []SettingsSection{
	SectionGeneral, SectionPayment, SectionUsers, SectionReminders,
	SectionReports, SectionSecurity, SectionDisplay, SectionSystem,
}

// UserSettings are one member's preferences.
type UserSettings struct {
	AccountID int64 `json:"account_id"`

	EmailPaymentReminders bool `json:"email_payment_reminders"`
	EmailGroceryUpdates   bool `json:"email_grocery_updates"`
	EmailMonthlyReports   bool `json:"email_monthly_reports"`
	EmailAdminMessages    bool `json:"email_admin_messages"`

	ShowPhoneToMembers bool `json:"show_phone_to_members"`
	ShowPaymentStatus  bool `json:"show_payment_status"`

	DashboardDefaultView string `json:"dashboard_default_view"`
	PaymentHistoryMonths int    `json:"payment_history_months"`

	PreferredUPIApp     string `json:"preferred_upi_app"`
	PaymentReminderDays int    `json:"payment_reminder_days"`
	AutoDownloadReceipt bool   `json:"auto_download_receipt"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultUserSettings returns the values a new settings row starts with.
func DefaultUserSettings(accountID int64) UserSettings {
	return UserSettings{
		AccountID:             accountID,
		EmailPaymentReminders: true,
		EmailGroceryUpdates:   true,
		EmailMonthlyReports:   true,
		EmailAdminMessages:    true,
		ShowPhoneToMembers:    true,
		ShowPaymentStatus:     true,
		DashboardDefaultView:  "current",
		PaymentHistoryMonths:  6,
		PaymentReminderDays:   3,
		AutoDownloadReceipt:   true,
	}
}

// MessSettings is the system-wide configuration row.
type MessSettings struct {
	// General
	MessName       string `json:"mess_name"`
	Address        string `json:"address"`
	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone"`
	OperatingHours string `json:"operating_hours"`

	// Payment configuration
	DefaultMonthlyFee      decimal.Decimal `json:"default_monthly_fee"`
	BillingDay             int             `json:"billing_day"`
	LatePaymentPenalty     decimal.Decimal `json:"late_payment_penalty"`
	LatePaymentPenaltyType string          `json:"late_payment_penalty_type"`
	AllowPartialPayments   bool            `json:"allow_partial_payments"`
	GracePeriodDays        int             `json:"grace_period_days"`
	AdminUPIID             string          `json:"admin_upi_id"`
	UPIQRCodePath          string          `json:"upi_qr_code,omitempty"`

	// User management
	AllowSelfRegistration   bool `json:"allow_self_registration"`
	RequireAdminApproval    bool `json:"require_admin_approval"`
	MaxUsersAllowed         int  `json:"max_users_allowed"`
	InactiveUserCleanupDays int  `json:"inactive_user_cleanup_days"`

	// Reminders
	FirstReminderDays    int  `json:"first_reminder_days"`
	SecondReminderDays   int  `json:"second_reminder_days"`
	FinalReminderDays    int  `json:"final_reminder_days"`
	SendOverdueReminders bool `json:"send_overdue_reminders"`

	// Reports
	AutoGenerateMonthlyReport bool `json:"auto_generate_monthly_report"`
	ReportGenerationDay       int  `json:"report_generation_day"`
	AutoEmailReports          bool `json:"auto_email_reports"`
	IncludePaymentDetails     bool `json:"include_payment_details"`
	IncludeGroceryDetails     bool `json:"include_grocery_details"`

	// Security
	RequireStrongPasswords bool `json:"require_strong_passwords"`
	MinPasswordLength      int  `json:"min_password_length"`
	SessionTimeoutMinutes  int  `json:"session_timeout_minutes"`
	MaxLoginAttempts       int  `json:"max_login_attempts"`
	LockoutDurationMinutes int  `json:"lockout_duration_minutes"`

	// Display
	DefaultTheme   string `json:"default_theme"`
	CurrencySymbol string `json:"currency_symbol"`
	DateFormat     string `json:"date_format"`
	TimeZone       string `json:"time_zone"`

	// System
	DataRetentionMonths   int  `json:"data_retention_months"`
	AutoBackupEnabled     bool `json:"auto_backup_enabled"`
	BackupFrequencyDays   int  `json:"backup_frequency_days"`
	EnableActivityLogging bool `json:"enable_activity_logging"`
	LogRetentionDays      int  `json:"log_retention_days"`

	EmailSignature string `json:"email_signature"`
	SMTPConfigured bool   `json:"smtp_configured"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultMessSettings returns the values the singleton row is created with.
func DefaultMessSettings() MessSettings {
	return MessSettings{
		MessName:                  "Mess Management System",
		DefaultMonthlyFee:         decimal.Zero,
		BillingDay:                1,
		LatePaymentPenalty:        decimal.Zero,
		LatePaymentPenaltyType:    "fixed",
		GracePeriodDays:           3,
		RequireAdminApproval:      true,
		MaxUsersAllowed:           50,
		InactiveUserCleanupDays:   90,
		FirstReminderDays:         7,
		SecondReminderDays:        3,
		FinalReminderDays:         1,
		SendOverdueReminders:      true,
		AutoGenerateMonthlyReport: true,
		ReportGenerationDay:       1,
		AutoEmailReports:          true,
		IncludePaymentDetails:     true,
		IncludeGroceryDetails:     true,
		RequireStrongPasswords:    true,
		MinPasswordLength:         8,
		SessionTimeoutMinutes:     60,
		MaxLoginAttempts:          5,
		LockoutDurationMinutes:    30,
		DefaultTheme:              "auto",
		CurrencySymbol:            "₹",
		DateFormat:                "DD/MM/YYYY",
		TimeZone:                  "Asia/Kolkata",
		DataRetentionMonths:       24,
		AutoBackupEnabled:         true,
		BackupFrequencyDays:       7,
		EnableActivityLogging:     true,
		LogRetentionDays:          90,
	}
}

// UPIOrPlaceholder is the UPI id quoted in reminders.
func (s MessSettings) UPIOrPlaceholder() string {
	if s.AdminUPIID == "" {
		return "Not configured"
	}
	return s.AdminUPIID
}

// SessionTTL converts the configured timeout, falling back when unset.
func (s MessSettings) SessionTTL(fallback time.Duration) time.Duration {
	if s.SessionTimeoutMinutes <= 0 {
		return fallback
	}
	return time.Duration(s.SessionTimeoutMinutes) * time.Minute
}
