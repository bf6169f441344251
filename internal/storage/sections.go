package storage

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

// Column binds a settings column to the struct field behind it.
type Column[T any] struct {
	Name   string
	Value  func(T) any
	Target func(*T) any
}

func field[T, V any](name string, ptr func(*T) *V) Column[T] {
	return Column[T]{
		Name:   name,
		Value:  func(v T) any { return *ptr(&v) },
		Target: func(v *T) any { return ptr(v) },
	}
}

// money stores decimals as their two-place text form so both backends accept it.
func money[T any](name string, ptr func(*T) *decimal.Decimal) Column[T] {
	return Column[T]{
		Name:   name,
		Value:  func(v T) any { return ptr(&v).StringFixed(2) },
		Target: func(v *T) any { return ptr(v) },
	}
}

type us = models.UserSettings
type ms = models.MessSettings

var userSettingsColumns = map[models.SettingsSection][]Column[us]{
	models.SectionNotifications: {
		field("email_payment_reminders", func(s *us) *bool { return &s.EmailPaymentReminders }),
		field("email_grocery_updates", func(s *us) *bool { return &s.EmailGroceryUpdates }),
		field("email_monthly_reports", func(s *us) *bool { return &s.EmailMonthlyReports }),
		field("email_admin_messages", func(s *us) *bool { return &s.EmailAdminMessages }),
	},
	models.SectionPrivacy: {
		field("show_phone_to_members", func(s *us) *bool { return &s.ShowPhoneToMembers }),
		field("show_payment_status", func(s *us) *bool { return &s.ShowPaymentStatus }),
	},
	models.SectionDisplay: {
		field("dashboard_default_view", func(s *us) *string { return &s.DashboardDefaultView }),
		field("payment_history_months", func(s *us) *int { return &s.PaymentHistoryMonths }),
	},
	models.SectionPayment: {
		field("preferred_upi_app", func(s *us) *string { return &s.PreferredUPIApp }),
		field("payment_reminder_days", func(s *us) *int { return &s.PaymentReminderDays }),
		field("auto_download_receipt", func(s *us) *bool { return &s.AutoDownloadReceipt }),
	},
}

var messSettingsColumns = map[models.SettingsSection][]Column[ms]{
	models.SectionGeneral: {
		field("mess_name", func(s *ms) *string { return &s.MessName }),
		field("address", func(s *ms) *string { return &s.Address }),
		field("contact_email", func(s *ms) *string { return &s.ContactEmail }),
		field("contact_phone", func(s *ms) *string { return &s.ContactPhone }),
		field("operating_hours", func(s *ms) *string { return &s.OperatingHours }),
		field("email_signature", func(s *ms) *string { return &s.EmailSignature }),
	},
	models.SectionPayment: {
		money("default_monthly_fee", func(s *ms) *decimal.Decimal { return &s.DefaultMonthlyFee }),
		field("billing_day", func(s *ms) *int { return &s.BillingDay }),
		money("late_payment_penalty", func(s *ms) *decimal.Decimal { return &s.LatePaymentPenalty }),
		field("late_payment_penalty_type", func(s *ms) *string { return &s.LatePaymentPenaltyType }),
		field("allow_partial_payments", func(s *ms) *bool { return &s.AllowPartialPayments }),
		field("grace_period_days", func(s *ms) *int { return &s.GracePeriodDays }),
		field("admin_upi_id", func(s *ms) *string { return &s.AdminUPIID }),
	},
	models.SectionUsers: {
		field("allow_self_registration", func(s *ms) *bool { return &s.AllowSelfRegistration }),
		field("require_admin_approval", func(s *ms) *bool { return &s.RequireAdminApproval }),
		field("max_users_allowed", func(s *ms) *int { return &s.MaxUsersAllowed }),
		field("inactive_user_cleanup_days", func(s *ms) *int { return &s.InactiveUserCleanupDays }),
	},
	models.SectionReminders: {
		field("first_reminder_days", func(s *ms) *int { return &s.FirstReminderDays }),
		field("second_reminder_days", func(s *ms) *int { return &s.SecondReminderDays }),
		field("final_reminder_days", func(s *ms) *int { return &s.FinalReminderDays }),
		field("send_overdue_reminders", func(s *ms) *bool { return &s.SendOverdueReminders }),
	},
	models.SectionReports: {
		field("auto_generate_monthly_report", func(s *ms) *bool { return &s.AutoGenerateMonthlyReport }),
		field("report_generation_day", func(s *ms) *int { return &s.ReportGenerationDay }),
		field("auto_email_reports", func(s *ms) *bool { return &s.AutoEmailReports }),
		field("include_payment_details", func(s *ms) *bool { return &s.IncludePaymentDetails }),
		field("include_grocery_details", func(s *ms) *bool { return &s.IncludeGroceryDetails }),
	},
	models.SectionSecurity: {
		field("require_strong_passwords", func(s *ms) *bool { return &s.RequireStrongPasswords }),
		field("min_password_length", func(s *ms) *int { return &s.MinPasswordLength }),
		field("session_timeout_minutes", func(s *ms) *int { return &s.SessionTimeoutMinutes }),
		field("max_login_attempts", func(s *ms) *int { return &s.MaxLoginAttempts }),
		field("lockout_duration_minutes", func(s *ms) *int { return &s.LockoutDurationMinutes }),
	},
	models.SectionDisplay: {
		field("default_theme", func(s *ms) *string { return &s.DefaultTheme }),
		field("currency_symbol", func(s *ms) *string { return &s.CurrencySymbol }),
		field("date_format", func(s *ms) *string { return &s.DateFormat }),
		field("time_zone", func(s *ms) *string { return &s.TimeZone }),
	},
	models.SectionSystem: {
		field("data_retention_months", func(s *ms) *int { return &s.DataRetentionMonths }),
		field("auto_backup_enabled", func(s *ms) *bool { return &s.AutoBackupEnabled }),
		field("backup_frequency_days", func(s *ms) *int { return &s.BackupFrequencyDays }),
		field("enable_activity_logging", func(s *ms) *bool { return &s.EnableActivityLogging }),
		field("log_retention_days", func(s *ms) *int { return &s.LogRetentionDays }),
	},
}

// UserSettingsColumns returns the columns a member section owns.
func UserSettingsColumns(section models.SettingsSection) ([]Column[models.UserSettings], error) {
	cols, ok := userSettingsColumns[section]
	if !ok {
		return nil, fmt.Errorf("unknown user settings section %q", section)
	}
	return cols, nil
}

// MessSettingsColumns returns the columns an admin section owns.
func MessSettingsColumns(section models.SettingsSection) ([]Column[models.MessSettings], error) {
	cols, ok := messSettingsColumns[section]
	if !ok {
		return nil, fmt.Errorf("unknown mess settings section %q", section)
	}
	return cols, nil
}

// Assignments renders "a = $1, b = $2" for cols using placeholder for the
// n-th (1-based) argument, and returns the matching arguments.
func Assignments[T any](cols []Column[T], v T, placeholder func(n int) string) (string, []any) {
	parts := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for i, c := range cols {
		parts = append(parts, c.Name+" = "+placeholder(i+1))
		args = append(args, c.Value(v))
	}
	return strings.Join(parts, ", "), args
}

// AllUserSettingsColumns lists every section column in a stable order.
func AllUserSettingsColumns() []Column[models.UserSettings] {
	var cols []Column[models.UserSettings]
	for _, section := range models.UserSettingsSections {
		cols = append(cols, userSettingsColumns[section]...)
	}
	return cols
}

// AllMessSettingsColumns lists every section column in a stable order.
func AllMessSettingsColumns() []Column[models.MessSettings] {
	var cols []Column[models.MessSettings]
	for _, section := range models.MessSettingsSections {
		cols = append(cols, messSettingsColumns[section]...)
	}
	return cols
}

// Names returns the column names of cols.
func Names[T any](cols []Column[T]) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// Values returns the column values of v in cols order.
func Values[T any](cols []Column[T], v T) []any {
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = c.Value(v)
	}
	return args
}

// Targets returns scan destinations into v in cols order.
func Targets[T any](cols []Column[T], v *T) []any {
	dest := make([]any, len(cols))
	for i, c := range cols {
		dest[i] = c.Target(v)
	}
	return dest
}
