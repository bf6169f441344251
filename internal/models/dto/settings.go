package dto

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

// SettingsSubmission carries one settings section. The remaining body
// fields are decoded on top of the current settings so omitted fields keep
// their value.
type SettingsSubmission struct {
	Section models.SettingsSection `json:"section"`
}

// ApplyUserSettings decodes body over current and validates the named section.
func ApplyUserSettings(section models.SettingsSection, body []byte, current models.UserSettings) (models.UserSettings, error) {
	if !slices.Contains(models.UserSettingsSections, section) {
		return current, FieldErrors{"section": fmt.Sprintf("unknown section %q", section)}
	}
	next := current
	if err := json.Unmarshal(body, &next); err != nil {
		return current, FieldErrors{"section": "malformed settings payload"}
	}
	next.AccountID = current.AccountID
	return next, ValidateUserSettings(section, next)
}

// ValidateUserSettings checks the fields belonging to one member section.
func ValidateUserSettings(section models.SettingsSection, s models.UserSettings) error {
	errs := FieldErrors{}
	switch section {
	case models.SectionDisplay:
		if s.DashboardDefaultView != "current" && s.DashboardDefaultView != "all" {
			errs.Add("dashboard_default_view", "choose current or all")
		}
		between(errs, "payment_history_months", s.PaymentHistoryMonths, 1, 24)
	case models.SectionPayment:
		maxLen(errs, "preferred_upi_app", s.PreferredUPIApp, 50)
		between(errs, "payment_reminder_days", s.PaymentReminderDays, 1, 30)
	}
	return errs.Err()
}

// ApplyMessSettings decodes body over current and validates the named section.
func ApplyMessSettings(section models.SettingsSection, body []byte, current models.MessSettings) (models.MessSettings, error) {
	if !slices.Contains(models.MessSettingsSections, section) {
		return current, FieldErrors{"section": fmt.Sprintf("unknown section %q", section)}
	}
	next := current
	if err := json.Unmarshal(body, &next); err != nil {
		return current, FieldErrors{"section": "malformed settings payload"}
	}
	// The QR path only changes through the upload endpoint.
	next.UPIQRCodePath = current.UPIQRCodePath
	return next, ValidateMessSettings(section, next)
}

// ValidateMessSettings checks the fields belonging to one admin section.
func ValidateMessSettings(section models.SettingsSection, s models.MessSettings) error {
	errs := FieldErrors{}
	switch section {
	case models.SectionGeneral:
		required(errs, "mess_name", s.MessName)
		maxLen(errs, "mess_name", s.MessName, 200)
		if strings.TrimSpace(s.ContactEmail) != "" {
			if _, err := mail.ParseAddress(s.ContactEmail); err != nil {
				errs.Add("contact_email", "enter a valid email address")
			}
		}
		maxLen(errs, "contact_phone", s.ContactPhone, 15)
	case models.SectionPayment:
		validateMoney(errs, "default_monthly_fee", s.DefaultMonthlyFee)
		validateMoney(errs, "late_payment_penalty", s.LatePaymentPenalty)
		between(errs, "billing_day", s.BillingDay, 1, 31)
		if s.LatePaymentPenaltyType != "fixed" && s.LatePaymentPenaltyType != "percent" {
			errs.Add("late_payment_penalty_type", "choose fixed or percent")
		}
		between(errs, "grace_period_days", s.GracePeriodDays, 0, 31)
		maxLen(errs, "admin_upi_id", s.AdminUPIID, 100)
	case models.SectionUsers:
		between(errs, "max_users_allowed", s.MaxUsersAllowed, 1, 10000)
		between(errs, "inactive_user_cleanup_days", s.InactiveUserCleanupDays, 0, 3650)
	case models.SectionReminders:
		between(errs, "first_reminder_days", s.FirstReminderDays, 0, 31)
		between(errs, "second_reminder_days", s.SecondReminderDays, 0, 31)
		between(errs, "final_reminder_days", s.FinalReminderDays, 0, 31)
	case models.SectionReports:
		between(errs, "report_generation_day", s.ReportGenerationDay, 1, 28)
	case models.SectionSecurity:
		between(errs, "min_password_length", s.MinPasswordLength, 4, 20)
		if s.SessionTimeoutMinutes < 5 {
			errs.Add("session_timeout_minutes", "must be at least 5 minutes")
		}
		between(errs, "max_login_attempts", s.MaxLoginAttempts, 1, 100)
		between(errs, "lockout_duration_minutes", s.LockoutDurationMinutes, 1, 1440)
	case models.SectionDisplay:
		switch s.DefaultTheme {
		case "light", "dark", "auto":
		default:
			errs.Add("default_theme", "choose light, dark or auto")
		}
		required(errs, "currency_symbol", s.CurrencySymbol)
		maxLen(errs, "currency_symbol", s.CurrencySymbol, 5)
		required(errs, "time_zone", s.TimeZone)
	case models.SectionSystem:
		between(errs, "data_retention_months", s.DataRetentionMonths, 1, 120)
		between(errs, "backup_frequency_days", s.BackupFrequencyDays, 1, 365)
		between(errs, "log_retention_days", s.LogRetentionDays, 1, 3650)
	}
	return errs.Err()
}
