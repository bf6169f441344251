package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// AccountStore persists accounts together with their profiles.
type AccountStore interface {
	// CreateAccount inserts the account and its profile in one transaction.
	// A nil profile gets a member profile.
	CreateAccount(ctx context.Context, acct models.Account) (models.Account, error)
	// EnsureProfile creates the profile for accountID if it is missing and
	// reports whether it did.
	EnsureProfile(ctx context.Context, accountID int64, role models.Role) (models.Profile, bool, error)
	GetAccount(ctx context.Context, id int64) (models.Account, error)
	FindAccountByIdentifier(ctx context.Context, identifier string) (models.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (models.Account, error)
	// ListAccounts returns accounts with the given role, or all when role is empty.
	ListAccounts(ctx context.Context, role models.Role) ([]models.Account, error)
	CountAccounts(ctx context.Context, role models.Role, activeOnly bool) (int, error)
	UpdateAccount(ctx context.Context, acct models.Account) (models.Account, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateAvatar(ctx context.Context, id int64, path string) error
	UpdateTheme(ctx context.Context, id int64, darkMode bool) error
	DeleteAccount(ctx context.Context, id int64) error
	// RecordLoginFailure bumps the failure counter and locks the profile
	// until now+lockFor once maxAttempts is reached.
	RecordLoginFailure(ctx context.Context, id int64, maxAttempts int, lockFor time.Duration, now time.Time) (models.Profile, error)
	ResetLoginFailures(ctx context.Context, id int64) error
}

// PaymentStore persists monthly payments.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p models.Payment) (models.Payment, error)
	// GetOrCreatePayment returns the payment for (accountID, period), creating
	// a pending one with amount when absent. It reports whether it created.
	GetOrCreatePayment(ctx context.Context, accountID int64, period string, amount decimal.Decimal) (models.Payment, bool, error)
	GetPayment(ctx context.Context, id int64) (models.Payment, error)
	FindPayment(ctx context.Context, accountID int64, period string) (models.Payment, error)
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
	ListPaymentPeriods(ctx context.Context) ([]string, error)
	UpdatePayment(ctx context.Context, p models.Payment) (models.Payment, error)
	// SubmitPayment records a member's payment claim. The amount is untouched.
	SubmitPayment(ctx context.Context, id int64, transactionID, proofPath string, now time.Time) (models.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
}

// GroceryStore persists the grocery ledger.
type GroceryStore interface {
	CreateGrocery(ctx context.Context, item models.GroceryItem) (models.GroceryItem, error)
	GetGrocery(ctx context.Context, id int64) (models.GroceryItem, error)
	// ListGroceries returns the items of period, or all items when period is empty.
	ListGroceries(ctx context.Context, period string) ([]models.GroceryItem, error)
	ListGroceryPeriods(ctx context.Context) ([]string, error)
	UpdateGrocery(ctx context.Context, item models.GroceryItem) (models.GroceryItem, error)
	DeleteGrocery(ctx context.Context, id int64) error
}

// ExpenseStore persists fixed expenses, one row per period.
type ExpenseStore interface {
	CreateFixedExpense(ctx context.Context, e models.FixedExpense) (models.FixedExpense, error)
	GetFixedExpense(ctx context.Context, id int64) (models.FixedExpense, error)
	FindFixedExpense(ctx context.Context, period string) (models.FixedExpense, error)
	ListFixedExpenses(ctx context.Context) ([]models.FixedExpense, error)
	UpdateFixedExpense(ctx context.Context, e models.FixedExpense) (models.FixedExpense, error)
	DeleteFixedExpense(ctx context.Context, id int64) error
}

// MessageStore persists member and system messages.
type MessageStore interface {
	CreateMessage(ctx context.Context, m models.Message) (models.Message, error)
	GetMessage(ctx context.Context, id int64) (models.Message, error)
	ListMessages(ctx context.Context, filter models.MessageFilter) ([]models.Message, error)
	CountMessages(ctx context.Context, filter models.MessageFilter) (int, error)
	// ResolveMessage marks the message resolved. Replies are untouched.
	ResolveMessage(ctx context.Context, id int64, now time.Time) (models.Message, error)
	// ReplyAsAdmin stores the admin reply. Status is untouched.
	ReplyAsAdmin(ctx context.Context, id int64, reply string, now time.Time) (models.Message, error)
	// ReplyAsMember stores the owner's reply. ErrNotFound when accountID does
	// not own the message.
	ReplyAsMember(ctx context.Context, id, accountID int64, reply string, now time.Time) (models.Message, error)
}

// MealStore persists meal plans, one per date.
type MealStore interface {
	CreateMealPlan(ctx context.Context, plan models.MealPlan) (models.MealPlan, error)
	GetMealPlan(ctx context.Context, id int64) (models.MealPlan, error)
	// ListMealPlans returns plans dated in [from, to), ordered by date.
	ListMealPlans(ctx context.Context, from, to time.Time) ([]models.MealPlan, error)
	UpdateMealPlan(ctx context.Context, plan models.MealPlan) (models.MealPlan, error)
	DeleteMealPlan(ctx context.Context, id int64) error
}

// ActivityStore is the append-only audit log.
type ActivityStore interface {
	LogActivity(ctx context.Context, a models.Activity) (models.Activity, error)
	// RecentActivity returns the latest entries, newest first. accountID 0
	// means every account.
	RecentActivity(ctx context.Context, accountID int64, limit int) ([]models.Activity, error)
}

// SettingsStore persists member preferences and the mess singleton.
type SettingsStore interface {
	GetOrCreateUserSettings(ctx context.Context, accountID int64) (models.UserSettings, error)
	// UpdateUserSettings writes only the columns of section.
	UpdateUserSettings(ctx context.Context, section models.SettingsSection, s models.UserSettings) (models.UserSettings, error)
	// GetMessSettings returns the singleton, creating it with defaults.
	GetMessSettings(ctx context.Context) (models.MessSettings, error)
	// UpdateMessSettings writes only the columns of section.
	UpdateMessSettings(ctx context.Context, section models.SettingsSection, s models.MessSettings) (models.MessSettings, error)
	SetUPIQRCode(ctx context.Context, path string) error
}

// Store is everything the handlers need from a backend.
type Store interface {
	AccountStore
	PaymentStore
	GroceryStore
	ExpenseStore
	MessageStore
	MealStore
	ActivityStore
	SettingsStore
	Close()
}
