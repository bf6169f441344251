// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

// Opener returns an empty store for one subtest.
type Opener func(t *testing.T) storage.Store

// Run exercises a backend against the shared contract.
func Run(t *testing.T, open Opener) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Store)
	}{
		{"accounts create with profile", testCreateAccount},
		{"accounts lookup by identifier", testFindAccount},
		{"emails are unique regardless of case", testEmailCaseInsensitive},
		{"ensure profile is idempotent", testEnsureProfile},
		{"update account and profile", testUpdateAccount},
		{"delete account cascades", testDeleteCascade},
		{"login failures lock the profile", testLoginLockout},
		{"payment get or create is idempotent", testGetOrCreatePayment},
		{"concurrent first access creates one row", testConcurrentGetOrCreate},
		{"payment uniqueness per period", testPaymentUniqueness},
		{"member submission resets to pending", testSubmitPayment},
		{"payment listing", testListPayments},
		{"grocery ledger by period", testGroceries},
		{"fixed expense per period", testFixedExpenses},
		{"message replies and resolution", testMessages},
		{"meal plans by month", testMealPlans},
		{"activity newest first", testActivity},
		{"mess settings singleton", testMessSettings},
		{"user settings by section", testUserSettings},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := open(t)
			t.Cleanup(s.Close)
			tc.fn(t, s)
		})
	}
}

// NewMember creates a member account with a predictable identity.
func NewMember(t *testing.T, s storage.Store, username string) models.Account {
	t.Helper()
	acct, err := s.CreateAccount(context.Background(), models.Account{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    username,
		LastName:     "Tester",
		PasswordHash: "hash",
		Profile:      &models.Profile{Role: models.RoleMember, Phone: "9000000000", RoomNo: "101", Active: true},
	})
	require.NoError(t, err)
	return acct
}

func testCreateAccount(t *testing.T, s storage.Store) {
	ctx := context.Background()
	acct, err := s.CreateAccount(ctx, models.Account{
		Username:     "boss",
		Email:        "boss@example.com",
		PasswordHash: "hash",
		Profile:      &models.Profile{Role: models.RoleAdmin, Active: true},
	})
	require.NoError(t, err)
	require.NotNil(t, acct.Profile)
	assert.NotZero(t, acct.ID)
	assert.Equal(t, models.RoleAdmin, acct.Profile.Role)
	assert.True(t, acct.Profile.Active)
	assert.False(t, acct.CreatedAt.IsZero())

	plain, err := s.CreateAccount(ctx, models.Account{Username: "plain", Email: "plain@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	require.NotNil(t, plain.Profile)
	assert.Equal(t, models.RoleMember, plain.Profile.Role)

	_, err = s.CreateAccount(ctx, models.Account{Username: "boss", Email: "other@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	_, err = s.CreateAccount(ctx, models.Account{Username: "other", Email: "boss@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	n, err := s.CountAccounts(ctx, models.RoleMember, false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func testFindAccount(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewMember(t, s, "alice")

	byName, err := s.FindAccountByIdentifier(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byName.ID)

	byEmail, err := s.FindAccountByIdentifier(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	_, err = s.FindAccountByIdentifier(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	got, err := s.FindAccountByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = s.GetAccount(ctx, alice.ID+100)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testEnsureProfile(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewMember(t, s, "alice")

	for i := 0; i < 3; i++ {
		p, created, err := s.EnsureProfile(ctx, alice.ID, models.RoleAdmin)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, models.RoleMember, p.Role, "existing profile keeps its role")
		assert.Equal(t, "101", p.RoomNo)
	}

	_, _, err := s.EnsureProfile(ctx, alice.ID+100, models.RoleMember)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testUpdateAccount(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewMember(t, s, "alice")
	NewMember(t, s, "bob")

	alice.FirstName = "Alice"
	alice.Profile.RoomNo = "202"
	alice.Profile.Active = false
	updated, err := s.UpdateAccount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.FirstName)
	assert.Equal(t, "202", updated.Profile.RoomNo)
	assert.False(t, updated.Profile.Active)

	alice.Username = "bob"
	_, err = s.UpdateAccount(ctx, alice)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	require.NoError(t, s.UpdateTheme(ctx, alice.ID, true))
	require.NoError(t, s.UpdateAvatar(ctx, alice.ID, "avatars/a.png"))
	require.NoError(t, s.UpdatePassword(ctx, alice.ID, "new-hash"))
	got, err := s.GetAccount(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, got.Profile.DarkMode)
	assert.Equal(t, "avatars/a.png", got.Profile.AvatarPath)
	assert.Equal(t, "new-hash", got.PasswordHash)

	members, err := s.ListAccounts(ctx, models.RoleMember)
	require.NoError(t, err)
	assert.Len(t, members, 2)
	active, err := s.CountAccounts(ctx, models.RoleMember, true)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}

func testDeleteCascade(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewMember(t, s, "alice")
	p, _, err := s.GetOrCreatePayment(ctx, alice.ID, "2025-06", decimal.NewFromInt(3000))
	require.NoError(t, err)
	m, err := s.CreateMessage(ctx, models.Message{AccountID: alice.ID, Subject: "Hi", Body: "hello"})
	require.NoError(t, err)
	_, err = s.LogActivity(ctx, models.Activity{AccountID: alice.ID, Type: models.ActivityLogin, Description: "login"})
	require.NoError(t, err)
	_, err = s.GetOrCreateUserSettings(ctx, alice.ID)
	require.NoError(t, err)

	require.NoError(t, s.DeleteAccount(ctx, alice.ID))

	_, err = s.GetPayment(ctx, p.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetMessage(ctx, m.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	entries, err := s.RecentActivity(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.ErrorIs(t, s.DeleteAccount(ctx, alice.ID), storage.ErrNotFound)
}

func testLoginLockout(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewMember(t, s, "alice")
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	p, err := s.RecordLoginFailure(ctx, alice.ID, 3, 30*time.Minute, now)
	require.NoError(t, err)
	assert.Equal(t, 1, p.FailedLogins)
	assert.False(t, p.Locked(now))

	_, err = s.RecordLoginFailure(ctx, alice.ID, 3, 30*time.Minute, now)
	require.NoError(t, err)
	p, err = s.RecordLoginFailure(ctx, alice.ID, 3, 30*time.Minute, now)
	require.NoError(t, err)
	assert.Equal(t, 3, p.FailedLogins)
	require.NotNil(t, p.LockedUntil)
	assert.True(t, p.Locked(now.Add(29*time.Minute)))
	assert.False(t, p.Locked(now.Add(31*time.Minute)))

	later := now.Add(time.Hour)
	p, err = s.RecordLoginFailure(ctx, alice.ID, 3, 30*time.Minute, later)
	require.NoError(t, err)
	assert.Equal(t, 1, p.FailedLogins, "an expired lockout starts a fresh count")
	assert.Nil(t, p.LockedUntil)
	assert.False(t, p.Locked(later))

	_, err = s.RecordLoginFailure(ctx, alice.ID, 3, 30*time.Minute, later)
	require.NoError(t, err)
	p, err = s.RecordLoginFailure(ctx, alice.ID, 3, 30*time.Minute, later)
	require.NoError(t, err)
	assert.Equal(t, 3, p.FailedLogins)
	assert.True(t, p.Locked(later.Add(time.Minute)))

	require.NoError(t, s.ResetLoginFailures(ctx, alice.ID))
	got, err := s.GetAccount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Profile.FailedLogins)
	assert.Nil(t, got.Profile.LockedUntil)
}

func testEmailCaseInsensitive(t *testing.T, s storage.Store) {
	ctx := context.Background()
	NewMember(t, s, "alice")
	_, err := s.CreateAccount(ctx, models.Account{
		Username:     "alice2",
		Email:        "Alice@Example.com",
		PasswordHash: "hash",
		Profile:      &models.Profile{Role: models.RoleMember, Active: true},
	})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	got, err := s.FindAccountByIdentifier(ctx, "ALICE@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
}

func testConcurrentGetOrCreate(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewMember(t, s, "alice")
	fee := decimal.RequireFromString("3000.00")

	const workers = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ids      = map[int64]int{}
		created  int
		settings []models.MessSettings
		errs     []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, isNew, err := s.GetOrCreatePayment(ctx, alice.ID, "2025-06", fee)
			ms, msErr := s.GetMessSettings(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil || msErr != nil {
				errs = append(errs, err, msErr)
				return
			}
			ids[p.ID]++
			if isNew {
				created++
			}
			settings = append(settings, ms)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Len(t, ids, 1, "every caller sees the same payment")
	assert.Equal(t, 1, created)
	payments, err := s.ListPayments(ctx, models.PaymentFilter{AccountID: alice.ID})
	require.NoError(t, err)
	assert.Len(t, payments, 1)

	require.Len(t, settings, workers)
	for _, ms := range settings[1:] {
		assert.Equal(t, settings[0].MessName, ms.MessName)
		assert.True(t, settings[0].DefaultMonthlyFee.Equal(ms.DefaultMonthlyFee))
	}
}

func testGetOrCreatePayment(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewMember(t, s, "alice")

	first, created, err := s.GetOrCreatePayment(ctx, alice.ID, "2025-06", decimal.NewFromInt(3000))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.PaymentPending, first.Status)
	assert.True(t, first.Amount.Equal(decimal.NewFromInt(3000)))

	second, created, err := s.GetOrCreatePayment(ctx, alice.ID, "2025-06", decimal.NewFromInt(9999))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Amount.Equal(decimal.NewFromInt(3000)), "existing amount is kept")

	all, err := s.ListPayments(ctx, models.PaymentFilter{AccountID: alice.ID})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, _, err = s.GetOrCreatePayment(ctx, alice.ID+100, "2025-06", decimal.Zero)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testPaymentUniqueness(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewMember(t, s, "alice")
	p := models.Payment{AccountID: alice.ID, Period: "2025-06", Amount: decimal.RequireFromString("2500.50"), Status: models.PaymentPaid}

	created, err := s.CreatePayment(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "2500.50", created.Amount.StringFixed(2))
	assert.Equal(t, "alice Tester", created.FullName)

	_, err = s.CreatePayment(ctx, p)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	other, err := s.CreatePayment(ctx, models.Payment{AccountID: alice.ID, Period: "2025-07", Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	other.Period = "2025-06"
	_, err = s.UpdatePayment(ctx, other)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
}

func testSubmitPayment(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewMember(t, s, "alice")
	p, err := s.CreatePayment(ctx, models.Payment{AccountID: alice.ID, Period: "2025-06", Amount: decimal.NewFromInt(3000), Status: models.PaymentPartial})
	require.NoError(t, err)

	at := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)
	got, err := s.SubmitPayment(ctx, p.ID, "TXN123", "payment_proofs/x.png", at)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.Status)
	assert.Equal(t, "TXN123", got.TransactionID)
	assert.Equal(t, "payment_proofs/x.png", got.ProofPath)
	require.NotNil(t, got.PaidAt)
	assert.True(t, got.PaidAt.Equal(at))
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(3000)))

	again, err := s.SubmitPayment(ctx, p.ID, "TXN124", "", at.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "payment_proofs/x.png", again.ProofPath, "proof kept when none uploaded")

	_, err = s.SubmitPayment(ctx, p.ID+100, "TXN", "", at)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testListPayments(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewMember(t, s, "alice")
	bob := NewMember(t, s, "bob")
	for _, p := range []models.Payment{
		{AccountID: alice.ID, Period: "2025-05", Amount: decimal.NewFromInt(100), Status: models.PaymentPaid},
		{AccountID: alice.ID, Period: "2025-06", Amount: decimal.NewFromInt(200), Status: models.PaymentPaid},
		{AccountID: bob.ID, Period: "2025-06", Amount: decimal.NewFromInt(300), Status: models.PaymentPending},
	} {
		_, err := s.CreatePayment(ctx, p)
		require.NoError(t, err)
	}

	june, err := s.ListPayments(ctx, models.PaymentFilter{Period: "2025-06"})
	require.NoError(t, err)
	require.Len(t, june, 2)
	sum := models.SummarizePayments(june)
	assert.True(t, sum.Collected.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, 1, sum.Pending)

	mine, err := s.ListPayments(ctx, models.PaymentFilter{AccountID: alice.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "2025-06", mine[0].Period)

	recent, err := s.ListPayments(ctx, models.PaymentFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	periods, err := s.ListPaymentPeriods(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06", "2025-05"}, periods)

	require.NoError(t, s.DeletePayment(ctx, june[0].ID))
	assert.ErrorIs(t, s.DeletePayment(ctx, june[0].ID), storage.ErrNotFound)
}

func testGroceries(t *testing.T, s storage.Store) {
	ctx := context.Background()
	day := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	rice, err := s.CreateGrocery(ctx, models.GroceryItem{Name: "Rice", Category: models.CategoryGrains, Quantity: "10 kg", Price: decimal.RequireFromString("650.00"), PurchaseDate: day, Period: "2025-06"})
	require.NoError(t, err)
	_, err = s.CreateGrocery(ctx, models.GroceryItem{Name: "Milk", Category: models.CategoryDairy, Quantity: "5 l", Price: decimal.RequireFromString("300.25"), PurchaseDate: day.AddDate(0, 0, 1), Period: "2025-06"})
	require.NoError(t, err)
	_, err = s.CreateGrocery(ctx, models.GroceryItem{Name: "Salt", Category: models.CategorySpices, Quantity: "1 kg", Price: decimal.NewFromInt(20), PurchaseDate: day.AddDate(0, -1, 0), Period: "2025-05"})
	require.NoError(t, err)

	june, err := s.ListGroceries(ctx, "2025-06")
	require.NoError(t, err)
	require.Len(t, june, 2)
	assert.Equal(t, "Milk", june[0].Name, "latest purchase first")
	assert.Equal(t, "950.25", models.GroceryTotal(june).StringFixed(2))
	assert.True(t, day.Equal(rice.PurchaseDate))

	all, err := s.ListGroceries(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	rice.Price = decimal.NewFromInt(700)
	updated, err := s.UpdateGrocery(ctx, rice)
	require.NoError(t, err)
	assert.Equal(t, "700.00", updated.Price.StringFixed(2))

	periods, err := s.ListGroceryPeriods(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2025-06", "2025-05"}, periods)

	require.NoError(t, s.DeleteGrocery(ctx, rice.ID))
	_, err = s.GetGrocery(ctx, rice.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testFixedExpenses(t *testing.T, s storage.Store) {
	ctx := context.Background()
	e := models.FixedExpense{
		Period:        "2025-06",
		KitchenRent:   decimal.NewFromInt(5000),
		MaidSalary:    decimal.NewFromInt(3000),
		GasCylinder:   decimal.RequireFromString("1100.50"),
		OtherExpenses: decimal.Zero,
	}
	created, err := s.CreateFixedExpense(ctx, e)
	require.NoError(t, err)
	assert.Equal(t, "9100.50", created.Total().StringFixed(2))

	_, err = s.CreateFixedExpense(ctx, e)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	found, err := s.FindFixedExpense(ctx, "2025-06")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	found.OtherExpenses = decimal.NewFromInt(400)
	updated, err := s.UpdateFixedExpense(ctx, found)
	require.NoError(t, err)
	assert.Equal(t, "9500.50", updated.Total().StringFixed(2))

	list, err := s.ListFixedExpenses(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.DeleteFixedExpense(ctx, created.ID))
	_, err = s.FindFixedExpense(ctx, "2025-06")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testMessages(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewMember(t, s, "alice")
	bob := NewMember(t, s, "bob")
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	m, err := s.CreateMessage(ctx, models.Message{AccountID: alice.ID, Subject: "Water", Body: "No water"})
	require.NoError(t, err)
	assert.Equal(t, models.MessagePending, m.Status)
	assert.Equal(t, models.MessageFromUser, m.Type)
	_, err = s.CreateMessage(ctx, models.Message{AccountID: alice.ID, Subject: "Payment Reminder", Body: "pay", Type: models.MessageSystem})
	require.NoError(t, err)

	m, err = s.ReplyAsAdmin(ctx, m.ID, "Fixed tomorrow", now)
	require.NoError(t, err)
	assert.Equal(t, models.MessagePending, m.Status, "reply keeps status")
	assert.Equal(t, "Fixed tomorrow", m.AdminReply)

	_, err = s.ReplyAsMember(ctx, m.ID, bob.ID, "not mine", now)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	m, err = s.ReplyAsMember(ctx, m.ID, alice.ID, "Thanks", now)
	require.NoError(t, err)
	assert.Equal(t, "Thanks", m.UserReply)

	resolved, err := s.ResolveMessage(ctx, m.ID, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.MessageResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, "Fixed tomorrow", resolved.AdminReply, "resolve keeps replies")
	assert.Equal(t, "Thanks", resolved.UserReply)
	require.NotNil(t, resolved.RepliedAt)

	userOnly, err := s.ListMessages(ctx, models.MessageFilter{Type: models.MessageFromUser})
	require.NoError(t, err)
	require.Len(t, userOnly, 1)
	assert.Equal(t, "Water", userOnly[0].Subject)

	mine, err := s.ListMessages(ctx, models.MessageFilter{AccountID: alice.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	pending, err := s.CountMessages(ctx, models.MessageFilter{Type: models.MessageFromUser, Status: models.MessagePending})
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func testMealPlans(t *testing.T, s storage.Store) {
	ctx := context.Background()
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	plan, err := s.CreateMealPlan(ctx, models.MealPlan{Date: day, Breakfast: "Poha", Lunch: "Dal rice", Dinner: "Roti sabzi"})
	require.NoError(t, err)
	_, err = s.CreateMealPlan(ctx, models.MealPlan{Date: day})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)
	_, err = s.CreateMealPlan(ctx, models.MealPlan{Date: day.AddDate(0, 1, 0), Lunch: "Biryani"})
	require.NoError(t, err)

	from, to := models.MonthRange(2025, time.June)
	june, err := s.ListMealPlans(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, june, 1)
	assert.Equal(t, "Poha", june[0].Breakfast)
	assert.True(t, day.Equal(june[0].Date))

	plan.Notes = "Sunday special"
	updated, err := s.UpdateMealPlan(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, "Sunday special", updated.Notes)

	require.NoError(t, s.DeleteMealPlan(ctx, plan.ID))
	_, err = s.GetMealPlan(ctx, plan.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testActivity(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewMember(t, s, "alice")
	bob := NewMember(t, s, "bob")
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	related := int64(42)
	_, err := s.LogActivity(ctx, models.Activity{AccountID: alice.ID, Type: models.ActivityLogin, Description: "first", Timestamp: base})
	require.NoError(t, err)
	_, err = s.LogActivity(ctx, models.Activity{AccountID: bob.ID, Type: models.ActivityMessage, Description: "second", Timestamp: base.Add(time.Minute)})
	require.NoError(t, err)
	_, err = s.LogActivity(ctx, models.Activity{AccountID: alice.ID, Type: models.ActivityPayment, Description: "third", Timestamp: base.Add(2 * time.Minute), RelatedID: &related})
	require.NoError(t, err)

	all, err := s.RecentActivity(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Description)
	assert.Equal(t, "first", all[2].Description)
	require.NotNil(t, all[0].RelatedID)
	assert.Equal(t, int64(42), *all[0].RelatedID)
	assert.Equal(t, "alice", all[0].Username)

	mine, err := s.RecentActivity(ctx, alice.ID, 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "third", mine[0].Description)
}

func testMessSettings(t *testing.T, s storage.Store) {
	ctx := context.Background()
	first, err := s.GetMessSettings(ctx)
	require.NoError(t, err)
	second, err := s.GetMessSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.MessName, second.MessName)
	assert.Equal(t, models.DefaultMessSettings().MaxUsersAllowed, first.MaxUsersAllowed)
	assert.Equal(t, "₹", first.CurrencySymbol)

	next := first
	next.DefaultMonthlyFee = decimal.RequireFromString("3200.00")
	next.AdminUPIID = "mess@upi"
	next.MessName = "ignored outside general"
	saved, err := s.UpdateMessSettings(ctx, models.SectionPayment, next)
	require.NoError(t, err)
	assert.Equal(t, "3200.00", saved.DefaultMonthlyFee.StringFixed(2))
	assert.Equal(t, "mess@upi", saved.AdminUPIID)
	assert.Equal(t, first.MessName, saved.MessName, "other sections untouched")

	_, err = s.UpdateMessSettings(ctx, "bogus", next)
	assert.Error(t, err)

	require.NoError(t, s.SetUPIQRCode(ctx, "upi_qr_codes/qr.png"))
	got, err := s.GetMessSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "upi_qr_codes/qr.png", got.UPIQRCodePath)
	assert.Equal(t, "mess@upi", got.AdminUPIID)
}

func testUserSettings(t *testing.T, s storage.Store) {
	ctx := context.Background()
	alice := NewMember(t, s, "alice")

	us, err := s.GetOrCreateUserSettings(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultUserSettings(alice.ID).PaymentHistoryMonths, us.PaymentHistoryMonths)
	again, err := s.GetOrCreateUserSettings(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, us.AccountID, again.AccountID)

	us.EmailPaymentReminders = false
	us.PaymentHistoryMonths = 12
	saved, err := s.UpdateUserSettings(ctx, models.SectionNotifications, us)
	require.NoError(t, err)
	assert.False(t, saved.EmailPaymentReminders)
	assert.Equal(t, 6, saved.PaymentHistoryMonths, "display section untouched")

	_, err = s.GetOrCreateUserSettings(ctx, alice.ID+100)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
