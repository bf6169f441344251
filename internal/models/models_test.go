package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriods(t *testing.T) {
	now := time.Date(2025, time.June, 14, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-06", CurrentPeriod(now))

	p, err := PeriodOrCurrent("", now)
	require.NoError(t, err)
	assert.Equal(t, "2025-06", p)

	p, err = PeriodOrCurrent("2024-12", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-12", p)

	for _, bad := range []string{"2024-13", "June 2024", "2024/01", "24-01"} {
		_, err := ParsePeriod(bad)
		assert.Error(t, err, bad)
	}

	start, end := MonthRange(2024, time.December)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestSummarizePayments(t *testing.T) {
	payments := []Payment{
		{Amount: decimal.RequireFromString("3000.00"), Status: PaymentPaid},
		{Amount: decimal.RequireFromString("2500.50"), Status: PaymentPaid},
		{Amount: decimal.RequireFromString("3000.00"), Status: PaymentPending},
		{Amount: decimal.RequireFromString("1000.00"), Status: PaymentPartial},
	}
	sum := SummarizePayments(payments)
	assert.Equal(t, "5500.50", sum.Collected.StringFixed(2))
	assert.Equal(t, 1, sum.Pending)
	assert.Equal(t, 4, sum.Count)

	empty := SummarizePayments(nil)
	assert.True(t, empty.Collected.IsZero())
}

func TestFixedExpenseTotalIsDerived(t *testing.T) {
	f := FixedExpense{
		KitchenRent:   decimal.RequireFromString("5000"),
		MaidSalary:    decimal.RequireFromString("3000"),
		GasCylinder:   decimal.RequireFromString("1100.25"),
		OtherExpenses: decimal.Zero,
	}
	assert.Equal(t, "9100.25", f.Total().StringFixed(2))

	f.OtherExpenses = decimal.RequireFromString("99.75")
	view := f.View()
	assert.Equal(t, "9200.00", view.TotalFixed.StringFixed(2))
}

func TestGroceryHelpers(t *testing.T) {
	items := []GroceryItem{
		{Price: decimal.RequireFromString("10.10")},
		{Price: decimal.RequireFromString("0.20")},
	}
	assert.Equal(t, "10.30", GroceryTotal(items).StringFixed(2))
	assert.Equal(t, "Dairy", CategoryDairy.Label())
	assert.Equal(t, "Other", GroceryCategory("meat").Label())
	assert.False(t, GroceryCategory("meat").Valid())
}

func TestAccountNames(t *testing.T) {
	a := Account{Username: "alice"}
	assert.Equal(t, "alice", a.FullName())
	assert.Equal(t, "alice", a.GreetingName())

	a.FirstName, a.LastName = "Alice", "Rao"
	assert.Equal(t, "Alice Rao", a.FullName())
	assert.Equal(t, "Alice", a.GreetingName())
}

func TestProfileLocked(t *testing.T) {
	now := time.Now()
	later := now.Add(time.Minute)
	p := Profile{}
	assert.False(t, p.Locked(now))
	p.LockedUntil = &later
	assert.True(t, p.Locked(now))
	assert.False(t, p.Locked(later.Add(time.Second)))
}

func TestMessSettingsHelpers(t *testing.T) {
	s := DefaultMessSettings()
	assert.Equal(t, "Not configured", s.UPIOrPlaceholder())
	s.AdminUPIID = "mess@upi"
	assert.Equal(t, "mess@upi", s.UPIOrPlaceholder())

	assert.Equal(t, time.Hour, s.SessionTTL(time.Minute))
	s.SessionTimeoutMinutes = 0
	assert.Equal(t, time.Minute, s.SessionTTL(time.Minute))
}
