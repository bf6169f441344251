package export

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage/sqlite"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage/storagetest"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleReport() MonthlyReport {
	paid := time.Date(2025, 6, 5, 10, 30, 0, 0, time.UTC)
	payments := []models.Payment{
		{ID: 1, FullName: "Alice Rao", Period: "2025-06", Amount: d("3000"), Status: models.PaymentPaid, TransactionID: "TXN1", PaidAt: &paid},
		{ID: 2, FullName: "Bob Das", Period: "2025-06", Amount: d("3000"), Status: models.PaymentPending},
	}
	groceries := []models.GroceryItem{
		{Name: "Rice", Category: models.CategoryGrains, Quantity: "25 kg", Price: d("1250.50"), PurchaseDate: paid},
		{Name: "Milk", Category: models.CategoryDairy, Quantity: "10 l", Price: d("600"), PurchaseDate: paid},
	}
	fixed := models.FixedExpense{Period: "2025-06", KitchenRent: d("5000"), MaidSalary: d("2000"), GasCylinder: d("1100"), OtherExpenses: d("0")}
	view := fixed.View()
	r := MonthlyReport{
		Period:       "2025-06",
		Payments:     payments,
		Groceries:    groceries,
		Fixed:        &view,
		Summary:      models.SummarizePayments(payments),
		GroceryTotal: models.GroceryTotal(groceries),
		FixedTotal:   view.TotalFixed,
	}
	r.Expenses = r.GroceryTotal.Add(r.FixedTotal)
	return r
}

func reopen(t *testing.T, f *excelize.File) *excelize.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, f))
	out, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { out.Close() })
	return out
}

func TestPaymentsWorkbook(t *testing.T) {
	r := sampleReport()
	f, err := PaymentsWorkbook(r.Period, r.Payments)
	require.NoError(t, err)
	book := reopen(t, f)

	assert.Equal(t, []string{"Payments 2025-06"}, book.GetSheetList())
	rows, err := book.GetRows("Payments 2025-06")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"User", "Month", "Amount (Rs.)", "Status", "Transaction ID", "Paid Date"}, rows[0])
	assert.Equal(t, "Alice Rao", rows[1][0])
	assert.Equal(t, "2025-06-05 10:30", rows[1][5])
	assert.Equal(t, "N/A", rows[2][4])
	assert.Equal(t, "Total Collected:", rows[4][0])
	assert.Equal(t, "3000", rows[4][2])
}

func TestGroceriesWorkbook(t *testing.T) {
	r := sampleReport()
	f, err := GroceriesWorkbook(r.Period, r.Groceries)
	require.NoError(t, err)
	book := reopen(t, f)

	total, err := book.GetCellValue("Groceries 2025-06", "D5")
	require.NoError(t, err)
	assert.Equal(t, "1850.5", total)
	cat, err := book.GetCellValue("Groceries 2025-06", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Grains", cat)
}

func TestMonthlyWorkbook(t *testing.T) {
	r := sampleReport()
	f, err := MonthlyWorkbook(r)
	require.NoError(t, err)
	book := reopen(t, f)

	assert.Equal(t, []string{"Summary", "Payments", "Groceries"}, book.GetSheetList())
	title, err := book.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Mess Management Report - 2025-06", title)

	rows, err := book.GetRows("Summary")
	require.NoError(t, err)
	values := map[string]string{}
	for _, row := range rows {
		if len(row) == 2 {
			values[row[0]] = row[1]
		}
	}
	assert.Equal(t, "3000", values["Total Collected:"])
	assert.Equal(t, "1", values["Pending Payments:"])
	assert.Equal(t, "9950.5", values["Total Expenses:"])

	r.Groceries = nil
	f, err = MonthlyWorkbook(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"Summary", "Payments"}, reopen(t, f).GetSheetList())
}

func TestPDFs(t *testing.T) {
	r := sampleReport()
	var buf bytes.Buffer
	require.NoError(t, MonthlyReportPDF(&buf, "Mess Management System", r))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	buf.Reset()
	acct := models.Account{Username: "alice", FirstName: "Alice", LastName: "Rao", Profile: &models.Profile{RoomNo: "101"}}
	settings := models.DefaultMessSettings()
	settings.Address = "12 Hostel Road"
	require.NoError(t, ReceiptPDF(&buf, settings, acct, r.Payments[0], time.Now()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestBuildMonthlyReport(t *testing.T) {
	store, err := sqlite.New(filepath.Join(t.TempDir(), "mess.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	alice := storagetest.NewMember(t, store, "alice")
	_, err = store.CreatePayment(ctx, models.Payment{AccountID: alice.ID, Period: "2025-06", Amount: d("3000"), Status: models.PaymentPaid})
	require.NoError(t, err)
	_, err = store.CreateGrocery(ctx, models.GroceryItem{Name: "Rice", Category: models.CategoryGrains, Quantity: "1", Price: d("100"), PurchaseDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), Period: "2025-06"})
	require.NoError(t, err)

	r, err := BuildMonthlyReport(ctx, store, "2025-06")
	require.NoError(t, err)
	assert.Nil(t, r.Fixed)
	assert.Equal(t, "3000.00", r.Summary.Collected.StringFixed(2))
	assert.Equal(t, "100.00", r.Expenses.StringFixed(2))
	assert.Equal(t, "2900.00", r.Balance().StringFixed(2))

	_, err = store.CreateFixedExpense(ctx, models.FixedExpense{Period: "2025-06", KitchenRent: d("500"), MaidSalary: d("0"), GasCylinder: d("0"), OtherExpenses: d("0")})
	require.NoError(t, err)
	r, err = BuildMonthlyReport(ctx, store, "2025-06")
	require.NoError(t, err)
	require.NotNil(t, r.Fixed)
	assert.Equal(t, "600.00", r.Expenses.StringFixed(2))
}
