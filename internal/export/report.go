package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

// Source is what a monthly report is assembled from.
type Source interface {
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
	ListGroceries(ctx context.Context, period string) ([]models.GroceryItem, error)
	FindFixedExpense(ctx context.Context, period string) (models.FixedExpense, error)
}

// MonthlyReport is the financial picture of one billing period.
type MonthlyReport struct {
	Period       string                   `json:"month_year"`
	Payments     []models.Payment         `json:"payments"`
	Groceries    []models.GroceryItem     `json:"groceries"`
	Fixed        *models.FixedExpenseView `json:"fixed_expense,omitempty"`
	Summary      models.PaymentSummary    `json:"payment_summary"`
	GroceryTotal decimal.Decimal          `json:"total_grocery"`
	FixedTotal   decimal.Decimal          `json:"total_fixed"`
	Expenses     decimal.Decimal          `json:"total_expenses"`
}

// Balance is what was collected minus what was spent.
func (r MonthlyReport) Balance() decimal.Decimal {
	return r.Summary.Collected.Sub(r.Expenses)
}

// BuildMonthlyReport loads and totals everything recorded for period.
func BuildMonthlyReport(ctx context.Context, src Source, period string) (MonthlyReport, error) {
	payments, err := src.ListPayments(ctx, models.PaymentFilter{Period: period})
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("list payments: %w", err)
	}
	groceries, err := src.ListGroceries(ctx, period)
	if err != nil {
		return MonthlyReport{}, fmt.Errorf("list groceries: %w", err)
	}
	r := MonthlyReport{
		Period:       period,
		Payments:     payments,
		Groceries:    groceries,
		Summary:      models.SummarizePayments(payments),
		GroceryTotal: models.GroceryTotal(groceries),
		FixedTotal:   decimal.Zero,
	}
	fixed, err := src.FindFixedExpense(ctx, period)
	switch {
	case err == nil:
		view := fixed.View()
		r.Fixed = &view
		r.FixedTotal = view.TotalFixed
	case !errors.Is(err, storage.ErrNotFound):
		return MonthlyReport{}, fmt.Errorf("find fixed expense: %w", err)
	}
	r.Expenses = r.GroceryTotal.Add(r.FixedTotal)
	return r, nil
}
