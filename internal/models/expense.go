package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GroceryCategory is the closed set of grocery categories.
type GroceryCategory string

const (
	CategoryVegetables GroceryCategory = "vegetables"
	CategoryGrains     GroceryCategory = "grains"
	CategoryDairy      GroceryCategory = "dairy"
	CategorySpices     GroceryCategory = "spices"
	CategoryOther      GroceryCategory = "other"
)

// Valid reports whether c is a known category.
func (c GroceryCategory) Valid() bool {
	switch c {
	case CategoryVegetables, CategoryGrains, CategoryDairy, CategorySpices, CategoryOther:
		return true
	}
	return false
}

// Label is the display form of the category.
func (c GroceryCategory) Label() string {
	if !c.Valid() || c == "" {
		return "Other"
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// GroceryItem is a shared ledger entry for one purchase.
type GroceryItem struct {
	ID           int64           `json:"id"`
	Name         string          `json:"item_name"`
	Category     GroceryCategory `json:"category"`
	Quantity     string          `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Period       string          `json:"month_year"`
	CreatedAt    time.Time       `json:"created_at"`
}

// GroceryTotal sums the price of every item.
func GroceryTotal(items []GroceryItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price)
	}
	return total
}

// FixedExpense holds the recurring costs of one period.
type FixedExpense struct {
	ID            int64           `json:"id"`
	Period        string          `json:"month_year"`
	KitchenRent   decimal.Decimal `json:"kitchen_rent"`
	MaidSalary    decimal.Decimal `json:"maid_salary"`
	GasCylinder   decimal.Decimal `json:"gas_cylinder"`
	OtherExpenses decimal.Decimal `json:"other_expenses"`
}

// Total is derived on every read and never persisted.
func (f FixedExpense) Total() decimal.Decimal {
	return f.KitchenRent.Add(f.MaidSalary).Add(f.GasCylinder).Add(f.OtherExpenses)
}

// FixedExpenseView is the wire form carrying the derived total.
type FixedExpenseView struct {
	FixedExpense
	TotalFixed decimal.Decimal `json:"total_fixed_expense"`
}

// View attaches the computed total.
func (f FixedExpense) View() FixedExpenseView {
	return FixedExpenseView{FixedExpense: f, TotalFixed: f.Total()}
}
