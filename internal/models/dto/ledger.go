package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

type GroceryRequest struct {
	Name         string                 `json:"item_name"`
	Category     models.GroceryCategory `json:"category"`
	Quantity     string                 `json:"quantity"`
	Price        decimal.Decimal        `json:"price"`
	PurchaseDate string                 `json:"purchase_date"`
	Period       string                 `json:"month_year"`
}

func (r GroceryRequest) Validate() error {
	errs := FieldErrors{}
	required(errs, "item_name", r.Name)
	maxLen(errs, "item_name", r.Name, 200)
	required(errs, "quantity", r.Quantity)
	maxLen(errs, "quantity", r.Quantity, 50)
	if r.Category != "" && !r.Category.Valid() {
		errs.Add("category", "unknown category")
	}
	validateMoney(errs, "price", r.Price)
	if _, err := time.Parse(models.DateLayout, r.PurchaseDate); err != nil {
		errs.Add("purchase_date", "enter a date as YYYY-MM-DD")
	}
	if _, err := models.ParsePeriod(r.Period); err != nil {
		errs.Add("month_year", err.Error())
	}
	return errs.Err()
}

// Item builds the model; call Validate first.
func (r GroceryRequest) Item() models.GroceryItem {
	date, _ := time.Parse(models.DateLayout, r.PurchaseDate)
	category := r.Category
	if category == "" {
		category = models.CategoryOther
	}
	return models.GroceryItem{
		Name:         r.Name,
		Category:     category,
		Quantity:     r.Quantity,
		Price:        r.Price,
		PurchaseDate: date,
		Period:       r.Period,
	}
}

type FixedExpenseRequest struct {
	Period        string          `json:"month_year"`
	KitchenRent   decimal.Decimal `json:"kitchen_rent"`
	MaidSalary    decimal.Decimal `json:"maid_salary"`
	GasCylinder   decimal.Decimal `json:"gas_cylinder"`
	OtherExpenses decimal.Decimal `json:"other_expenses"`
}

func (r FixedExpenseRequest) Validate() error {
	errs := FieldErrors{}
	if _, err := models.ParsePeriod(r.Period); err != nil {
		errs.Add("month_year", err.Error())
	}
	validateMoney(errs, "kitchen_rent", r.KitchenRent)
	validateMoney(errs, "maid_salary", r.MaidSalary)
	validateMoney(errs, "gas_cylinder", r.GasCylinder)
	validateMoney(errs, "other_expenses", r.OtherExpenses)
	return errs.Err()
}

func (r FixedExpenseRequest) Expense() models.FixedExpense {
	return models.FixedExpense{
		Period:        r.Period,
		KitchenRent:   r.KitchenRent,
		MaidSalary:    r.MaidSalary,
		GasCylinder:   r.GasCylinder,
		OtherExpenses: r.OtherExpenses,
	}
}

type MealPlanRequest struct {
	Date      string `json:"date"`
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
	Notes     string `json:"notes"`
}

func (r MealPlanRequest) Validate() error {
	errs := FieldErrors{}
	if _, err := time.Parse(models.DateLayout, r.Date); err != nil {
		errs.Add("date", "enter a date as YYYY-MM-DD")
	}
	return errs.Err()
}

func (r MealPlanRequest) Plan() models.MealPlan {
	date, _ := time.Parse(models.DateLayout, r.Date)
	return models.MealPlan{
		Date:      date,
		Breakfast: r.Breakfast,
		Lunch:     r.Lunch,
		Dinner:    r.Dinner,
		Notes:     r.Notes,
	}
}
