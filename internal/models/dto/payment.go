package dto

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
)

// PaymentRequest is the admin create/edit form.
type PaymentRequest struct {
	AccountID     int64                `json:"user"`
	Period        string               `json:"month_year"`
	Amount        decimal.Decimal      `json:"amount"`
	Status        models.PaymentStatus `json:"status"`
	TransactionID string               `json:"transaction_id"`
}

func (r PaymentRequest) Validate() error {
	errs := FieldErrors{}
	if r.AccountID <= 0 {
		errs.Add("user", "this field is required")
	}
	if _, err := models.ParsePeriod(r.Period); err != nil {
		errs.Add("month_year", err.Error())
	}
	validateMoney(errs, "amount", r.Amount)
	if !r.Status.Valid() {
		errs.Add("status", "unknown status")
	}
	maxLen(errs, "transaction_id", r.TransactionID, 100)
	return errs.Err()
}

// PaymentSubmission is what a member sends after paying.
type PaymentSubmission struct {
	TransactionID string `json:"transaction_id"`
}

func (r PaymentSubmission) Validate() error {
	errs := FieldErrors{}
	required(errs, "transaction_id", r.TransactionID)
	maxLen(errs, "transaction_id", strings.TrimSpace(r.TransactionID), 100)
	return errs.Err()
}

func validateMoney(errs FieldErrors, field string, v decimal.Decimal) {
	if v.IsNegative() {
		errs.Add(field, "must not be negative")
		return
	}
	if v.Exponent() < -2 && !v.Equal(v.Round(2)) {
		errs.Add(field, "at most two decimal places")
	}
	if v.GreaterThanOrEqual(decimal.New(1, 8)) {
		errs.Add(field, "too large")
	}
}
