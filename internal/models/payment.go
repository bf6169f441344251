package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks where a monthly payment stands.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// Valid reports whether s is a known status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

// Label is the display form of the status.
func (s PaymentStatus) Label() string {
	switch s {
	case PaymentPartial:
		return "Partial"
	case PaymentPaid:
		return "Paid"
	default:
		return "Pending"
	}
}

// Payment is one member's bill for one billing period.
type Payment struct {
	ID            int64           `json:"id"`
	AccountID     int64           `json:"account_id"`
	Period        string          `json:"month_year"`
	Amount        decimal.Decimal `json:"amount"`
	Status        PaymentStatus   `json:"status"`
	TransactionID string          `json:"transaction_id,omitempty"`
	ProofPath     string          `json:"proof_path,omitempty"`
	PaidAt        *time.Time      `json:"paid_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`

	// Filled by list queries that join the owning account.
	Username string `json:"username,omitempty"`
	FullName string `json:"full_name,omitempty"`
}

// PaymentSummary aggregates the payments of one period.
type PaymentSummary struct {
	Collected decimal.Decimal `json:"total_collected"`
	Pending   int             `json:"pending_count"`
	Count     int             `json:"total_count"`
}

// SummarizePayments totals paid amounts and counts pending rows.
func SummarizePayments(payments []Payment) PaymentSummary {
	sum := PaymentSummary{Collected: decimal.Zero, Count: len(payments)}
	for _, p := range payments {
		switch p.Status {
		case PaymentPaid:
			sum.Collected = sum.Collected.Add(p.Amount)
		case PaymentPending:
			sum.Pending++
		}
	}
	return sum
}

// PaymentFilter narrows payment listings. Zero values mean no constraint.
type PaymentFilter struct {
	AccountID int64
	Period    string
	Limit     int
}
