package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

const paymentSelect = `
	SELECT py.id, py.account_id, py.month_year, py.amount, py.status, py.transaction_id, py.proof_path,
		py.paid_date, py.created_at, a.username, TRIM(a.first_name || ' ' || a.last_name)
	FROM payments py
	JOIN accounts a ON a.id = py.account_id`

// CreatePayment inserts a payment; a second one for the same account and period conflicts.
func (s *Store) CreatePayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	const query = `
		INSERT INTO payments (account_id, month_year, amount, status, transaction_id, proof_path, paid_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	var id int64
	err := s.pool.QueryRow(ctx, query, p.AccountID, p.Period, p.Amount.StringFixed(2), p.Status, p.TransactionID, p.ProofPath, p.PaidAt).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Payment{}, storage.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return models.Payment{}, storage.ErrNotFound
		}
		return models.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	return s.GetPayment(ctx, id)
}

// GetOrCreatePayment is an insert-if-absent followed by a read, so concurrent
// callers converge on one row.
func (s *Store) GetOrCreatePayment(ctx context.Context, accountID int64, period string, amount decimal.Decimal) (models.Payment, bool, error) {
	const insert = `
		INSERT INTO payments (account_id, month_year, amount, status)
		VALUES ($1, $2, $3, 'pending')
		ON CONFLICT (account_id, month_year) DO NOTHING`
	tag, err := s.pool.Exec(ctx, insert, accountID, period, amount.StringFixed(2))
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Payment{}, false, storage.ErrNotFound
		}
		return models.Payment{}, false, fmt.Errorf("get or create payment: %w", err)
	}
	p, err := s.FindPayment(ctx, accountID, period)
	if err != nil {
		return models.Payment{}, false, err
	}
	return p, tag.RowsAffected() == 1, nil
}

// GetPayment fetches a payment by id.
func (s *Store) GetPayment(ctx context.Context, id int64) (models.Payment, error) {
	return scanPayment(s.pool.QueryRow(ctx, paymentSelect+` WHERE py.id = $1`, id))
}

// FindPayment fetches the payment of one account for one period.
func (s *Store) FindPayment(ctx context.Context, accountID int64, period string) (models.Payment, error) {
	return scanPayment(s.pool.QueryRow(ctx, paymentSelect+` WHERE py.account_id = $1 AND py.month_year = $2`, accountID, period))
}

// ListPayments returns payments matching filter, newest period first.
func (s *Store) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	query := paymentSelect + `
		WHERE ($1::bigint = 0 OR py.account_id = $1) AND ($2::text = '' OR py.month_year = $2)
		ORDER BY py.month_year DESC, py.created_at DESC, py.id DESC`
	args := []any{filter.AccountID, filter.Period}
	if filter.Limit > 0 {
		query += ` LIMIT $3`
		args = append(args, filter.Limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ListPaymentPeriods returns every period with at least one payment, newest first.
func (s *Store) ListPaymentPeriods(ctx context.Context) ([]string, error) {
	return s.distinctPeriods(ctx, `SELECT DISTINCT month_year FROM payments ORDER BY month_year DESC`)
}

// UpdatePayment writes every admin-editable field.
func (s *Store) UpdatePayment(ctx context.Context, p models.Payment) (models.Payment, error) {
	const query = `
		UPDATE payments
		SET account_id = $2, month_year = $3, amount = $4, status = $5, transaction_id = $6,
			paid_date = CASE WHEN $5 = 'paid' THEN COALESCE(paid_date, $7) ELSE paid_date END
		WHERE id = $1`
	err := affected(s.pool.Exec(ctx, query, p.ID, p.AccountID, p.Period, p.Amount.StringFixed(2), string(p.Status), p.TransactionID, time.Now()))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Payment{}, storage.ErrAlreadyExists
		}
		return models.Payment{}, err
	}
	return s.GetPayment(ctx, p.ID)
}

// SubmitPayment records the member's claim and puts the payment back to pending.
func (s *Store) SubmitPayment(ctx context.Context, id int64, transactionID, proofPath string, now time.Time) (models.Payment, error) {
	const query = `
		UPDATE payments
		SET transaction_id = $2, proof_path = CASE WHEN $3 = '' THEN proof_path ELSE $3 END,
			status = 'pending', paid_date = $4
		WHERE id = $1`
	if err := affected(s.pool.Exec(ctx, query, id, transactionID, proofPath, now)); err != nil {
		return models.Payment{}, err
	}
	return s.GetPayment(ctx, id)
}

// DeletePayment removes a payment.
func (s *Store) DeletePayment(ctx context.Context, id int64) error {
	return affected(s.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id))
}

func (s *Store) distinctPeriods(ctx context.Context, query string) ([]string, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	defer rows.Close()

	var periods []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func scanPayment(row pgx.Row) (models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.AccountID, &p.Period, &p.Amount, &p.Status, &p.TransactionID, &p.ProofPath,
		&p.PaidAt, &p.CreatedAt, &p.Username, &p.FullName)
	if err != nil {
		return models.Payment{}, notFound(err)
	}
	if p.FullName == "" {
		p.FullName = p.Username
	}
	return p, nil
}
