package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

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
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (account_id, month_year, amount, status, transaction_id, proof_path, paid_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.AccountID, p.Period, p.Amount.StringFixed(2), string(p.Status), p.TransactionID, p.ProofPath, nullNanos(p.PaidAt), nanos(now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Payment{}, storage.ErrAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return models.Payment{}, storage.ErrNotFound
		}
		return models.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Payment{}, err
	}
	return s.GetPayment(ctx, id)
}

// GetOrCreatePayment is an insert-if-absent followed by a read, so concurrent
// callers converge on one row.
func (s *Store) GetOrCreatePayment(ctx context.Context, accountID int64, period string, amount decimal.Decimal) (models.Payment, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (account_id, month_year, amount, status, created_at)
		VALUES (?, ?, ?, 'pending', ?)
		ON CONFLICT (account_id, month_year) DO NOTHING`,
		accountID, period, amount.StringFixed(2), nanos(now()),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Payment{}, false, storage.ErrNotFound
		}
		return models.Payment{}, false, fmt.Errorf("get or create payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Payment{}, false, err
	}
	p, err := s.FindPayment(ctx, accountID, period)
	if err != nil {
		return models.Payment{}, false, err
	}
	return p, n == 1, nil
}

// GetPayment fetches a payment by id.
func (s *Store) GetPayment(ctx context.Context, id int64) (models.Payment, error) {
	return scanPayment(s.db.QueryRowContext(ctx, paymentSelect+` WHERE py.id = ?`, id))
}

// FindPayment fetches the payment of one account for one period.
func (s *Store) FindPayment(ctx context.Context, accountID int64, period string) (models.Payment, error) {
	return scanPayment(s.db.QueryRowContext(ctx, paymentSelect+` WHERE py.account_id = ? AND py.month_year = ?`, accountID, period))
}

// ListPayments returns payments matching filter, newest period first.
func (s *Store) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	query := paymentSelect + `
		WHERE (? = 0 OR py.account_id = ?) AND (? = '' OR py.month_year = ?)
		ORDER BY py.month_year DESC, py.created_at DESC, py.id DESC`
	args := []any{filter.AccountID, filter.AccountID, filter.Period, filter.Period}
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
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
	err := affected(s.db.ExecContext(ctx, `
		UPDATE payments
		SET account_id = ?, month_year = ?, amount = ?, status = ?, transaction_id = ?,
			paid_date = CASE WHEN ? = 'paid' THEN COALESCE(paid_date, ?) ELSE paid_date END
		WHERE id = ?`,
		p.AccountID, p.Period, p.Amount.StringFixed(2), string(p.Status), p.TransactionID,
		string(p.Status), nanos(now()), p.ID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Payment{}, storage.ErrAlreadyExists
		}
		return models.Payment{}, err
	}
	return s.GetPayment(ctx, p.ID)
}

// SubmitPayment records the member's claim and puts the payment back to pending.
func (s *Store) SubmitPayment(ctx context.Context, id int64, transactionID, proofPath string, at time.Time) (models.Payment, error) {
	err := affected(s.db.ExecContext(ctx, `
		UPDATE payments
		SET transaction_id = ?, proof_path = CASE WHEN ? = '' THEN proof_path ELSE ? END,
			status = 'pending', paid_date = ?
		WHERE id = ?`,
		transactionID, proofPath, proofPath, nanos(at), id,
	))
	if err != nil {
		return models.Payment{}, err
	}
	return s.GetPayment(ctx, id)
}

// DeletePayment removes a payment.
func (s *Store) DeletePayment(ctx context.Context, id int64) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id))
}

func (s *Store) distinctPeriods(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
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

func scanPayment(row scanner) (models.Payment, error) {
	var (
		p       models.Payment
		status  string
		paid    sql.NullInt64
		created int64
	)
	err := row.Scan(&p.ID, &p.AccountID, &p.Period, &p.Amount, &status, &p.TransactionID, &p.ProofPath,
		&paid, &created, &p.Username, &p.FullName)
	if err != nil {
		return models.Payment{}, notFound(err)
	}
	p.Status = models.PaymentStatus(status)
	p.PaidAt = fromNullNanos(paid)
	p.CreatedAt = fromNanos(created)
	if p.FullName == "" {
		p.FullName = p.Username
	}
	return p, nil
}
