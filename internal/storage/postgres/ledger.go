package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

const grocerySelect = `
	SELECT id, item_name, category, quantity, price, purchase_date, month_year, created_at
	FROM grocery_items`

// CreateGrocery inserts a grocery ledger entry.
func (s *Store) CreateGrocery(ctx context.Context, item models.GroceryItem) (models.GroceryItem, error) {
	const query = `
		INSERT INTO grocery_items (item_name, category, quantity, price, purchase_date, month_year)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, item_name, category, quantity, price, purchase_date, month_year, created_at`
	return scanGrocery(s.pool.QueryRow(ctx, query, item.Name, item.Category, item.Quantity, item.Price.StringFixed(2), item.PurchaseDate, item.Period))
}

// GetGrocery fetches one entry.
func (s *Store) GetGrocery(ctx context.Context, id int64) (models.GroceryItem, error) {
	return scanGrocery(s.pool.QueryRow(ctx, grocerySelect+` WHERE id = $1`, id))
}

// ListGroceries returns the entries of period, latest purchase first.
func (s *Store) ListGroceries(ctx context.Context, period string) ([]models.GroceryItem, error) {
	const where = ` WHERE ($1::text = '' OR month_year = $1) ORDER BY purchase_date DESC, id DESC`
	rows, err := s.pool.Query(ctx, grocerySelect+where, period)
	if err != nil {
		return nil, fmt.Errorf("list groceries: %w", err)
	}
	defer rows.Close()

	var items []models.GroceryItem
	for rows.Next() {
		item, err := scanGrocery(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListGroceryPeriods returns every period with grocery entries, newest first.
func (s *Store) ListGroceryPeriods(ctx context.Context) ([]string, error) {
	return s.distinctPeriods(ctx, `SELECT DISTINCT month_year FROM grocery_items ORDER BY month_year DESC`)
}

// UpdateGrocery rewrites an entry.
func (s *Store) UpdateGrocery(ctx context.Context, item models.GroceryItem) (models.GroceryItem, error) {
	const query = `
		UPDATE grocery_items
		SET item_name = $2, category = $3, quantity = $4, price = $5, purchase_date = $6, month_year = $7
		WHERE id = $1
		RETURNING id, item_name, category, quantity, price, purchase_date, month_year, created_at`
	return scanGrocery(s.pool.QueryRow(ctx, query, item.ID, item.Name, item.Category, item.Quantity, item.Price.StringFixed(2), item.PurchaseDate, item.Period))
}

// DeleteGrocery removes an entry.
func (s *Store) DeleteGrocery(ctx context.Context, id int64) error {
	return affected(s.pool.Exec(ctx, `DELETE FROM grocery_items WHERE id = $1`, id))
}

const expenseColumns = `id, month_year, kitchen_rent, maid_salary, gas_cylinder, other_expenses`

// CreateFixedExpense inserts the fixed costs of a period.
func (s *Store) CreateFixedExpense(ctx context.Context, e models.FixedExpense) (models.FixedExpense, error) {
	const query = `
		INSERT INTO fixed_expenses (month_year, kitchen_rent, maid_salary, gas_cylinder, other_expenses)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + expenseColumns
	created, err := scanExpense(s.pool.QueryRow(ctx, query, e.Period,
		e.KitchenRent.StringFixed(2), e.MaidSalary.StringFixed(2), e.GasCylinder.StringFixed(2), e.OtherExpenses.StringFixed(2)))
	if err != nil && isUniqueViolation(err) {
		return models.FixedExpense{}, storage.ErrAlreadyExists
	}
	return created, err
}

// GetFixedExpense fetches a row by id.
func (s *Store) GetFixedExpense(ctx context.Context, id int64) (models.FixedExpense, error) {
	return scanExpense(s.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM fixed_expenses WHERE id = $1`, id))
}

// FindFixedExpense fetches the row of a period.
func (s *Store) FindFixedExpense(ctx context.Context, period string) (models.FixedExpense, error) {
	return scanExpense(s.pool.QueryRow(ctx, `SELECT `+expenseColumns+` FROM fixed_expenses WHERE month_year = $1`, period))
}

// ListFixedExpenses returns every period, newest first.
func (s *Store) ListFixedExpenses(ctx context.Context) ([]models.FixedExpense, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+expenseColumns+` FROM fixed_expenses ORDER BY month_year DESC`)
	if err != nil {
		return nil, fmt.Errorf("list fixed expenses: %w", err)
	}
	defer rows.Close()

	var out []models.FixedExpense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateFixedExpense rewrites a row.
func (s *Store) UpdateFixedExpense(ctx context.Context, e models.FixedExpense) (models.FixedExpense, error) {
	const query = `
		UPDATE fixed_expenses
		SET month_year = $2, kitchen_rent = $3, maid_salary = $4, gas_cylinder = $5, other_expenses = $6
		WHERE id = $1
		RETURNING ` + expenseColumns
	updated, err := scanExpense(s.pool.QueryRow(ctx, query, e.ID, e.Period,
		e.KitchenRent.StringFixed(2), e.MaidSalary.StringFixed(2), e.GasCylinder.StringFixed(2), e.OtherExpenses.StringFixed(2)))
	if err != nil && isUniqueViolation(err) {
		return models.FixedExpense{}, storage.ErrAlreadyExists
	}
	return updated, err
}

// DeleteFixedExpense removes a row.
func (s *Store) DeleteFixedExpense(ctx context.Context, id int64) error {
	return affected(s.pool.Exec(ctx, `DELETE FROM fixed_expenses WHERE id = $1`, id))
}

func scanGrocery(row pgx.Row) (models.GroceryItem, error) {
	var it models.GroceryItem
	err := row.Scan(&it.ID, &it.Name, &it.Category, &it.Quantity, &it.Price, &it.PurchaseDate, &it.Period, &it.CreatedAt)
	if err != nil {
		return models.GroceryItem{}, notFound(err)
	}
	return it, nil
}

func scanExpense(row pgx.Row) (models.FixedExpense, error) {
	var e models.FixedExpense
	err := row.Scan(&e.ID, &e.Period, &e.KitchenRent, &e.MaidSalary, &e.GasCylinder, &e.OtherExpenses)
	if err != nil {
		return models.FixedExpense{}, notFound(err)
	}
	return e, nil
}
