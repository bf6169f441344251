package sqlite

import (
	"context"
	"fmt"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

const grocerySelect = `
	SELECT id, item_name, category, quantity, price, purchase_date, month_year, created_at
	FROM grocery_items`

// CreateGrocery inserts a grocery ledger entry.
func (s *Store) CreateGrocery(ctx context.Context, item models.GroceryItem) (models.GroceryItem, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO grocery_items (item_name, category, quantity, price, purchase_date, month_year, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Name, string(item.Category), item.Quantity, item.Price.StringFixed(2), dateText(item.PurchaseDate), item.Period, nanos(now()),
	)
	if err != nil {
		return models.GroceryItem{}, fmt.Errorf("insert grocery: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.GroceryItem{}, err
	}
	return s.GetGrocery(ctx, id)
}

// GetGrocery fetches one entry.
func (s *Store) GetGrocery(ctx context.Context, id int64) (models.GroceryItem, error) {
	return scanGrocery(s.db.QueryRowContext(ctx, grocerySelect+` WHERE id = ?`, id))
}

// ListGroceries returns the entries of period, latest purchase first.
func (s *Store) ListGroceries(ctx context.Context, period string) ([]models.GroceryItem, error) {
	rows, err := s.db.QueryContext(ctx, grocerySelect+` WHERE (? = '' OR month_year = ?) ORDER BY purchase_date DESC, id DESC`, period, period)
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
	err := affected(s.db.ExecContext(ctx, `
		UPDATE grocery_items
		SET item_name = ?, category = ?, quantity = ?, price = ?, purchase_date = ?, month_year = ?
		WHERE id = ?`,
		item.Name, string(item.Category), item.Quantity, item.Price.StringFixed(2), dateText(item.PurchaseDate), item.Period, item.ID,
	))
	if err != nil {
		return models.GroceryItem{}, err
	}
	return s.GetGrocery(ctx, item.ID)
}

// DeleteGrocery removes an entry.
func (s *Store) DeleteGrocery(ctx context.Context, id int64) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM grocery_items WHERE id = ?`, id))
}

const expenseSelect = `SELECT id, month_year, kitchen_rent, maid_salary, gas_cylinder, other_expenses FROM fixed_expenses`

// CreateFixedExpense inserts the fixed costs of a period.
func (s *Store) CreateFixedExpense(ctx context.Context, e models.FixedExpense) (models.FixedExpense, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO fixed_expenses (month_year, kitchen_rent, maid_salary, gas_cylinder, other_expenses)
		VALUES (?, ?, ?, ?, ?)`,
		e.Period, e.KitchenRent.StringFixed(2), e.MaidSalary.StringFixed(2), e.GasCylinder.StringFixed(2), e.OtherExpenses.StringFixed(2),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.FixedExpense{}, storage.ErrAlreadyExists
		}
		return models.FixedExpense{}, fmt.Errorf("insert fixed expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.FixedExpense{}, err
	}
	return s.GetFixedExpense(ctx, id)
}

// GetFixedExpense fetches a row by id.
func (s *Store) GetFixedExpense(ctx context.Context, id int64) (models.FixedExpense, error) {
	return scanExpense(s.db.QueryRowContext(ctx, expenseSelect+` WHERE id = ?`, id))
}

// FindFixedExpense fetches the row of a period.
func (s *Store) FindFixedExpense(ctx context.Context, period string) (models.FixedExpense, error) {
	return scanExpense(s.db.QueryRowContext(ctx, expenseSelect+` WHERE month_year = ?`, period))
}

// ListFixedExpenses returns every period, newest first.
func (s *Store) ListFixedExpenses(ctx context.Context) ([]models.FixedExpense, error) {
	rows, err := s.db.QueryContext(ctx, expenseSelect+` ORDER BY month_year DESC`)
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
	err := affected(s.db.ExecContext(ctx, `
		UPDATE fixed_expenses
		SET month_year = ?, kitchen_rent = ?, maid_salary = ?, gas_cylinder = ?, other_expenses = ?
		WHERE id = ?`,
		e.Period, e.KitchenRent.StringFixed(2), e.MaidSalary.StringFixed(2), e.GasCylinder.StringFixed(2), e.OtherExpenses.StringFixed(2), e.ID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return models.FixedExpense{}, storage.ErrAlreadyExists
		}
		return models.FixedExpense{}, err
	}
	return s.GetFixedExpense(ctx, e.ID)
}

// DeleteFixedExpense removes a row.
func (s *Store) DeleteFixedExpense(ctx context.Context, id int64) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM fixed_expenses WHERE id = ?`, id))
}

func scanGrocery(row scanner) (models.GroceryItem, error) {
	var (
		it       models.GroceryItem
		category string
		date     string
		created  int64
	)
	err := row.Scan(&it.ID, &it.Name, &category, &it.Quantity, &it.Price, &date, &it.Period, &created)
	if err != nil {
		return models.GroceryItem{}, notFound(err)
	}
	it.Category = models.GroceryCategory(category)
	if it.PurchaseDate, err = parseDate(date); err != nil {
		return models.GroceryItem{}, fmt.Errorf("grocery %d purchase date: %w", it.ID, err)
	}
	it.CreatedAt = fromNanos(created)
	return it, nil
}

func scanExpense(row scanner) (models.FixedExpense, error) {
	var e models.FixedExpense
	err := row.Scan(&e.ID, &e.Period, &e.KitchenRent, &e.MaidSalary, &e.GasCylinder, &e.OtherExpenses)
	if err != nil {
		return models.FixedExpense{}, notFound(err)
	}
	return e, nil
}
