package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

const mealSelect = `SELECT id, date, breakfast, lunch, dinner, notes, created_at, updated_at FROM meal_plans`

// CreateMealPlan inserts the menu of a date. One plan per date.
func (s *Store) CreateMealPlan(ctx context.Context, plan models.MealPlan) (models.MealPlan, error) {
	ts := nanos(now())
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO meal_plans (date, breakfast, lunch, dinner, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		dateText(plan.Date), plan.Breakfast, plan.Lunch, plan.Dinner, plan.Notes, ts, ts,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.MealPlan{}, storage.ErrAlreadyExists
		}
		return models.MealPlan{}, fmt.Errorf("insert meal plan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.MealPlan{}, err
	}
	return s.GetMealPlan(ctx, id)
}

// GetMealPlan fetches a plan by id.
func (s *Store) GetMealPlan(ctx context.Context, id int64) (models.MealPlan, error) {
	return scanMeal(s.db.QueryRowContext(ctx, mealSelect+` WHERE id = ?`, id))
}

// ListMealPlans returns plans dated in [from, to).
func (s *Store) ListMealPlans(ctx context.Context, from, to time.Time) ([]models.MealPlan, error) {
	rows, err := s.db.QueryContext(ctx, mealSelect+` WHERE date >= ? AND date < ? ORDER BY date`, dateText(from), dateText(to))
	if err != nil {
		return nil, fmt.Errorf("list meal plans: %w", err)
	}
	defer rows.Close()

	var plans []models.MealPlan
	for rows.Next() {
		p, err := scanMeal(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// UpdateMealPlan rewrites a plan and bumps updated_at.
func (s *Store) UpdateMealPlan(ctx context.Context, plan models.MealPlan) (models.MealPlan, error) {
	err := affected(s.db.ExecContext(ctx, `
		UPDATE meal_plans
		SET date = ?, breakfast = ?, lunch = ?, dinner = ?, notes = ?, updated_at = ?
		WHERE id = ?`,
		dateText(plan.Date), plan.Breakfast, plan.Lunch, plan.Dinner, plan.Notes, nanos(now()), plan.ID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return models.MealPlan{}, storage.ErrAlreadyExists
		}
		return models.MealPlan{}, err
	}
	return s.GetMealPlan(ctx, plan.ID)
}

// DeleteMealPlan removes a plan.
func (s *Store) DeleteMealPlan(ctx context.Context, id int64) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM meal_plans WHERE id = ?`, id))
}

func scanMeal(row scanner) (models.MealPlan, error) {
	var (
		p                models.MealPlan
		date             string
		created, updated int64
	)
	err := row.Scan(&p.ID, &date, &p.Breakfast, &p.Lunch, &p.Dinner, &p.Notes, &created, &updated)
	if err != nil {
		return models.MealPlan{}, notFound(err)
	}
	if p.Date, err = parseDate(date); err != nil {
		return models.MealPlan{}, fmt.Errorf("meal plan %d date: %w", p.ID, err)
	}
	p.CreatedAt = fromNanos(created)
	p.UpdatedAt = fromNanos(updated)
	return p, nil
}
