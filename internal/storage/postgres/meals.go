package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/storage"
)

const mealColumns = `id, date, breakfast, lunch, dinner, notes, created_at, updated_at`

// CreateMealPlan inserts the menu of a date. One plan per date.
func (s *Store) CreateMealPlan(ctx context.Context, plan models.MealPlan) (models.MealPlan, error) {
	const query = `
		INSERT INTO meal_plans (date, breakfast, lunch, dinner, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + mealColumns
	created, err := scanMeal(s.pool.QueryRow(ctx, query, plan.Date, plan.Breakfast, plan.Lunch, plan.Dinner, plan.Notes))
	if err != nil && isUniqueViolation(err) {
		return models.MealPlan{}, storage.ErrAlreadyExists
	}
	return created, err
}

// GetMealPlan fetches a plan by id.
func (s *Store) GetMealPlan(ctx context.Context, id int64) (models.MealPlan, error) {
	return scanMeal(s.pool.QueryRow(ctx, `SELECT `+mealColumns+` FROM meal_plans WHERE id = $1`, id))
}

// ListMealPlans returns plans dated in [from, to).
func (s *Store) ListMealPlans(ctx context.Context, from, to time.Time) ([]models.MealPlan, error) {
	const query = `SELECT ` + mealColumns + ` FROM meal_plans WHERE date >= $1 AND date < $2 ORDER BY date`
	rows, err := s.pool.Query(ctx, query, from, to)
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
	const query = `
		UPDATE meal_plans
		SET date = $2, breakfast = $3, lunch = $4, dinner = $5, notes = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + mealColumns
	updated, err := scanMeal(s.pool.QueryRow(ctx, query, plan.ID, plan.Date, plan.Breakfast, plan.Lunch, plan.Dinner, plan.Notes))
	if err != nil && isUniqueViolation(err) {
		return models.MealPlan{}, storage.ErrAlreadyExists
	}
	return updated, err
}

// DeleteMealPlan removes a plan.
func (s *Store) DeleteMealPlan(ctx context.Context, id int64) error {
	return affected(s.pool.Exec(ctx, `DELETE FROM meal_plans WHERE id = $1`, id))
}

func scanMeal(row pgx.Row) (models.MealPlan, error) {
	var p models.MealPlan
	err := row.Scan(&p.ID, &p.Date, &p.Breakfast, &p.Lunch, &p.Dinner, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.MealPlan{}, notFound(err)
	}
	return p, nil
}
