package models

import "time"

// MealPlan is the menu for one calendar date.
type MealPlan struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	Breakfast string    `json:"breakfast"`
	Lunch     string    `json:"lunch"`
	Dinner    string    `json:"dinner"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
