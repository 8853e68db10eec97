package models

import "time"

// Budget caches the remaining amount for an (email, category, window) tuple.
// RemainingBudget is derived from matching expenses and refreshed by the
// recalculation service after every expense mutation.
type Budget struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	Category        string    `json:"category"`
	Currency        string    `json:"currency"`
	Budget          float64   `json:"budget"`
	RemainingBudget float64   `json:"remainingBudget"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type BudgetRequest struct {
	Category  string  `json:"category" binding:"required"`
	Budget    float64 `json:"budget"`
	StartDate string  `json:"startDate" binding:"required"`
	EndDate   string  `json:"endDate" binding:"required"`
}
