package models

import "time"

// ============================================================================
// GOAL & TOTAL SAVINGS
// ============================================================================

// Goal tracks a savings target funded from the user's TotalSavings pot.
// Invariant: RemainingAmount == TargetValue - SavedValue, with SavedValue
// clamped to [0, TargetValue]. IsCompleted is a one-way transition.
type Goal struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Title           string     `json:"title"`
	Image           string     `json:"image,omitempty"`
	Currency        string     `json:"currency"`
	TargetValue     float64    `json:"targetValue"`
	SavedValue      float64    `json:"savedValue"`
	RemainingAmount float64    `json:"remainingAmount"`
	Description     string     `json:"description,omitempty"`
	IsCompleted     bool       `json:"isCompleted"`
	CompletedAt     *time.Time `json:"completedAt"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TotalSavings is the per-user pot. Its currency is fixed at creation to the
// user's preferred currency; foreign-currency contributions are converted at
// write time.
type TotalSavings struct {
	ID          string  `json:"id"`
	Email       string  `json:"email"`
	Currency    string  `json:"currency"`
	SavedAmount float64 `json:"savedAmount"`
}

type CreateGoalRequest struct {
	Title       string  `json:"title" binding:"required"`
	Image       string  `json:"image,omitempty"`
	TargetValue float64 `json:"targetValue" binding:"required"`
	Description string  `json:"description,omitempty"`
}

type UpdateGoalRequest struct {
	Title       string  `json:"title" binding:"required"`
	Image       string  `json:"image,omitempty"`
	TargetValue float64 `json:"targetValue" binding:"required"`
}

type GoalAmountRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}
