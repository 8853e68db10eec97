package models

import "time"

// Tag rows join free-form labels to a transaction. They are deleted and
// recreated wholesale on every transaction update, never diffed.
type Tag struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	TransactionID   string    `json:"transactionId"`
	TransactionType string    `json:"transactionType"` // "Income" or "Expense"
	CreatedAt       time.Time `json:"created_at"`
}
