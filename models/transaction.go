package models

import "time"

// ============================================================================
// TRANSACTION MODEL (Income and Expense share the same shape)
// ============================================================================

// TransactionKind selects the table a handler or service operates on.
type TransactionKind string

const (
	KindIncome  TransactionKind = "Income"
	KindExpense TransactionKind = "Expense"
)

// Table returns the backing table name for the kind.
func (k TransactionKind) Table() string {
	if k == KindIncome {
		return "incomes"
	}
	return "expenses"
}

// Recurrence types accepted on recurring transactions.
const (
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
	RecurrenceYearly  = "yearly"
)

// ValidRecurrenceType reports whether s is one of the accepted recurrence types.
func ValidRecurrenceType(s string) bool {
	switch s {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// SavingsCategory transactions feed the user's total savings pot.
const SavingsCategory = "Savings"

type Transaction struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Amount         float64    `json:"amount"`
	Date           time.Time  `json:"date"`
	Category       string     `json:"category"`
	Description    string     `json:"description,omitempty"`
	Email          string     `json:"email"`
	Currency       string     `json:"currency"`
	Tags           []string   `json:"tags"`
	IsRecurring    bool       `json:"isRecurring"`
	RecurrenceType *string    `json:"recurrenceType"`
	NextOccurrence *time.Time `json:"nextOccurrence"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type AddTransactionRequest struct {
	Title          string   `json:"title" binding:"required"`
	Amount         float64  `json:"amount" binding:"required"`
	Date           string   `json:"date" binding:"required"`
	Category       string   `json:"category" binding:"required"`
	Description    string   `json:"description,omitempty"`
	Currency       string   `json:"currency" binding:"required"`
	Tags           []string `json:"tags,omitempty"`
	IsRecurring    bool     `json:"isRecurring,omitempty"`
	RecurrenceType string   `json:"recurrenceType,omitempty"`
}

// UpdateTransactionRequest uses pointers so absent fields keep their
// previous values.
type UpdateTransactionRequest struct {
	Title          *string  `json:"title,omitempty"`
	Amount         *float64 `json:"amount,omitempty"`
	Date           *string  `json:"date,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Currency       *string  `json:"currency,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	IsRecurring    *bool    `json:"isRecurring,omitempty"`
	RecurrenceType string   `json:"recurrenceType,omitempty"`
}
