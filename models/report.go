package models

import "time"

// ============================================================================
// REPORT VIEW TYPES
// ============================================================================
// These are read-only DTOs distinct from the persisted entities: converted
// amounts live here, never on the Transaction model itself.

// ReportLine is one transaction converted into the report's target currency.
type ReportLine struct {
	Type            string    `json:"type"` // "income" or "expense"
	Currency        string    `json:"currency"`
	ConvertedAmount float64   `json:"amount"`
	Category        string    `json:"category"`
	Date            time.Time `json:"date"`
}

// ReportExtreme records the largest/smallest converted amount seen and the
// category it belonged to. Ties break last-seen-wins.
type ReportExtreme struct {
	Currency string  `json:"currency,omitempty"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
}

// UserReport aggregates one user's transactions in a single currency.
type UserReport struct {
	TotalIncome      string         `json:"totalIncome"`
	TotalExpense     string         `json:"totalExpense"`
	GrandTotal       string         `json:"grandTotal"`
	IncomeEntries    int            `json:"incomeEntries"`
	ExpenseEntries   int            `json:"expenseEntries"`
	HighestIncome    *ReportExtreme `json:"highestIncome"`
	LowestIncome     *ReportExtreme `json:"lowestIncome"`
	HighestExpense   *ReportExtreme `json:"highestExpense"`
	LowestExpense    *ReportExtreme `json:"lowestExpense"`
	RecurringEntries int            `json:"recurringEntries"`
	Transactions     []ReportLine   `json:"transactions"`
}

// AdminReportEntry is one user's slice of the cross-user admin report.
type AdminReportEntry struct {
	Email string `json:"email"`
	UserReport
}

// BudgetReportLine is a budget with its remaining value converted into the
// report currency.
type BudgetReportLine struct {
	Category           string    `json:"category"`
	Currency           string    `json:"currency"`
	Budget             float64   `json:"budget"`
	RemainingBudget    float64   `json:"remainingBudget"`
	ConvertedRemaining float64   `json:"convertedRemaining"`
	StartDate          time.Time `json:"startDate"`
	EndDate            time.Time `json:"endDate"`
}

// UserSummary is one row of the admin summary report.
type UserSummary struct {
	Email          string `json:"email"`
	IncomeEntries  int    `json:"incomeEntries"`
	ExpenseEntries int    `json:"expenseEntries"`
	TotalIncome    string `json:"totalIncome"`
	TotalExpense   string `json:"totalExpense"`
	GrandTotal     string `json:"grandTotal"`
}

// AvailableDates lists the distinct days/months/years carrying transactions.
type AvailableDates struct {
	Days   []int `json:"days"`
	Months []int `json:"months"`
	Years  []int `json:"years"`
}
