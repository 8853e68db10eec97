package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/fintrack/fintrack-api/models"
	"github.com/fintrack/fintrack-api/utils"
)

// BudgetService recomputes cached remaining budgets whenever expenses change.
type BudgetService struct {
	db       *sql.DB
	exchange *ExchangeService
	email    EmailService
}

func NewBudgetService(db *sql.DB, exchange *ExchangeService, email EmailService) *BudgetService {
	return &BudgetService{db: db, exchange: exchange, email: email}
}

// expenseAmount is the slice of an expense row the recalculation needs.
type expenseAmount struct {
	amount   float64
	currency string
}

// convertFunc converts an amount from a source currency. A non-nil error
// means the rate could not be resolved.
type convertFunc func(amount float64, from string) (float64, error)

// remainingBudget sums expenses into the budget's currency and subtracts the
// total from the limit. Expenses whose rate cannot be resolved are skipped
// with a warning rather than poisoning the whole recalculation.
func remainingBudget(limit float64, expenses []expenseAmount, convert convertFunc) float64 {
	var total float64
	for _, e := range expenses {
		converted, err := convert(e.amount, e.currency)
		if err != nil {
			log.Printf("⚠️ Skipping expense in budget recalculation, no rate for %s: %v", e.currency, err)
			continue
		}
		total += converted
	}
	return limit - total
}

// Recalculate refreshes remaining_budget for every budget of (email,
// category) whose window overlaps [start, end]. Each budget sums only the
// expenses inside its own window, converted into its own currency. Budgets
// that drop to or below zero trigger an alert email to the owner.
func (s *BudgetService) Recalculate(ctx context.Context, email, category string, start, end time.Time) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, category, currency, budget, remaining_budget, start_date, end_date
		FROM budgets
		WHERE email = $1 AND category = $2 AND start_date <= $3 AND end_date >= $4`,
		email, category, end, start)
	if err != nil {
		return fmt.Errorf("loading budgets for recalculation: %w", err)
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.Email, &b.Category, &b.Currency, &b.Budget,
			&b.RemainingBudget, &b.StartDate, &b.EndDate); err != nil {
			return fmt.Errorf("scanning budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(budgets) == 0 {
		return nil
	}

	for i := range budgets {
		if err := s.recalculateOne(ctx, &budgets[i]); err != nil {
			log.Printf("❌ Budget recalculation failed for %s/%s: %v",
				utils.MaskEmail(budgets[i].Email), budgets[i].Category, err)
		}
	}
	return nil
}

func (s *BudgetService) recalculateOne(ctx context.Context, budget *models.Budget) error {
	expenses, err := s.expensesInWindow(ctx, budget)
	if err != nil {
		return err
	}

	snap := s.exchange.Snapshot(budget.Currency)
	remaining := remainingBudget(budget.Budget, expenses, snap.Convert)

	_, err = s.db.ExecContext(ctx,
		`UPDATE budgets SET remaining_budget = $1, updated_at = NOW() WHERE id = $2`,
		remaining, budget.ID)
	if err != nil {
		return fmt.Errorf("updating remaining budget: %w", err)
	}
	budget.RemainingBudget = remaining

	utils.SafeLog("💰 Budget %s/%s recalculated: %.2f %s remaining",
		budget.Email, budget.Category, remaining, budget.Currency)

	if remaining <= 0 {
		if err := s.email.SendBudgetAlert(budget.Email, *budget); err != nil {
			log.Printf("❌ Failed to send budget alert: %v", err)
		}
	}
	return nil
}

func (s *BudgetService) expensesInWindow(ctx context.Context, budget *models.Budget) ([]expenseAmount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT amount, currency FROM expenses
		WHERE email = $1 AND category = $2 AND date >= $3 AND date <= $4`,
		budget.Email, budget.Category, budget.StartDate, budget.EndDate)
	if err != nil {
		return nil, fmt.Errorf("loading expenses for budget window: %w", err)
	}
	defer rows.Close()

	var expenses []expenseAmount
	for rows.Next() {
		var e expenseAmount
		if err := rows.Scan(&e.amount, &e.currency); err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
