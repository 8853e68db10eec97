package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/fintrack/fintrack-api/models"
	"github.com/fintrack/fintrack-api/utils"
)

// RecurringService clones due recurring transactions and advances their
// schedules.
type RecurringService struct {
	db *sql.DB
}

func NewRecurringService(db *sql.DB) *RecurringService {
	return &RecurringService{db: db}
}

// Advance returns the next occurrence after t for the given recurrence type.
// Monthly advances clamp to the last day of the target month (Jan 31 ->
// Feb 28/29), yearly advances clamp Feb 29 to Feb 28 in non-leap years.
func Advance(t time.Time, recurrenceType string) time.Time {
	switch recurrenceType {
	case models.RecurrenceDaily:
		return t.AddDate(0, 0, 1)
	case models.RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case models.RecurrenceMonthly:
		return addMonthClamped(t)
	case models.RecurrenceYearly:
		return addYearClamped(t)
	default:
		return t
	}
}

// FirstOccurrence computes the initial next_occurrence for a new recurring
// transaction. Advancing a backdated transaction can still land in the past,
// in which case the schedule restarts from now so the result is always
// strictly after now.
func FirstOccurrence(date time.Time, recurrenceType string, now time.Time) time.Time {
	next := Advance(date, recurrenceType)
	if !next.After(now) {
		next = Advance(now, recurrenceType)
	}
	return next
}

func addMonthClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	lastDay := daysInMonth(year, month+1)
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month+1, day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func addYearClamped(t time.Time) time.Time {
	year, month, day := t.Date()
	lastDay := daysInMonth(year+1, month)
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year+1, month, day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// day 0 of the following month normalizes to this month's last day
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ProcessRecurringIncomes clones all due recurring incomes.
func (s *RecurringService) ProcessRecurringIncomes(ctx context.Context) error {
	return s.process(ctx, models.KindIncome)
}

// ProcessRecurringExpenses clones all due recurring expenses.
func (s *RecurringService) ProcessRecurringExpenses(ctx context.Context) error {
	return s.process(ctx, models.KindExpense)
}

func (s *RecurringService) process(ctx context.Context, kind models.TransactionKind) error {
	table := kind.Table()
	now := time.Now()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, title, amount, date, category, description, email, currency,
		       tags, recurrence_type, next_occurrence
		FROM %s
		WHERE is_recurring = true AND next_occurrence IS NOT NULL AND next_occurrence <= $1`,
		table), now)
	if err != nil {
		return fmt.Errorf("loading due recurring %s: %w", table, err)
	}
	defer rows.Close()

	var due []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Title, &t.Amount, &t.Date, &t.Category,
			&t.Description, &t.Email, &t.Currency, pq.Array(&t.Tags),
			&t.RecurrenceType, &t.NextOccurrence); err != nil {
			return fmt.Errorf("scanning recurring %s: %w", table, err)
		}
		due = append(due, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	processed := 0
	for i := range due {
		cloned, err := s.processOne(ctx, kind, &due[i], now)
		if err != nil {
			log.Printf("❌ Failed to process recurring %s %s: %v", kind, due[i].ID, err)
			continue
		}
		if cloned {
			processed++
		}
	}
	utils.SafeLog("🔁 Processed %d/%d due recurring %s", processed, len(due), table)
	return nil
}

// processOne advances the schedule and clones the transaction in one SQL
// transaction. The advance is conditional on next_occurrence being unchanged,
// so a concurrent or repeated pass over the same row cannot double-clone.
func (s *RecurringService) processOne(ctx context.Context, kind models.TransactionKind, t *models.Transaction, now time.Time) (bool, error) {
	if t.RecurrenceType == nil || t.NextOccurrence == nil {
		return false, fmt.Errorf("recurring row %s has no schedule", t.ID)
	}
	next := Advance(*t.NextOccurrence, *t.RecurrenceType)

	cloned := false
	err := utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		table := kind.Table()

		res, err := tx.ExecContext(ctx, fmt.Sprintf(`
			UPDATE %s SET next_occurrence = $1, updated_at = NOW()
			WHERE id = $2 AND next_occurrence = $3`, table),
			next, t.ID, *t.NextOccurrence)
		if err != nil {
			return fmt.Errorf("advancing schedule: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			// already advanced by another pass
			return nil
		}

		var cloneID string
		err = tx.QueryRowContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (title, amount, date, category, description, email,
			                currency, tags, is_recurring)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false)
			RETURNING id`, table),
			t.Title, t.Amount, now, t.Category, t.Description, t.Email,
			t.Currency, pq.Array(t.Tags)).Scan(&cloneID)
		if err != nil {
			return fmt.Errorf("cloning transaction: %w", err)
		}

		for _, tag := range t.Tags {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tags (name, transaction_id, transaction_type) VALUES ($1, $2, $3)`,
				tag, cloneID, string(kind)); err != nil {
				return fmt.Errorf("cloning tag %q: %w", tag, err)
			}
		}

		cloned = true
		return nil
	})
	return cloned, err
}
