package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fintrack/fintrack-api/models"
	"github.com/fintrack/fintrack-api/utils"
)

// SavingsService maintains the per-user total savings pot. The pot's currency
// is fixed when the pot is first created; all later contributions and
// withdrawals are converted into it.
type SavingsService struct {
	db       *sql.DB
	exchange *ExchangeService
}

func NewSavingsService(db *sql.DB, exchange *ExchangeService) *SavingsService {
	return &SavingsService{db: db, exchange: exchange}
}

// Get returns the user's pot, or nil when none exists yet.
func (s *SavingsService) Get(ctx context.Context, email string) (*models.TotalSavings, error) {
	var pot models.TotalSavings
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, currency, saved_amount FROM total_savings WHERE email = $1`,
		email).Scan(&pot.ID, &pot.Email, &pot.Currency, &pot.SavedAmount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading total savings: %w", err)
	}
	return &pot, nil
}

// ensure returns the user's pot, creating an empty one in the user's
// preferred currency when absent.
func (s *SavingsService) ensure(ctx context.Context, email, userCurrency string) (*models.TotalSavings, error) {
	pot, err := s.Get(ctx, email)
	if err != nil || pot != nil {
		return pot, err
	}

	pot = &models.TotalSavings{Email: email, Currency: userCurrency}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO total_savings (email, currency, saved_amount) VALUES ($1, $2, 0) RETURNING id`,
		email, userCurrency).Scan(&pot.ID)
	if err != nil {
		return nil, fmt.Errorf("creating total savings pot: %w", err)
	}
	utils.SafeLog("🏦 Created savings pot for %s (%s)", email, userCurrency)
	return pot, nil
}

// Adjust adds delta (already denominated in the pot currency) to the pot,
// never letting it drop below zero.
func (s *SavingsService) Adjust(ctx context.Context, email string, delta float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE total_savings SET saved_amount = GREATEST(saved_amount + $1, 0), updated_at = NOW()
		 WHERE email = $2`,
		delta, email)
	if err != nil {
		return fmt.Errorf("adjusting total savings: %w", err)
	}
	return nil
}

// Contribute converts amount into the pot currency and adds it, creating the
// pot first if needed.
func (s *SavingsService) Contribute(ctx context.Context, email, userCurrency string, amount float64, currency string) error {
	pot, err := s.ensure(ctx, email, userCurrency)
	if err != nil {
		return err
	}
	converted, err := s.exchange.Snapshot(pot.Currency).Convert(amount, currency)
	if err != nil {
		return err
	}
	return s.Adjust(ctx, email, converted)
}

// Withdraw reverses a prior contribution. Without a pot there is nothing to
// reverse; the pot floor stays at zero.
func (s *SavingsService) Withdraw(ctx context.Context, email string, amount float64, currency string) error {
	pot, err := s.Get(ctx, email)
	if err != nil || pot == nil {
		return err
	}
	converted, err := s.exchange.Snapshot(pot.Currency).Convert(amount, currency)
	if err != nil {
		return err
	}
	return s.Adjust(ctx, email, -converted)
}

// potDelta is the pot change for a transaction update, with both amounts
// already converted into the pot currency. The four cases: neither version
// was savings, only the old was (deduct), only the new is (add), or both
// (replace old with new).
func potDelta(oldSavings, newSavings bool, oldConverted, newConverted float64) float64 {
	switch {
	case oldSavings && newSavings:
		return newConverted - oldConverted
	case oldSavings:
		return -oldConverted
	case newSavings:
		return newConverted
	default:
		return 0
	}
}

// ApplyTransition reconciles the pot after a transaction update that may have
// moved into or out of the Savings category, or changed amount or currency.
func (s *SavingsService) ApplyTransition(ctx context.Context, email, userCurrency string,
	oldSavings bool, oldAmount float64, oldCurrency string,
	newSavings bool, newAmount float64, newCurrency string) error {

	if !oldSavings && !newSavings {
		return nil
	}

	pot, err := s.Get(ctx, email)
	if err != nil {
		return err
	}
	if pot == nil {
		if !newSavings {
			return nil
		}
		if pot, err = s.ensure(ctx, email, userCurrency); err != nil {
			return err
		}
	}

	snap := s.exchange.Snapshot(pot.Currency)
	var oldConverted, newConverted float64
	if oldSavings {
		if oldConverted, err = snap.Convert(oldAmount, oldCurrency); err != nil {
			return err
		}
	}
	if newSavings {
		if newConverted, err = snap.Convert(newAmount, newCurrency); err != nil {
			return err
		}
	}

	delta := potDelta(oldSavings, newSavings, oldConverted, newConverted)
	if delta == 0 {
		return nil
	}
	return s.Adjust(ctx, email, delta)
}
