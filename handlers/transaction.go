package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/fintrack/fintrack-api/middleware"
	"github.com/fintrack/fintrack-api/models"
	"github.com/fintrack/fintrack-api/services"
	"github.com/fintrack/fintrack-api/utils"
)

// TransactionHandler serves both incomes and expenses; Kind selects the table
// and the side effects (only expenses touch budgets).
type TransactionHandler struct {
	DB       *sql.DB
	Kind     models.TransactionKind
	Exchange *services.ExchangeService
	Budgets  *services.BudgetService
	Savings  *services.SavingsService
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", s)
}

func (h *TransactionHandler) userCurrency(email string) (string, error) {
	var currency string
	err := h.DB.QueryRow(`SELECT currency FROM users WHERE email = $1`, email).Scan(&currency)
	if errors.Is(err, sql.ErrNoRows) {
		return "USD", nil
	}
	return currency, err
}

// jsonKey is the response property name for a single transaction: "income"
// or "expense".
func (h *TransactionHandler) jsonKey() string {
	return strings.ToLower(string(h.Kind))
}

const transactionColumns = `id, title, amount, date, category, COALESCE(description, ''),
	email, currency, tags, is_recurring, recurrence_type, next_occurrence,
	created_at, updated_at`

func scanTransaction(row interface{ Scan(...interface{}) error }) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.Title, &t.Amount, &t.Date, &t.Category, &t.Description,
		&t.Email, &t.Currency, pq.Array(&t.Tags), &t.IsRecurring,
		&t.RecurrenceType, &t.NextOccurrence, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// Add creates a transaction for the authenticated user.
func (h *TransactionHandler) Add(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	var req models.AddTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Amount must be greater than zero"})
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var recurrenceType *string
	var nextOccurrence *time.Time
	if req.IsRecurring {
		if !models.ValidRecurrenceType(req.RecurrenceType) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid recurrence type"})
			return
		}
		recurrenceType = &req.RecurrenceType
		next := services.FirstOccurrence(date, req.RecurrenceType, time.Now())
		nextOccurrence = &next
	}

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	var tx models.Transaction
	err = utils.WithTransaction(h.DB, func(dbtx *sql.Tx) error {
		row := dbtx.QueryRow(fmt.Sprintf(`
			INSERT INTO %s (title, amount, date, category, description, email,
			                currency, tags, is_recurring, recurrence_type, next_occurrence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING `+transactionColumns, h.Kind.Table()),
			req.Title, req.Amount, date, req.Category, req.Description, email,
			req.Currency, pq.Array(tags), req.IsRecurring, recurrenceType, nextOccurrence)
		var scanErr error
		tx, scanErr = scanTransaction(row)
		if scanErr != nil {
			return scanErr
		}

		for _, tag := range tags {
			if _, err := dbtx.Exec(
				`INSERT INTO tags (name, transaction_id, transaction_type) VALUES ($1, $2, $3)`,
				tag, tx.ID, string(h.Kind)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.SafeLog("❌ Failed to add %s for %s: %v", h.Kind, email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	if req.Category == models.SavingsCategory {
		currency, err := h.userCurrency(email)
		if err == nil {
			err = h.Savings.Contribute(c.Request.Context(), email, currency, req.Amount, req.Currency)
		}
		if err != nil {
			utils.SafeLog("❌ Failed to update savings pot for %s: %v", email, err)
		}
	}

	if h.Kind == models.KindExpense {
		if err := h.Budgets.Recalculate(c.Request.Context(), email, req.Category, date, date); err != nil {
			utils.SafeLog("❌ Budget recalculation failed: %v", err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("%s added successfully", h.Kind),
		h.jsonKey(): tx,
	})
}

func (h *TransactionHandler) fetchOwned(c *gin.Context, id, email string) (models.Transaction, bool) {
	tx, err := scanTransaction(h.DB.QueryRow(fmt.Sprintf(
		`SELECT `+transactionColumns+` FROM %s WHERE id = $1 AND email = $2`, h.Kind.Table()),
		id, email))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": fmt.Sprintf("%s not found", h.Kind)})
		return tx, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return tx, false
	}
	return tx, true
}

// Update applies a partial update; absent fields keep their previous values.
func (h *TransactionHandler) Update(c *gin.Context) {
	email := middleware.GetUserEmail(c)
	id := c.Param("id")

	var req models.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	old, ok := h.fetchOwned(c, id, email)
	if !ok {
		return
	}

	updated := old
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Amount must be greater than zero"})
			return
		}
		updated.Amount = *req.Amount
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		updated.Date = date
	}
	if req.Category != nil {
		updated.Category = *req.Category
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Currency != nil {
		updated.Currency = *req.Currency
	}
	if req.Tags != nil {
		updated.Tags = req.Tags
	}
	if req.IsRecurring != nil {
		updated.IsRecurring = *req.IsRecurring
	}
	if req.RecurrenceType != "" {
		updated.RecurrenceType = &req.RecurrenceType
	}

	if updated.IsRecurring {
		if updated.RecurrenceType == nil || !models.ValidRecurrenceType(*updated.RecurrenceType) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid recurrence type"})
			return
		}
		scheduleChanged := !old.IsRecurring || req.RecurrenceType != "" || req.Date != nil
		if scheduleChanged || updated.NextOccurrence == nil {
			next := services.FirstOccurrence(updated.Date, *updated.RecurrenceType, time.Now())
			updated.NextOccurrence = &next
		}
	} else {
		updated.RecurrenceType = nil
		updated.NextOccurrence = nil
	}

	err := utils.WithTransaction(h.DB, func(dbtx *sql.Tx) error {
		_, err := dbtx.Exec(fmt.Sprintf(`
			UPDATE %s SET title = $1, amount = $2, date = $3, category = $4,
			       description = $5, currency = $6, tags = $7, is_recurring = $8,
			       recurrence_type = $9, next_occurrence = $10, updated_at = NOW()
			WHERE id = $11`, h.Kind.Table()),
			updated.Title, updated.Amount, updated.Date, updated.Category,
			updated.Description, updated.Currency, pq.Array(updated.Tags),
			updated.IsRecurring, updated.RecurrenceType, updated.NextOccurrence, id)
		if err != nil {
			return err
		}

		// tags are replaced wholesale
		if _, err := dbtx.Exec(
			`DELETE FROM tags WHERE transaction_id = $1 AND transaction_type = $2`,
			id, string(h.Kind)); err != nil {
			return err
		}
		for _, tag := range updated.Tags {
			if _, err := dbtx.Exec(
				`INSERT INTO tags (name, transaction_id, transaction_type) VALUES ($1, $2, $3)`,
				tag, id, string(h.Kind)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.SafeLog("❌ Failed to update %s %s: %v", h.Kind, id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	currency, curErr := h.userCurrency(email)
	if curErr == nil {
		err = h.Savings.ApplyTransition(c.Request.Context(), email, currency,
			old.Category == models.SavingsCategory, old.Amount, old.Currency,
			updated.Category == models.SavingsCategory, updated.Amount, updated.Currency)
		if err != nil {
			utils.SafeLog("❌ Failed to reconcile savings pot for %s: %v", email, err)
		}
	}

	if h.Kind == models.KindExpense {
		ctx := c.Request.Context()
		if err := h.Budgets.Recalculate(ctx, email, old.Category, old.Date, old.Date); err != nil {
			utils.SafeLog("❌ Budget recalculation failed: %v", err)
		}
		if updated.Category != old.Category || !updated.Date.Equal(old.Date) {
			if err := h.Budgets.Recalculate(ctx, email, updated.Category, updated.Date, updated.Date); err != nil {
				utils.SafeLog("❌ Budget recalculation failed: %v", err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   fmt.Sprintf("%s updated successfully", h.Kind),
		h.jsonKey(): updated,
	})
}

// Delete removes a transaction. Recurring transactions must be disabled
// first so the schedule is stopped deliberately, not as a side effect.
func (h *TransactionHandler) Delete(c *gin.Context) {
	email := middleware.GetUserEmail(c)
	id := c.Param("id")

	tx, ok := h.fetchOwned(c, id, email)
	if !ok {
		return
	}
	if tx.IsRecurring {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Disable recurrence before deleting this transaction",
		})
		return
	}

	err := utils.WithTransaction(h.DB, func(dbtx *sql.Tx) error {
		if _, err := dbtx.Exec(
			`DELETE FROM tags WHERE transaction_id = $1 AND transaction_type = $2`,
			id, string(h.Kind)); err != nil {
			return err
		}
		_, err := dbtx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, h.Kind.Table()), id)
		return err
	})
	if err != nil {
		utils.SafeLog("❌ Failed to delete %s %s: %v", h.Kind, id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	if tx.Category == models.SavingsCategory {
		if err := h.Savings.Withdraw(c.Request.Context(), email, tx.Amount, tx.Currency); err != nil {
			utils.SafeLog("❌ Failed to reverse savings contribution for %s: %v", email, err)
		}
	}

	if h.Kind == models.KindExpense {
		if err := h.Budgets.Recalculate(c.Request.Context(), email, tx.Category, tx.Date, tx.Date); err != nil {
			utils.SafeLog("❌ Budget recalculation failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("%s deleted successfully", h.Kind),
	})
}

// List returns the caller's transactions, newest first.
func (h *TransactionHandler) List(c *gin.Context) {
	email := middleware.GetUserEmail(c)
	h.list(c, `WHERE email = $1`, email)
}

// ListAll returns every user's transactions. Admin only.
func (h *TransactionHandler) ListAll(c *gin.Context) {
	h.list(c, ``)
}

func (h *TransactionHandler) list(c *gin.Context, where string, args ...interface{}) {
	rows, err := h.DB.Query(fmt.Sprintf(
		`SELECT `+transactionColumns+` FROM %s %s ORDER BY date DESC, created_at DESC`,
		h.Kind.Table(), where), args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		transactions = append(transactions, t)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, h.jsonKey() + "s": transactions})
}

// Total sums the caller's transactions in their preferred currency.
func (h *TransactionHandler) Total(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	currency, err := h.userCurrency(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	h.total(c, currency, `WHERE email = $1`, email)
}

// TotalAll sums every user's transactions in the requested currency
// (?currency=, default USD). Admin only.
func (h *TransactionHandler) TotalAll(c *gin.Context) {
	currency := c.DefaultQuery("currency", "USD")
	h.total(c, currency, ``)
}

func (h *TransactionHandler) total(c *gin.Context, currency, where string, args ...interface{}) {
	rows, err := h.DB.Query(fmt.Sprintf(
		`SELECT amount, currency FROM %s %s`, h.Kind.Table(), where), args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	defer rows.Close()

	snap := h.Exchange.Snapshot(currency)
	var total float64
	for rows.Next() {
		var amount float64
		var from string
		if err := rows.Scan(&amount, &from); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		converted, err := snap.Convert(amount, from)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Exchange rates unavailable"})
			return
		}
		total += converted
	}

	key := "totalIncome"
	if h.Kind == models.KindExpense {
		key = "totalExpense"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		key:        fmt.Sprintf("%.2f", total),
		"currency": currency,
	})
}
