package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack-api/middleware"
	"github.com/fintrack/fintrack-api/models"
	"github.com/fintrack/fintrack-api/services"
	"github.com/fintrack/fintrack-api/utils"
)

type BudgetHandler struct {
	DB      *sql.DB
	Budgets *services.BudgetService
}

// Upsert creates or replaces the budget for (owner, category, window) and
// recomputes its remaining amount from the expenses already in the window.
func (h *BudgetHandler) Upsert(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	var req models.BudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if req.Budget < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Budget must not be negative"})
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if end.Before(start) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "endDate must not precede startDate"})
		return
	}

	var currency string
	if err := h.DB.QueryRow(`SELECT currency FROM users WHERE email = $1`, email).Scan(&currency); err != nil {
		currency = "USD"
	}

	// remaining starts at the full amount; the recalculation below folds in
	// any expenses already inside the window
	var budget models.Budget
	var created bool
	err = h.DB.QueryRow(`
		INSERT INTO budgets (email, category, currency, budget, remaining_budget, start_date, end_date)
		VALUES ($1, $2, $3, $4, $4, $5, $6)
		ON CONFLICT (email, category, start_date, end_date)
		DO UPDATE SET budget = EXCLUDED.budget, currency = EXCLUDED.currency,
		              remaining_budget = EXCLUDED.budget, updated_at = NOW()
		RETURNING id, email, category, currency, budget, remaining_budget,
		          start_date, end_date, created_at, updated_at,
		          (created_at = updated_at)`,
		email, req.Category, currency, req.Budget, start, end,
	).Scan(&budget.ID, &budget.Email, &budget.Category, &budget.Currency,
		&budget.Budget, &budget.RemainingBudget, &budget.StartDate, &budget.EndDate,
		&budget.CreatedAt, &budget.UpdatedAt, &created)
	if err != nil {
		utils.SafeLog("❌ Failed to upsert budget for %s/%s: %v", email, req.Category, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	if err := h.Budgets.Recalculate(c.Request.Context(), email, req.Category, start, end); err != nil {
		utils.SafeLog("❌ Budget recalculation failed: %v", err)
	}
	// re-read so the response carries the recalculated remaining
	_ = h.DB.QueryRow(`SELECT remaining_budget FROM budgets WHERE id = $1`, budget.ID).
		Scan(&budget.RemainingBudget)

	status := http.StatusOK
	message := "Budget updated successfully"
	if created {
		status = http.StatusCreated
		message = "Budget created successfully"
	}
	c.JSON(status, gin.H{"success": true, "message": message, "budget": budget})
}

// List returns the caller's budgets.
func (h *BudgetHandler) List(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	rows, err := h.DB.Query(`
		SELECT id, email, category, currency, budget, remaining_budget,
		       start_date, end_date, created_at, updated_at
		FROM budgets WHERE email = $1
		ORDER BY start_date DESC`, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	defer rows.Close()

	budgets := []models.Budget{}
	for rows.Next() {
		var b models.Budget
		if err := rows.Scan(&b.ID, &b.Email, &b.Category, &b.Currency, &b.Budget,
			&b.RemainingBudget, &b.StartDate, &b.EndDate, &b.CreatedAt, &b.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		budgets = append(budgets, b)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "budgets": budgets})
}

// Delete removes one of the caller's budgets by id.
func (h *BudgetHandler) Delete(c *gin.Context) {
	email := middleware.GetUserEmail(c)
	id := c.Param("id")

	var deletedID string
	err := h.DB.QueryRow(
		`DELETE FROM budgets WHERE id = $1 AND email = $2 RETURNING id`,
		id, email).Scan(&deletedID)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Budget not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Budget deleted successfully"})
}
