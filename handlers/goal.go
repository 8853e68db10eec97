package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack-api/middleware"
	"github.com/fintrack/fintrack-api/models"
	"github.com/fintrack/fintrack-api/services"
	"github.com/fintrack/fintrack-api/utils"
)

type GoalHandler struct {
	DB      *sql.DB
	Savings *services.SavingsService
	Email   services.EmailService
}

const goalColumns = `id, email, title, COALESCE(image, ''), currency, target_value,
	saved_value, remaining_amount, COALESCE(description, ''), is_completed,
	completed_at, created_at, updated_at`

func scanGoal(row interface{ Scan(...interface{}) error }) (models.Goal, error) {
	var g models.Goal
	err := row.Scan(&g.ID, &g.Email, &g.Title, &g.Image, &g.Currency,
		&g.TargetValue, &g.SavedValue, &g.RemainingAmount, &g.Description,
		&g.IsCompleted, &g.CompletedAt, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

func (h *GoalHandler) fetchOwned(c *gin.Context, id, email string) (models.Goal, bool) {
	goal, err := scanGoal(h.DB.QueryRow(
		`SELECT `+goalColumns+` FROM goals WHERE id = $1 AND email = $2`, id, email))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Goal not found"})
		return goal, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return goal, false
	}
	return goal, true
}

// clampContribution caps a contribution so the saved value never exceeds the
// target.
func clampContribution(amount, targetValue, savedValue float64) float64 {
	if savedValue+amount > targetValue {
		return targetValue - savedValue
	}
	return amount
}

// Create adds a goal denominated in the user's preferred currency.
func (h *GoalHandler) Create(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	var req models.CreateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if req.TargetValue <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Target value must be greater than zero"})
		return
	}

	var currency string
	if err := h.DB.QueryRow(`SELECT currency FROM users WHERE email = $1`, email).Scan(&currency); err != nil {
		currency = "USD"
	}

	goal, err := scanGoal(h.DB.QueryRow(`
		INSERT INTO goals (email, title, image, currency, target_value, saved_value,
		                   remaining_amount, description)
		VALUES ($1, $2, $3, $4, $5, 0, $5, $6)
		RETURNING `+goalColumns,
		email, req.Title, req.Image, currency, req.TargetValue, req.Description))
	if err != nil {
		utils.SafeLog("❌ Failed to create goal for %s: %v", email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Goal created successfully", "goal": goal})
}

// List returns the caller's goals together with the savings pot total.
func (h *GoalHandler) List(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	rows, err := h.DB.Query(
		`SELECT `+goalColumns+` FROM goals WHERE email = $1 ORDER BY created_at DESC`, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		goals = append(goals, g)
	}

	pot, err := h.Savings.Get(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "goals": goals, "totalSavings": pot})
}

// Get returns one goal by id.
func (h *GoalHandler) Get(c *gin.Context) {
	goal, ok := h.fetchOwned(c, c.Param("id"), middleware.GetUserEmail(c))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "goal": goal})
}

// Update changes goal metadata. Completed goals are frozen, and the target
// can never drop below what is already saved.
func (h *GoalHandler) Update(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	var req models.UpdateGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	goal, ok := h.fetchOwned(c, c.Param("id"), email)
	if !ok {
		return
	}
	if goal.IsCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Completed goals cannot be modified"})
		return
	}
	if req.TargetValue < goal.SavedValue {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Target value cannot be below the saved value"})
		return
	}

	goal, err := scanGoal(h.DB.QueryRow(`
		UPDATE goals SET title = $1, image = $2, target_value = $3,
		       remaining_amount = $3 - saved_value, updated_at = NOW()
		WHERE id = $4
		RETURNING `+goalColumns,
		req.Title, req.Image, req.TargetValue, goal.ID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Goal updated successfully", "goal": goal})
}

// Contribute moves money from the savings pot into the goal, clamped so the
// goal never overshoots its target.
func (h *GoalHandler) Contribute(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	var req models.GoalAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Amount must be greater than zero"})
		return
	}

	goal, ok := h.fetchOwned(c, c.Param("id"), email)
	if !ok {
		return
	}
	if goal.IsCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Completed goals cannot be modified"})
		return
	}

	amount := clampContribution(req.Amount, goal.TargetValue, goal.SavedValue)
	if amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Goal target already reached"})
		return
	}

	pot, err := h.Savings.Get(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if pot == nil || pot.SavedAmount < amount {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Insufficient total savings"})
		return
	}

	goal, err = scanGoal(h.DB.QueryRow(`
		UPDATE goals SET saved_value = saved_value + $1,
		       remaining_amount = target_value - (saved_value + $1), updated_at = NOW()
		WHERE id = $2
		RETURNING `+goalColumns, amount, goal.ID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if err := h.Savings.Adjust(c.Request.Context(), email, -amount); err != nil {
		utils.SafeLog("❌ Failed to deduct savings pot for %s: %v", email, err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Amount added to goal", "goal": goal})
}

// Reverse moves money from the goal back into the savings pot.
func (h *GoalHandler) Reverse(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	var req models.GoalAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Amount must be greater than zero"})
		return
	}

	goal, ok := h.fetchOwned(c, c.Param("id"), email)
	if !ok {
		return
	}
	if goal.IsCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Completed goals cannot be modified"})
		return
	}
	if req.Amount > goal.SavedValue {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Amount exceeds the goal's saved value"})
		return
	}

	goal, err := scanGoal(h.DB.QueryRow(`
		UPDATE goals SET saved_value = saved_value - $1,
		       remaining_amount = target_value - (saved_value - $1), updated_at = NOW()
		WHERE id = $2
		RETURNING `+goalColumns, req.Amount, goal.ID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if err := h.Savings.Adjust(c.Request.Context(), email, req.Amount); err != nil {
		utils.SafeLog("❌ Failed to refund savings pot for %s: %v", email, err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Amount returned to savings", "goal": goal})
}

// Complete marks a fully funded goal as completed. The transition is one-way
// and triggers a congratulation email.
func (h *GoalHandler) Complete(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	goal, ok := h.fetchOwned(c, c.Param("id"), email)
	if !ok {
		return
	}
	if goal.IsCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Goal is already completed"})
		return
	}
	if goal.RemainingAmount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Goal target has not been reached yet"})
		return
	}

	now := time.Now()
	goal, err := scanGoal(h.DB.QueryRow(`
		UPDATE goals SET is_completed = true, completed_at = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+goalColumns, now, goal.ID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	var firstname string
	if err := h.DB.QueryRow(`SELECT firstname FROM users WHERE email = $1`, email).Scan(&firstname); err != nil {
		firstname = "there"
	}
	if err := h.Email.SendGoalCompleted(email, firstname, goal); err != nil {
		utils.SafeLog("❌ Failed to send goal completion email: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Goal completed, congratulations!", "goal": goal})
}

// Delete removes an uncompleted goal, refunding its saved value to the pot.
func (h *GoalHandler) Delete(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	goal, ok := h.fetchOwned(c, c.Param("id"), email)
	if !ok {
		return
	}
	if goal.IsCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Completed goals cannot be deleted"})
		return
	}

	if _, err := h.DB.Exec(`DELETE FROM goals WHERE id = $1`, goal.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if goal.SavedValue > 0 {
		if err := h.Savings.Adjust(c.Request.Context(), email, goal.SavedValue); err != nil {
			utils.SafeLog("❌ Failed to refund savings pot for %s: %v", email, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Goal deleted successfully"})
}

// TotalSavings returns the caller's savings pot.
func (h *GoalHandler) TotalSavings(c *gin.Context) {
	pot, err := h.Savings.Get(c.Request.Context(), middleware.GetUserEmail(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "totalSavings": pot})
}
