package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack-api/services"
	"github.com/fintrack/fintrack-api/utils"
)

type RecurringHandler struct {
	Recurring *services.RecurringService
}

// Trigger runs one recurring-transaction pass on demand, outside the
// scheduler's normal interval.
func (h *RecurringHandler) Trigger(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.Recurring.ProcessRecurringIncomes(ctx); err != nil {
		utils.SafeLog("❌ Recurring income pass failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if err := h.Recurring.ProcessRecurringExpenses(ctx); err != nil {
		utils.SafeLog("❌ Recurring expense pass failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Recurring transactions processed"})
}
