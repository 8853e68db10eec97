package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack-api/middleware"
	"github.com/fintrack/fintrack-api/models"
)

type TagHandler struct {
	DB *sql.DB
}

// List returns the caller's tag rows across both transaction tables.
func (h *TagHandler) List(c *gin.Context) {
	email := middleware.GetUserEmail(c)

	rows, err := h.DB.Query(`
		SELECT t.id, t.name, t.transaction_id, t.transaction_type, t.created_at
		FROM tags t
		WHERE t.transaction_id IN (
			SELECT id FROM incomes WHERE email = $1
			UNION ALL
			SELECT id FROM expenses WHERE email = $1
		)
		ORDER BY t.created_at DESC`, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	defer rows.Close()

	tags := []models.Tag{}
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.TransactionID, &t.TransactionType, &t.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		tags = append(tags, t)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "tags": tags})
}
