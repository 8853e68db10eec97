package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/fintrack/fintrack-api/models"
)

// ReferenceHandler manages the currency and category lists backing the
// frontend selectors. Reads are open to any authenticated user, mutations are
// admin only (enforced in the routes).
type ReferenceHandler struct {
	DB *sql.DB
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (h *ReferenceHandler) ListCurrencies(c *gin.Context) {
	rows, err := h.DB.Query(`SELECT id, value, label FROM currencies ORDER BY value`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	defer rows.Close()

	currencies := []models.Currency{}
	for rows.Next() {
		var cur models.Currency
		if err := rows.Scan(&cur.ID, &cur.Value, &cur.Label); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		currencies = append(currencies, cur)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "currencies": currencies})
}

func (h *ReferenceHandler) AddCurrency(c *gin.Context) {
	var req models.CurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var cur models.Currency
	err := h.DB.QueryRow(
		`INSERT INTO currencies (value, label) VALUES ($1, $2) RETURNING id, value, label`,
		req.Value, req.Label).Scan(&cur.ID, &cur.Value, &cur.Label)
	if isUniqueViolation(err) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Currency already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "currency": cur})
}

func (h *ReferenceHandler) DeleteCurrency(c *gin.Context) {
	res, err := h.DB.Exec(`DELETE FROM currencies WHERE id = $1`, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Currency not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Currency deleted successfully"})
}

func (h *ReferenceHandler) ListCategories(c *gin.Context) {
	rows, err := h.DB.Query(`SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		categories = append(categories, cat)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
}

func (h *ReferenceHandler) AddCategory(c *gin.Context) {
	var req models.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var cat models.Category
	err := h.DB.QueryRow(
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, name`,
		req.Name).Scan(&cat.ID, &cat.Name)
	if isUniqueViolation(err) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Category already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "category": cat})
}

func (h *ReferenceHandler) DeleteCategory(c *gin.Context) {
	res, err := h.DB.Exec(`DELETE FROM categories WHERE id = $1`, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Category not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deleted successfully"})
}
