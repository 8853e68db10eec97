package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack-api/middleware"
	"github.com/fintrack/fintrack-api/models"
)

type UserHandler struct {
	DB *sql.DB
}

const userColumns = `id, username, firstname, lastname, email, role, currency,
	COALESCE(avatar, ''), COALESCE(contact, ''), COALESCE(address, ''),
	COALESCE(city, ''), COALESCE(postal_code, ''), COALESCE(country, ''),
	last_login, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Firstname, &u.Lastname, &u.Email,
		&u.Role, &u.Currency, &u.Avatar, &u.Contact, &u.Address, &u.City,
		&u.PostalCode, &u.Country, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	user, err := scanUser(h.DB.QueryRow(
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := scanUser(h.DB.QueryRow(`
		UPDATE users SET
			firstname = COALESCE(NULLIF($1, ''), firstname),
			lastname = COALESCE(NULLIF($2, ''), lastname),
			currency = COALESCE(NULLIF($3, ''), currency),
			avatar = COALESCE(NULLIF($4, ''), avatar),
			contact = COALESCE(NULLIF($5, ''), contact),
			address = COALESCE(NULLIF($6, ''), address),
			city = COALESCE(NULLIF($7, ''), city),
			postal_code = COALESCE(NULLIF($8, ''), postal_code),
			country = COALESCE(NULLIF($9, ''), country),
			updated_at = NOW()
		WHERE id = $10
		RETURNING `+userColumns,
		req.Firstname, req.Lastname, req.Currency, req.Avatar, req.Contact,
		req.Address, req.City, req.PostalCode, req.Country, userID))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "User not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// ListUsers returns every account. Admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	rows, err := h.DB.Query(`SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
			return
		}
		users = append(users, u)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}
