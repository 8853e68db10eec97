package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fintrack/fintrack-api/models"
	"github.com/fintrack/fintrack-api/utils"
)

type AuthHandler struct {
	DB *sql.DB
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	var exists bool
	err := h.DB.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR username = $2)`,
		email, username).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Username or email already registered"})
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	user := models.User{
		Username:  username,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     email,
		Role:      models.RoleUser,
		Currency:  currency,
	}
	err = h.DB.QueryRow(`
		INSERT INTO users (username, firstname, lastname, email, password_hash, role, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		username, req.Firstname, req.Lastname, email, passwordHash, models.RoleUser, currency,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create user"})
		return
	}

	token, err := utils.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	utils.SafeLog("✅ New user registered: %s", user.Email)
	c.JSON(http.StatusCreated, models.AuthResponse{Success: true, User: user, Token: token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	identifier := strings.TrimSpace(req.Username)

	var user models.User
	var passwordHash string
	err := h.DB.QueryRow(`
		SELECT id, username, firstname, lastname, email, password_hash, role, currency,
		       COALESCE(avatar, ''), COALESCE(contact, ''), COALESCE(address, ''),
		       COALESCE(city, ''), COALESCE(postal_code, ''), COALESCE(country, ''),
		       created_at, updated_at
		FROM users
		WHERE username = $1 OR email = LOWER($1)`,
		identifier,
	).Scan(&user.ID, &user.Username, &user.Firstname, &user.Lastname, &user.Email,
		&passwordHash, &user.Role, &user.Currency, &user.Avatar, &user.Contact,
		&user.Address, &user.City, &user.PostalCode, &user.Country,
		&user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal Server Error"})
		return
	}

	if !utils.CheckPassword(req.Password, passwordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}

	now := time.Now()
	if _, err := h.DB.Exec(`UPDATE users SET last_login = $1 WHERE id = $2`, now, user.ID); err == nil {
		user.LastLogin = &now
	}

	token, err := utils.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate token"})
		return
	}

	utils.SafeLog("🔑 User logged in: %s", user.Email)
	c.JSON(http.StatusOK, models.AuthResponse{Success: true, User: user, Token: token})
}
