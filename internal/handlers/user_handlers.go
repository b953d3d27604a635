package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/Johnny2306/plawimadd-group-api/internal/auth"
	"github.com/Johnny2306/plawimadd-group-api/internal/middleware"
	"github.com/Johnny2306/plawimadd-group-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

//
// --- Account Lifecycle Handlers ---
//

// RegisterInput defines the JSON expected to create an account.
type RegisterInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

// Register is the handler for POST /api/users/register.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Hash the password before anything touches the database.
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now()
	user := &models.User{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      models.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user.PasswordHash = password.Hash

	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := h.DB.Exec(query, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.Role, now, now)
	if err != nil {
		if isMySQLError(err, mysqlErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}
	user.ID, _ = result.LastInsertId()

	token, err := auth.GenerateToken(user.ID, user.Role, user.FirstName+" "+user.LastName, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	// The 'json:"-"' tag keeps the password hash out of the response.
	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"user":    user,
	})
}

// LoginInput defines the JSON expected for a login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /api/users/login.
// Both an unknown email and a wrong password answer the same generic 401,
// so the endpoint cannot be used to enumerate accounts.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	query := "SELECT id, email, password_hash, first_name, last_name, role FROM users WHERE email = ?"
	err := h.DB.QueryRow(query, input.Email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check password"})
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Role, user.FirstName+" "+user.LastName, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"role":      user.Role,
		},
	})
}

// --- Password Reset Flow ---

// ForgotPasswordInput defines the JSON for POST /api/users/mot-de-passe-oublie.
type ForgotPasswordInput struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a 15-minute reset token and emails it to the user.
// The response is identical whether or not the account exists.
func (h *Handlers) ForgotPassword(c *gin.Context) {
	var input ForgotPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	genericResponse := gin.H{"message": "Si un compte existe pour cette adresse, un email de réinitialisation a été envoyé."}

	var userID int64
	err := h.DB.QueryRow("SELECT id FROM users WHERE email = ?", input.Email).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			// Enumeration defense: same answer as the success path.
			c.JSON(http.StatusOK, genericResponse)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	token := uuid.New().String()
	expiry := time.Now().Add(15 * time.Minute)

	_, err = h.DB.Exec(
		"UPDATE users SET reset_token = ?, reset_token_expiry = ?, updated_at = ? WHERE id = ?",
		token, expiry, time.Now(), userID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue reset token"})
		return
	}

	// Delivery failure must not change the response, only the logs.
	if err := h.Mailer.SendPasswordReset(input.Email, token); err != nil {
		log.Printf("ERROR: failed to send reset email to %s: %v", input.Email, err)
	}

	c.JSON(http.StatusOK, genericResponse)
}

// ResetPasswordInput defines the JSON for POST /api/users/reinitialiser-mot-de-passe.
type ResetPasswordInput struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// ResetPassword consumes a reset token and installs the new password.
func (h *Handlers) ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID int64
	query := "SELECT id FROM users WHERE reset_token = ? AND reset_token_expiry > ?"
	err := h.DB.QueryRow(query, input.Token, time.Now()).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	_, err = h.DB.Exec(
		"UPDATE users SET password_hash = ?, reset_token = NULL, reset_token_expiry = NULL, updated_at = ? WHERE id = ?",
		password.Hash, time.Now(), userID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe réinitialisé avec succès"})
}

// GetMe is the handler for GET /api/users/me.
func (h *Handlers) GetMe(c *gin.Context) {
	userID := c.GetInt64(middleware.CtxUserID)

	var user models.User
	query := "SELECT id, email, first_name, last_name, role, created_at, updated_at FROM users WHERE id = ?"
	err := h.DB.QueryRow(query, userID).Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// PurgeExpiredResetTokens clears reset tokens that were never used.
// Called by the hourly background worker in main().
func (h *Handlers) PurgeExpiredResetTokens() {
	result, err := h.DB.Exec(
		"UPDATE users SET reset_token = NULL, reset_token_expiry = NULL WHERE reset_token_expiry IS NOT NULL AND reset_token_expiry < ?",
		time.Now(),
	)
	if err != nil {
		log.Printf("ERROR: failed to purge expired reset tokens: %v", err)
		return
	}
	if n, _ := result.RowsAffected(); n > 0 {
		log.Printf("Background worker: purged %d expired reset token(s)", n)
	}
}
