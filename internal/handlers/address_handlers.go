package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/Johnny2306/plawimadd-group-api/internal/middleware"
	"github.com/Johnny2306/plawimadd-group-api/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Address Handlers (authenticated, owner-scoped) ---
//

// GetMyAddresses is the handler for GET /api/user/addresses.
func (h *Handlers) GetMyAddresses(c *gin.Context) {
	userID := c.GetInt64(middleware.CtxUserID)

	query := `
		SELECT id, user_id, full_name, phone, area, city, state, country, pincode, is_default, created_at, updated_at
		FROM addresses
		WHERE user_id = ?
		ORDER BY is_default DESC, created_at DESC`
	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch addresses"})
		return
	}
	defer rows.Close()

	var addresses []models.Address
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.Area, &a.City, &a.State, &a.Country, &a.Pincode, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan address row"})
			return
		}
		addresses = append(addresses, a)
	}

	if addresses == nil {
		addresses = []models.Address{}
	}

	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

// AddressInput defines the JSON for creating or updating an address.
type AddressInput struct {
	FullName  string  `json:"fullName" binding:"required"`
	Phone     string  `json:"phone" binding:"required"`
	Area      string  `json:"area" binding:"required"`
	City      string  `json:"city" binding:"required"`
	State     string  `json:"state" binding:"required"`
	Country   string  `json:"country"`
	Pincode   *string `json:"pincode"`
	IsDefault bool    `json:"isDefault"`
}

// CreateAddress is the handler for POST /api/user/addresses.
// Writing isDefault=true clears the flag on the user's other rows in the
// same transaction, so at most one default survives.
func (h *Handlers) CreateAddress(c *gin.Context) {
	userID := c.GetInt64(middleware.CtxUserID)

	var input AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Country == "" {
		input.Country = "Benin"
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	if input.IsDefault {
		if _, err := tx.Exec("UPDATE addresses SET is_default = 0 WHERE user_id = ?", userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update default address"})
			return
		}
	}

	now := time.Now()
	query := `
		INSERT INTO addresses (user_id, full_name, phone, area, city, state, country, pincode, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.Exec(query,
		userID, input.FullName, input.Phone, input.Area, input.City, input.State, input.Country, input.Pincode, input.IsDefault, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create address"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	id, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"message": "Address created", "addressId": id})
}

// UpdateAddress is the handler for PUT /api/user/addresses/:id.
func (h *Handlers) UpdateAddress(c *gin.Context) {
	userID := c.GetInt64(middleware.CtxUserID)
	addressID := c.Param("id")

	var input AddressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Country == "" {
		input.Country = "Benin"
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	// Existence (and ownership) first: re-submitting an identical payload
	// is an unchanged UPDATE, which MySQL reports as zero affected rows, so
	// rows-affected cannot double as a 404 signal.
	var exists int
	err = tx.QueryRow("SELECT 1 FROM addresses WHERE id = ? AND user_id = ?", addressID, userID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if input.IsDefault {
		if _, err := tx.Exec("UPDATE addresses SET is_default = 0 WHERE user_id = ? AND id != ?", userID, addressID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update default address"})
			return
		}
	}

	query := `
		UPDATE addresses
		SET full_name = ?, phone = ?, area = ?, city = ?, state = ?, country = ?, pincode = ?, is_default = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`
	_, err = tx.Exec(query,
		input.FullName, input.Phone, input.Area, input.City, input.State, input.Country, input.Pincode, input.IsDefault, time.Now(), addressID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update address"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Address updated"})
}

// DeleteAddress is the handler for DELETE /api/user/addresses/:id.
func (h *Handlers) DeleteAddress(c *gin.Context) {
	userID := c.GetInt64(middleware.CtxUserID)
	addressID := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM addresses WHERE id = ? AND user_id = ?", addressID, userID)
	if err != nil {
		if isMySQLError(err, mysqlErrRowIsReferenced) {
			c.JSON(http.StatusConflict, gin.H{"error": "Address is referenced by orders; delete dependent data first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete address"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Address not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}
