package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/Johnny2306/plawimadd-group-api/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Admin: User Management ---
//

// ListUsers is the handler for GET /api/admin/users.
// Optional ?role=USER|ADMIN filter.
func (h *Handlers) ListUsers(c *gin.Context) {
	role := c.Query("role")
	if role != "" && !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role filter"})
		return
	}

	query := "SELECT id, email, first_name, last_name, role, created_at, updated_at FROM users"
	var args []interface{}
	if role != "" {
		query += " WHERE role = ?"
		args = append(args, role)
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan user row"})
			return
		}
		users = append(users, u)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating user rows"})
		return
	}

	if users == nil {
		users = []models.User{}
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// UpdateUserRoleInput defines the JSON for PUT /api/admin/users.
type UpdateUserRoleInput struct {
	UserID int64  `json:"userId" binding:"required"`
	Role   string `json:"role" binding:"required"`
}

// UpdateUserRole changes a user's role.
func (h *Handlers) UpdateUserRole(c *gin.Context) {
	var input UpdateUserRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	// Existence first: setting the same role twice is still a 200.
	var exists int
	if err := h.DB.QueryRow("SELECT 1 FROM users WHERE id = ?", input.UserID).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	_, err := h.DB.Exec("UPDATE users SET role = ?, updated_at = ? WHERE id = ?", input.Role, time.Now(), input.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user role"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User role updated"})
}

// DeleteUser is the handler for DELETE /api/admin/users?id=.
// A user with addresses, cart rows, or orders cannot be deleted; the FK
// error surfaces as a 409 and nothing changes.
func (h *Handlers) DeleteUser(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user id"})
		return
	}

	result, err := h.DB.Exec("DELETE FROM users WHERE id = ?", id)
	if err != nil {
		if isMySQLError(err, mysqlErrRowIsReferenced) {
			c.JSON(http.StatusConflict, gin.H{"error": "User has dependent data (orders, cart, addresses); delete dependent data first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

//
// --- Admin: Dashboard Stats ---
//

// GetAdminStats is the handler for GET /api/admin/stats.
func (h *Handlers) GetAdminStats(c *gin.Context) {
	var userCount, productCount, orderCount int64
	var revenue float64

	if err := h.DB.QueryRow("SELECT COUNT(*) FROM users").Scan(&userCount); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM products").Scan(&productCount); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count products"})
		return
	}
	if err := h.DB.QueryRow("SELECT COUNT(*) FROM orders").Scan(&orderCount); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
		return
	}
	// Revenue counts only completed payments.
	if err := h.DB.QueryRow(
		"SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = ?", models.PaymentCompleted,
	).Scan(&revenue); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute revenue"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":    userCount,
		"products": productCount,
		"orders":   orderCount,
		"revenue":  revenue,
	})
}
