package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/Johnny2306/plawimadd-group-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

//
// --- Category Handlers (public read, admin-gated write) ---
//

// GetAllCategories is the handler for GET /api/categories.
func (h *Handlers) GetAllCategories(c *gin.Context) {
	rows, err := h.DB.Query(
		"SELECT id, name, slug, description, image_url, created_at, updated_at FROM categories ORDER BY name ASC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug, &cat.Description, &cat.ImageURL, &cat.CreatedAt, &cat.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan category row"})
			return
		}
		categories = append(categories, cat)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating category rows"})
		return
	}

	// An empty catalog is an empty list, not an error.
	if categories == nil {
		categories = []models.Category{}
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CategoryInput defines the JSON for creating or updating a category.
type CategoryInput struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
}

// CreateCategory is the handler for POST /api/categories (admin only).
func (h *Handlers) CreateCategory(c *gin.Context) {
	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	query := `INSERT INTO categories (name, slug, description, image_url, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := h.DB.Exec(query, input.Name, slug.Make(input.Name), input.Description, input.ImageURL, now, now)
	if err != nil {
		if isMySQLError(err, mysqlErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": "A category with this name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}

	id, _ := res.LastInsertId()
	newCat := models.Category{
		ID:          id,
		Name:        input.Name,
		Slug:        slug.Make(input.Name),
		Description: input.Description,
		ImageURL:    input.ImageURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": newCat})
}

// UpdateCategory is the handler for PUT /api/categories/:id (admin only).
func (h *Handlers) UpdateCategory(c *gin.Context) {
	id := c.Param("id")

	var input CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	query := `UPDATE categories SET name = ?, slug = ?, description = ?, image_url = ?, updated_at = ? WHERE id = ?`
	result, err := h.DB.Exec(query, input.Name, slug.Make(input.Name), input.Description, input.ImageURL, time.Now(), id)
	if err != nil {
		if isMySQLError(err, mysqlErrDuplicateEntry) {
			c.JSON(http.StatusConflict, gin.H{"error": "A category with this name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		// Could also be an unchanged row, but a read-back keeps the handler honest.
		var exists int
		if err := h.DB.QueryRow("SELECT 1 FROM categories WHERE id = ?", id).Scan(&exists); err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category updated"})
}

// DeleteCategory is the handler for DELETE /api/categories/:id (admin only).
// A category still referenced by products cannot be deleted; the FK error
// surfaces as a 409 and no rows change.
func (h *Handlers) DeleteCategory(c *gin.Context) {
	id := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		if isMySQLError(err, mysqlErrRowIsReferenced) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category is referenced by products; delete dependent data first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
