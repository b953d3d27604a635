package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/Johnny2306/plawimadd-group-api/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Catalog Read Path (public) ---
//

// scanProductRow scans one products row, unpacking the images JSON column.
func scanProductRow(rows *sql.Rows, p *models.Product) error {
	var dbImages []byte
	var description sql.NullString
	if err := rows.Scan(
		&p.ID,
		&p.Name,
		&description,
		&p.CategoryID,
		&p.Price,
		&p.OfferPrice,
		&p.Stock,
		&dbImages,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CategoryName,
	); err != nil {
		return err
	}
	p.Description = description.String
	p.Images = []string{}
	if len(dbImages) > 0 {
		_ = json.Unmarshal(dbImages, &p.Images)
	}
	return nil
}

// ListProducts is the handler for GET /api/products.
// Optional filters: ?q= free-text match on name/description, ?category= id.
func (h *Handlers) ListProducts(c *gin.Context) {
	q := c.Query("q")
	categoryID := c.Query("category")

	var queryBuilder strings.Builder
	var args []interface{}

	queryBuilder.WriteString(`
		SELECT p.id, p.name, p.description, p.category_id, p.price, p.offer_price,
		       p.stock, p.images, p.created_at, p.updated_at, c.name
		FROM products p
		JOIN categories c ON p.category_id = c.id
		WHERE 1=1`)

	if categoryID != "" {
		queryBuilder.WriteString(" AND p.category_id = ?")
		args = append(args, categoryID)
	}
	if q != "" {
		queryBuilder.WriteString(" AND (p.name LIKE ? OR p.description LIKE ?)")
		searchTerm := "%" + q + "%"
		args = append(args, searchTerm, searchTerm)
	}

	queryBuilder.WriteString(" ORDER BY p.created_at DESC")

	rows, err := h.DB.Query(queryBuilder.String(), args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := scanProductRow(rows, &p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product row"})
			return
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating product rows"})
		return
	}

	// Empty result set is an empty list, not an error.
	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct is the handler for GET /api/products/:id.
func (h *Handlers) GetProduct(c *gin.Context) {
	id := c.Param("id")

	var p models.Product
	var dbImages []byte
	var description sql.NullString

	query := `
		SELECT p.id, p.name, p.description, p.category_id, p.price, p.offer_price,
		       p.stock, p.images, p.created_at, p.updated_at, c.name
		FROM products p
		JOIN categories c ON p.category_id = c.id
		WHERE p.id = ?`
	err := h.DB.QueryRow(query, id).Scan(
		&p.ID, &p.Name, &description, &p.CategoryID, &p.Price, &p.OfferPrice,
		&p.Stock, &dbImages, &p.CreatedAt, &p.UpdatedAt, &p.CategoryName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	p.Description = description.String
	p.Images = []string{}
	if len(dbImages) > 0 {
		_ = json.Unmarshal(dbImages, &p.Images)
	}

	c.JSON(http.StatusOK, gin.H{"product": p})
}

//
// --- Product Write Path (admin only) ---
//

// ProductInput defines the JSON for creating or updating a product.
type ProductInput struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	CategoryID  int64    `json:"categoryId" binding:"required"`
	Price       float64  `json:"price" binding:"gte=0"`
	OfferPrice  float64  `json:"offerPrice" binding:"gte=0"`
	Stock       int      `json:"stock" binding:"gte=0"`
	Images      []string `json:"images"`
}

// CreateProduct is the handler for POST /api/admin/products.
func (h *Handlers) CreateProduct(c *gin.Context) {
	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Images == nil {
		input.Images = []string{}
	}
	imagesJSON, err := json.Marshal(input.Images)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode images"})
		return
	}

	now := time.Now()
	query := `
		INSERT INTO products (name, description, category_id, price, offer_price, stock, images, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := h.DB.Exec(query,
		input.Name, input.Description, input.CategoryID, input.Price, input.OfferPrice, input.Stock, imagesJSON, now, now)
	if err != nil {
		if isMySQLError(err, mysqlErrNoReferencedRow) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category does not exist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	id, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "productId": id})
}

// UpdateProduct is the handler for PUT /api/admin/products/:id.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id := c.Param("id")

	var input ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Images == nil {
		input.Images = []string{}
	}
	imagesJSON, err := json.Marshal(input.Images)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode images"})
		return
	}

	query := `
		UPDATE products
		SET name = ?, description = ?, category_id = ?, price = ?, offer_price = ?, stock = ?, images = ?, updated_at = ?
		WHERE id = ?`
	result, err := h.DB.Exec(query,
		input.Name, input.Description, input.CategoryID, input.Price, input.OfferPrice, input.Stock, imagesJSON, time.Now(), id)
	if err != nil {
		if isMySQLError(err, mysqlErrNoReferencedRow) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category does not exist"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		var exists int
		if err := h.DB.QueryRow("SELECT 1 FROM products WHERE id = ?", id).Scan(&exists); err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// DeleteProduct is the handler for DELETE /api/admin/products/:id.
// Blocked while cart rows or order items still reference the product.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id := c.Param("id")

	result, err := h.DB.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		if isMySQLError(err, mysqlErrRowIsReferenced) {
			c.JSON(http.StatusConflict, gin.H{"error": "Product is referenced by carts or orders; delete dependent data first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
