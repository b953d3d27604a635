package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Johnny2306/plawimadd-group-api/internal/middleware"
	"github.com/gin-gonic/gin"
)

//
// --- Cart Handlers (authenticated) ---
//
// Cart rows are keyed (user_id, product_id). Concurrent mutations from the
// same user are last-write-wins at the row level; there is no optimistic
// locking and no cross-item invariant.
//

// CartLineResponse is one cart row joined with its product.
type CartLineResponse struct {
	ProductID  int64    `json:"productId"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	OfferPrice float64  `json:"offerPrice"`
	Images     []string `json:"images"`
	Quantity   int      `json:"quantity"`
	LineTotal  float64  `json:"lineTotal"`
	Stock      int      `json:"stock"`
}

// GetCart is the handler for GET /api/cart.
func (h *Handlers) GetCart(c *gin.Context) {
	userID := c.GetInt64(middleware.CtxUserID)

	query := `
		SELECT ci.product_id, p.name, p.price, p.offer_price, p.images, ci.quantity, p.stock
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.user_id = ?
		ORDER BY ci.created_at ASC`
	rows, err := h.DB.Query(query, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query cart items"})
		return
	}
	defer rows.Close()

	var items []CartLineResponse
	var subtotal float64
	var totalItems int

	for rows.Next() {
		var item CartLineResponse
		var dbImages []byte
		if err := rows.Scan(&item.ProductID, &item.Name, &item.Price, &item.OfferPrice, &dbImages, &item.Quantity, &item.Stock); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan cart item"})
			return
		}

		item.Images = []string{}
		if len(dbImages) > 0 {
			_ = json.Unmarshal(dbImages, &item.Images)
		}

		// Buyers pay the offer price when one is set.
		unit := item.Price
		if item.OfferPrice > 0 {
			unit = item.OfferPrice
		}
		item.LineTotal = unit * float64(item.Quantity)
		subtotal += item.LineTotal
		totalItems += item.Quantity

		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating cart items"})
		return
	}

	if items == nil {
		items = []CartLineResponse{}
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"subtotal":   subtotal,
		"totalItems": totalItems,
	})
}

// CartItemInput defines the JSON for add/remove-one mutations.
type CartItemInput struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"omitempty,gt=0"`
}

// AddToCart is the handler for POST /api/cart/add.
// Adding an already-present product increments its quantity (upsert).
func (h *Handlers) AddToCart(c *gin.Context) {
	userID := c.GetInt64(middleware.CtxUserID)

	var input CartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	// The product must exist before it can be carted.
	var exists int
	err := h.DB.QueryRow("SELECT 1 FROM products WHERE id = ?", input.ProductID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	now := time.Now()
	_, err = h.DB.Exec(`
		INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			quantity = quantity + VALUES(quantity),
			updated_at = VALUES(updated_at)`,
		userID, input.ProductID, input.Quantity, now, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart"})
}

// RemoveOneFromCart is the handler for POST /api/cart/remove-one.
// Decrements the quantity; the row disappears when it reaches zero.
func (h *Handlers) RemoveOneFromCart(c *gin.Context) {
	userID := c.GetInt64(middleware.CtxUserID)

	var input CartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
		return
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE cart_items SET quantity = quantity - 1, updated_at = ? WHERE user_id = ? AND product_id = ?",
		time.Now(), userID, input.ProductID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return
	}

	// A quantity below one means the entry goes away entirely.
	_, err = tx.Exec(
		"DELETE FROM cart_items WHERE user_id = ? AND product_id = ? AND quantity < 1",
		userID, input.ProductID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Commit failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item quantity decremented"})
}

// UpdateCartItemInput defines the JSON for setting an item's quantity.
// gte=0 allows zero, which is treated as a delete.
type UpdateCartItemInput struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

// UpdateCartItem is the handler for PUT /api/cart/items/:product_id.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	userID := c.GetInt64(middleware.CtxUserID)
	productIDStr := c.Param("product_id")

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if *input.Quantity == 0 {
		h.deleteCartItem(c, userID, productIDStr)
		return
	}

	// Existence first: re-submitting the same quantity is an unchanged
	// UPDATE, which MySQL reports as zero affected rows. Rows-affected
	// cannot double as a 404 signal here.
	var exists int
	err := h.DB.QueryRow(
		"SELECT 1 FROM cart_items WHERE user_id = ? AND product_id = ?", userID, productIDStr,
	).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	_, err = h.DB.Exec(
		"UPDATE cart_items SET quantity = ?, updated_at = ? WHERE user_id = ? AND product_id = ?",
		*input.Quantity, time.Now(), userID, productIDStr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item quantity updated"})
}

// DeleteCartItem is the handler for DELETE /api/cart/items/:product_id.
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	userID := c.GetInt64(middleware.CtxUserID)
	h.deleteCartItem(c, userID, c.Param("product_id"))
}

// deleteCartItem is a helper shared by the delete and set-to-zero paths.
func (h *Handlers) deleteCartItem(c *gin.Context, userID int64, productIDStr string) {
	result, err := h.DB.Exec(
		"DELETE FROM cart_items WHERE user_id = ? AND product_id = ?", userID, productIDStr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete item"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}

// ClearCart is the handler for DELETE /api/cart.
func (h *Handlers) ClearCart(c *gin.Context) {
	userID := c.GetInt64(middleware.CtxUserID)

	if _, err := h.DB.Exec("DELETE FROM cart_items WHERE user_id = ?", userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}

// clearCartTx empties the user's cart inside an existing transaction.
// Used by the order-creation and payment-reconciliation flows.
func clearCartTx(tx *sql.Tx, userID int64) error {
	_, err := tx.Exec("DELETE FROM cart_items WHERE user_id = ?", userID)
	return err
}
