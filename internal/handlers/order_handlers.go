package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Johnny2306/plawimadd-group-api/internal/middleware"
	"github.com/Johnny2306/plawimadd-group-api/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Order Creation & Payment Reconciliation ---
//
// An order, its items, and its payment row are created together in one
// transaction. The order id is the client-generated transaction id, so a
// retried submission collides on the primary key instead of duplicating.
// Reconciliation later moves payment status PENDING -> COMPLETED/FAILED;
// the order's own fulfillment status stays PENDING (it is advanced only by
// an admin through the back-office, never by the payment flow).
//

var errAddressNotFound = errors.New("shipping address not found")

// OrderItemInput is one line of the checkout payload. The price is the
// client-computed unit price and is snapshotted as-is into the order.
type OrderItemInput struct {
	ProductID int64   `json:"productId" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gte=1"`
	Price     float64 `json:"price" binding:"gte=0"`
}

// ShippingInput is an inline shipping snapshot for buyers checking out
// without a saved address.
type ShippingInput struct {
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Area     string `json:"area" binding:"required"`
	City     string `json:"city" binding:"required"`
	State    string `json:"state" binding:"required"`
}

// CreateOrderInput defines the JSON for both order-creation endpoints.
type CreateOrderInput struct {
	TransactionID string           `json:"transactionId" binding:"required"`
	Items         []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	PaymentMethod string           `json:"paymentMethod"`
	Currency      string           `json:"currency"`
	AddressID     *int64           `json:"addressId"`
	Shipping      *ShippingInput   `json:"shipping"`
	ClearCart     bool             `json:"clearCart"`

	// Only meaningful on the create-after-payment endpoint.
	Status string  `json:"status"`
	Amount float64 `json:"amount"`
}

// insertOrder writes the order, its items, and its payment row inside tx.
// The persisted total is always the sum of quantity x priceAtOrder.
func (h *Handlers) insertOrder(tx *sql.Tx, userID int64, input *CreateOrderInput, payStatus models.PaymentStatus) (float64, error) {
	now := time.Now()

	if input.Currency == "" {
		input.Currency = "XOF"
	}

	var total float64
	for _, item := range input.Items {
		total += item.Price * float64(item.Quantity)
	}

	// Resolve the shipping snapshot.
	var shipping ShippingInput
	if input.AddressID != nil {
		err := tx.QueryRow(
			"SELECT full_name, phone, area, city, state FROM addresses WHERE id = ? AND user_id = ?",
			*input.AddressID, userID,
		).Scan(&shipping.FullName, &shipping.Phone, &shipping.Area, &shipping.City, &shipping.State)
		if err != nil {
			if err == sql.ErrNoRows {
				return 0, errAddressNotFound
			}
			return 0, err
		}
	} else {
		shipping = *input.Shipping
	}

	var method *string
	if input.PaymentMethod != "" {
		method = &input.PaymentMethod
	}

	orderQuery := `
		INSERT INTO orders (id, user_id, total_amount, currency, status, payment_status, payment_method,
		                    address_id, shipping_full_name, shipping_phone, shipping_area, shipping_city, shipping_state,
		                    created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.Exec(orderQuery,
		input.TransactionID, userID, total, input.Currency, models.OrderPending, payStatus, method,
		input.AddressID, shipping.FullName, shipping.Phone, shipping.Area, shipping.City, shipping.State,
		now, now)
	if err != nil {
		return 0, err
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, quantity, price_at_order, created_at)
		VALUES (?, ?, ?, ?, ?)`
	for _, item := range input.Items {
		if _, err := tx.Exec(itemQuery, input.TransactionID, item.ProductID, item.Quantity, item.Price, now); err != nil {
			return 0, err
		}
	}

	paymentQuery := `
		INSERT INTO payments (order_id, amount, currency, method, transaction_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.Exec(paymentQuery, input.TransactionID, total, input.Currency, method, input.TransactionID, payStatus, now, now); err != nil {
		return 0, err
	}

	return total, nil
}

// createOrderCommon runs the shared transaction for both creation endpoints.
func (h *Handlers) createOrderCommon(c *gin.Context, input *CreateOrderInput, payStatus models.PaymentStatus, clearCart bool) (float64, bool) {
	userID := c.GetInt64(middleware.CtxUserID)

	if input.AddressID == nil && input.Shipping == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A shipping address is required"})
		return 0, false
	}

	tx, err := h.DB.BeginTx(c, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return 0, false
	}
	defer tx.Rollback() // Safety net: all-or-nothing.

	total, err := h.insertOrder(tx, userID, input, payStatus)
	if err != nil {
		switch {
		case errors.Is(err, errAddressNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Shipping address not found"})
		case isMySQLError(err, mysqlErrDuplicateEntry):
			c.JSON(http.StatusConflict, gin.H{"error": "An order with this transaction id already exists"})
		case isMySQLError(err, mysqlErrNoReferencedRow):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order references an unknown product"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		}
		return 0, false
	}

	if clearCart {
		if err := clearCartTx(tx, userID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return 0, false
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return 0, false
	}

	return total, true
}

// CreateOrder is the handler for POST /api/order/create.
// The order and its payment start PENDING; the widget result arrives later
// through the confirmation endpoint.
func (h *Handlers) CreateOrder(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	total, ok := h.createOrderCommon(c, &input, models.PaymentPending, input.ClearCart)
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Order created",
		"orderId":     input.TransactionID,
		"totalAmount": total,
		"status":      models.OrderPending,
	})
}

// CreateOrderAfterPayment is the handler for POST /api/orders/create-after-payment.
// The widget has already run, so its reported status arrives with the order.
// The status string is parsed once at this boundary; unrecognized values are
// rejected and nothing is written. A completed payment clears the cart.
func (h *Handlers) CreateOrderAfterPayment(c *gin.Context) {
	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payStatus, err := models.ParseExternalPaymentStatus(input.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	clearCart := input.ClearCart || payStatus == models.PaymentCompleted
	total, ok := h.createOrderCommon(c, &input, payStatus, clearCart)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Order recorded",
		"orderId":       input.TransactionID,
		"totalAmount":   total,
		"paymentStatus": payStatus,
	})
}

// ConfirmPaymentInput is the result posted back by the payment widget.
type ConfirmPaymentInput struct {
	TransactionID string  `json:"transactionId" binding:"required"`
	Status        string  `json:"status" binding:"required"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
}

// ConfirmPayment is the handler for POST /api/order/confirm-payment.
// It reconciles an existing order with the externally reported result:
// payment.status and orders.payment_status move together in one transaction,
// and a completed payment clears the buyer's cart. Re-posting the same
// status is a no-op at the data level.
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	var input ConfirmPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	statusStr := input.Status
	var verifiedAmount float64
	if h.Payments != nil {
		// Cross-check the client-reported result against the provider.
		verified, err := h.Payments.VerifyTransaction(c, input.TransactionID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Unable to verify payment with provider"})
			return
		}
		statusStr = verified.Status
		verifiedAmount = verified.Amount
	}

	payStatus, err := models.ParseExternalPaymentStatus(statusStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.DB.BeginTx(c, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	// Existence check up front: an unchanged UPDATE reports zero affected
	// rows on MySQL, so rows-affected cannot double as a 404 signal here.
	var orderUserID int64
	var orderTotal float64
	err = tx.QueryRow("SELECT user_id, total_amount FROM orders WHERE id = ?", input.TransactionID).Scan(&orderUserID, &orderTotal)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	// The provider's amount must match what the order actually costs.
	if verifiedAmount > 0 && verifiedAmount != orderTotal {
		c.JSON(http.StatusConflict, gin.H{"error": "Verified amount does not match the order total"})
		return
	}

	now := time.Now()
	var method *string
	if input.PaymentMethod != "" {
		method = &input.PaymentMethod
	}

	_, err = tx.Exec(
		"UPDATE payments SET status = ?, method = COALESCE(?, method), updated_at = ? WHERE order_id = ?",
		payStatus, method, now, input.TransactionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update payment"})
		return
	}

	_, err = tx.Exec(
		"UPDATE orders SET payment_status = ?, updated_at = ? WHERE id = ?",
		payStatus, now, input.TransactionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	if payStatus == models.PaymentCompleted {
		if err := clearCartTx(tx, orderUserID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Payment reconciled",
		"orderId":       input.TransactionID,
		"paymentStatus": payStatus,
	})
}

//
// --- Order Retrieval ---
//

// OrderItemDetail extends the base OrderItem with product snapshot fields.
type OrderItemDetail struct {
	models.OrderItem
	ProductName   string   `json:"productName"`
	ProductImages []string `json:"productImages"`
}

// OrderDetail is one order joined with its items and payment.
type OrderDetail struct {
	models.Order
	Items   []OrderItemDetail `json:"items"`
	Payment *models.Payment   `json:"payment,omitempty"`
}

// fetchOrders loads orders with items and payment. userID 0 means all users.
func (h *Handlers) fetchOrders(userID int64) ([]OrderDetail, error) {
	query := `
		SELECT id, user_id, total_amount, currency, status, payment_status, payment_method,
		       address_id, shipping_full_name, shipping_phone, shipping_area, shipping_city, shipping_state,
		       created_at, updated_at
		FROM orders`
	var args []interface{}
	if userID != 0 {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []OrderDetail{}
	for rows.Next() {
		var o OrderDetail
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.TotalAmount, &o.Currency, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
			&o.AddressID, &o.ShippingFullName, &o.ShippingPhone, &o.ShippingArea, &o.ShippingCity, &o.ShippingState,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := h.fetchOrderItems(orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items

		payment, err := h.fetchPayment(orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Payment = payment
	}

	return orders, nil
}

func (h *Handlers) fetchOrderItems(orderID string) ([]OrderItemDetail, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_at_order, oi.created_at,
		       p.name, p.images
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.order_id = ?`
	rows, err := h.DB.Query(query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []OrderItemDetail{}
	for rows.Next() {
		var item OrderItemDetail
		var dbImages []byte
		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.PriceAtOrder, &item.CreatedAt,
			&item.ProductName, &dbImages,
		); err != nil {
			return nil, err
		}
		item.ProductImages = []string{}
		if len(dbImages) > 0 {
			_ = json.Unmarshal(dbImages, &item.ProductImages)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (h *Handlers) fetchPayment(orderID string) (*models.Payment, error) {
	var p models.Payment
	err := h.DB.QueryRow(
		"SELECT id, order_id, amount, currency, method, transaction_id, status, created_at, updated_at FROM payments WHERE order_id = ?",
		orderID,
	).Scan(&p.ID, &p.OrderID, &p.Amount, &p.Currency, &p.Method, &p.TransactionID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// GetMyOrders is the handler for GET /api/order/user-orders and
// GET /api/user/orders (the storefront uses both paths).
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userID := c.GetInt64(middleware.CtxUserID)

	orders, err := h.fetchOrders(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrdersForUser is the handler for GET /api/orders/:userId.
// Admins may read anyone's orders; everyone else only their own.
func (h *Handlers) GetOrdersForUser(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	callerID := c.GetInt64(middleware.CtxUserID)
	callerRole := c.GetString(middleware.CtxUserRole)
	if callerRole != models.RoleAdmin && callerID != targetID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	orders, err := h.fetchOrders(targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetAllOrders is the handler for GET /api/admin/orders.
func (h *Handlers) GetAllOrders(c *gin.Context) {
	orders, err := h.fetchOrders(0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

//
// --- Admin Order Operations ---
//

// SetOrderStatusInput defines the JSON for POST /api/admin/order-status.
type SetOrderStatusInput struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// SetOrderStatus overwrites the fulfillment status. Any recognized status
// may replace any other; there is no transition table.
func (h *Handlers) SetOrderStatus(c *gin.Context) {
	var input SetOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := models.ParseOrderStatus(input.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Existence first; re-setting the same status must stay a 200.
	var exists int
	err = h.DB.QueryRow("SELECT 1 FROM orders WHERE id = ?", input.OrderID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	_, err = h.DB.Exec("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?", status, time.Now(), input.OrderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "status": status})
}

// DeleteOrder is the handler for DELETE /api/admin/orders/:orderId.
// Order items and the payment row go first, then the order itself, all in
// one transaction: either everything disappears or nothing does.
func (h *Handlers) DeleteOrder(c *gin.Context) {
	orderID := c.Param("orderId")

	tx, err := h.DB.BeginTx(c, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM order_items WHERE order_id = ?", orderID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order items"})
		return
	}
	if _, err := tx.Exec("DELETE FROM payments WHERE order_id = ?", orderID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete payment"})
		return
	}

	result, err := tx.Exec("DELETE FROM orders WHERE id = ?", orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		// Deferred rollback undoes the child deletes: no partial deletion.
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}
