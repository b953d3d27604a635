package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/Johnny2306/plawimadd-group-api/internal/models"
	"github.com/Johnny2306/plawimadd-group-api/internal/payment"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkoutBody = `{
	"transactionId": "TX-1",
	"items": [
		{"productId": 101, "quantity": 2, "price": 1000},
		{"productId": 102, "quantity": 1, "price": 2000}
	],
	"paymentMethod": "kkiapay",
	"currency": "XOF",
	"shipping": {
		"fullName": "Ama Dossou",
		"phone": "+22990000000",
		"area": "Fidjrosse",
		"city": "Cotonou",
		"state": "Littoral"
	}
}`

func orderRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	grp := r.Group("/api", asUser(7, models.RoleUser))
	grp.POST("/order/create", h.CreateOrder)
	grp.POST("/orders/create-after-payment", h.CreateOrderAfterPayment)
	grp.POST("/order/confirm-payment", h.ConfirmPayment)
	return r
}

// The persisted total must always be the sum of quantity x priceAtOrder,
// regardless of what the client might claim elsewhere in the payload.
func TestCreateOrderPersistsComputedTotal(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := orderRouter(h)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs("TX-1", int64(7), 4000.0, "XOF", "PENDING", "PENDING", "kkiapay",
			nil, "Ama Dossou", "+22990000000", "Fidjrosse", "Cotonou", "Littoral",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs("TX-1", int64(101), 2, 1000.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs("TX-1", int64(102), 1, 2000.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs("TX-1", 4000.0, "XOF", "kkiapay", "TX-1", "PENDING", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	w := performJSON(r, http.MethodPost, "/api/order/create", checkoutBody)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"totalAmount":4000`)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Re-submitting the same transaction id collides on the primary key
// instead of creating a second order.
func TestCreateOrderDuplicateTransactionID(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := orderRouter(h)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'TX-1' for key 'PRIMARY'"})
	mock.ExpectRollback()

	w := performJSON(r, http.MethodPost, "/api/order/create", checkoutBody)

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderWithoutItemsIs400(t *testing.T) {
	h, _ := newTestHandlers(t)
	r := orderRouter(h)

	w := performJSON(r, http.MethodPost, "/api/order/create",
		`{"transactionId": "TX-2", "items": []}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateOrderWithoutAddressIs400(t *testing.T) {
	h, _ := newTestHandlers(t)
	r := orderRouter(h)

	w := performJSON(r, http.MethodPost, "/api/order/create",
		`{"transactionId": "TX-3", "items": [{"productId": 1, "quantity": 1, "price": 500}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// A cart of {A:2, B:1} at 1000/2000 checked out after a successful widget
// run: total 4000, payment COMPLETED, cart cleared.
func TestCreateOrderAfterPaymentSuccessClearsCart(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := orderRouter(h)

	body := checkoutBody[:len(checkoutBody)-2] + `, "status": "SUCCESS", "amount": 4000}`

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs("TX-1", int64(7), 4000.0, "XOF", "PENDING", "COMPLETED", "kkiapay",
			nil, "Ama Dossou", "+22990000000", "Fidjrosse", "Cotonou", "Littoral",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs("TX-1", int64(101), 2, 1000.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs("TX-1", int64(102), 1, 2000.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs("TX-1", 4000.0, "XOF", "kkiapay", "TX-1", "COMPLETED", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	w := performJSON(r, http.MethodPost, "/api/orders/create-after-payment", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paymentStatus":"COMPLETED"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderAfterPaymentUnknownStatusIs400(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := orderRouter(h)

	body := checkoutBody[:len(checkoutBody)-2] + `, "status": "MAYBE"}`
	w := performJSON(r, http.MethodPost, "/api/orders/create-after-payment", body)

	// Rejected at the boundary: nothing reaches the database.
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPaymentSuccess(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := orderRouter(h)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, total_amount FROM orders").
		WithArgs("TX-9").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total_amount"}).AddRow(int64(7), 4000.0))
	mock.ExpectExec("UPDATE payments").
		WithArgs("COMPLETED", "kkiapay", sqlmock.AnyArg(), "TX-9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders").
		WithArgs("COMPLETED", sqlmock.AnyArg(), "TX-9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	w := performJSON(r, http.MethodPost, "/api/order/confirm-payment",
		`{"transactionId": "TX-9", "status": "SUCCESS", "amount": 4000, "paymentMethod": "kkiapay"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paymentStatus":"COMPLETED"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPaymentFailureDoesNotClearCart(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := orderRouter(h)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, total_amount FROM orders").
		WithArgs("TX-9").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total_amount"}).AddRow(int64(7), 4000.0))
	mock.ExpectExec("UPDATE payments").
		WithArgs("FAILED", nil, sqlmock.AnyArg(), "TX-9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders").
		WithArgs("FAILED", sqlmock.AnyArg(), "TX-9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performJSON(r, http.MethodPost, "/api/order/confirm-payment",
		`{"transactionId": "TX-9", "status": "FAILED"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paymentStatus":"FAILED"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPaymentUnknownStatusIs400(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := orderRouter(h)

	w := performJSON(r, http.MethodPost, "/api/order/confirm-payment",
		`{"transactionId": "TX-9", "status": "PAID_MAYBE"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// fakeProvider stands in for the Kkiapay verification endpoint, answering
// every status lookup with the given result.
func fakeProvider(t *testing.T, status string, amount float64) *payment.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transactionId": "TX-9",
			"status":        status,
			"amount":        amount,
		})
	}))
	t.Cleanup(srv.Close)
	return payment.NewClient(srv.URL, "sk_test_123")
}

// With verification enabled the provider's amount must equal the stored
// order total; a mismatch stops the reconciliation before any write.
func TestConfirmPaymentVerifiedAmountMismatchIs409(t *testing.T) {
	h, mock := newTestHandlers(t)
	h.Payments = fakeProvider(t, "SUCCESS", 999.0)
	r := orderRouter(h)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, total_amount FROM orders").
		WithArgs("TX-9").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total_amount"}).AddRow(int64(7), 4000.0))
	mock.ExpectRollback()

	w := performJSON(r, http.MethodPost, "/api/order/confirm-payment",
		`{"transactionId": "TX-9", "status": "SUCCESS", "amount": 4000}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// The provider's reported status overrides whatever the client claims.
func TestConfirmPaymentProviderStatusWins(t *testing.T) {
	h, mock := newTestHandlers(t)
	h.Payments = fakeProvider(t, "FAILED", 4000.0)
	r := orderRouter(h)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, total_amount FROM orders").
		WithArgs("TX-9").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "total_amount"}).AddRow(int64(7), 4000.0))
	mock.ExpectExec("UPDATE payments").
		WithArgs("FAILED", nil, sqlmock.AnyArg(), "TX-9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders").
		WithArgs("FAILED", sqlmock.AnyArg(), "TX-9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performJSON(r, http.MethodPost, "/api/order/confirm-payment",
		`{"transactionId": "TX-9", "status": "SUCCESS"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paymentStatus":"FAILED"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmPaymentUnknownOrderIs404(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := orderRouter(h)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT user_id, total_amount FROM orders").
		WithArgs("TX-404").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	w := performJSON(r, http.MethodPost, "/api/order/confirm-payment",
		`{"transactionId": "TX-404", "status": "SUCCESS"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

//
// --- Admin Order Operations ---
//

func adminOrderRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	grp := r.Group("/api/admin", asUser(1, models.RoleAdmin))
	grp.POST("/order-status", h.SetOrderStatus)
	grp.DELETE("/orders/:orderId", h.DeleteOrder)
	return r
}

func TestSetOrderStatus(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := adminOrderRouter(h)

	mock.ExpectQuery("SELECT 1 FROM orders").
		WithArgs("TX-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("SHIPPED", sqlmock.AnyArg(), "TX-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := performJSON(r, http.MethodPost, "/api/admin/order-status",
		`{"orderId": "TX-1", "status": "SHIPPED"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetOrderStatusUnknownStatusIs400(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := adminOrderRouter(h)

	w := performJSON(r, http.MethodPost, "/api/admin/order-status",
		`{"orderId": "TX-1", "status": "TELEPORTED"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetOrderStatusUnknownOrderIs404(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := adminOrderRouter(h)

	mock.ExpectQuery("SELECT 1 FROM orders").
		WithArgs("TX-NOPE").
		WillReturnError(sql.ErrNoRows)

	w := performJSON(r, http.MethodPost, "/api/admin/order-status",
		`{"orderId": "TX-NOPE", "status": "SHIPPED"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Items, payment, and the order row go together or not at all.
func TestDeleteOrderCascades(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := adminOrderRouter(h)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM order_items").
		WithArgs("TX-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM payments").
		WithArgs("TX-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM orders").
		WithArgs("TX-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := performJSON(r, http.MethodDelete, "/api/admin/orders/TX-1", "")

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOrderNotFoundRollsBack(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := adminOrderRouter(h)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM order_items").
		WithArgs("TX-GONE").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM payments").
		WithArgs("TX-GONE").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM orders").
		WithArgs("TX-GONE").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	w := performJSON(r, http.MethodDelete, "/api/admin/orders/TX-GONE", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
