package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/Johnny2306/plawimadd-group-api/internal/auth"
	"github.com/Johnny2306/plawimadd-group-api/internal/config"
	"github.com/Johnny2306/plawimadd-group-api/internal/email"
	"github.com/Johnny2306/plawimadd-group-api/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	auth.SetSecret("handlers-test-secret")
}

// newTestHandlers wires a Handlers instance against a sqlmock database.
// The mailer runs in log-only mode so no SMTP connection is attempted.
func newTestHandlers(t *testing.T) (*Handlers, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := &Handlers{
		DB: db,
		Cfg: &config.Config{
			BaseURL:      "http://localhost:8080",
			ContactEmail: "contact@plawimadd.test",
		},
		Mailer: email.New("", "", "", "", "no-reply@plawimadd.test"),
	}
	return h, mock
}

// testTime is a fixed timestamp for rows fed through sqlmock.
func testTime() time.Time {
	return time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
}

// asUser injects session claims the way RequireAuth would, so handlers can
// be exercised without real tokens.
func asUser(userID int64, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, userID)
		c.Set(middleware.CtxUserRole, role)
		c.Next()
	}
}

func performJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
