package handlers

import (
	"net/http"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/Johnny2306/plawimadd-group-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func categoryRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.GET("/api/categories", h.GetAllCategories)
	admin := r.Group("/api", asUser(1, models.RoleAdmin))
	admin.POST("/categories", h.CreateCategory)
	admin.DELETE("/categories/:id", h.DeleteCategory)
	return r
}

func TestGetAllCategoriesEmptyCatalog(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := categoryRouter(h)

	mock.ExpectQuery("SELECT id, name, slug, description, image_url, created_at, updated_at FROM categories").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "description", "image_url", "created_at", "updated_at"}))

	w := performJSON(r, http.MethodGet, "/api/categories", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"categories": []}`, w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCategorySlugsTheName(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := categoryRouter(h)

	mock.ExpectExec("INSERT INTO categories").
		WithArgs("Téléphones & Tablettes", "telephones-tablettes", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(3, 1))

	w := performJSON(r, http.MethodPost, "/api/categories", `{"name": "Téléphones & Tablettes"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"telephones-tablettes"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCategoryDuplicateNameIs409(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := categoryRouter(h)

	mock.ExpectExec("INSERT INTO categories").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	w := performJSON(r, http.MethodPost, "/api/categories", `{"name": "Ordinateurs"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategoryReferencedByProductsIs409(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := categoryRouter(h)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs("5").
		WillReturnError(&mysql.MySQLError{Number: 1451, Message: "Cannot delete or update a parent row"})

	w := performJSON(r, http.MethodDelete, "/api/categories/5", "")

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCategoryNotFound(t *testing.T) {
	h, mock := newTestHandlers(t)
	r := categoryRouter(h)

	mock.ExpectExec("DELETE FROM categories").
		WithArgs("99").
		WillReturnResult(sqlmock.NewResult(0, 0))

	w := performJSON(r, http.MethodDelete, "/api/categories/99", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
