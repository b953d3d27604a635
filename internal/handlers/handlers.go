package handlers

import (
	"database/sql"
	"errors"

	"github.com/Johnny2306/plawimadd-group-api/internal/config"
	"github.com/Johnny2306/plawimadd-group-api/internal/email"
	"github.com/Johnny2306/plawimadd-group-api/internal/payment"
	"github.com/go-sql-driver/mysql"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB     *sql.DB
	Cfg    *config.Config
	Mailer *email.Mailer

	// Payments is nil when no Kkiapay private key is configured; the
	// reconciliation path then trusts the widget-reported result.
	Payments *payment.Client
}

// MySQL server error numbers we branch on.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrRowIsReferenced = 1451
	mysqlErrNoReferencedRow = 1452
)

// isMySQLError reports whether err is a MySQL server error with the given number.
func isMySQLError(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}
