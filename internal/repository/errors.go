package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
	// ErrInvalidParent is returned when a parent reference does not name a
	// folder owned by the same user.
	ErrInvalidParent = errors.New("invalid parent folder")
)

// Models lists every persisted model for schema migration.
func Models() []interface{} {
	return []interface{}{&userModel{}, &fileModel{}}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pg *pgconn.PgError
	if errors.As(err, &pg) && pg.Code == "23505" {
		return true
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlitelib.SQLITE_CONSTRAINT_UNIQUE, sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlitelib.SQLITE_CONSTRAINT:
			// primary result code without the extended constraint kind
			return strings.Contains(se.Error(), "UNIQUE")
		}
	}
	return false
}
