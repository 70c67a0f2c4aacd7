// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"posterr/internal/database"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	dialectPostgres = "postgres"
	dialectMySQL    = "mysql"
	dialectSQLite   = "sqlite"
)

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

// isUniqueViolation recognizes duplicate-key failures whether or not gorm
// translated the driver error.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// containsClause returns a case-sensitive substring predicate on
// posts.content. LIKE is avoided because its case rules and wildcard
// escaping differ between engines.
func containsClause(dialect string) string {
	switch dialect {
	case dialectSQLite:
		return "instr(posts.content, ?) > 0"
	case dialectMySQL:
		return "LOCATE(?, posts.content COLLATE utf8mb4_bin) > 0"
	default:
		return "strpos(posts.content, ?) > 0"
	}
}
