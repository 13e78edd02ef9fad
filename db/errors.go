package db

import (
	"errors"
	"strings"

	"Gin_postgres_redis_av_lending/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrItemUnavailable = errors.New("item is not available")
	ErrHasLoans        = errors.New("record has associated loans")
	ErrItemInUse       = errors.New("item has associated loans or is on loan")
)

const sqliteUnique = "UNIQUE constraint failed: "

// IsUniqueViolation reports whether err is a unique-constraint violation and,
// when the driver tells us, which column tripped it.
func IsUniqueViolation(err error) (column string, ok bool) {
	if err == nil {
		return "", false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return columnFromConstraint(pgErr.ConstraintName), true
	}
	msg := err.Error()
	if i := strings.Index(msg, sqliteUnique); i >= 0 {
		rest := msg[i+len(sqliteUnique):]
		if j := strings.IndexAny(rest, ", "); j >= 0 {
			rest = rest[:j]
		}
		if dot := strings.LastIndex(rest, "."); dot >= 0 {
			rest = rest[dot+1:]
		}
		return rest, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(msg, "duplicate key value") {
		return "", true
	}
	return "", false
}

// gorm uniqueIndex 默认命名 idx_<table>_<column>
func columnFromConstraint(name string) string {
	if name == OpenLoanIndex {
		return "item_id"
	}
	for _, t := range []string{models.ItemTable, models.PersonTable, models.UserTable, models.LoanTable} {
		if p := "idx_" + t + "_"; strings.HasPrefix(name, p) {
			return strings.TrimPrefix(name, p)
		}
	}
	return name
}
