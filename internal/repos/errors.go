package repos

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"autosalon/internal/domain"
)

const pgUniqueViolation = "23505"

// storeErr maps a driver error onto the domain taxonomy and prefixes op.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	if col, ok := uniqueColumn(err); ok {
		switch col {
		case "email":
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicateEmail)
		case "username":
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicateUsername)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

// uniqueColumn reports the users column whose unique constraint err violated.
func uniqueColumn(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		switch pgErr.ConstraintName {
		case "users_email_key":
			return "email", true
		case "users_username_key":
			return "username", true
		}
		return pgErr.ColumnName, true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code != sqlite3.SQLITE_CONSTRAINT_UNIQUE && code != sqlite3.SQLITE_CONSTRAINT {
			return "", false
		}
		// "UNIQUE constraint failed: users.email"
		msg := liteErr.Error()
		switch {
		case strings.Contains(msg, "users.email"):
			return "email", true
		case strings.Contains(msg, "users.username"):
			return "username", true
		}
		return "", true
	}
	return "", false
}

func rowsAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
