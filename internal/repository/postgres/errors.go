package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsPgDuplicateError checks if error is a unique constraint violation
func IsPgDuplicateError(err error) bool { return pgCode(err) == "23505" }

// IsPgNoRowsError checks if error is a "no rows" error
func IsPgNoRowsError(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// IsPgForeignKeyError checks if error is a foreign key violation
func IsPgForeignKeyError(err error) bool { return pgCode(err) == "23503" }

// IsPgInvalidTextError reports a value that does not parse as the column
// type, such as a malformed UUID in a lookup.
func IsPgInvalidTextError(err error) bool { return pgCode(err) == "22P02" }
