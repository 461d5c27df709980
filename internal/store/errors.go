package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/horiachyir/sindipro-backend/internal/units"
)

// ErrNotFound is returned when a lookup matches no row visible to the caller.
var ErrNotFound = units.ErrNotFound

// PostgreSQL SQLSTATE codes the unit writer distinguishes.
const (
	codeStringTooLong       = "22001"
	codeCharNotInRepertoire = "22021"
	codeUntranslatable      = "22P05"
	codeUniqueViolation     = "23505"
)

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// writeError tags driver failures with the units sentinels so callers can
// classify them without knowing about pgconn.
func writeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeStringTooLong:
			return fmt.Errorf("%s: %w: %w", op, units.ErrFieldTooLong, err)
		case codeCharNotInRepertoire, codeUntranslatable:
			return fmt.Errorf("%s: %w: %w", op, units.ErrEncoding, err)
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w: %w", op, units.ErrDuplicateKey, err)
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
