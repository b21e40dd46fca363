package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a product or category id (or name) does not exist.
var ErrNotFound = errors.New("not found")

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	// ErrCategoryNotFound is returned when a category is not found.
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)

	ErrDuplicateName     = errors.New("name already exists")
	ErrInvalidCategory   = errors.New("category does not exist")
	ErrCategoryNotEmpty  = errors.New("category still has products")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidPrice      = errors.New("invalid price")
	ErrInvalidName       = errors.New("name must not be empty")

	// ErrConflict reports a concurrent write that lost a race (serialization
	// failure, deadlock). The caller may retry the whole operation.
	ErrConflict = errors.New("concurrent update conflict")
)

const (
	pgUniqueViolation        = "23505"
	pgForeignKeyViolation    = "23503"
	pgCheckViolation         = "23514"
	pgSerializationFailure   = "40001"
	pgDeadlockDetected       = "40P01"
	pgLockNotAvailable       = "55P03"
	sqliteUniqueFailedPrefix = "unique constraint failed"
	sqliteFKFailedPrefix     = "foreign key constraint failed"
	sqliteCheckFailedPrefix  = "check constraint failed"
)

// driverCode extracts the SQLSTATE of a postgres error raised by either pgx or lib/pq.
func driverCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.TrimSpace(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || driverCode(err) == pgUniqueViolation {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), sqliteUniqueFailedPrefix)
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) || driverCode(err) == pgForeignKeyViolation {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), sqliteFKFailedPrefix)
}

func isCheckViolation(err error) bool {
	if driverCode(err) == pgCheckViolation {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), sqliteCheckFailedPrefix)
}

func isConflict(err error) bool {
	switch driverCode(err) {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "deadlock")
}

// translateError maps driver and gorm failures onto the package sentinels.
// Errors that are already classified, or unknown, pass through wrapped with op.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w: %w", op, ErrDuplicateName, err)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidCategory, err)
	case isCheckViolation(err):
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidQuantity, err)
	case isConflict(err):
		return fmt.Errorf("%s: %w: %w", op, ErrConflict, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
