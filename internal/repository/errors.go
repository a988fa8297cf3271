package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"pulse/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// translateError maps a store failure onto the engine's closed error set.
// AppErrors pass through untouched so callers can return domain errors from
// inside a transaction.
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	wrapped := fmt.Errorf("%s: %w", op, err)

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundMessage("record not found")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.NewConflictError("resource already exists", wrapped)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return models.NewNotFoundMessage("referenced record does not exist")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, driver.ErrBadConn):
		return models.NewTransientError(wrapped)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := strings.TrimSpace(pgErr.Code)
		switch {
		case code == "23505": // unique_violation
			return models.NewConflictError("resource already exists", wrapped)
		case code == "23503": // foreign_key_violation
			return models.NewNotFoundMessage("referenced record does not exist")
		case code == "23514": // check_violation
			return models.NewValidationError("request violates a data constraint")
		case code == "40001", code == "40P01", code == "55P03", code == "57014", code == "53300":
			return models.NewTransientError(wrapped)
		case strings.HasPrefix(code, "08"): // connection_exception class
			return models.NewTransientError(wrapped)
		}
	}
	if pgconn.Timeout(err) {
		return models.NewTransientError(wrapped)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.NewTransientError(wrapped)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate key"):
		return models.NewConflictError("resource already exists", wrapped)
	case strings.Contains(msg, "check constraint"):
		return models.NewValidationError("request violates a data constraint")
	case strings.Contains(msg, "foreign key constraint"):
		return models.NewNotFoundMessage("referenced record does not exist")
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"):
		return models.NewTransientError(wrapped)
	}
	return models.NewInternalError(wrapped)
}

func notFound(resource string, id interface{}, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return translateError("load "+strings.ToLower(resource), err)
}
