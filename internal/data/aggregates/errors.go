package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/doccontrol-backend/internal/domain/aggregates"
)

// Postgres SQLSTATEs the workflow cares about.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgSerializationFail   = "40001"
	pgDeadlockDetected    = "40P01"
	pgLockNotAvailable    = "55P03"
	pgQueryCanceled       = "57014"
)

// MapError turns whatever a workflow transaction returned into a coded error.
// Errors that already carry a workflow code pass through untouched, so a
// rule rejection raised inside the transaction keeps its code and reason.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}
	if code, ok := storeErrorCode(err); ok {
		return domainagg.Wrap(code, op, err)
	}
	return domainagg.Wrap(domainagg.CodeInternal, op, err)
}

func storeErrorCode(err error) (domainagg.ErrorCode, bool) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.CodeNotFound, true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.CodeRetryable, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case pgUniqueViolation:
			return domainagg.CodeConflict, true
		case pgForeignKeyViolation:
			return domainagg.CodePreconditionFailed, true
		case pgSerializationFail, pgDeadlockDetected, pgLockNotAvailable, pgQueryCanceled:
			return domainagg.CodeRetryable, true
		}
		return "", false
	}

	// SQLite (tests, local runs) only reports through the message text.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "sqlite_busy"):
		return domainagg.CodeRetryable, true
	case strings.Contains(msg, "unique constraint failed"):
		return domainagg.CodeConflict, true
	case strings.Contains(msg, "foreign key constraint failed"):
		return domainagg.CodePreconditionFailed, true
	}
	return "", false
}
