package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"zing_pool/internal/apperr"
)

// SQLSTATE codes the store maps onto business outcomes.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeNotNullViolation     = "23502"
	codeCheckViolation       = "23514"
	codeInvalidText          = "22P02"
	codeInvalidParameter     = "22023"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeNoDataFound          = "P0002"
)

// classify turns a driver or procedure error into an *apperr.Error.
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apperr.Wrap(apperr.Unknown, "store timeout", err)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Wrap(apperr.NotFound, "not found", err)
	}

	if code := sqlState(err); code != "" {
		switch code {
		case codeUniqueViolation, codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return apperr.Wrap(apperr.Conflict, "conflicting update", err)
		case codeForeignKeyViolation, codeNoDataFound:
			return apperr.Wrap(apperr.NotFound, "referenced row not found", err)
		case codeInvalidText, codeNotNullViolation, codeCheckViolation, codeInvalidParameter:
			return apperr.Wrap(apperr.Validation, "invalid input", err)
		}
	}

	// Stored procedures raise plain exceptions; match on their text.
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already accepted"):
		return apperr.Wrap(apperr.Conflict, "booking already accepted", err)
	case strings.Contains(msg, "already processed"):
		return apperr.Wrap(apperr.Conflict, "payment request already processed", err)
	case strings.Contains(msg, "not cancellable"):
		return apperr.Wrap(apperr.Conflict, "booking not cancellable", err)
	case strings.Contains(msg, "not eligible"):
		return apperr.Wrap(apperr.Forbidden, procedureMessage(err), err)
	case strings.Contains(msg, "unauthorized"):
		return apperr.Wrap(apperr.Forbidden, "unauthorized", err)
	case strings.Contains(msg, "not found"):
		return apperr.Wrap(apperr.NotFound, "not found", err)
	}

	return apperr.Wrap(apperr.Unknown, "store failure", err)
}

func sqlState(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// procedureMessage keeps the specific reason from a raised exception.
func procedureMessage(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Message
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Message
	}
	return err.Error()
}
