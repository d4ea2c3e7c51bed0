package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/genomic-reports/internal/domain"
)

// MapError converts pgx/pgconn errors to domain errors. op names the
// failing operation, e.g. "reports 12" or "commit transaction".
// context.DeadlineExceeded and context.Canceled are NOT mapped; they pass through.
func MapError(err error, op string) error {
	if err == nil {
		return nil
	}

	// context errors pass through as-is
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}

	// pgx.ErrNoRows → domain.ErrNotFound
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return &domain.ConflictError{Kind: domain.ErrDuplicateKey, Table: pgErr.TableName, Scope: pgErr.ConstraintName}
		case "23P01": // exclusion_violation
			return &domain.ConflictError{Kind: domain.ErrRankConflict, Table: pgErr.TableName, Scope: pgErr.ConstraintName}
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrNotFound)
		case "23514", "23502": // check_violation, not_null_violation
			return domain.NewValidationError(violationField(pgErr), pgErr.Message)
		case "22001", "22P02", "22003": // string too long, invalid text, out of range
			return domain.NewValidationError(violationField(pgErr), pgErr.Message)
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return &domain.StorageError{Op: op, Err: err}
		}
		switch {
		case strings.HasPrefix(pgErr.Code, "08"), // connection exception
			strings.HasPrefix(pgErr.Code, "53"), // insufficient resources
			strings.HasPrefix(pgErr.Code, "57P"): // operator intervention
			return &domain.StorageError{Op: op, Err: err}
		}
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) {
		return &domain.StorageError{Op: op, Err: err}
	}

	// Everything else: wrap with context
	return fmt.Errorf("%s: %w", op, err)
}

func violationField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	if pgErr.ConstraintName != "" {
		return pgErr.ConstraintName
	}
	return "record"
}
