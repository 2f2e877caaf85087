package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/example/tivoli-tools/internal/persistence"
)

// ErrLocked indicates the database stayed locked past the busy timeout.
var ErrLocked = errors.New("database is locked")

// DatabaseError wraps database-related errors with the table and statement involved
type DatabaseError struct {
	Table     string // Table being written or read (if applicable)
	Query     string // SQL statement that failed (if applicable)
	Operation string // Database operation (insert, query, etc.)
	Err       error  // Underlying error
}

// Error implements the error interface
func (e *DatabaseError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("database error on %s during %s: %v", e.Table, e.Operation, e.Err)
	}
	return fmt.Sprintf("database error during %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error
func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// NewDatabaseError creates a new DatabaseError. The underlying error is passed
// through MapError so callers can match persistence sentinels with errors.Is.
func NewDatabaseError(table, query, operation string, err error) *DatabaseError {
	return &DatabaseError{
		Table:     table,
		Query:     query,
		Operation: operation,
		Err:       MapError(err),
	}
}

// MapError maps SQLite-specific errors to persistence layer errors
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", persistence.ErrNotFound, err)
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrDuplicate, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %v", persistence.ErrForeignKey, err)
	case strings.Contains(msg, "database is locked"), strings.Contains(msg, "SQLITE_BUSY"):
		return fmt.Errorf("%w: %v", ErrLocked, err)
	}

	return err
}

// TransactionFunc represents a function that executes within a transaction
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction executes fn within a transaction. If fn returns an error the
// transaction is rolled back, otherwise it is committed.
func WithTransaction(ctx context.Context, db *sql.DB, fn TransactionFunc) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return NewDatabaseError("", "", "begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return NewDatabaseError("", "", "commit transaction", err)
	}

	return nil
}
