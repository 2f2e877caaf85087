package migrate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/tivoli-tools/internal/logging"
	"github.com/example/tivoli-tools/internal/persistence"
	"github.com/example/tivoli-tools/internal/persistence/sqlite"
)

func componentLogger(ctx context.Context, base *slog.Logger, component string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"component", component}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps migration errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrSourceNotFound):
		return "source_not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, sqlite.ErrLocked):
		return "locked"
	case errors.Is(err, persistence.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, persistence.ErrForeignKey):
		return "foreign_key"
	}

	var dbErr *sqlite.DatabaseError
	if errors.As(err, &dbErr) {
		return "database"
	}

	var vErr *VerifyError
	if errors.As(err, &vErr) {
		return "verification"
	}

	return "unexpected"
}
