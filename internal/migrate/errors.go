package migrate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSourceNotFound is returned when the legacy database does not exist. It is
// reported before the destination is touched.
var ErrSourceNotFound = errors.New("migrate: source database not found")

// SourceNotFoundError carries the missing source path.
type SourceNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("old database not found at %s", e.Path)
}

// Is reports whether target is ErrSourceNotFound.
func (e *SourceNotFoundError) Is(target error) bool {
	return target == ErrSourceNotFound
}

// VerifyError lists the problems found by Verify.
type VerifyError struct {
	Problems []string
}

// Error implements the error interface.
func (e *VerifyError) Error() string {
	if len(e.Problems) == 1 {
		return "verification failed: " + e.Problems[0]
	}
	return fmt.Sprintf("verification failed with %d problems: %s", len(e.Problems), strings.Join(e.Problems, "; "))
}
