package cmd

import (
	"context"
	"fmt"

	benchErrors "github.com/Iron-Ham/eigenbench/internal/errors"
)

// ErrorMessage renders a failed command for stderr. Compute and allocation
// failures keep their task index and status; errors that are not meant for
// users are marked as unexpected.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case benchErrors.Is(err, context.Canceled):
		return "interrupted"
	case benchErrors.IsFatal(err):
		return fmt.Sprintf("run aborted (%s): %v", benchErrors.GetSeverity(err), err)
	case benchErrors.IsUserFacing(err), benchErrors.Is(err, benchErrors.ErrInvalidInput):
		return err.Error()
	default:
		return fmt.Sprintf("unexpected error: %v", err)
	}
}
