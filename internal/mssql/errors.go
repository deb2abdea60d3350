// internal/mssql/errors.go
package mssql

import (
	"fmt"
	"sort"
	"strings"
)

// TemplateError reports a template that cannot be substituted, typically
// because one or more placeholders have no supplied value.
type TemplateError struct {
	Missing []string
}

func (e *TemplateError) Error() string {
	if len(e.Missing) == 0 {
		return "template substitution failed"
	}
	missing := make([]string, len(e.Missing))
	copy(missing, e.Missing)
	sort.Strings(missing)
	return fmt.Sprintf("missing substitution variables: %s", strings.Join(missing, ", "))
}

// ExecutionError wraps a failure during connect, execute, or row fetch.
type ExecutionError struct {
	cause error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("SQL execution failed: %v", e.cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.cause
}

func newExecutionError(cause error) *ExecutionError {
	return &ExecutionError{cause: cause}
}
