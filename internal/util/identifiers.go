// internal/util/identifiers.go
package util

import (
	"fmt"
	"strings"
)

// ValidateIdent checks that a name is safe to substitute into a bracketed
// T-SQL identifier position, returning an error if the name contains
// characters that could break out of the brackets.
func ValidateIdent(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if strings.ContainsAny(name, "[]`'\";\\\t\n\r") {
		return fmt.Errorf("identifier contains invalid characters: %q", name)
	}
	// SQL Server limits identifiers to 128 characters
	if len(name) > 128 {
		return fmt.Errorf("identifier too long: %d characters (max 128)", len(name))
	}
	return nil
}
