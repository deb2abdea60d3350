// internal/util/identifiers_test.go
package util

import (
	"strings"
	"testing"
)

func TestValidateIdent(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantError bool
	}{
		{"valid simple", "Users", false},
		{"valid with underscore", "user_accounts", false},
		{"valid with numbers", "table123", false},
		{"valid with space", "Order Details", false},
		{"empty string", "", true},
		{"contains open bracket", "Users[", true},
		{"contains close bracket", "Users]drop", true},
		{"contains semicolon", "Users;", true},
		{"contains single quote", "Users'--", true},
		{"contains double quote", `Users"`, true},
		{"contains backslash", "Users\\table", true},
		{"contains newline", "Users\ntable", true},
		{"too long", strings.Repeat("a", 129), true},
		{"max length (128)", strings.Repeat("a", 128), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdent(tt.input)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateIdent(%q) error = %v, wantError %v", tt.input, err, tt.wantError)
			}
		})
	}
}
