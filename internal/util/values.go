// internal/util/values.go
package util

import "time"

// NormalizeValue converts a raw database value into something JSON-friendly.
func NormalizeValue(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}

// TruncateQuery truncates a query string to maxLen characters.
func TruncateQuery(query string, maxLen int) string {
	if len(query) <= maxLen {
		return query
	}
	return query[:maxLen] + "..."
}
