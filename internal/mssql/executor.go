// internal/mssql/executor.go
package mssql

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/askdba/sqlserver-perf-mcp-server/internal/util"
)

// Row is one query result record, keyed by column name.
type Row map[string]interface{}

// Response is the envelope returned for every template execution.
// Success == (Error == "") == (ExecutedSQL != "") and RowCount == len(Data)
// hold for every response.
type Response struct {
	Success       bool                   `json:"success"`
	Data          []Row                  `json:"data"`
	RowCount      int                    `json:"row_count"`
	ExecutedSQL   string                 `json:"executed_sql,omitempty"`
	Template      string                 `json:"template"`
	Substitutions map[string]interface{} `json:"substitutions"`
	Timestamp     string                 `json:"timestamp"`
	Error         string                 `json:"error,omitempty"`
}

// Executor runs {{name}}-style SQL templates against SQL Server.
// Every execution opens its own connection via the Connector and closes it
// before returning; the executor holds no state across calls.
type Executor struct {
	connector Connector
}

func NewExecutor(connector Connector) *Executor {
	return &Executor{connector: connector}
}

var placeholderRegex = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Substitute replaces every {{name}} placeholder in template with the
// rendered value from substitutions. String values get embedded single
// quotes doubled before insertion; other scalars use their default string
// form. Keys without a matching placeholder are ignored. If any placeholder
// has no value, a *TemplateError naming the full missing set is returned.
func Substitute(template string, substitutions map[string]interface{}) (string, error) {
	matches := placeholderRegex.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return template, nil
	}

	seen := make(map[string]bool, len(matches))
	var missing []string
	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		if _, ok := substitutions[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", &TemplateError{Missing: missing}
	}

	// Sorted key order keeps repeated calls byte-identical. Replacements
	// target disjoint tokens, so order only matters in the pathological
	// case where a substituted value itself contains a placeholder token;
	// that behavior is deliberately left as-is.
	keys := make([]string, 0, len(substitutions))
	for k := range substitutions {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := template
	for _, k := range keys {
		placeholder := "{{" + k + "}}"
		result = strings.ReplaceAll(result, placeholder, renderValue(substitutions[k]))
	}
	return result, nil
}

// renderValue converts a substitution value to its SQL literal text.
func renderValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		// Double single quotes so the value is safe inside a quoted literal.
		return strings.ReplaceAll(x, "'", "''")
	case nil:
		return "NULL"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// ExecuteSQL runs a single literal SQL statement on a fresh connection and
// returns the full result set. Any connect, execute, or fetch failure is
// reported as a *ExecutionError wrapping the cause.
func (e *Executor) ExecuteSQL(ctx context.Context, sqlText string) ([]Row, error) {
	db, err := e.connector.Open()
	if err != nil {
		return nil, newExecutionError(err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, newExecutionError(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, newExecutionError(err)
	}

	results := []Row{}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, newExecutionError(err)
		}

		row := Row{}
		for i, v := range values {
			row[columnName(cols, i)] = util.NormalizeValue(v)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, newExecutionError(err)
	}
	return results, nil
}

// columnName returns the reported column name, or a positional fallback
// when the descriptor has no name for that index.
func columnName(cols []string, i int) string {
	if i < len(cols) && cols[i] != "" {
		return cols[i]
	}
	return fmt.Sprintf("column_%d", i)
}

// ExecuteTemplate substitutes and executes a SQL template, capturing every
// failure into the response envelope. It never returns an error: template
// and execution failures produce a failure response, and anything
// unexpected is caught the same way.
func (e *Executor) ExecuteTemplate(ctx context.Context, template string, substitutions map[string]interface{}) (resp Response) {
	if substitutions == nil {
		substitutions = map[string]interface{}{}
	}

	defer func() {
		if r := recover(); r != nil {
			resp = failureResponse(template, substitutions,
				fmt.Sprintf("unexpected error during template execution: %v", r))
		}
	}()

	sqlText, err := Substitute(template, substitutions)
	if err != nil {
		return failureResponse(template, substitutions, err.Error())
	}

	results, err := e.ExecuteSQL(ctx, sqlText)
	if err != nil {
		// The failed SQL is deliberately not echoed back; only the
		// success response carries executed_sql.
		return failureResponse(template, substitutions, err.Error())
	}

	return Response{
		Success:       true,
		Data:          results,
		RowCount:      len(results),
		ExecutedSQL:   sqlText,
		Template:      template,
		Substitutions: substitutions,
		Timestamp:     utcTimestamp(),
	}
}

func failureResponse(template string, substitutions map[string]interface{}, errMsg string) Response {
	return Response{
		Success:       false,
		Data:          []Row{},
		RowCount:      0,
		Template:      template,
		Substitutions: substitutions,
		Timestamp:     utcTimestamp(),
		Error:         errMsg,
	}
}

// utcTimestamp formats the current UTC time as ISO-8601 with a Z suffix.
func utcTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
