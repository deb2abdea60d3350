// cmd/sqlserver-perf-mcp-server/logging.go
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/askdba/sqlserver-perf-mcp-server/internal/util"
)

// logQueryMaxLen bounds SQL text embedded in log fields.
const logQueryMaxLen = 200

func truncateForLog(query string) string {
	return util.TruncateQuery(query, logQueryMaxLen)
}

// ===== Structured Logging =====

// LogEntry is one structured log line. Stderr carries all logs so the MCP
// stdio transport keeps stdout to itself.
type LogEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func logJSON(level, message string, fields map[string]interface{}) {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level,
		Message:   message,
		Fields:    fields,
	}
	if jsonLogging {
		data, _ := json.Marshal(entry)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if len(fields) > 0 {
			log.Printf("[%s] %s %v", level, message, fields)
		} else {
			log.Printf("[%s] %s", level, message)
		}
	}
}

func logInfo(message string, fields map[string]interface{}) {
	logJSON("INFO", message, fields)
}

func logWarn(message string, fields map[string]interface{}) {
	logJSON("WARN", message, fields)
}

func logError(message string, fields map[string]interface{}) {
	logJSON("ERROR", message, fields)
}

// ===== Audit Logging =====

// AuditEntry is one audit record for a tool execution.
type AuditEntry struct {
	Timestamp    string `json:"timestamp"`
	Tool         string `json:"tool"`
	Query        string `json:"query,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
	RowCount     int    `json:"row_count,omitempty"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
}

// AuditLogger appends JSON lines to a file. A zero path disables it.
type AuditLogger struct {
	file    *os.File
	mu      sync.Mutex
	enabled bool
}

func NewAuditLogger(path string) (*AuditLogger, error) {
	if path == "" {
		return &AuditLogger{enabled: false}, nil
	}
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path comes from the trusted MSSQL_MCP_AUDIT_LOG variable
	f, err := os.OpenFile(cleanPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &AuditLogger{file: f, enabled: true}, nil
}

// Log writes an audit entry, stamping it with the current UTC time.
func (a *AuditLogger) Log(entry *AuditEntry) {
	if !a.enabled {
		return
	}
	entry.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	a.mu.Lock()
	defer a.mu.Unlock()
	data, _ := json.Marshal(entry)
	_, _ = a.file.WriteString(string(data) + "\n")
}

func (a *AuditLogger) Close() {
	if a.file != nil {
		a.file.Close()
	}
}

// ===== Query Timing Helper =====

// QueryTimer tracks tool execution time and provides logging helpers.
type QueryTimer struct {
	start time.Time
	tool  string
}

func NewQueryTimer(tool string) *QueryTimer {
	return &QueryTimer{start: time.Now(), tool: tool}
}

func (t *QueryTimer) Elapsed() time.Duration {
	return time.Since(t.start)
}

func (t *QueryTimer) ElapsedMs() int64 {
	return t.Elapsed().Milliseconds()
}

// LogSuccess logs a successful execution with its row count and, when
// available, the executed SQL (truncated).
func (t *QueryTimer) LogSuccess(rowCount int, query string) {
	fields := map[string]interface{}{
		"tool":        t.tool,
		"duration_ms": t.ElapsedMs(),
		"row_count":   rowCount,
	}
	if query != "" {
		fields["query"] = truncateForLog(query)
	}
	logInfo("query executed", fields)
}

// LogError logs a failed execution.
func (t *QueryTimer) LogError(errMsg, query string) {
	fields := map[string]interface{}{
		"tool":        t.tool,
		"duration_ms": t.ElapsedMs(),
		"error":       errMsg,
	}
	if query != "" {
		fields["query"] = truncateForLog(query)
	}
	logError("query failed", fields)
}
