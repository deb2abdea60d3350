// cmd/sqlserver-perf-mcp-server/tools.go
package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/askdba/sqlserver-perf-mcp-server/internal/mssql"
	"github.com/askdba/sqlserver-perf-mcp-server/internal/util"
)

const serverName = "SQL Server Performance MCP Server"

// utcTimestamp formats the current UTC time as ISO-8601 with a Z suffix.
func utcTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// runTemplate executes a SQL template through the shared executor with the
// configured query timeout, logs the outcome, and writes an audit entry.
// Results beyond the configured row cap are dropped.
func runTemplate(ctx context.Context, tool, template string, subs map[string]interface{}) mssql.Response {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	timer := NewQueryTimer(tool)
	resp := executor.ExecuteTemplate(ctx, template, subs)

	if maxRows > 0 && len(resp.Data) > maxRows {
		resp.Data = resp.Data[:maxRows]
		resp.RowCount = len(resp.Data)
	}

	if resp.Success {
		timer.LogSuccess(resp.RowCount, resp.ExecutedSQL)
	} else {
		timer.LogError(resp.Error, resp.ExecutedSQL)
	}

	auditLogger.Log(&AuditEntry{
		Tool:       tool,
		Query:      truncateForLog(resp.ExecutedSQL),
		DurationMs: timer.ElapsedMs(),
		RowCount:   resp.RowCount,
		Success:    resp.Success,
		Error:      resp.Error,
	})

	return resp
}

// rowString extracts a string field from a result row, tolerating NULL.
func rowString(row mssql.Row, key string) string {
	if v, ok := row[key]; ok && v != nil {
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
	return "Unknown"
}

// ===== Core Tool Handlers =====

func toolVersion(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input VersionInput,
) (*mcp.CallToolResult, VersionOutput, error) {

	return nil, VersionOutput{
		Message:    fmt.Sprintf("%s version %s.", serverName, Version),
		ServerName: serverName,
		Version:    Version,
		Timestamp:  utcTimestamp(),
		Tool:       "version",
		Success:    true,
	}, nil
}

func toolDatabaseConnection(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input DatabaseConnectionInput,
) (*mcp.CallToolResult, DatabaseConnectionOutput, error) {

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := executor.ExecuteSQL(ctx, databaseConnectionQuery)
	if err != nil {
		return nil, DatabaseConnectionOutput{
			Message:          fmt.Sprintf("Database connection failed: %v", err),
			ConnectionStatus: "failed",
			Timestamp:        utcTimestamp(),
			Tool:             "database_connection",
			Error:            err.Error(),
		}, nil
	}

	out := DatabaseConnectionOutput{
		ConnectionStatus: "connected",
		Timestamp:        utcTimestamp(),
		Tool:             "database_connection",
		Success:          true,
	}

	if len(rows) == 0 {
		out.Message = "Database connection successful but no version information available"
		out.DatabaseInfo = &DatabaseInfo{
			ProductName:    "Unknown",
			ProductVersion: "Unknown",
			VersionString:  "Unknown",
		}
		return nil, out, nil
	}

	fullVersion := rowString(rows[0], "version")
	firstLine := fullVersion
	if idx := strings.IndexByte(fullVersion, '\n'); idx >= 0 {
		firstLine = strings.TrimSpace(fullVersion[:idx])
	}

	out.Message = "Database connection successful"
	out.DatabaseInfo = &DatabaseInfo{
		ProductName:    rowString(rows[0], "product_name"),
		ProductVersion: rowString(rows[0], "product_version"),
		VersionString:  firstLine,
		FullVersion:    fullVersion,
	}
	return nil, out, nil
}

func toolPing(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input PingInput,
) (*mcp.CallToolResult, PingOutput, error) {

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	timer := NewQueryTimer("ping")
	_, err := executor.ExecuteSQL(ctx, "SELECT 1")
	latency := timer.ElapsedMs()

	if err != nil {
		return nil, PingOutput{
			Success:   false,
			LatencyMs: latency,
			Message:   fmt.Sprintf("ping failed: %v", err),
		}, nil
	}

	return nil, PingOutput{
		Success:   true,
		LatencyMs: latency,
		Message:   "pong",
	}, nil
}

func toolColumnStatistics(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ColumnStatisticsInput,
) (*mcp.CallToolResult, ColumnStatisticsOutput, error) {

	out := ColumnStatisticsOutput{
		Data:         []mssql.Row{},
		DatabaseName: input.DatabaseName,
		SchemaName:   input.SchemaName,
		TableName:    input.TableName,
	}

	// Names are substituted into bracketed identifier positions; reject
	// anything that could break out of the brackets.
	for _, name := range []string{input.DatabaseName, input.SchemaName, input.TableName} {
		if err := util.ValidateIdent(name); err != nil {
			return nil, ColumnStatisticsOutput{}, fmt.Errorf("invalid identifier: %w", err)
		}
	}

	resp := runTemplate(ctx, "column_statistics", columnStatisticsTemplate, map[string]interface{}{
		"database_name": input.DatabaseName,
		"schema_name":   input.SchemaName,
		"table_name":    input.TableName,
	})

	target := fmt.Sprintf("%s.%s.%s", input.DatabaseName, input.SchemaName, input.TableName)
	if !resp.Success {
		out.Message = fmt.Sprintf("Failed to retrieve column statistics for %s: %s", target, resp.Error)
		out.Error = resp.Error
		return nil, out, nil
	}

	out.Message = fmt.Sprintf("Column statistics retrieved successfully for %s", target)
	out.Data = resp.Data
	out.ColumnCount = resp.RowCount
	out.Success = true
	return nil, out, nil
}

func toolTopQueries(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input TopQueriesInput,
) (*mcp.CallToolResult, TopQueriesOutput, error) {

	metric := input.Metric
	if metric == "" {
		metric = "cpu"
	}

	template, ok := topQueryTemplates[metric]
	if !ok {
		metrics := make([]string, 0, len(topQueryTemplates))
		for m := range topQueryTemplates {
			metrics = append(metrics, m)
		}
		sort.Strings(metrics)
		return nil, TopQueriesOutput{
			Message: fmt.Sprintf("Invalid metric '%s'. Must be one of: %s", metric, strings.Join(metrics, ", ")),
			Data:    []mssql.Row{},
			Metric:  metric,
			Error:   fmt.Sprintf("Invalid metric: %s", metric),
		}, nil
	}

	resp := runTemplate(ctx, "top_queries", template, nil)

	out := TopQueriesOutput{
		Data:   []mssql.Row{},
		Metric: metric,
	}
	if !resp.Success {
		out.Message = fmt.Sprintf("Failed to retrieve top 10 queries by %s: %s", metric, resp.Error)
		out.Error = resp.Error
		return nil, out, nil
	}

	out.Message = fmt.Sprintf("Top 10 queries by %s retrieved successfully", metric)
	out.Data = resp.Data
	out.RowCount = resp.RowCount
	out.Success = true
	return nil, out, nil
}
