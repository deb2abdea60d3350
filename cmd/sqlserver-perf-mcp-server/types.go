// cmd/sqlserver-perf-mcp-server/types.go
package main

import "github.com/askdba/sqlserver-perf-mcp-server/internal/mssql"

// ===== Tool input / output types =====

type VersionInput struct{}

type VersionOutput struct {
	Message    string `json:"message" jsonschema:"human-readable version message"`
	ServerName string `json:"server_name" jsonschema:"full server name"`
	Version    string `json:"version" jsonschema:"server version"`
	Timestamp  string `json:"timestamp" jsonschema:"UTC ISO-8601 timestamp"`
	Tool       string `json:"tool" jsonschema:"tool name"`
	Success    bool   `json:"success" jsonschema:"always true"`
}

type DatabaseConnectionInput struct{}

// DatabaseInfo describes the connected SQL Server instance.
type DatabaseInfo struct {
	ProductName    string `json:"product_name" jsonschema:"SQL Server product name"`
	ProductVersion string `json:"product_version" jsonschema:"SQL Server product version"`
	VersionString  string `json:"version_string" jsonschema:"first line of @@VERSION"`
	FullVersion    string `json:"full_version,omitempty" jsonschema:"complete @@VERSION output"`
}

type DatabaseConnectionOutput struct {
	Message          string        `json:"message" jsonschema:"human-readable status message"`
	DatabaseInfo     *DatabaseInfo `json:"database_info" jsonschema:"server details; null when the connection failed"`
	ConnectionStatus string        `json:"connection_status" jsonschema:"connected or failed"`
	Timestamp        string        `json:"timestamp" jsonschema:"UTC ISO-8601 timestamp"`
	Tool             string        `json:"tool" jsonschema:"tool name"`
	Success          bool          `json:"success" jsonschema:"true if the connection succeeded"`
	Error            string        `json:"error,omitempty" jsonschema:"error message when the connection failed"`
}

type PingInput struct{}

type PingOutput struct {
	Success   bool   `json:"success" jsonschema:"true if the database is reachable"`
	LatencyMs int64  `json:"latency_ms" jsonschema:"round-trip latency in milliseconds"`
	Message   string `json:"message" jsonschema:"status message"`
}

type ColumnStatisticsInput struct {
	DatabaseName string `json:"database_name" jsonschema:"name of the database"`
	SchemaName   string `json:"schema_name" jsonschema:"name of the schema"`
	TableName    string `json:"table_name" jsonschema:"name of the table"`
}

type ColumnStatisticsOutput struct {
	Message      string      `json:"message" jsonschema:"human-readable status message"`
	Data         []mssql.Row `json:"data" jsonschema:"one entry per column with metadata and table row count"`
	DatabaseName string      `json:"database_name" jsonschema:"echoed database name"`
	SchemaName   string      `json:"schema_name" jsonschema:"echoed schema name"`
	TableName    string      `json:"table_name" jsonschema:"echoed table name"`
	ColumnCount  int         `json:"column_count" jsonschema:"number of columns returned"`
	Success      bool        `json:"success" jsonschema:"true if the query succeeded"`
	Error        string      `json:"error,omitempty" jsonschema:"error message on failure"`
}

type TopQueriesInput struct {
	Metric string `json:"metric,omitempty" jsonschema:"metric to order by: cpu (default), reads, or time"`
}

type TopQueriesOutput struct {
	Message  string      `json:"message" jsonschema:"human-readable status message"`
	Data     []mssql.Row `json:"data" jsonschema:"top queries ordered by the chosen metric"`
	Metric   string      `json:"metric" jsonschema:"metric the results are ordered by"`
	RowCount int         `json:"row_count" jsonschema:"number of rows returned"`
	Success  bool        `json:"success" jsonschema:"true if the query succeeded"`
	Error    string      `json:"error,omitempty" jsonschema:"error message on failure"`
}

// MonitoringInput is shared by the parameterless monitoring tools.
type MonitoringInput struct{}

// MonitoringOutput is the common envelope for the DMV monitoring tools.
type MonitoringOutput struct {
	Message  string      `json:"message" jsonschema:"human-readable status message"`
	Data     []mssql.Row `json:"data" jsonschema:"query results"`
	RowCount int         `json:"row_count" jsonschema:"number of rows returned"`
	Success  bool        `json:"success" jsonschema:"true if the query succeeded"`
	Error    string      `json:"error,omitempty" jsonschema:"error message on failure"`
}
