// cmd/sqlserver-perf-mcp-server/args.go
package main

import (
	"fmt"
	"strings"
)

// argsResult holds the parsed command line. action is one of "",
// "version", "help", "print-config", or "validate-config".
type argsResult struct {
	action       string
	configPath   string
	validatePath string
	err          error
}

// parseArgs parses the command line without flag.Parse so flags can be
// combined in any order. --version and --help return immediately.
func parseArgs(args []string) argsResult {
	var result argsResult

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--version" || arg == "-v":
			result.action = "version"
			return result
		case arg == "--help" || arg == "-h" || arg == "help":
			result.action = "help"
			return result
		case arg == "--config" || arg == "-c":
			if i+1 >= len(args) {
				result.err = fmt.Errorf("--config requires a path argument")
				return result
			}
			i++
			result.configPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			result.configPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--print-config":
			result.action = "print-config"
		case arg == "--validate-config":
			if i+1 >= len(args) {
				result.err = fmt.Errorf("--validate-config requires a path argument")
				return result
			}
			i++
			result.action = "validate-config"
			result.validatePath = args[i]
		default:
			result.err = fmt.Errorf("unknown flag: %s", arg)
			return result
		}
	}

	return result
}

func usage() string {
	return `sqlserver-perf-mcp-server - MCP server for SQL Server performance diagnostics

Usage:
  sqlserver-perf-mcp-server [flags]

Flags:
  -v, --version                 Print version and exit
  -h, --help                    Print this help and exit
  -c, --config PATH             Load configuration from a YAML or JSON file
      --print-config            Print the resolved configuration (secrets masked) and exit
      --validate-config PATH    Validate a configuration file and exit

Environment:
  SCHCRWLR_DATABASE_USER        Database user (required)
  SCHCRWLR_DATABASE_PASSWORD    Database password (required)
  SCHCRWLR_CONNECTION_URL       Full sqlserver:// connection URL
  SCHCRWLR_SERVER               Server type; must be 'sqlserver'
  SCHCRWLR_HOST                 Database host
  SCHCRWLR_PORT                 Database port (optional)
  SCHCRWLR_DATABASE             Database name
  MSSQL_MCP_HTTP=1              Serve the REST API instead of MCP over stdio
  MSSQL_MCP_HTTP_PORT           REST API port (default 8390)
  MSSQL_MCP_JSON_LOGS=1         Structured JSON logs on stderr
  MSSQL_MCP_AUDIT_LOG=PATH      Append JSON audit entries to PATH
  MSSQL_MCP_TOKENS=1            Estimate token usage per tool call
  MSSQL_MCP_MAX_ROWS            Row cap applied to tool results (default 200)
`
}
