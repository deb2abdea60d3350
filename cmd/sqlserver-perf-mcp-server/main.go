// cmd/sqlserver-perf-mcp-server/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/askdba/sqlserver-perf-mcp-server/internal/config"
	"github.com/askdba/sqlserver-perf-mcp-server/internal/mssql"
)

// Version is the server version reported by the version tool.
const Version = "0.1.0"

// Runtime globals shared by the tool handlers. Set once during startup,
// read-only afterwards.
var (
	cfg      *config.Config
	executor *mssql.Executor

	maxRows      int
	queryTimeout time.Duration
	pingTimeout  time.Duration

	jsonLogging    bool
	tokenTracking  bool
	tokenModel     string
	tokenEstimator TokenEstimator
	auditLogger    *AuditLogger
)

// loadConfig resolves the runtime configuration: file first (if any),
// environment on top.
func loadConfig() (*config.Config, error) {
	resolved := config.Defaults()

	if path := config.FindConfigFile(); path != "" {
		fc, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		resolved = fc.ToConfig()
		logInfo("loaded config file", map[string]interface{}{"path": path})
	}

	if err := resolved.ApplyEnvironment(); err != nil {
		return nil, err
	}
	if err := resolved.Validate(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "version",
		Description: "Show the version of the SQL Server performance MCP server",
	}, toolVersionWrapped)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "database_connection",
		Description: "Make a fresh connection to the database and report the product name and version",
	}, toolDatabaseConnectionWrapped)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ping",
		Description: "Check database connectivity and measure round-trip latency",
	}, toolPingWrapped)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "column_statistics",
		Description: "Get column metadata and table row count for a specific table",
	}, toolColumnStatisticsWrapped)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "top_queries",
		Description: "Get the top 10 queries by cpu, reads, or time from the query stats DMV",
	}, toolTopQueriesWrapped)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "monitor_live_activity_blocking",
		Description: "Identify currently executing requests that are blocked by another session",
	}, toolLiveActivityBlockingWrapped)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_cached_plans_reuse",
		Description: "Examine the top 100 most reused compiled plans in the plan cache",
	}, toolCachedPlansReuseWrapped)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect_plan_cache_bloat",
		Description: "Identify single-use ad hoc plans occupying plan cache memory",
	}, toolPlanCacheBloatWrapped)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_active_blocking_waits",
		Description: "Identify active sessions currently blocked by other sessions, with wait details",
	}, toolActiveBlockingWaitsWrapped)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "detect_lock_contention",
		Description: "Retrieve currently held transactional locks with session and query context",
	}, toolLockContentionWrapped)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_wait_statistics",
		Description: "Analyze server-wide wait statistics to find the dominant wait types",
	}, toolWaitStatisticsWrapped)
}

func main() {
	args := parseArgs(os.Args[1:])
	if args.err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n\n%s", args.err, usage())
		os.Exit(2)
	}

	switch args.action {
	case "version":
		fmt.Printf("%s %s\n", serverName, Version)
		return
	case "help":
		fmt.Print(usage())
		return
	case "validate-config":
		if err := config.ValidateConfigFile(args.validatePath); err != nil {
			fmt.Fprintf(os.Stderr, "config invalid: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("config valid: %s\n", args.validatePath)
		return
	}

	config.ConfigFilePath = args.configPath

	var err error
	cfg, err = loadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if args.action == "print-config" {
		fmt.Print(config.PrintConfig(cfg))
		return
	}

	maxRows = cfg.MaxRows
	queryTimeout = cfg.QueryTimeout
	pingTimeout = cfg.PingTimeout
	jsonLogging = cfg.JSONLogging
	tokenTracking = cfg.TokenTracking
	tokenModel = cfg.TokenModel

	auditLogger, err = NewAuditLogger(cfg.AuditLogPath)
	if err != nil {
		log.Fatalf("audit log error: %v", err)
	}
	defer auditLogger.Close()

	if tokenTracking {
		tokenEstimator, err = NewTokenEstimator(tokenModel)
		if err != nil {
			logWarn("token estimator unavailable, disabling token tracking",
				map[string]interface{}{"error": err.Error()})
			tokenTracking = false
		}
	}

	connStr, err := cfg.ConnectionString()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	executor = mssql.NewExecutor(mssql.NewConnector(connStr))

	// Verify the database is reachable before serving tools. Each tool
	// call still opens its own connection.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	_, err = executor.ExecuteSQL(ctx, "SELECT 1")
	cancel()
	if err != nil {
		log.Fatalf("database connection error: %v", err)
	}

	logInfo("connected to SQL Server", map[string]interface{}{
		"url":           config.MaskConnectionURL(connStr),
		"max_rows":      maxRows,
		"query_timeout": queryTimeout.String(),
	})

	if cfg.HTTPMode {
		startHTTPServer(cfg.HTTPPort)
		return
	}

	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "sqlserver-perf-mcp-server",
			Version: Version,
		},
		nil,
	)
	registerTools(server)

	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		log.Fatal(err)
	}
}
