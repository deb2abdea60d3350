// cmd/sqlserver-perf-mcp-server/http.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/askdba/sqlserver-perf-mcp-server/internal/api"
)

// Request timeouts are applied per endpoint via api.WithTimeout, so every
// handler below just uses the request context.

// httpVersion handles GET /api/version
func httpVersion(w http.ResponseWriter, r *http.Request) {
	_, out, err := toolVersionWrapped(r.Context(), nil, VersionInput{})
	if err != nil {
		api.WriteInternalError(w, err.Error())
		return
	}
	api.WriteSuccess(w, out)
}

// httpDatabaseConnection handles GET /api/connection
func httpDatabaseConnection(w http.ResponseWriter, r *http.Request) {
	_, out, err := toolDatabaseConnectionWrapped(r.Context(), nil, DatabaseConnectionInput{})
	if err != nil {
		api.WriteInternalError(w, err.Error())
		return
	}
	api.WriteSuccess(w, out)
}

// httpPing handles GET /api/ping
func httpPing(w http.ResponseWriter, r *http.Request) {
	_, out, err := toolPingWrapped(r.Context(), nil, PingInput{})
	if err != nil {
		api.WriteInternalError(w, err.Error())
		return
	}
	api.WriteSuccess(w, out)
}

// httpColumnStatistics handles GET /api/column-statistics?database_name=x&schema_name=y&table_name=z
func httpColumnStatistics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	input := ColumnStatisticsInput{
		DatabaseName: q.Get("database_name"),
		SchemaName:   q.Get("schema_name"),
		TableName:    q.Get("table_name"),
	}
	_, out, err := toolColumnStatisticsWrapped(r.Context(), nil, input)
	if err != nil {
		api.WriteBadRequest(w, err.Error())
		return
	}
	api.WriteSuccess(w, out)
}

// httpTopQueries handles GET /api/top-queries?metric=cpu|reads|time (metric optional)
func httpTopQueries(w http.ResponseWriter, r *http.Request) {
	metric := r.URL.Query().Get("metric")
	_, out, err := toolTopQueriesWrapped(r.Context(), nil, TopQueriesInput{Metric: metric})
	if err != nil {
		api.WriteInternalError(w, err.Error())
		return
	}
	api.WriteSuccess(w, out)
}

// httpBlocking handles GET /api/blocking
func httpBlocking(w http.ResponseWriter, r *http.Request) {
	_, out, err := toolLiveActivityBlockingWrapped(r.Context(), nil, MonitoringInput{})
	if err != nil {
		api.WriteInternalError(w, err.Error())
		return
	}
	api.WriteSuccess(w, out)
}

// httpPlanCacheReuse handles GET /api/plan-cache/reuse
func httpPlanCacheReuse(w http.ResponseWriter, r *http.Request) {
	_, out, err := toolCachedPlansReuseWrapped(r.Context(), nil, MonitoringInput{})
	if err != nil {
		api.WriteInternalError(w, err.Error())
		return
	}
	api.WriteSuccess(w, out)
}

// httpPlanCacheBloat handles GET /api/plan-cache/bloat
func httpPlanCacheBloat(w http.ResponseWriter, r *http.Request) {
	_, out, err := toolPlanCacheBloatWrapped(r.Context(), nil, MonitoringInput{})
	if err != nil {
		api.WriteInternalError(w, err.Error())
		return
	}
	api.WriteSuccess(w, out)
}

// httpActiveBlockingWaits handles GET /api/blocking/waits
func httpActiveBlockingWaits(w http.ResponseWriter, r *http.Request) {
	_, out, err := toolActiveBlockingWaitsWrapped(r.Context(), nil, MonitoringInput{})
	if err != nil {
		api.WriteInternalError(w, err.Error())
		return
	}
	api.WriteSuccess(w, out)
}

// httpLockContention handles GET /api/locks
func httpLockContention(w http.ResponseWriter, r *http.Request) {
	_, out, err := toolLockContentionWrapped(r.Context(), nil, MonitoringInput{})
	if err != nil {
		api.WriteInternalError(w, err.Error())
		return
	}
	api.WriteSuccess(w, out)
}

// httpWaitStatistics handles GET /api/waits
func httpWaitStatistics(w http.ResponseWriter, r *http.Request) {
	_, out, err := toolWaitStatisticsWrapped(r.Context(), nil, MonitoringInput{})
	if err != nil {
		api.WriteInternalError(w, err.Error())
		return
	}
	api.WriteSuccess(w, out)
}

// httpHealth handles GET /health
func httpHealth(w http.ResponseWriter, r *http.Request) {
	api.WriteSuccess(w, map[string]interface{}{
		"status":  "healthy",
		"service": "sqlserver-perf-mcp-server",
	})
}

// httpAPIIndex handles GET /api
func httpAPIIndex(w http.ResponseWriter, r *http.Request) {
	api.WriteSuccess(w, map[string]interface{}{
		"service": "sqlserver-perf-mcp-server REST API",
		"version": Version,
		"endpoints": map[string]string{
			"GET /health":                "Health check",
			"GET /api":                   "API index (this page)",
			"GET /api/version":           "Server version",
			"GET /api/connection":        "Database product name and version",
			"GET /api/ping":              "Ping database",
			"GET /api/column-statistics": "Column metadata (requires ?database_name=&schema_name=&table_name=)",
			"GET /api/top-queries":       "Top queries (optional ?metric=cpu|reads|time)",
			"GET /api/blocking":          "Live activity and blocking [monitoring]",
			"GET /api/blocking/waits":    "Active blocking with wait details [monitoring]",
			"GET /api/plan-cache/reuse":  "Most reused cached plans [monitoring]",
			"GET /api/plan-cache/bloat":  "Single-use ad hoc plan bloat [monitoring]",
			"GET /api/locks":             "Current lock contention [monitoring]",
			"GET /api/waits":             "Server-wide wait statistics [monitoring]",
		},
		"modes": map[string]bool{
			"monitoring": cfg.HTTPMonitoring,
		},
	})
}

// httpLogger routes the request log through the structured logger.
func httpLogger(method, path string, status int, duration time.Duration) {
	logInfo("http request", map[string]interface{}{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": duration.Milliseconds(),
	})
}

// monitoringFeature gates the DMV endpoints, which need VIEW SERVER STATE
// on the target instance. Disabled endpoints answer 404.
func monitoringFeature(enabled bool) api.Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return api.RequireFeature(enabled, "monitoring endpoints (set http.monitoring or MSSQL_MCP_HTTP_MONITORING=1)", next)
	}
}

// startHTTPServer runs the REST API with graceful shutdown.
func startHTTPServer(port int) {
	mux := http.NewServeMux()

	var rateLimiter *api.RateLimiter
	if cfg.RateLimitEnabled {
		rateLimiter = api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		logInfo("rate limiting enabled", map[string]interface{}{
			"rps":   cfg.RateLimitRPS,
			"burst": cfg.RateLimitBurst,
		})
	}

	withLog := api.WithLogging(httpLogger)
	withRateLimit := api.WithRateLimit(rateLimiter)
	withTimeout := func(next http.HandlerFunc) http.HandlerFunc {
		return api.WithTimeout(cfg.HTTPRequestTimeout, next)
	}
	monitoring := monitoringFeature(cfg.HTTPMonitoring)

	mux.HandleFunc("/health", api.WithCORS(httpHealth))
	mux.HandleFunc("/api", api.WithCORS(httpAPIIndex))
	mux.HandleFunc("/api/", api.WithCORS(httpAPIIndex))

	mux.HandleFunc("/api/version", api.Chain(httpVersion, api.WithCORS, api.RequireGET, withTimeout))
	mux.HandleFunc("/api/connection", api.Chain(httpDatabaseConnection, api.WithCORS, api.RequireGET, withTimeout))
	mux.HandleFunc("/api/ping", api.Chain(httpPing, api.WithCORS, api.RequireGET, withTimeout))
	mux.HandleFunc("/api/column-statistics", api.Chain(httpColumnStatistics, api.WithCORS, api.RequireGET,
		api.RequireQueryParams("database_name", "schema_name", "table_name"), withTimeout))
	mux.HandleFunc("/api/top-queries", api.Chain(httpTopQueries, api.WithCORS, api.RequireGET, withTimeout))

	mux.HandleFunc("/api/blocking", api.Chain(httpBlocking, api.WithCORS, api.RequireGET, monitoring, withTimeout))
	mux.HandleFunc("/api/blocking/waits", api.Chain(httpActiveBlockingWaits, api.WithCORS, api.RequireGET, monitoring, withTimeout))
	mux.HandleFunc("/api/plan-cache/reuse", api.Chain(httpPlanCacheReuse, api.WithCORS, api.RequireGET, monitoring, withTimeout))
	mux.HandleFunc("/api/plan-cache/bloat", api.Chain(httpPlanCacheBloat, api.WithCORS, api.RequireGET, monitoring, withTimeout))
	mux.HandleFunc("/api/locks", api.Chain(httpLockContention, api.WithCORS, api.RequireGET, monitoring, withTimeout))
	mux.HandleFunc("/api/waits", api.Chain(httpWaitStatistics, api.WithCORS, api.RequireGET, monitoring, withTimeout))

	addr := fmt.Sprintf(":%d", port)

	// Handler chain: rate limit -> logging -> mux
	var handler http.HandlerFunc = mux.ServeHTTP
	handler = withLog(handler)
	handler = withRateLimit(handler)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.HTTPRequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logInfo("HTTP REST API server starting", map[string]interface{}{
			"port":       port,
			"address":    "http://localhost" + addr,
			"monitoring": cfg.HTTPMonitoring,
			"version":    Version,
		})

		log.Printf("REST API endpoints available at http://localhost:%d/api", port)
		log.Printf("Health check at http://localhost:%d/health", port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-stop
	logInfo("shutdown signal received, stopping server", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	} else {
		logInfo("server stopped gracefully", nil)
	}

	if rateLimiter != nil {
		rateLimiter.Stop()
	}
}
