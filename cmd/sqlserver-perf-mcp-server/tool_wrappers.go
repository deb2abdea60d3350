// cmd/sqlserver-perf-mcp-server/tool_wrappers.go
package main

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// wrapTool adds per-call token estimation logging around a handler. When
// token tracking is disabled the handler runs untouched.
func wrapTool[I any, O any](toolName string, h mcp.ToolHandlerFor[I, O]) mcp.ToolHandlerFor[I, O] {
	return func(ctx context.Context, req *mcp.CallToolRequest, input I) (*mcp.CallToolResult, O, error) {
		start := time.Now()
		res, out, err := h(ctx, req, input)

		if tokenTracking {
			inputTokens, _ := estimateTokensForValue(input)
			outputTokens := 0
			if err == nil {
				outputTokens, _ = estimateTokensForValue(out)
			}
			tokens := TokenUsage{
				InputEstimated:  inputTokens,
				OutputEstimated: outputTokens,
				TotalEstimated:  inputTokens + outputTokens,
				Model:           tokenModel,
			}

			fields := map[string]interface{}{
				"tool":        toolName,
				"duration_ms": time.Since(start).Milliseconds(),
				"tokens": map[string]interface{}{
					"input_estimated":  tokens.InputEstimated,
					"output_estimated": tokens.OutputEstimated,
					"total_estimated":  tokens.TotalEstimated,
					"model":            tokens.Model,
				},
			}
			if err != nil {
				fields["error"] = err.Error()
				logError("tool failed", fields)
			} else {
				logInfo("tool executed", fields)
			}
		}

		return res, out, err
	}
}

// Wrapped tool handlers shared by the MCP and HTTP transports.
var (
	toolVersionWrapped            = wrapTool("version", toolVersion)
	toolDatabaseConnectionWrapped = wrapTool("database_connection", toolDatabaseConnection)
	toolPingWrapped               = wrapTool("ping", toolPing)
	toolColumnStatisticsWrapped   = wrapTool("column_statistics", toolColumnStatistics)
	toolTopQueriesWrapped         = wrapTool("top_queries", toolTopQueries)

	toolLiveActivityBlockingWrapped = wrapTool("monitor_live_activity_blocking", toolMonitorLiveActivityBlocking)
	toolCachedPlansReuseWrapped     = wrapTool("find_cached_plans_reuse", toolFindCachedPlansReuse)
	toolPlanCacheBloatWrapped       = wrapTool("detect_plan_cache_bloat", toolDetectPlanCacheBloat)
	toolActiveBlockingWaitsWrapped  = wrapTool("find_active_blocking_waits", toolFindActiveBlockingWaits)
	toolLockContentionWrapped       = wrapTool("detect_lock_contention", toolDetectLockContention)
	toolWaitStatisticsWrapped       = wrapTool("analyze_wait_statistics", toolAnalyzeWaitStatistics)
)
