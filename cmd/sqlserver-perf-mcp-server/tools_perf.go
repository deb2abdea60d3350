// cmd/sqlserver-perf-mcp-server/tools_perf.go
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/askdba/sqlserver-perf-mcp-server/internal/mssql"
)

// ===== Performance Monitoring Tool Handlers =====
//
// Each handler runs one DMV query and reports results in the shared
// monitoring envelope. Execution failures come back as success=false
// responses, not Go errors.

// runMonitoring is the common body of the parameterless monitoring tools.
func runMonitoring(ctx context.Context, tool, template, subject string) MonitoringOutput {
	resp := runTemplate(ctx, tool, template, nil)

	if !resp.Success {
		return MonitoringOutput{
			Message: fmt.Sprintf("Failed to retrieve %s: %s", subject, resp.Error),
			Data:    []mssql.Row{},
			Error:   resp.Error,
		}
	}

	return MonitoringOutput{
		Message:  fmt.Sprintf("%s retrieved successfully", capitalize(subject)),
		Data:     resp.Data,
		RowCount: resp.RowCount,
		Success:  true,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func toolMonitorLiveActivityBlocking(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input MonitoringInput,
) (*mcp.CallToolResult, MonitoringOutput, error) {
	out := runMonitoring(ctx, "monitor_live_activity_blocking", liveActivityBlockingTemplate,
		"live activity and blocking information")
	return nil, out, nil
}

func toolFindCachedPlansReuse(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input MonitoringInput,
) (*mcp.CallToolResult, MonitoringOutput, error) {
	out := runMonitoring(ctx, "find_cached_plans_reuse", cachedPlansReuseTemplate,
		"cached plans with reuse information")
	return nil, out, nil
}

func toolDetectPlanCacheBloat(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input MonitoringInput,
) (*mcp.CallToolResult, MonitoringOutput, error) {
	out := runMonitoring(ctx, "detect_plan_cache_bloat", planCacheBloatTemplate,
		"plan cache bloat information")
	return nil, out, nil
}

func toolFindActiveBlockingWaits(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input MonitoringInput,
) (*mcp.CallToolResult, MonitoringOutput, error) {
	out := runMonitoring(ctx, "find_active_blocking_waits", activeBlockingWaitsTemplate,
		"active blocking and waits information")
	return nil, out, nil
}

func toolDetectLockContention(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input MonitoringInput,
) (*mcp.CallToolResult, MonitoringOutput, error) {
	out := runMonitoring(ctx, "detect_lock_contention", lockContentionTemplate,
		"lock contention information")
	return nil, out, nil
}

func toolAnalyzeWaitStatistics(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input MonitoringInput,
) (*mcp.CallToolResult, MonitoringOutput, error) {
	out := runMonitoring(ctx, "analyze_wait_statistics", waitStatisticsTemplate,
		"wait statistics information")
	return nil, out, nil
}
