// cmd/sqlserver-perf-mcp-server/templates.go
package main

// SQL templates executed by the diagnostic tools. Placeholders use the
// {{name}} form consumed by mssql.Substitute; templates without
// placeholders run as-is.

// Column metadata and table row count. Min/max/null/distinct statistics
// are emitted as typed NULLs; computing them needs per-column queries.
const columnStatisticsTemplate = `
WITH TableStats AS (
    SELECT COUNT(*) as total_rows
    FROM [{{database_name}}].[{{schema_name}}].[{{table_name}}]
),
ColumnInfo AS (
    SELECT
        '{{database_name}}' as database_name,
        '{{schema_name}}' as schema_name,
        '{{table_name}}' as table_name,
        c.COLUMN_NAME,
        c.DATA_TYPE,
        c.IS_NULLABLE,
        c.CHARACTER_MAXIMUM_LENGTH,
        c.NUMERIC_PRECISION,
        c.NUMERIC_SCALE,
        c.ORDINAL_POSITION
    FROM INFORMATION_SCHEMA.COLUMNS c
    WHERE c.TABLE_CATALOG = '{{database_name}}'
      AND c.TABLE_SCHEMA = '{{schema_name}}'
      AND c.TABLE_NAME = '{{table_name}}'
)
SELECT
    ci.*,
    ts.total_rows as total_count,
    CAST(NULL AS VARCHAR(255)) as min_value,
    CAST(NULL AS VARCHAR(255)) as max_value,
    CAST(NULL AS BIGINT) as null_count,
    CAST(NULL AS BIGINT) as distinct_count
FROM ColumnInfo ci
CROSS JOIN TableStats ts
ORDER BY ci.ORDINAL_POSITION
`

// Top queries by average CPU (worker) time per execution.
const topQueriesByCPUTemplate = `
SELECT TOP 10
  SUBSTRING(st.text, qs.statement_start_offset / 2,
        (CASE WHEN qs.statement_end_offset = -1
          THEN LEN(CONVERT(NVARCHAR(MAX), st.text)) * 2
          ELSE qs.statement_end_offset END - qs.statement_start_offset) / 2) AS query_text,
  qs.execution_count,
  qs.total_worker_time / qs.execution_count AS avg_cpu_time,
  qs.total_worker_time AS total_cpu_time
FROM sys.dm_exec_query_stats qs
CROSS APPLY sys.dm_exec_sql_text(qs.sql_handle) st
ORDER BY avg_cpu_time DESC;
`

// Top queries by average logical reads per execution.
const topQueriesByReadsTemplate = `
SELECT TOP 10
  SUBSTRING(st.text, qs.statement_start_offset / 2,
        (CASE WHEN qs.statement_end_offset = -1
          THEN LEN(CONVERT(NVARCHAR(MAX), st.text)) * 2
          ELSE qs.statement_end_offset END - qs.statement_start_offset) / 2) AS query_text,
  qs.execution_count,
  qs.total_logical_reads / qs.execution_count AS avg_logical_reads,
  qs.total_logical_reads
FROM sys.dm_exec_query_stats qs
CROSS APPLY sys.dm_exec_sql_text(qs.sql_handle) st
ORDER BY avg_logical_reads DESC;
`

// Top queries by average elapsed time per execution.
const topQueriesByTimeTemplate = `
SELECT TOP 10
  SUBSTRING(st.text, qs.statement_start_offset / 2,
        (CASE WHEN qs.statement_end_offset = -1
          THEN LEN(CONVERT(NVARCHAR(MAX), st.text)) * 2
          ELSE qs.statement_end_offset END - qs.statement_start_offset) / 2) AS query_text,
  qs.execution_count,
  qs.total_elapsed_time / qs.execution_count AS avg_elapsed_time,
  qs.total_elapsed_time
FROM sys.dm_exec_query_stats qs
CROSS APPLY sys.dm_exec_sql_text(qs.sql_handle) st
ORDER BY avg_elapsed_time DESC;
`

// topQueryTemplates maps the metric parameter to its template.
var topQueryTemplates = map[string]string{
	"cpu":   topQueriesByCPUTemplate,
	"reads": topQueriesByReadsTemplate,
	"time":  topQueriesByTimeTemplate,
}

// Requests currently blocked by another session, with the blocked and
// blocker session IDs.
const liveActivityBlockingTemplate = `
SELECT
  t.text AS query_text,
  r.session_id AS blocked_session,
  r.blocking_session_id AS blocker_session,
  r.status,
  r.wait_type,
  r.wait_time,
  r.cpu_time,
  r.total_elapsed_time
FROM sys.dm_exec_requests r
JOIN sys.dm_exec_sessions s ON r.session_id = s.session_id
CROSS APPLY sys.dm_exec_sql_text(r.sql_handle) t
WHERE r.blocking_session_id <> 0;
`

// Top 100 most reused compiled plans in the plan cache.
const cachedPlansReuseTemplate = `
SELECT TOP 100
  st.text AS query_text,
  cp.usecounts,
  cp.cacheobjtype,
  cp.objtype,
  cp.size_in_bytes / 1024 AS size_kb
FROM sys.dm_exec_cached_plans cp
CROSS APPLY sys.dm_exec_sql_text(cp.plan_handle) st
WHERE cp.cacheobjtype = 'Compiled Plan'
ORDER BY cp.usecounts DESC;
`

// Single-use ad hoc plans wasting plan cache memory.
const planCacheBloatTemplate = `
SELECT
  st.text AS query_text,
  cp.usecounts,
  cp.size_in_bytes / 1024 AS size_kb,
  cp.objtype
FROM sys.dm_exec_cached_plans cp
CROSS APPLY sys.dm_exec_sql_text(cp.plan_handle) st
WHERE cp.objtype = 'Adhoc'
  AND cp.usecounts = 1
ORDER BY cp.size_in_bytes DESC;
`

const activeBlockingWaitsTemplate = `
SELECT
  t.text AS query_text,
  r.session_id,
  r.blocking_session_id,
  r.status,
  r.wait_type,
  r.wait_time,
  r.cpu_time,
  r.total_elapsed_time
FROM sys.dm_exec_requests r
JOIN sys.dm_exec_sessions s ON r.session_id = s.session_id
CROSS APPLY sys.dm_exec_sql_text(r.sql_handle) t
WHERE r.blocking_session_id <> 0;
`

// All held and pending transactional locks with the owning session and SQL.
const lockContentionTemplate = `
SELECT
  t.text AS query_text,
  tl.resource_type,
  tl.resource_database_id,
  tl.resource_associated_entity_id,
  tl.request_mode,
  tl.request_status,
  s.session_id,
  s.login_name
FROM sys.dm_tran_locks tl
JOIN sys.dm_exec_sessions s ON tl.request_session_id = s.session_id
JOIN sys.dm_exec_requests r ON s.session_id = r.session_id
CROSS APPLY sys.dm_exec_sql_text(r.sql_handle) t;
`

// Cumulative wait statistics since service restart, excluding idle waits.
const waitStatisticsTemplate = `
SELECT TOP 20
    wait_type,
    wait_time_ms / 1000.0 AS wait_time_sec,
    waiting_tasks_count,
    wait_time_ms/ (1000 * waiting_tasks_count) AS avg_wait_time_sec
FROM sys.dm_os_wait_stats
WHERE wait_type NOT LIKE '%SLEEP%'
AND waiting_tasks_count > 0
ORDER BY wait_time_ms DESC;
`

// Product name and version of the connected server.
const databaseConnectionQuery = `SELECT @@VERSION as version, SERVERPROPERTY('ProductName') as product_name, SERVERPROPERTY('ProductVersion') as product_version`
