// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Default values applied when neither config file nor environment sets one.
const (
	DefaultMaxRows             = 200
	DefaultQueryTimeoutSecs    = 30
	DefaultPingTimeoutSecs     = 5
	DefaultHTTPPort            = 8390
	DefaultHTTPRequestTimeoutS = 60
	DefaultRateLimitRPS        = 10
	DefaultRateLimitBurst      = 20
	DefaultTokenModel          = "cl100k_base"
)

// Config is the resolved runtime configuration. Connection parameters come
// from the SCHCRWLR_* environment variables (or a config file); server
// features use the MSSQL_MCP_ prefix. Resolution happens in one place --
// nothing reads the environment after startup.
type Config struct {
	// Connection parameters. Either ConnectionURL is set and used verbatim,
	// or Server/Host/Database (plus optional Port) are assembled into one.
	Server        string
	Host          string
	Port          int
	Database      string
	ConnectionURL string

	// Credentials, always required.
	Username string
	Password string

	Encrypt                bool
	TrustServerCertificate bool

	// Query settings.
	MaxRows      int
	QueryTimeout time.Duration
	PingTimeout  time.Duration

	// Logging settings.
	JSONLogging   bool
	AuditLogPath  string
	TokenTracking bool
	TokenModel    string

	// HTTP REST API settings. HTTPMonitoring gates the DMV monitoring
	// endpoints, which need VIEW SERVER STATE on the target instance.
	HTTPMode           bool
	HTTPPort           int
	HTTPRequestTimeout time.Duration
	HTTPMonitoring     bool
	RateLimitEnabled   bool
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Defaults returns a Config with every server-feature field set to its
// default and no connection parameters.
func Defaults() *Config {
	return &Config{
		TrustServerCertificate: true,
		MaxRows:                DefaultMaxRows,
		QueryTimeout:           time.Duration(DefaultQueryTimeoutSecs) * time.Second,
		PingTimeout:            time.Duration(DefaultPingTimeoutSecs) * time.Second,
		TokenModel:             DefaultTokenModel,
		HTTPPort:               DefaultHTTPPort,
		HTTPRequestTimeout:     time.Duration(DefaultHTTPRequestTimeoutS) * time.Second,
		HTTPMonitoring:         true,
		RateLimitRPS:           DefaultRateLimitRPS,
		RateLimitBurst:         DefaultRateLimitBurst,
	}
}

// FromEnvironment resolves a complete configuration from environment
// variables alone.
func FromEnvironment() (*Config, error) {
	cfg := Defaults()
	if err := cfg.ApplyEnvironment(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvironment overlays environment variables onto cfg. Connection
// variables replace any file-provided values only when set, so a config
// file can carry the connection and env can override it.
func (c *Config) ApplyEnvironment() error {
	if v := os.Getenv("SCHCRWLR_DATABASE_USER"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("SCHCRWLR_DATABASE_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("SCHCRWLR_CONNECTION_URL"); v != "" {
		c.ConnectionURL = v
	}
	if v := os.Getenv("SCHCRWLR_SERVER"); v != "" {
		c.Server = strings.ToLower(v)
	}
	if v := os.Getenv("SCHCRWLR_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("SCHCRWLR_DATABASE"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("SCHCRWLR_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SCHCRWLR_PORT %q: %w", v, err)
		}
		c.Port = port
	}

	c.MaxRows = readIntWithDefault("MSSQL_MCP_MAX_ROWS", c.MaxRows)
	if secs := readIntWithDefault("MSSQL_MCP_QUERY_TIMEOUT_SECONDS", 0); secs > 0 {
		c.QueryTimeout = time.Duration(secs) * time.Second
	}

	if readBool("MSSQL_MCP_JSON_LOGS") {
		c.JSONLogging = true
	}
	if v := os.Getenv("MSSQL_MCP_AUDIT_LOG"); v != "" {
		c.AuditLogPath = v
	}
	if readBool("MSSQL_MCP_TOKENS") {
		c.TokenTracking = true
	}
	if v := os.Getenv("MSSQL_MCP_TOKEN_MODEL"); v != "" {
		c.TokenModel = v
	}

	if readBool("MSSQL_MCP_HTTP") {
		c.HTTPMode = true
	}
	if port := readIntWithDefault("MSSQL_MCP_HTTP_PORT", 0); port > 0 {
		c.HTTPPort = port
	}
	if v := os.Getenv("MSSQL_MCP_HTTP_MONITORING"); v != "" {
		c.HTTPMonitoring = boolValue(v)
	}

	return nil
}

// Validate checks that the connection descriptor is complete.
func (c *Config) Validate() error {
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("database credentials are required: set SCHCRWLR_DATABASE_USER and SCHCRWLR_DATABASE_PASSWORD")
	}
	if c.ConnectionURL != "" {
		return nil
	}
	if c.Server == "" || c.Host == "" || c.Database == "" {
		return fmt.Errorf("either SCHCRWLR_CONNECTION_URL or all of SCHCRWLR_SERVER, SCHCRWLR_HOST, SCHCRWLR_DATABASE are required")
	}
	if c.Server != "sqlserver" {
		return fmt.Errorf("unsupported server type %q: only 'sqlserver' is supported", c.Server)
	}
	return nil
}

// ConnectionString assembles the go-mssqldb connection string. A
// precomputed ConnectionURL is returned verbatim.
func (c *Config) ConnectionString() (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	if c.ConnectionURL != "" {
		return c.ConnectionURL, nil
	}

	query := url.Values{}
	query.Add("database", c.Database)
	if c.Encrypt {
		query.Add("encrypt", "true")
	} else {
		query.Add("encrypt", "false")
	}
	if c.TrustServerCertificate {
		query.Add("TrustServerCertificate", "true")
	}

	host := c.Host
	if c.Port > 0 {
		host = fmt.Sprintf("%s:%d", c.Host, c.Port)
	}

	return fmt.Sprintf("sqlserver://%s:%s@%s?%s",
		url.QueryEscape(c.Username),
		url.QueryEscape(c.Password),
		host,
		query.Encode(),
	), nil
}

func readIntWithDefault(env string, def int) int {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func readBool(env string) bool {
	return boolValue(os.Getenv(env))
}

func boolValue(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	return v == "1" || v == "true" || v == "yes"
}
