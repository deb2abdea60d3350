// internal/config/file.go
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk configuration shape (YAML or JSON).
type FileConfig struct {
	Connection FileConnectionConfig `yaml:"connection" json:"connection"`
	Query      FileQueryConfig      `yaml:"query" json:"query"`
	Logging    FileLoggingConfig    `yaml:"logging" json:"logging"`
	HTTP       FileHTTPConfig       `yaml:"http" json:"http"`
}

// FileConnectionConfig mirrors the SCHCRWLR_* connection variables.
type FileConnectionConfig struct {
	Server                 string `yaml:"server" json:"server"`
	Host                   string `yaml:"host" json:"host"`
	Port                   int    `yaml:"port" json:"port"`
	Database               string `yaml:"database" json:"database"`
	ConnectionURL          string `yaml:"connection_url" json:"connection_url"`
	Username               string `yaml:"username" json:"username"`
	Password               string `yaml:"password" json:"password"`
	Encrypt                bool   `yaml:"encrypt" json:"encrypt"`
	TrustServerCertificate *bool  `yaml:"trust_server_certificate" json:"trust_server_certificate"`
}

type FileQueryConfig struct {
	MaxRows        int `yaml:"max_rows" json:"max_rows"`
	TimeoutSeconds int `yaml:"timeout_seconds" json:"timeout_seconds"`
}

type FileLoggingConfig struct {
	JSONFormat    bool   `yaml:"json_format" json:"json_format"`
	AuditLogPath  string `yaml:"audit_log_path" json:"audit_log_path"`
	TokenTracking bool   `yaml:"token_tracking" json:"token_tracking"`
	TokenModel    string `yaml:"token_model" json:"token_model"`
}

type FileHTTPConfig struct {
	Enabled               bool                `yaml:"enabled" json:"enabled"`
	Port                  int                 `yaml:"port" json:"port"`
	RequestTimeoutSeconds int                 `yaml:"request_timeout_seconds" json:"request_timeout_seconds"`
	Monitoring            *bool               `yaml:"monitoring" json:"monitoring"`
	RateLimit             FileRateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

type FileRateLimitConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
	RPS     int  `yaml:"rps" json:"rps"`
	Burst   int  `yaml:"burst" json:"burst"`
}

// ConfigFilePath holds the path given by the --config flag.
var ConfigFilePath string

// FindConfigFile searches the standard locations for a config file and
// returns the first match, or empty string if none is found.
func FindConfigFile() string {
	if ConfigFilePath != "" {
		return ConfigFilePath
	}
	if envPath := os.Getenv("MSSQL_MCP_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"sqlserver-perf-mcp-server.yaml",
		"sqlserver-perf-mcp-server.yml",
		"sqlserver-perf-mcp-server.json",
	}
	for _, name := range candidates {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		for _, name := range candidates {
			path := filepath.Join(homeDir, ".config", "sqlserver-perf-mcp-server", name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}

	return ""
}

// LoadConfigFile loads configuration from a YAML or JSON file.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		// Try YAML first, then JSON, with separate targets so a partial
		// YAML parse cannot leak into the JSON attempt.
		var yamlCfg FileConfig
		if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
			var jsonCfg FileConfig
			if err := json.Unmarshal(data, &jsonCfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file (tried YAML and JSON): %w", err)
			}
			cfg = jsonCfg
		} else {
			cfg = yamlCfg
		}
	}

	return &cfg, nil
}

// ValidateConfigFile parses a config file and checks its connection section
// without starting the server.
func ValidateConfigFile(path string) error {
	fc, err := LoadConfigFile(path)
	if err != nil {
		return err
	}
	cfg := fc.ToConfig()
	// Environment can still supply credentials, so only check the parts a
	// file is expected to carry on its own.
	if cfg.ConnectionURL == "" && (cfg.Server == "" || cfg.Host == "" || cfg.Database == "") {
		return fmt.Errorf("connection section must set either connection_url or server, host, and database")
	}
	if cfg.Server != "" && cfg.Server != "sqlserver" {
		return fmt.Errorf("unsupported server type %q: only 'sqlserver' is supported", cfg.Server)
	}
	return nil
}

// ToConfig converts a FileConfig into a runtime Config over the defaults.
// Environment variables are applied on top by the caller.
func (fc *FileConfig) ToConfig() *Config {
	cfg := Defaults()

	cfg.Server = strings.ToLower(fc.Connection.Server)
	cfg.Host = fc.Connection.Host
	cfg.Port = fc.Connection.Port
	cfg.Database = fc.Connection.Database
	cfg.ConnectionURL = fc.Connection.ConnectionURL
	cfg.Username = fc.Connection.Username
	cfg.Password = fc.Connection.Password
	cfg.Encrypt = fc.Connection.Encrypt
	if fc.Connection.TrustServerCertificate != nil {
		cfg.TrustServerCertificate = *fc.Connection.TrustServerCertificate
	}

	if fc.Query.MaxRows > 0 {
		cfg.MaxRows = fc.Query.MaxRows
	}
	if fc.Query.TimeoutSeconds > 0 {
		cfg.QueryTimeout = time.Duration(fc.Query.TimeoutSeconds) * time.Second
	}

	cfg.JSONLogging = fc.Logging.JSONFormat
	cfg.AuditLogPath = fc.Logging.AuditLogPath
	cfg.TokenTracking = fc.Logging.TokenTracking
	if strings.TrimSpace(fc.Logging.TokenModel) != "" {
		cfg.TokenModel = strings.TrimSpace(fc.Logging.TokenModel)
	}

	cfg.HTTPMode = fc.HTTP.Enabled
	if fc.HTTP.Port > 0 {
		cfg.HTTPPort = fc.HTTP.Port
	}
	if fc.HTTP.RequestTimeoutSeconds > 0 {
		cfg.HTTPRequestTimeout = time.Duration(fc.HTTP.RequestTimeoutSeconds) * time.Second
	}
	if fc.HTTP.Monitoring != nil {
		cfg.HTTPMonitoring = *fc.HTTP.Monitoring
	}
	cfg.RateLimitEnabled = fc.HTTP.RateLimit.Enabled
	if fc.HTTP.RateLimit.RPS > 0 {
		cfg.RateLimitRPS = float64(fc.HTTP.RateLimit.RPS)
	}
	if fc.HTTP.RateLimit.Burst > 0 {
		cfg.RateLimitBurst = fc.HTTP.RateLimit.Burst
	}

	return cfg
}

// PrintConfig renders the configuration as YAML with secrets masked.
func PrintConfig(cfg *Config) string {
	trust := cfg.TrustServerCertificate
	monitoring := cfg.HTTPMonitoring
	fc := &FileConfig{
		Connection: FileConnectionConfig{
			Server:                 cfg.Server,
			Host:                   cfg.Host,
			Port:                   cfg.Port,
			Database:               cfg.Database,
			ConnectionURL:          MaskConnectionURL(cfg.ConnectionURL),
			Username:               cfg.Username,
			Password:               maskSecret(cfg.Password),
			Encrypt:                cfg.Encrypt,
			TrustServerCertificate: &trust,
		},
		Query: FileQueryConfig{
			MaxRows:        cfg.MaxRows,
			TimeoutSeconds: int(cfg.QueryTimeout.Seconds()),
		},
		Logging: FileLoggingConfig{
			JSONFormat:    cfg.JSONLogging,
			AuditLogPath:  cfg.AuditLogPath,
			TokenTracking: cfg.TokenTracking,
			TokenModel:    cfg.TokenModel,
		},
		HTTP: FileHTTPConfig{
			Enabled:               cfg.HTTPMode,
			Port:                  cfg.HTTPPort,
			RequestTimeoutSeconds: int(cfg.HTTPRequestTimeout.Seconds()),
			Monitoring:            &monitoring,
			RateLimit: FileRateLimitConfig{
				Enabled: cfg.RateLimitEnabled,
				RPS:     int(cfg.RateLimitRPS),
				Burst:   cfg.RateLimitBurst,
			},
		},
	}

	data, _ := yaml.Marshal(fc)
	return string(data)
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

// MaskConnectionURL hides the password in a sqlserver:// URL for display.
// Strings that do not parse as URLs are returned unchanged.
func MaskConnectionURL(connURL string) string {
	if connURL == "" {
		return ""
	}
	u, err := url.Parse(connURL)
	if err != nil || u.User == nil {
		return connURL
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "***")
		return u.String()
	}
	return connURL
}
