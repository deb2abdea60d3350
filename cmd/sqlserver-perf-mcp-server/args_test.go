package main

import (
	"strings"
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		wantAction     string
		wantConfigPath string
		wantValidPath  string
		wantErr        bool
		errContains    string
	}{
		{
			name:       "no args",
			args:       []string{},
			wantAction: "",
		},
		{
			name:       "version flag",
			args:       []string{"--version"},
			wantAction: "version",
		},
		{
			name:       "version short flag",
			args:       []string{"-v"},
			wantAction: "version",
		},
		{
			name:       "help flag",
			args:       []string{"--help"},
			wantAction: "help",
		},
		{
			name:       "help short flag",
			args:       []string{"-h"},
			wantAction: "help",
		},
		{
			name:       "help command",
			args:       []string{"help"},
			wantAction: "help",
		},
		{
			name:           "config with path",
			args:           []string{"--config", "/path/to/config.yaml"},
			wantConfigPath: "/path/to/config.yaml",
		},
		{
			name:           "config short flag",
			args:           []string{"-c", "/path/to/config.yaml"},
			wantConfigPath: "/path/to/config.yaml",
		},
		{
			name:           "config equals format",
			args:           []string{"--config=/path/to/config.yaml"},
			wantConfigPath: "/path/to/config.yaml",
		},
		{
			name:        "config missing path",
			args:        []string{"--config"},
			wantErr:     true,
			errContains: "--config requires a path argument",
		},
		{
			name:       "print-config alone",
			args:       []string{"--print-config"},
			wantAction: "print-config",
		},
		{
			name:          "validate-config with path",
			args:          []string{"--validate-config", "/path/to/config.yaml"},
			wantAction:    "validate-config",
			wantValidPath: "/path/to/config.yaml",
		},
		{
			name:        "validate-config missing path",
			args:        []string{"--validate-config"},
			wantErr:     true,
			errContains: "--validate-config requires a path argument",
		},
		{
			name:           "config then print-config",
			args:           []string{"--config", "/path/to/config.yaml", "--print-config"},
			wantAction:     "print-config",
			wantConfigPath: "/path/to/config.yaml",
		},
		{
			name:           "print-config then config",
			args:           []string{"--print-config", "--config", "/path/to/config.yaml"},
			wantAction:     "print-config",
			wantConfigPath: "/path/to/config.yaml",
		},
		{
			name:           "config then validate-config",
			args:           []string{"--config", "/base/config.yaml", "--validate-config", "/other/config.yaml"},
			wantAction:     "validate-config",
			wantConfigPath: "/base/config.yaml",
			wantValidPath:  "/other/config.yaml",
		},
		{
			name:        "unknown flag",
			args:        []string{"--unknown"},
			wantErr:     true,
			errContains: "unknown flag",
		},
		{
			name:        "unknown flag after config",
			args:        []string{"--config", "/path/to/config.yaml", "--badarg"},
			wantErr:     true,
			errContains: "unknown flag",
		},
		{
			name:       "version stops processing",
			args:       []string{"--version", "--print-config"},
			wantAction: "version",
		},
		{
			name:       "help stops processing",
			args:       []string{"--help", "--config", "/path"},
			wantAction: "help",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseArgs(tt.args)

			if tt.wantErr {
				if result.err == nil {
					t.Fatalf("parseArgs() expected error containing %q, got nil", tt.errContains)
				}
				if !strings.Contains(result.err.Error(), tt.errContains) {
					t.Errorf("parseArgs() error = %q, want error containing %q", result.err.Error(), tt.errContains)
				}
				return
			}

			if result.err != nil {
				t.Fatalf("parseArgs() unexpected error: %v", result.err)
			}
			if result.action != tt.wantAction {
				t.Errorf("parseArgs() action = %q, want %q", result.action, tt.wantAction)
			}
			if result.configPath != tt.wantConfigPath {
				t.Errorf("parseArgs() configPath = %q, want %q", result.configPath, tt.wantConfigPath)
			}
			if result.validatePath != tt.wantValidPath {
				t.Errorf("parseArgs() validatePath = %q, want %q", result.validatePath, tt.wantValidPath)
			}
		})
	}
}

func TestUsageMentionsAllFlags(t *testing.T) {
	out := usage()
	for _, flag := range []string{"--version", "--help", "--config", "--print-config", "--validate-config"} {
		if !strings.Contains(out, flag) {
			t.Errorf("usage() missing %s", flag)
		}
	}
}
