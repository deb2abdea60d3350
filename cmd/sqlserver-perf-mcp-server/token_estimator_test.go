// cmd/sqlserver-perf-mcp-server/token_estimator_test.go
package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewTokenEstimatorAndCount(t *testing.T) {
	est, err := NewTokenEstimator("cl100k_base")
	if err != nil {
		t.Fatalf("NewTokenEstimator failed: %v", err)
	}
	n, err := est.Count(`{"success":true,"row_count":10}`)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n <= 0 {
		t.Fatalf("expected token count > 0, got %d", n)
	}
}

func TestNewTokenEstimatorDefaultModel(t *testing.T) {
	est, err := NewTokenEstimator("")
	if err != nil {
		t.Fatalf("NewTokenEstimator with empty model failed: %v", err)
	}
	if est.Model() != "cl100k_base" {
		t.Errorf("expected model 'cl100k_base', got %q", est.Model())
	}
}

func TestNewTokenEstimatorInvalidModel(t *testing.T) {
	if _, err := NewTokenEstimator("invalid_model_xyz"); err == nil {
		t.Fatal("expected error for invalid model, got nil")
	}
}

func TestTokenEstimatorVariousInputs(t *testing.T) {
	est, err := NewTokenEstimator("cl100k_base")
	if err != nil {
		t.Fatalf("NewTokenEstimator failed: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		minCount int
	}{
		{"empty string", "", 0},
		{"single word", "hello", 1},
		{"SQL query", "SELECT TOP 10 wait_type, wait_time_ms FROM sys.dm_os_wait_stats", 10},
		{"JSON object", `{"metric":"cpu","row_count":10,"success":true}`, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n, err := est.Count(tc.input)
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if n < tc.minCount {
				t.Errorf("expected at least %d tokens, got %d", tc.minCount, n)
			}
		})
	}
}

func TestEstimateTokensForValueDisabled(t *testing.T) {
	origTracking := tokenTracking
	origEstimator := tokenEstimator
	defer func() {
		tokenTracking = origTracking
		tokenEstimator = origEstimator
	}()

	tokenTracking = false
	tokenEstimator = nil

	n, err := estimateTokensForValue(map[string]string{"key": "value"})
	if err != nil {
		t.Fatalf("estimateTokensForValue failed: %v", err)
	}
	if n != 0 {
		t.Errorf("disabled tracking should report 0 tokens, got %d", n)
	}
}

func TestEstimateTokensForValueEnabled(t *testing.T) {
	origTracking := tokenTracking
	origEstimator := tokenEstimator
	defer func() {
		tokenTracking = origTracking
		tokenEstimator = origEstimator
	}()

	est, err := NewTokenEstimator("cl100k_base")
	if err != nil {
		t.Fatalf("NewTokenEstimator failed: %v", err)
	}
	tokenTracking = true
	tokenEstimator = est

	n, err := estimateTokensForValue(MonitoringOutput{
		Message:  "Wait statistics information retrieved successfully",
		RowCount: 20,
		Success:  true,
	})
	if err != nil {
		t.Fatalf("estimateTokensForValue failed: %v", err)
	}
	if n <= 0 {
		t.Errorf("expected token count > 0, got %d", n)
	}
}

func TestEstimateTokensForValueFallsBackOverLimit(t *testing.T) {
	origTracking := tokenTracking
	origEstimator := tokenEstimator
	defer func() {
		tokenTracking = origTracking
		tokenEstimator = origEstimator
	}()

	est, err := NewTokenEstimator("cl100k_base")
	if err != nil {
		t.Fatalf("NewTokenEstimator failed: %v", err)
	}
	tokenTracking = true
	tokenEstimator = est

	// Serializes to well over the 1 MiB cap.
	huge := strings.Repeat("x", maxTokenEstimationBytes+1024)
	n, err := estimateTokensForValue(huge)
	if err != nil {
		t.Fatalf("estimateTokensForValue failed: %v", err)
	}
	if n != maxTokenEstimationBytes/4 {
		t.Errorf("expected heuristic %d tokens, got %d", maxTokenEstimationBytes/4, n)
	}
}

func TestLimitedWriterStopsAtLimit(t *testing.T) {
	lw := &limitedWriter{buf: &bytes.Buffer{}, limit: 10}

	if _, err := lw.Write([]byte("12345")); err != nil {
		t.Fatalf("write under the limit failed: %v", err)
	}
	if _, err := lw.Write([]byte("6789012345")); err != errLimitExceeded {
		t.Fatalf("expected errLimitExceeded, got %v", err)
	}
	if lw.buf.Len() != 10 {
		t.Errorf("buffer should stop at the limit, got %d bytes", lw.buf.Len())
	}
}
