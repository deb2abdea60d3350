// cmd/sqlserver-perf-mcp-server/token_estimator.go
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// TokenEstimator counts tokens for a given text.
// Intentionally small so the implementation can be swapped later.
type TokenEstimator interface {
	Model() string
	Count(text string) (int, error)
}

type tiktokenEstimator struct {
	model string
	mu    sync.Mutex
	enc   *tiktoken.Tiktoken
}

func (e *tiktokenEstimator) Model() string { return e.model }

func (e *tiktokenEstimator) Count(text string) (int, error) {
	// tiktoken-go encoders are not documented as goroutine-safe
	e.mu.Lock()
	defer e.mu.Unlock()

	toks := e.enc.Encode(text, nil, nil)
	return len(toks), nil
}

func NewTokenEstimator(model string) (TokenEstimator, error) {
	if model == "" {
		model = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(model)
	if err != nil {
		return nil, fmt.Errorf("get encoding %q: %w", model, err)
	}
	return &tiktokenEstimator{model: model, enc: enc}, nil
}

// TokenUsage is the estimated token footprint of one tool call.
type TokenUsage struct {
	InputEstimated  int    `json:"input_estimated"`
	OutputEstimated int    `json:"output_estimated"`
	TotalEstimated  int    `json:"total_estimated"`
	Model           string `json:"model,omitempty"`
}

const (
	// Cap estimation payload size so large result sets do not force
	// huge serializations just to count tokens.
	maxTokenEstimationBytes = 1 << 20 // 1 MiB
)

var errLimitExceeded = errors.New("size limit exceeded")

// limitedWriter stops accepting writes once the limit is reached.
type limitedWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if w.buf.Len()+len(p) > w.limit {
		remaining := w.limit - w.buf.Len()
		if remaining > 0 {
			w.buf.Write(p[:remaining])
		}
		return len(p), errLimitExceeded
	}
	return w.buf.Write(p)
}

// estimateTokensForValue JSON-encodes v and counts its tokens. Payloads
// over the cap fall back to a bytes/4 heuristic.
func estimateTokensForValue(v any) (int, error) {
	if !tokenTracking || tokenEstimator == nil {
		return 0, nil
	}

	buf := &bytes.Buffer{}
	lw := &limitedWriter{buf: buf, limit: maxTokenEstimationBytes}
	enc := json.NewEncoder(lw)

	err := enc.Encode(v)
	if errors.Is(err, errLimitExceeded) {
		return maxTokenEstimationBytes / 4, nil
	}
	if err != nil {
		return 0, err
	}

	return tokenEstimator.Count(buf.String())
}
