// internal/api/middleware_test.go
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestWithCORS(t *testing.T) {
	handler := WithCORS(func(w http.ResponseWriter, r *http.Request) {
		WriteSuccess(w, nil)
	})

	req := httptest.NewRequest("OPTIONS", "/api/waits", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("OPTIONS request should return 200, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/waits", nil)
	w = httptest.NewRecorder()
	handler(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}

func TestRequireGET(t *testing.T) {
	handler := RequireGET(func(w http.ResponseWriter, r *http.Request) {
		WriteSuccess(w, "ok")
	})

	req := httptest.NewRequest("GET", "/api/waits", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET request should return 200, got %d", w.Code)
	}

	req = httptest.NewRequest("POST", "/api/waits", nil)
	w = httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST request should return 405, got %d", w.Code)
	}

	// OPTIONS passes through for CORS preflight
	req = httptest.NewRequest("OPTIONS", "/api/waits", nil)
	w = httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("OPTIONS request should return 200, got %d", w.Code)
	}
}

func TestWithTimeout(t *testing.T) {
	handler := WithTimeout(50*time.Millisecond, func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Deadline(); !ok {
			t.Error("request context should carry a deadline")
		}
		WriteSuccess(w, "ok")
	})

	req := httptest.NewRequest("GET", "/api/waits", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

func TestRequireFeature(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		WriteSuccess(w, "feature enabled")
	}

	enabledHandler := RequireFeature(true, "HTTP API", handler)
	req := httptest.NewRequest("GET", "/api/waits", nil)
	w := httptest.NewRecorder()
	enabledHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("enabled feature should return 200, got %d", w.Code)
	}

	disabledHandler := RequireFeature(false, "HTTP API", handler)
	req = httptest.NewRequest("GET", "/api/waits", nil)
	w = httptest.NewRecorder()
	disabledHandler(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("disabled feature should return 404, got %d", w.Code)
	}

	var resp Response
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Error != "HTTP API not enabled" {
		t.Errorf("unexpected error message: %s", resp.Error)
	}
}

func TestRequireQueryParams(t *testing.T) {
	handler := RequireQueryParams("database_name", "table_name")(func(w http.ResponseWriter, r *http.Request) {
		WriteSuccess(w, "ok")
	})

	req := httptest.NewRequest("GET", "/api/column-statistics?database_name=AdventureWorks&table_name=Person", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("request with all params should return 200, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/column-statistics?database_name=AdventureWorks", nil)
	w = httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("request with missing param should return 400, got %d", w.Code)
	}

	var resp Response
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Error != "table_name parameter is required" {
		t.Errorf("unexpected error message: %s", resp.Error)
	}
}

func TestWithLogging(t *testing.T) {
	var gotMethod, gotPath string
	var gotStatus int
	var gotDuration time.Duration

	handler := WithLogging(func(method, path string, status int, duration time.Duration) {
		gotMethod, gotPath, gotStatus, gotDuration = method, path, status, duration
	})(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "nope")
	})

	req := httptest.NewRequest("GET", "/api/missing", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if gotMethod != "GET" || gotPath != "/api/missing" {
		t.Errorf("logged %s %s, want GET /api/missing", gotMethod, gotPath)
	}
	if gotStatus != http.StatusNotFound {
		t.Errorf("logged status %d, want 404", gotStatus)
	}
	if gotDuration < 0 {
		t.Errorf("negative duration %s", gotDuration)
	}
}

func TestWithLoggingDefaultStatus(t *testing.T) {
	var gotStatus int
	handler := WithLogging(func(_, _ string, status int, _ time.Duration) {
		gotStatus = status
	})(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok")) // no explicit WriteHeader
	})

	handler(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	if gotStatus != http.StatusOK {
		t.Errorf("logged status %d, want 200", gotStatus)
	}
}

func TestChain(t *testing.T) {
	called := false
	handler := Chain(
		func(w http.ResponseWriter, r *http.Request) {
			called = true
			WriteSuccess(w, "ok")
		},
		WithCORS,
		RequireGET,
	)

	req := httptest.NewRequest("GET", "/api/waits", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if !called {
		t.Error("handler was not called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}
