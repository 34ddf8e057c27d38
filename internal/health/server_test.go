package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubLoop struct {
	running bool
}

func (s stubLoop) IsRunning() bool { return s.running }

// TestHandleHealth tests the basic liveness endpoint
func TestHandleHealth(t *testing.T) {
	s := NewServer(Config{ServiceName: "saddleup", Version: "1.2.3", Commit: "abc123"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("expected valid JSON response, got %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got '%s'", resp.Status)
	}
	if resp.Service != "saddleup" {
		t.Errorf("expected service 'saddleup', got '%s'", resp.Service)
	}
	if resp.Version != "1.2.3" {
		t.Errorf("expected version '1.2.3', got '%s'", resp.Version)
	}
}

// TestHandleReadyBeforeStartup tests that readiness starts out false
func TestHandleReadyBeforeStartup(t *testing.T) {
	s := NewServer(Config{ServiceName: "saddleup"})

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	s.handleReady(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503 before SetReady, got %d", rec.Code)
	}

	var resp ReadyResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("expected valid JSON response, got %v", err)
	}
	if resp.Checks["service"] != "not_ready" {
		t.Errorf("expected service check 'not_ready', got '%s'", resp.Checks["service"])
	}
}

// TestHandleReadyTracksLoop tests that readiness follows the game loop
func TestHandleReadyTracksLoop(t *testing.T) {
	cases := []struct {
		name     string
		running  bool
		wantCode int
		wantLoop string
	}{
		{"loop running", true, http.StatusOK, "ok"},
		{"loop stopped", false, http.StatusServiceUnavailable, "stopped"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewServer(Config{ServiceName: "saddleup", Loop: stubLoop{running: tc.running}})
			s.SetReady(true)

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			rec := httptest.NewRecorder()
			s.handleReady(rec, req)

			if rec.Code != tc.wantCode {
				t.Fatalf("expected status %d, got %d", tc.wantCode, rec.Code)
			}

			var resp ReadyResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("expected valid JSON response, got %v", err)
			}
			if resp.Checks["game_loop"] != tc.wantLoop {
				t.Errorf("expected game_loop check '%s', got '%s'", tc.wantLoop, resp.Checks["game_loop"])
			}
		})
	}
}

// TestHandleLive tests the kubernetes liveness probe endpoint
func TestHandleLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "saddleup"})

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rec := httptest.NewRecorder()
	s.handleLive(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
