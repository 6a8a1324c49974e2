package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fo76bot/fo76bot/internal/bot"
)

type fixedStatus struct {
	status bot.Status
}

func (f fixedStatus) Status() bot.Status {
	return f.status
}

func newTestServer() *HttpServer {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, fixedStatus{status: bot.Status{
		Name:     "fo76",
		State:    bot.StateRunning,
		Restarts: 3,
		Bot:      bot.Stats{Polls: 12},
	}})
}

func TestGetStatus(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got struct {
		Name     string `json:"name"`
		State    string `json:"state"`
		Restarts int    `json:"restarts"`
		Bot      struct {
			Polls        int `json:"polls"`
			LastDecision struct {
				Action string `json:"action"`
			} `json:"lastDecision"`
		} `json:"bot"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got.Name != "fo76" || got.State != "Running" || got.Restarts != 3 || got.Bot.Polls != 12 {
		t.Errorf("unexpected status %+v", got)
	}
	if got.Bot.LastDecision.Action != "None" {
		t.Errorf("last action = %q, want None", got.Bot.LastDecision.Action)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/status"},
		{http.MethodDelete, "/api/config"},
		{http.MethodPost, "/api/config"},
	}

	srv := newTestServer()
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("status code = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
			}
		})
	}
}

func TestGetConfig(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d, want %d", rec.Code, http.StatusOK)
	}
	var cfg map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&cfg); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if _, ok := cfg["Server"]; !ok {
		t.Errorf("config response missing Server section: %v", cfg)
	}
}

func TestPutConfigRejectsBadJSON(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/config", strings.NewReader("{not json"))
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPutConfigRejectsMissingGame(t *testing.T) {
	srv := newTestServer()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/config", strings.NewReader(`{"GamePath": ""}`))
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status code = %d, want %d", rec.Code, http.StatusUnprocessableEntity)
	}
}

func TestBroadcastKeepsLatest(t *testing.T) {
	ws := NewWebSocketServer(slog.New(slog.NewTextHandler(io.Discard, nil)))

	ws.Broadcast([]byte("first"))
	ws.Broadcast([]byte("second"))

	if got := string(<-ws.broadcast); got != "second" {
		t.Errorf("queued message = %q, want second", got)
	}
}
