package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fo76bot/fo76bot/internal/bot"
	"github.com/fo76bot/fo76bot/internal/config"
)

const broadcastInterval = 2 * time.Second

// StatusProvider is the supervisor as seen by the status endpoints.
type StatusProvider interface {
	Status() bot.Status
}

type HttpServer struct {
	logger   *slog.Logger
	server   *http.Server
	status   StatusProvider
	wsServer *WebSocketServer
	mux      *http.ServeMux
}

func New(logger *slog.Logger, status StatusProvider) *HttpServer {
	s := &HttpServer{
		logger:   logger,
		status:   status,
		wsServer: NewWebSocketServer(logger),
		mux:      http.NewServeMux(),
	}

	s.mux.HandleFunc("/api/status", s.getStatus)
	s.mux.HandleFunc("/api/config", s.config)
	s.mux.HandleFunc("/ws", s.wsServer.HandleWebSocket)

	return s
}

// Handler exposes the routes without a listener.
func (s *HttpServer) Handler() http.Handler {
	return s.mux
}

func (s *HttpServer) Listen(ctx context.Context, port int) error {
	go s.wsServer.Run(ctx)
	go s.BroadcastStatus(ctx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Status server listening", slog.Int("port", port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HttpServer) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// BroadcastStatus pushes the status to every websocket client until ctx ends.
func (s *HttpServer) BroadcastStatus(ctx context.Context) {
	ticker := time.NewTicker(broadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			jsonData, err := json.Marshal(s.status.Status())
			if err != nil {
				s.logger.Error("Failed to marshal status data", slog.Any("error", err))
				continue
			}
			s.wsServer.Broadcast(jsonData)
		}
	}
}

func (s *HttpServer) getStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, s.status.Status())
}

func (s *HttpServer) config(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, config.Current())
	case http.MethodPut:
		cfg := config.Current()
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			http.Error(w, fmt.Sprintf("invalid config: %v", err), http.StatusBadRequest)
			return
		}
		if err := config.ValidateAndSaveConfig(cfg); err != nil {
			s.logger.Warn("Rejected config update", slog.Any("error", err))
			status := http.StatusInternalServerError
			if errors.Is(err, config.ErrInvalidPath) {
				status = http.StatusUnprocessableEntity
			}
			http.Error(w, err.Error(), status)
			return
		}
		s.logger.Info("Config updated, changes apply on next restart")
		writeJSON(w, http.StatusOK, config.Current())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
