package server

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/muurk/bleradar/internal/logging"
	"github.com/muurk/bleradar/internal/version"
)

// osHostname is replaced in tests.
var osHostname = os.Hostname

// Health is the body of GET /healthz.
type Health struct {
	Status   string       `json:"status"`
	Version  version.Info `json:"version"`
	Adapters []string     `json:"adapters"`
	Clients  int          `json:"clients"`
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/snapshot", s.handleSnapshots)
	r.Get("/snapshot/{adapter}", s.handleSnapshot)
	r.Get("/ws", s.handleWebSocket)
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.String("remote_addr", r.RemoteAddr),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Health{
		Status:   "ok",
		Version:  version.Get(),
		Adapters: s.Adapters(),
		Clients:  s.hub.ClientCount(),
	})
}

func (s *Server) handleSnapshots(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Snapshots())
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	adapter := chi.URLParam(r, "adapter")
	snap, ok := s.Snapshot(adapter)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no snapshot for adapter " + adapter,
		})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	c := &client{
		hub:        s.hub,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		remoteAddr: r.RemoteAddr,
	}

	// Queue the current state before registering so that the first
	// broadcast cannot overtake it.
	for _, snap := range s.Snapshots() {
		if data, err := encodeSnapshot(snap); err == nil {
			c.trySend(data)
		}
	}
	s.hub.register(c)

	go c.writePump()
	go c.readPump()
}

// txtRecords describes this instance for mDNS browsers.
func (s *Server) txtRecords() []string {
	return []string{
		"version=" + version.Version,
		"adapters=" + strings.Join(s.Adapters(), ","),
		"path=/ws",
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("Failed to write response", zap.Error(err))
	}
}
