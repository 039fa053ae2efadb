package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/bleradar/internal/discovery"
	"github.com/muurk/bleradar/internal/logging"
)

// shutdownTimeout bounds Shutdown when the caller's context has no deadline.
const shutdownTimeout = 10 * time.Second

// Config holds the server configuration
type Config struct {
	Host     string
	Port     int
	CertPath string // HTTPS when both CertPath and KeyPath are set
	KeyPath  string

	// Advertise registers the server via mDNS under Instance.
	Advertise bool
	Instance  string
}

// Server serves the latest snapshots over HTTP and WebSocket.
type Server struct {
	config    *Config
	tlsConfig *tls.Config
	hub       *Hub
	handler   http.Handler

	mu       sync.RWMutex
	latest   map[string]*discovery.Snapshot
	listener net.Listener
	http     *http.Server
	mdns     *zeroconf.Server
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	var tlsConfig *tls.Config
	if config.CertPath != "" || config.KeyPath != "" {
		if config.CertPath == "" || config.KeyPath == "" {
			return nil, fmt.Errorf("both cert and key are required for TLS")
		}
		var err error
		tlsConfig, err = NewTLSConfig(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	s := &Server{
		config:    config,
		tlsConfig: tlsConfig,
		hub:       NewHub(),
		latest:    make(map[string]*discovery.Snapshot),
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Publish stores snap as its adapter's latest snapshot and broadcasts it.
func (s *Server) Publish(ctx context.Context, snap *discovery.Snapshot) error {
	s.mu.Lock()
	_, known := s.latest[snap.Adapter]
	s.latest[snap.Adapter] = snap
	mdns := s.mdns
	s.mu.Unlock()

	if !known && mdns != nil {
		mdns.SetText(s.txtRecords())
	}

	s.hub.Broadcast(snap)
	return nil
}

// Snapshots returns the latest snapshot of every adapter, ordered by adapter.
func (s *Server) Snapshots() []*discovery.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*discovery.Snapshot, 0, len(s.latest))
	for _, snap := range s.latest {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Adapter < out[j].Adapter })
	return out
}

// Snapshot returns the latest snapshot of one adapter.
func (s *Server) Snapshot(adapter string) (*discovery.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.latest[adapter]
	return snap, ok
}

// Adapters returns the ids of every adapter that has published.
func (s *Server) Adapters() []string {
	snaps := s.Snapshots()
	out := make([]string, len(snaps))
	for i, snap := range snaps {
		out[i] = snap.Adapter
	}
	return out
}

// Start listens and serves until ctx is done, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	addr := net.JoinHostPort(s.config.Host, fmt.Sprintf("%d", s.config.Port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if s.tlsConfig != nil {
		listener = tls.NewListener(listener, s.tlsConfig)
	}

	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	s.listener = listener
	s.http = httpServer
	s.mu.Unlock()

	logging.Info("Snapshot server listening",
		zap.String("addr", listener.Addr().String()),
		zap.Any("tls", GetTLSInfo(s.tlsConfig)),
	)

	if s.config.Advertise {
		if err := s.advertise(listener.Addr()); err != nil {
			logging.Warn("mDNS advertisement failed", zap.Error(err))
		}
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// advertise registers the server on the local network.
func (s *Server) advertise(addr net.Addr) error {
	port := s.config.Port
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = tcp.Port
	}
	instance := s.config.Instance
	if instance == "" {
		host, _ := osHostname()
		instance = "bleradar on " + host
	}

	mdns, err := zeroconf.Register(instance, discovery.ServiceType, discovery.ServiceDomain, port, s.txtRecords(), nil)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.mdns = mdns
	s.mu.Unlock()

	logging.Info("Advertising via mDNS",
		zap.String("instance", instance),
		zap.String("service", discovery.ServiceType),
		zap.Int("port", port),
	)
	return nil
}

// Shutdown stops advertising, closes WebSocket clients and stops the HTTP
// server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down snapshot server...")

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
	}

	s.mu.Lock()
	mdns, httpServer := s.mdns, s.http
	s.mdns = nil
	s.mu.Unlock()

	if mdns != nil {
		mdns.Shutdown()
	}

	s.hub.closeAll()

	if httpServer == nil {
		return nil
	}
	if err := httpServer.Shutdown(ctx); err != nil {
		logging.Warn("Shutdown timeout, forcing close", zap.Error(err))
		return httpServer.Close()
	}
	return nil
}

// GetActiveConnections returns the number of WebSocket clients
func (s *Server) GetActiveConnections() int {
	return s.hub.ClientCount()
}
