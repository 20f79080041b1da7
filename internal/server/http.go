package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/zeusync/robofield/internal/core/models"
	"github.com/zeusync/robofield/internal/core/observability/log"
)

const shutdownTimeout = 5 * time.Second

// HTTPServer serves the spectator endpoints:
//
//	/ws       websocket frame feed
//	/frame    latest frame as JSON
//	/healthz  liveness
type HTTPServer struct {
	addr      string
	server    *http.Server
	mu        sync.Mutex
	listener  net.Listener
	frames    models.FrameSource
	spectator *Spectator
	logger    log.Log
}

func NewHTTPServer(addr string, frames models.FrameSource, spectator *Spectator, logger log.Log) *HTTPServer {
	if logger == nil {
		logger = log.NewNop()
	}
	s := &HTTPServer{
		addr:      addr,
		frames:    frames,
		spectator: spectator,
		logger:    logger.With(log.String("component", "http")),
	}
	s.server = &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/ws":
		if s.spectator == nil {
			http.NotFound(w, r)
			return
		}
		s.spectator.handleWebSocket(w, r)
	case "/frame":
		s.handleFrame(w, r)
	case "/healthz":
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	default:
		http.NotFound(w, r)
	}
}

// Start binds the listener and serves in the background.
func (s *HTTPServer) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return errors.Join(ErrListenerFailed, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.logger.Info("Spectator feed listening", log.String("addr", listener.Addr().String()))

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", log.Error(err))
		}
	}()
	return nil
}

// Serve starts the server and blocks until ctx is cancelled.
func (s *HTTPServer) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(shutdownCtx)
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.spectator != nil {
		s.spectator.CloseAll()
	}
	if err := s.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Spectator feed stopped")
	return nil
}

// Addr is the bound address, nil before Start.
func (s *HTTPServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *HTTPServer) handleFrame(w http.ResponseWriter, _ *http.Request) {
	var frame *models.Frame
	if s.frames != nil {
		frame = s.frames.Frame()
	}
	if frame == nil {
		http.Error(w, "no frame yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(frame); err != nil {
		s.logger.Warn("Failed to write frame", log.Error(err))
	}
}
