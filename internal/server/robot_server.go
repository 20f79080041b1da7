package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zeusync/robofield/internal/core/events/bus"
	"github.com/zeusync/robofield/internal/core/observability/log"
	"github.com/zeusync/robofield/internal/core/protocol"
)

// Config holds the settings of one robot listener.
type Config struct {
	Name       string
	ListenAddr string

	// AcceptRetryDelay is the pause after a failed Accept.
	AcceptRetryDelay time.Duration
	// MaxLineLength bounds a single request line.
	MaxLineLength int
}

func DefaultConfig() Config {
	return Config{
		ListenAddr:       "127.0.0.1:5000",
		AcceptRetryDelay: 100 * time.Millisecond,
		MaxLineLength:    4096,
	}
}

// ConnectionEvent is published on connect and disconnect.
type ConnectionEvent struct {
	Robot      string
	Session    string
	RemoteAddr string
	Commands   int
}

// RobotServer exposes one robot over TCP. Connections are served one at a
// time: the next client is accepted only after the current one leaves.
type RobotServer struct {
	config  Config
	handler *protocol.Handler
	events  bus.EventBus
	logger  log.Log

	listener net.Listener
	running  atomic.Bool
	closed   atomic.Bool
	done     chan struct{}

	// connMu guards listener and conn.
	connMu sync.Mutex
	conn   net.Conn

	sessions atomic.Int64
}

type Option func(*RobotServer)

func WithEvents(events bus.EventBus) Option {
	return func(s *RobotServer) { s.events = events }
}

func NewRobotServer(config Config, handler *protocol.Handler, logger log.Log, opts ...Option) *RobotServer {
	defaults := DefaultConfig()
	if config.AcceptRetryDelay <= 0 {
		config.AcceptRetryDelay = defaults.AcceptRetryDelay
	}
	if config.MaxLineLength <= 0 {
		config.MaxLineLength = defaults.MaxLineLength
	}
	if logger == nil {
		logger = log.NewNop()
	}

	s := &RobotServer{
		config:  config,
		handler: handler,
		logger: logger.With(
			log.String("component", "robot_server"),
			log.String("robot", config.Name),
		),
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener and begins accepting in the background.
func (s *RobotServer) Start(ctx context.Context) error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if !s.running.CompareAndSwap(false, true) {
		return ErrServerAlreadyRunning
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.config.ListenAddr)
	if err != nil {
		s.running.Store(false)
		s.logger.Error("Failed to create listener", log.Error(err))
		return fmt.Errorf("%w: %w", ErrListenerFailed, err)
	}
	s.connMu.Lock()
	s.listener = listener
	s.connMu.Unlock()

	s.logger.Info("Robot listening", log.String("addr", listener.Addr().String()))

	go s.acceptConnections(ctx)
	return nil
}

// Serve starts the listener and blocks until ctx is cancelled.
func (s *RobotServer) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	if err := s.Stop(); err != nil && !errors.Is(err, ErrServerNotRunning) {
		return err
	}
	return nil
}

// Stop closes the listener and the current connection and waits for the
// accept loop to exit.
func (s *RobotServer) Stop() error {
	if !s.running.CompareAndSwap(true, false) {
		return ErrServerNotRunning
	}
	s.closed.Store(true)

	s.logger.Info("Stopping robot server")

	s.connMu.Lock()
	_ = s.listener.Close()
	if s.conn != nil {
		_ = s.conn.Close()
	}
	s.connMu.Unlock()

	<-s.done
	s.logger.Info("Robot server stopped", log.Int64("sessions", s.sessions.Load()))
	return nil
}

// Addr is the bound address, nil before Start.
func (s *RobotServer) Addr() net.Addr {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Sessions counts the connections served so far.
func (s *RobotServer) Sessions() int64 {
	return s.sessions.Load()
}

func (s *RobotServer) acceptConnections(ctx context.Context) {
	defer close(s.done)
	s.logger.Debug("Connection acceptor started")
	defer s.logger.Debug("Connection acceptor stopped")

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if !s.running.Load() {
				return
			}
			s.logger.Error("Failed to accept connection", log.Error(err))
			time.Sleep(s.config.AcceptRetryDelay)
			continue
		}

		s.connMu.Lock()
		if !s.running.Load() {
			s.connMu.Unlock()
			_ = conn.Close()
			return
		}
		s.conn = conn
		s.connMu.Unlock()

		s.handleClient(ctx, conn)

		s.connMu.Lock()
		s.conn = nil
		s.connMu.Unlock()
	}
}

// handleClient serves one connection until it closes. Any failure is
// logged and contained here so the accept loop keeps running.
func (s *RobotServer) handleClient(ctx context.Context, conn net.Conn) {
	session := uuid.NewString()
	clientLogger := s.logger.WithContext(log.ContextWithSession(ctx, session))
	remote := conn.RemoteAddr().String()
	commands := 0

	s.sessions.Add(1)
	clientLogger.Info("Client connected", log.String("remote_addr", remote))
	s.publish(bus.EventClientConnected, ConnectionEvent{Robot: s.config.Name, Session: session, RemoteAddr: remote})

	defer func() {
		if r := recover(); r != nil {
			clientLogger.Error("Client handler panicked", log.Any("panic", r))
		}
		_ = conn.Close()
		clientLogger.Info("Client disconnected",
			log.String("remote_addr", remote),
			log.Int("commands", commands),
		)
		s.publish(bus.EventClientDisconnected, ConnectionEvent{Robot: s.config.Name, Session: session, RemoteAddr: remote, Commands: commands})
	}()

	reader := bufio.NewReaderSize(conn, s.config.MaxLineLength)
	writer := bufio.NewWriter(conn)

	for {
		line, err := readLine(reader)
		var reply string
		switch {
		case errors.Is(err, errLineTooLong):
			clientLogger.Debug("Rejected overlong line", log.Int("limit", s.config.MaxLineLength))
			reply = protocol.ReplyError
		case err != nil && line == "":
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				clientLogger.Warn("Connection read failed", log.Error(err))
			}
			return
		default:
			reply = s.handler.Handle(line)
		}
		commands++

		if _, werr := writer.WriteString(reply + "\n"); werr != nil {
			clientLogger.Warn("Failed to write reply", log.Error(werr))
			return
		}
		if werr := writer.Flush(); werr != nil {
			clientLogger.Warn("Failed to flush reply", log.Error(werr))
			return
		}
		if err != nil && !errors.Is(err, errLineTooLong) {
			return
		}
	}
}

var errLineTooLong = errors.New("request line too long")

// readLine returns the next line without its terminator. A line that does
// not fit the reader's buffer is consumed up to its newline and reported
// as errLineTooLong. A final line without a newline is returned together
// with the read error.
func readLine(r *bufio.Reader) (string, error) {
	chunk, err := r.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = r.ReadSlice('\n')
		}
		if err != nil {
			return "", err
		}
		return "", errLineTooLong
	}
	line := strings.TrimSuffix(strings.TrimSuffix(string(chunk), "\n"), "\r")
	return line, err
}

func (s *RobotServer) publish(eventType string, ev ConnectionEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(bus.NewEvent(eventType, "robot_server", ev)); err != nil {
		s.logger.Warn("Event handler failed", log.String("event", eventType), log.Error(err))
	}
}
