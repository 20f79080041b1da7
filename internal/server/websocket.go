package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/zeusync/robofield/internal/core/models"
	"github.com/zeusync/robofield/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const (
	defaultSendBuffer   = 8
	defaultWriteTimeout = time.Second
)

type spectatorClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Spectator fans field frames out to websocket viewers. Broadcast never
// blocks: a viewer whose buffer is full misses that frame.
type Spectator struct {
	frames models.FrameSource
	logger log.Log

	sendBuffer   int
	writeTimeout time.Duration

	mu      sync.Mutex
	clients map[*spectatorClient]struct{}
	dropped uint64
}

func NewSpectator(frames models.FrameSource, logger log.Log) *Spectator {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Spectator{
		frames:       frames,
		logger:       logger.With(log.String("component", "spectator")),
		sendBuffer:   defaultSendBuffer,
		writeTimeout: defaultWriteTimeout,
		clients:      make(map[*spectatorClient]struct{}),
	}
}

// Broadcast encodes the frame once and queues it for every viewer.
func (s *Spectator) Broadcast(frame *models.Frame) {
	if frame == nil || s.Clients() == 0 {
		return
	}
	payload, err := json.Marshal(frame)
	if err != nil {
		s.logger.Error("Failed to encode frame", log.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- payload:
		default:
			s.dropped++
		}
	}
}

// Clients is the number of connected viewers.
func (s *Spectator) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Dropped counts frames skipped for slow viewers.
func (s *Spectator) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// CloseAll disconnects every viewer.
func (s *Spectator) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		_ = c.conn.Close()
	}
}

func (s *Spectator) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", log.Error(err))
		return
	}

	c := &spectatorClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, s.sendBuffer),
	}
	clientLogger := s.logger.With(
		log.String("viewer", c.id),
		log.String("remote_addr", conn.RemoteAddr().String()),
	)

	// The current frame is queued before registering so it is always the
	// first message a viewer sees.
	if s.frames != nil {
		if f := s.frames.Frame(); f != nil {
			if payload, err := json.Marshal(f); err == nil {
				c.send <- payload
			}
		}
	}

	s.register(c)
	clientLogger.Info("Spectator connected")

	done := make(chan struct{})
	go s.writePump(c, done, clientLogger)

	// Viewers never send anything meaningful; reading only detects close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.unregister(c)
	close(done)
	_ = conn.Close()
	clientLogger.Info("Spectator disconnected")
}

func (s *Spectator) writePump(c *spectatorClient, done <-chan struct{}, logger log.Log) {
	for {
		select {
		case <-done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debug("Spectator write failed", log.Error(err))
				_ = c.conn.Close()
				return
			}
		}
	}
}

func (s *Spectator) register(c *spectatorClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

func (s *Spectator) unregister(c *spectatorClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}
