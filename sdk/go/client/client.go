// Package client is a Go SDK for driving a simulated robot over its TCP
// line protocol.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/robofield/internal/core/observability/log"
	"github.com/zeusync/robofield/internal/core/protocol"
)

// Client is one connection to a robot. Requests are serialised; a Client
// is safe for concurrent use.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	connected atomic.Bool
	closed    atomic.Bool

	config Config
	logger log.Log
}

type Config struct {
	ServerAddr     string
	ConnectTimeout time.Duration
	// RequestTimeout bounds one request/reply round trip.
	RequestTimeout time.Duration
	LogLevel       log.Level
}

func DefaultClientConfig() Config {
	return Config{
		ServerAddr:     "127.0.0.1:5000",
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 2 * time.Second,
		LogLevel:       log.LevelInfo,
	}
}

// Sighting is a camera reading in the robot frame.
type Sighting struct {
	Forward float64
	Lateral float64
}

// Beacon is a beacon reading. Flag profiles fill Aligned; offset
// profiles fill Beacon and OwnBeacon.
type Beacon struct {
	Aligned   bool
	Offsets   bool
	Beacon    Sighting
	OwnBeacon Sighting
}

func NewClient(config Config) *Client {
	return &Client{
		config: config,
		logger: log.New(config.LogLevel).With(
			log.String("component", "client"),
			log.String("server", config.ServerAddr),
		),
	}
}

// Connect dials the robot.
func (c *Client) Connect(ctx context.Context) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if c.config.ServerAddr == "" {
		return ErrInvalidConfig
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected.Load() {
		return ErrAlreadyConnected
	}

	dialer := net.Dialer{Timeout: c.config.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.config.ServerAddr)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: %w", ErrConnectionTimeout, err)
		}
		return fmt.Errorf("connecting to robot: %w", err)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.connected.Store(true)
	c.logger.Info("Connected to robot")
	return nil
}

// Close drops the connection. The client cannot be reused.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected.Swap(false) {
		return nil
	}
	c.logger.Info("Disconnected from robot")
	return c.conn.Close()
}

func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Do sends one raw line and returns the reply line. An ERROR reply is
// returned together with ErrCommandRejected.
func (c *Client) Do(ctx context.Context, line string) (string, error) {
	if c.closed.Load() {
		return "", ErrClientClosed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected.Load() {
		return "", ErrNotConnected
	}

	var deadline time.Time
	if c.config.RequestTimeout > 0 {
		deadline = time.Now().Add(c.config.RequestTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return "", err
	}

	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return "", fmt.Errorf("sending %q: %w", line, err)
	}
	reply, err := c.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading reply to %q: %w", line, err)
	}
	reply = strings.TrimRight(reply, "\r\n")

	c.logger.Debug("Command", log.String("line", line), log.String("reply", reply))
	if reply == protocol.ReplyError {
		return reply, fmt.Errorf("%w: %s", ErrCommandRejected, line)
	}
	return reply, nil
}

func (c *Client) command(ctx context.Context, cmd protocol.Command) (string, error) {
	return c.Do(ctx, cmd.String())
}

func (c *Client) expectOK(ctx context.Context, cmd protocol.Command) error {
	reply, err := c.command(ctx, cmd)
	if err != nil {
		return err
	}
	if reply != protocol.ReplyOK {
		return fmt.Errorf("%w: %q", ErrInvalidReply, reply)
	}
	return nil
}

// Wheels sets both wheel speeds, each in [-100, 100].
func (c *Client) Wheels(ctx context.Context, left, right int) error {
	return c.expectOK(ctx, protocol.Command{Verb: protocol.VerbWheels, Left: left, Right: right})
}

func (c *Client) Grab(ctx context.Context) error {
	return c.expectOK(ctx, protocol.Command{Verb: protocol.VerbGrab})
}

func (c *Client) Shoot(ctx context.Context) error {
	return c.expectOK(ctx, protocol.Command{Verb: protocol.VerbShoot})
}

// Camera returns the nearest visible ball. ok is false for either miss
// reply.
func (c *Client) Camera(ctx context.Context) (s Sighting, ok bool, err error) {
	reply, err := c.command(ctx, protocol.Command{Verb: protocol.VerbCam})
	if err != nil {
		return Sighting{}, false, err
	}
	values, err := parseFloats(reply, 2)
	if err != nil {
		return Sighting{}, false, err
	}
	if (values[0] == 0 && values[1] == 0) || (values[0] == -1 && values[1] == -1) {
		return Sighting{}, false, nil
	}
	return Sighting{Forward: values[0], Lateral: values[1]}, true, nil
}

func (c *Client) Beacon(ctx context.Context) (Beacon, error) {
	reply, err := c.command(ctx, protocol.Command{Verb: protocol.VerbBeacon})
	if err != nil {
		return Beacon{}, err
	}
	if !strings.Contains(reply, " ") {
		aligned, err := parseFlag(reply)
		return Beacon{Aligned: aligned}, err
	}
	values, err := parseFloats(reply, 4)
	if err != nil {
		return Beacon{}, err
	}
	return Beacon{
		Offsets:   true,
		Beacon:    Sighting{Forward: values[0], Lateral: values[1]},
		OwnBeacon: Sighting{Forward: values[2], Lateral: values[3]},
	}, nil
}

// Goal returns the local offset of the attacked goal, zero when it is out
// of view.
func (c *Client) Goal(ctx context.Context) (Sighting, error) {
	reply, err := c.command(ctx, protocol.Command{Verb: protocol.VerbGoal})
	if err != nil {
		return Sighting{}, err
	}
	values, err := parseFloats(reply, 2)
	if err != nil {
		return Sighting{}, err
	}
	return Sighting{Forward: values[0], Lateral: values[1]}, nil
}

// Holding reports the grabber light barrier.
func (c *Client) Holding(ctx context.Context) (bool, error) {
	reply, err := c.command(ctx, protocol.Command{Verb: protocol.VerbOpto})
	if err != nil {
		return false, err
	}
	return parseFlag(reply)
}

func parseFloats(reply string, n int) ([]float64, error) {
	fields := strings.Fields(reply)
	if len(fields) != n {
		return nil, fmt.Errorf("%w: want %d values, got %q", ErrInvalidReply, n, reply)
	}
	out := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidReply, reply)
		}
		out[i] = v
	}
	return out, nil
}

func parseFlag(reply string) (bool, error) {
	switch reply {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidReply, reply)
}
