// Package remote lets a socket.io server change parameters of a running
// graph and observe its frames.
package remote

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/callgrid/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names.
const (
	EventSetParam    = "setParam"
	EventParamResult = "paramResult"
	EventFrame       = "frame"
)

// Command is one queued parameter change.
type Command struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Ack answers a Command.
type Ack struct {
	Name  string `json:"name"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ViewStatus is the outcome of rendering one view.
type ViewStatus struct {
	Name      string  `json:"name"`
	Title     bool    `json:"title"`
	Reason    string  `json:"reason,omitempty"`
	Triangles int     `json:"triangles"`
	Time      float32 `json:"time"`
}

// Frame is the telemetry emitted after every frame.
type Frame struct {
	Number uint64       `json:"frame"`
	Views  []ViewStatus `json:"views"`
}

// Emitter is the outbound side of a connection.
type Emitter interface {
	Emit(event string, args ...any)
}

// Config configures Dial.
type Config struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	QueueSize          int
	ConnectTimeout     time.Duration
}

// Client queues incoming parameter changes until the frame loop drains
// them. Socket callbacks run on their own goroutines; the queue is the only
// state they touch.
type Client struct {
	logger  *slog.Logger
	emitter Emitter
	socket  *socket.Socket
	queue   chan Command
	dropped atomic.Int64
}

// NewClient creates a client emitting through e.
func NewClient(e Emitter, queueSize int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = ctxlog.Discard()
	}
	return &Client{logger: logger, emitter: e, queue: make(chan Command, max(queueSize, 1))}
}

type socketEmitter struct{ s *socket.Socket }

func (e socketEmitter) Emit(event string, args ...any) { e.s.Emit(event, args...) }

// Dial connects to a socket.io server and starts listening for setParam
// events.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	logger := ctxlog.FromContext(ctx).With("component", "remote", "url", cfg.URL)
	logger.Info("Connecting to remote control server...")

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote URL: %w", err)
	}
	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	c := NewClient(socketEmitter{io}, cfg.QueueSize, logger)
	c.socket = io
	io.On(types.EventName(EventSetParam), c.handleSetParam)

	connected := make(chan error, 1)
	report := func(err error) {
		select {
		case connected <- err:
		default:
		}
	}
	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Connected to remote control server.", "sid", io.Id())
		report(nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := errors.New("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		report(err)
	})
	io.Connect()

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return c, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(timeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", timeout)
	}
}

// Close disconnects from the server.
func (c *Client) Close() {
	if c.socket != nil {
		c.logger.Info("Disconnecting from remote control server.", "sid", c.socket.Id())
		c.socket.Disconnect()
	}
}

// Dropped returns the number of commands discarded on a full queue.
func (c *Client) Dropped() int64 { return c.dropped.Load() }

// Enqueue queues cmd without blocking. It reports false when the queue is
// full and the command was dropped.
func (c *Client) Enqueue(cmd Command) bool {
	select {
	case c.queue <- cmd:
		return true
	default:
		c.dropped.Add(1)
		c.logger.Warn("Remote command queue is full, dropping command.", "param", cmd.Name)
		return false
	}
}

func (c *Client) handleSetParam(args ...any) {
	if len(args) == 0 {
		c.logger.Warn("Ignoring setParam without payload.")
		return
	}
	cmd, err := DecodeCommand(args[0])
	if err != nil {
		c.logger.Warn("Ignoring malformed setParam.", "error", err)
		c.emitter.Emit(EventParamResult, Ack{OK: false, Error: err.Error()})
		return
	}
	c.Enqueue(cmd)
}

// Drain applies every queued command and acknowledges each one. It never
// blocks and returns the number of commands applied.
func (c *Client) Drain(apply func(Command) error) int {
	n := 0
	for {
		select {
		case cmd := <-c.queue:
			ack := Ack{Name: cmd.Name, OK: true}
			if err := apply(cmd); err != nil {
				c.logger.Warn("Remote parameter change rejected.", "param", cmd.Name, "error", err)
				ack.OK = false
				ack.Error = err.Error()
			} else {
				c.logger.Debug("Remote parameter change applied.", "param", cmd.Name, "value", cmd.Value)
			}
			c.emitter.Emit(EventParamResult, ack)
			n++
		default:
			return n
		}
	}
}

// PublishFrame emits frame telemetry.
func (c *Client) PublishFrame(f Frame) {
	c.emitter.Emit(EventFrame, f)
}

// DecodeCommand converts a setParam payload, either a decoded JSON object
// or a JSON string, into a Command. Non-string values are formatted the way
// parameters parse them; lists are joined with ';'.
func DecodeCommand(payload any) (Command, error) {
	var raw struct {
		Name  string `json:"name"`
		Value any    `json:"value"`
	}
	var data []byte
	switch p := payload.(type) {
	case string:
		data = []byte(p)
	case []byte:
		data = p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return Command{}, fmt.Errorf("encode payload: %w", err)
		}
		data = b
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Command{}, fmt.Errorf("decode setParam payload: %w", err)
	}
	if raw.Name == "" {
		return Command{}, errors.New("setParam payload has no name")
	}
	value, err := formatValue(raw.Value)
	if err != nil {
		return Command{}, fmt.Errorf("parameter %s: %w", raw.Name, err)
	}
	return Command{Name: raw.Name, Value: value}, nil
}

func formatValue(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case []any:
		parts := make([]string, len(x))
		for i, el := range x {
			s, err := formatValue(el)
			if err != nil {
				return "", err
			}
			parts[i] = s
		}
		return strings.Join(parts, ";"), nil
	}
	return "", fmt.Errorf("unsupported value type %T", v)
}
