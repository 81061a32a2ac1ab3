// Package rlm manages the stdio MCP session to the RLM semantic backend:
// process spawning, the connect/retry/disconnect lifecycle, and a generic
// tool-call surface. Payload interpretation belongs to internal/recall.
package rlm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/richardwhiteii/ccrecall/internal/mcp/wire"
)

// ErrNotConnected is returned by CallTool when no backend session is live.
// It marks a caller contract violation, not a retryable condition.
var ErrNotConnected = errors.New("not connected to RLM server")

// maxMessageBytes bounds a single JSON-RPC line from the backend.
const maxMessageBytes = 16 * 1024 * 1024

// State is the connection lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns the state name for logs and the status endpoint.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Config configures a Client.
type Config struct {
	// Command, Args, and Dir spawn the backend process.
	Command string
	Args    []string
	Dir     string
	// MaxAttempts bounds the connect retry loop.
	MaxAttempts int
	// BaseBackoff is the first retry delay; it doubles per attempt.
	BaseBackoff time.Duration
	// CallTimeout bounds each tool call round-trip. Zero disables it.
	CallTimeout time.Duration
}

// Client owns one stateful MCP session to the RLM backend over the stdio
// of a child process. It does not auto-reconnect: after a mid-session
// failure callers must Connect again. One recall query drives the session
// at a time; the client itself only locks its own lifecycle state.
type Client struct {
	cfg Config

	mu      sync.Mutex
	state   State
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	gen     int64
	writeMu sync.Mutex

	nextID  atomic.Int64
	pending map[int64]chan *wire.Message
	pendMu  sync.Mutex
}

// NewClient creates a disconnected client.
func NewClient(cfg Config) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	return &Client{
		cfg:     cfg,
		pending: make(map[int64]chan *wire.Message),
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connected reports whether a backend session is live.
func (c *Client) Connected() bool {
	return c.State() == StateConnected
}

// Connect establishes the backend session, retrying up to MaxAttempts with
// exponential backoff before giving up. A successful initialize handshake
// is required before the client reports connected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnected {
		c.mu.Unlock()
		return nil
	}
	c.state = StateConnecting
	c.mu.Unlock()

	backoff := c.cfg.BaseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := c.connectOnce(ctx); err != nil {
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt).Msg("RLM connection attempt failed")
			if attempt == c.cfg.MaxAttempts {
				break
			}
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				c.setState(StateDisconnected)
				return ctx.Err()
			}
			backoff *= 2
			continue
		}
		log.Info().Msg("Connected to RLM MCP server")
		return nil
	}

	c.setState(StateDisconnected)
	return fmt.Errorf("failed to connect to RLM after %d attempts: %w", c.cfg.MaxAttempts, lastErr)
}

// connectOnce spawns the backend process and performs the MCP handshake.
func (c *Client) connectOnce(ctx context.Context) error {
	cmd := exec.Command(c.cfg.Command, c.cfg.Args...)
	cmd.Dir = c.cfg.Dir
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.cfg.Command, err)
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.cmd = cmd
	c.stdin = stdin
	c.mu.Unlock()

	go c.readLoop(gen, stdout)

	if err := c.initialize(ctx); err != nil {
		c.teardown()
		return fmt.Errorf("initialize handshake: %w", err)
	}

	c.setState(StateConnected)
	return nil
}

// initialize performs the MCP initialize request and initialized
// notification.
func (c *Client) initialize(ctx context.Context) error {
	params := map[string]interface{}{
		"protocolVersion": wire.ProtocolVersion,
		"capabilities":    map[string]interface{}{},
		"clientInfo": map[string]interface{}{
			"name":    "ccrecall",
			"version": "1.0",
		},
	}

	if _, err := c.roundTrip(ctx, "initialize", params); err != nil {
		return err
	}
	return c.writeMessage(wire.NewNotification("notifications/initialized", nil))
}

// Close tears down the backend session: pending calls are failed first,
// then the transport is closed and the process reaped. Either piece being
// absent is tolerated. Always leaves the client disconnected.
func (c *Client) Close() error {
	c.teardown()
	log.Info().Msg("Disconnected from RLM MCP server")
	return nil
}

func (c *Client) teardown() {
	c.mu.Lock()
	c.state = StateDisconnected
	// Disown the current readLoop so its eventual EOF cannot touch a
	// connection established after this teardown.
	c.gen++
	stdin := c.stdin
	cmd := c.cmd
	c.stdin = nil
	c.cmd = nil
	c.mu.Unlock()

	c.failPending()

	if stdin != nil {
		_ = stdin.Close()
	}
	if cmd != nil {
		done := make(chan struct{})
		go func() {
			_ = cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			_ = cmd.Process.Kill()
			<-done
		}
	}
}

// CallTool invokes a named tool on the connected backend and returns its
// raw structured result. Calling while disconnected fails immediately with
// ErrNotConnected; there is no operation-level retry.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]interface{}) (*ToolResult, error) {
	if !c.Connected() {
		return nil, ErrNotConnected
	}

	params := map[string]interface{}{
		"name":      name,
		"arguments": arguments,
	}
	msg, err := c.roundTrip(ctx, "tools/call", params)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}

	var result ToolResult
	data, err := json.Marshal(msg.Result)
	if err != nil {
		return nil, fmt.Errorf("call %s: encode result: %w", name, err)
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("call %s: decode result: %w", name, err)
	}
	return &result, nil
}

// roundTrip sends one request and waits for its response.
func (c *Client) roundTrip(ctx context.Context, method string, params interface{}) (*wire.Message, error) {
	if c.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.CallTimeout)
		defer cancel()
	}

	id := c.nextID.Add(1)
	ch := make(chan *wire.Message, 1)

	c.pendMu.Lock()
	c.pending[id] = ch
	c.pendMu.Unlock()
	defer func() {
		c.pendMu.Lock()
		delete(c.pending, id)
		c.pendMu.Unlock()
	}()

	if err := c.writeMessage(wire.NewRequest(id, method, params)); err != nil {
		return nil, err
	}

	select {
	case msg, ok := <-ch:
		if !ok {
			return nil, ErrNotConnected
		}
		if msg.Error != nil {
			return nil, msg.Error
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// writeMessage writes one line-framed JSON-RPC message to the backend.
func (c *Client) writeMessage(msg *wire.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	stdin := c.stdin
	c.mu.Unlock()
	if stdin == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err = stdin.Write(append(data, '\n'))
	return err
}

// readLoop dispatches backend responses to pending calls until the process
// closes its stdout. On EOF the session is dead: the owning connection
// flips to disconnected and every pending call fails.
func (c *Client) readLoop(gen int64, stdout io.Reader) {
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg wire.Message
		if err := json.Unmarshal(line, &msg); err != nil {
			log.Warn().Err(err).Msg("Unparseable message from RLM server")
			continue
		}

		if !msg.IsResponse() {
			// Server-initiated requests and notifications are ignored.
			log.Debug().Str("method", msg.Method).Msg("Ignoring non-response from RLM server")
			continue
		}
		c.dispatch(&msg)
	}

	if err := scanner.Err(); err != nil {
		log.Warn().Err(err).Msg("RLM transport read error")
	}
	c.connectionLost(gen)
}

// dispatch routes one response to its pending call. The send happens under
// pendMu so a concurrent failPending cannot close the channel mid-send;
// the buffered channel keeps the send from blocking.
func (c *Client) dispatch(msg *wire.Message) {
	id, ok := numericID(msg.ID)
	if !ok {
		log.Warn().Interface("id", msg.ID).Msg("Response with non-numeric ID from RLM server")
		return
	}

	c.pendMu.Lock()
	ch, found := c.pending[id]
	if found {
		delete(c.pending, id)
		ch <- msg
	}
	c.pendMu.Unlock()

	if !found {
		log.Warn().Int64("id", id).Msg("Response for unknown request from RLM server")
	}
}

// connectionLost marks one connection's transport as dead. A readLoop left
// over from a superseded connection is a no-op here: only the readLoop of
// the current generation may flip the state or fail pending calls.
func (c *Client) connectionLost(gen int64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state = StateDisconnected
	c.mu.Unlock()

	c.failPending()
}

// failPending closes every pending call channel; waiters observe the
// closure as ErrNotConnected.
func (c *Client) failPending() {
	c.pendMu.Lock()
	defer c.pendMu.Unlock()
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func numericID(id interface{}) (int64, bool) {
	switch v := id.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}
