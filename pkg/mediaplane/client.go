// Package mediaplane provides a JSON-RPC 2.0 client for a Kurento-protocol
// media server reached over WebSocket.
package mediaplane

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a WebSocket connection to the media server. A single reader
// goroutine correlates responses to in-flight requests by id; writes are
// serialized, so calls may run concurrently.
type Client struct {
	url       string
	conn      *websocket.Conn
	writeMu   sync.Mutex
	requestID atomic.Int64
	pending   map[int64]chan *rpcResponse
	pendingMu sync.Mutex
	done      chan struct{}
	closed    atomic.Bool
	log       *slog.Logger
}

// rpcRequest represents a JSON-RPC 2.0 request
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// rpcResponse represents a JSON-RPC 2.0 response. Server-initiated
// notifications reuse the frame with Method set and no ID.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Method  string          `json:"method,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is an error reported by the media server
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("media server error %d: %s", e.Code, e.Message)
}

// Dial connects to the media server
func Dial(ctx context.Context, url string) (*Client, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}

	c := &Client{
		url:     url,
		conn:    conn,
		pending: make(map[int64]chan *rpcResponse),
		done:    make(chan struct{}),
		log:     slog.With(slog.String("media_server", url)),
	}

	go c.readLoop()

	return c, nil
}

// Close closes the connection. In-flight calls fail with ErrClientClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)
	return c.conn.Close()
}

// Call sends one request and waits for the matching response. A non-nil
// result receives the unmarshalled result object. RPC failures are returned
// as *RPCError.
func (c *Client) Call(ctx context.Context, method string, params, result any) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	id := c.requestID.Add(1)
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	}

	respChan := make(chan *rpcResponse, 1)
	c.pendingMu.Lock()
	c.pending[id] = respChan
	c.pendingMu.Unlock()

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return fmt.Errorf("failed to send %s request: %w", method, err)
	}

	select {
	case resp := <-respChan:
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("failed to parse %s result: %w", method, err)
			}
		}
		return nil
	case <-ctx.Done():
		c.forget(id)
		return ctx.Err()
	case <-c.done:
		c.forget(id)
		return ErrClientClosed
	}
}

// forget drops the pending entry for an abandoned request
func (c *Client) forget(id int64) {
	c.pendingMu.Lock()
	delete(c.pending, id)
	c.pendingMu.Unlock()
}

// readLoop reads frames until the connection dies, routing responses to
// their waiters and discarding event notifications.
func (c *Client) readLoop() {
	defer c.Close()

	for {
		var resp rpcResponse
		if err := c.conn.ReadJSON(&resp); err != nil {
			if !c.closed.Load() &&
				!websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Warn("media server connection lost", slog.String("error", err.Error()))
			}
			return
		}

		// Notifications (onEvent) have no waiter; nothing subscribes to
		// media server events.
		if resp.Method != "" {
			c.log.Debug("media server event", slog.String("method", resp.Method))
			continue
		}

		c.pendingMu.Lock()
		if ch, ok := c.pending[resp.ID]; ok {
			ch <- &resp
			delete(c.pending, resp.ID)
		}
		c.pendingMu.Unlock()
	}
}
