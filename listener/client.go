package listener

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/tailored-agentic-units/radadapter/frame"
)

// Client sends envelopes to a listener and reads back response frames. It
// serializes exchanges, so one Client may be shared between goroutines.
type Client struct {
	mu       sync.Mutex
	conn     net.Conn
	reader   *bufio.Reader
	maxFrame int
}

// Dial connects a Client to a listener address.
func Dial(ctx context.Context, address string, maxFrame int) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", address, err)
	}
	return NewClient(conn, maxFrame), nil
}

// NewClient wraps an established connection. A maxFrame of zero uses the
// frame package default.
func NewClient(conn net.Conn, maxFrame int) *Client {
	if maxFrame <= 0 {
		maxFrame = frame.DefaultConfig().MaxFrameSize
	}
	return &Client{
		conn:     conn,
		reader:   bufio.NewReader(conn),
		maxFrame: maxFrame,
	}
}

// Exchange writes one envelope and returns the decoded response frame.
func (c *Client) Exchange(env Envelope) (*frame.Frame, error) {
	line, err := env.MarshalLine()
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.conn.Write(line); err != nil {
		return nil, fmt.Errorf("failed to send envelope: %w", err)
	}

	f, err := frame.ReadFrame(c.reader, c.maxFrame)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return f, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
