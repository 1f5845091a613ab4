package ipc

import (
	"context"
	"fmt"
	"net"
	"time"
)

const (
	dialTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	readTimeout  = 5 * time.Second
)

// Client sends one request per connection to the daemon.
type Client struct {
	path string
}

// NewClient returns a client for the socket at path.
func NewClient(path string) *Client {
	return &Client{path: path}
}

// Send performs one request/response exchange.
func (c *Client) Send(ctx context.Context, req Request) (Response, error) {
	dialer := net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", c.path)
	if err != nil {
		return Response{}, fmt.Errorf("connect to daemon at %s: %w", c.path, err)
	}
	defer conn.Close()

	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := WriteMessage(conn, req); err != nil {
		return Response{}, err
	}
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	var resp Response
	if err := ReadMessage(conn, &resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// Call is Send with the request built from name and args.
func (c *Client) Call(ctx context.Context, name string, args map[string]string) (Response, error) {
	return c.Send(ctx, Request{Name: name, Args: args})
}
