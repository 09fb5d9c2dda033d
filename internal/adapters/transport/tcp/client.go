package tcp

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/bnema/addon-bridge/internal/domain"
)

const DefaultDialTimeout = 2 * time.Second

// Client pushes reload requests to a running bridge.
type Client struct {
	Addr        string
	DialTimeout time.Duration
}

// Send writes one request, half-closes the connection and waits for the
// bridge to close its side, which happens once the request is handled.
func (c Client) Send(ctx context.Context, workspace, file string) error {
	addr := c.Addr
	if addr == "" {
		addr = DefaultAddr()
	}
	timeout := c.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to bridge at %s: %w", addr, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return fmt.Errorf("set deadline: %w", err)
		}
	}

	payload := domain.ReloadRequest{WorkspacePath: workspace, TargetFilePath: file}.Payload()
	if _, err := io.WriteString(conn, payload); err != nil {
		return fmt.Errorf("write reload request: %w", err)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.CloseWrite(); err != nil {
			return fmt.Errorf("half-close connection: %w", err)
		}
	}

	if _, err := io.Copy(io.Discard, conn); err != nil {
		return fmt.Errorf("wait for bridge: %w", err)
	}

	return nil
}
