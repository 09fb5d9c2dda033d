package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bnema/addon-bridge/internal/domain"
	"github.com/google/uuid"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 3264
)

// Handler consumes one decoded payload. It runs on the accept goroutine, so
// connections are served strictly one at a time.
type Handler func(ctx context.Context, requestID, payload string)

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReadTimeout bounds how long a client may take to half-close. Zero keeps
// reads unbounded.
func WithReadTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.readTimeout = timeout
	}
}

type Server struct {
	addr        string
	handler     Handler
	logger      *slog.Logger
	readTimeout time.Duration

	mu       sync.Mutex
	listener net.Listener
}

func DefaultAddr() string {
	return net.JoinHostPort(DefaultHost, strconv.Itoa(DefaultPort))
}

func NewServer(addr string, handler Handler, opts ...Option) *Server {
	s := &Server{
		addr:    addr,
		handler: handler,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return nil
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w %s: %w", domain.ErrBindFailure, s.addr, err)
	}
	s.listener = listener

	return nil
}

// Addr reports the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Serve accepts connections until ctx is cancelled or the server is closed.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}

	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()

	stop := context.AfterFunc(ctx, func() {
		_ = s.Close()
	})
	defer stop()

	s.logger.Info("listening for reload requests", "addr", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.logger.Info("listener stopped")
				return nil
			}
			return fmt.Errorf("accept connection: %w", err)
		}

		s.handle(ctx, conn)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}

	err := s.listener.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	requestID := newRequestID()
	logger := s.logger.With("request_id", requestID, "remote", conn.RemoteAddr().String())

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Error("reload handler panicked", "panic", fmt.Sprint(recovered))
		}
		if err := conn.Close(); err != nil {
			logger.Debug("close connection", "error", err)
		}
	}()

	if s.readTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			logger.Warn("set read deadline", "error", err)
		}
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		logger.Error("read request", "error", err)
		return
	}
	if len(data) == 0 {
		logger.Warn("no data received")
		return
	}
	if !utf8.Valid(data) {
		logger.Error("request is not valid UTF-8", "bytes", len(data))
		return
	}

	logger.Debug("request received", "bytes", len(data))
	s.handler(ctx, requestID, string(data))
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
