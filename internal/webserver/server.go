// Package webserver serves the stored runs: an HTML index at / and the JSON
// API under /api.
package webserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"time"
)

// DefaultPort is used when Config.Port is zero.
const DefaultPort = 3000

const shutdownTimeout = 5 * time.Second

// ErrInvalidConfig is wrapped by every error New returns.
var ErrInvalidConfig = errors.New("webserver: invalid config")

// Config describes where the server listens and which runs it serves.
type Config struct {
	Port           int
	ResultsDir     string
	NoBrowser      bool
	AllowedOrigins []string
	// Out receives the URL banner. Defaults to io.Discard.
	Out    io.Writer
	Logger *slog.Logger
}

// Server serves one results directory on the loopback interface.
type Server struct {
	addr      string
	out       io.Writer
	noBrowser bool
	srv       *http.Server
	logger    *slog.Logger
}

// New checks cfg and builds the server. A results directory that does not
// exist yet is accepted and served as empty; a path naming a regular file is
// not.
func New(cfg Config) (*Server, error) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, cfg.Port)
	}
	if cfg.ResultsDir == "" {
		cfg.ResultsDir = "."
	}
	if fi, err := os.Stat(cfg.ResultsDir); err == nil && !fi.IsDir() {
		return nil, fmt.Errorf("%w: results path %s is not a directory", ErrInvalidConfig, cfg.ResultsDir)
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.Port))
	return &Server{
		addr:      addr,
		out:       cfg.Out,
		noBrowser: cfg.NoBrowser,
		logger:    cfg.Logger,
		srv: &http.Server{
			Addr:              addr,
			Handler:           registerRoutes(http.NewServeMux(), cfg),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the routed handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// ListenAndServe binds the configured address and serves until ctx is done.
// A bind failure is returned immediately.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("webserver: listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done or serving fails. On
// cancellation in-flight requests get shutdownTimeout to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	url := "http://" + ln.Addr().String()
	s.logger.Info("serving results", "address", ln.Addr().String())
	fmt.Fprintf(s.out, "rula results: %s\n", url) //nolint:errcheck

	if !s.noBrowser {
		go func() {
			time.Sleep(500 * time.Millisecond)
			if err := openBrowser(url); err != nil {
				s.logger.Debug("failed to open browser", "error", err)
			}
		}()
	}

	served := make(chan error, 1)
	go func() { served <- s.srv.Serve(ln) }()

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("webserver: serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := s.srv.Shutdown(shutdownCtx)
	<-served
	if err != nil {
		return fmt.Errorf("webserver: shutdown: %w", err)
	}
	return nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
