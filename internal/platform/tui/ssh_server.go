package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/axiom-drop/internal/config"
	"github.com/vovakirdan/axiom-drop/internal/level"
	"github.com/vovakirdan/axiom-drop/internal/progress"
	"github.com/vovakirdan/axiom-drop/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.axiomdrop/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:     ":23234",
		IdleTimeout: 30 * time.Minute,
	}
}

// SSHServer serves one session per SSH connection. Every SSH user keeps
// their own progress in the shared store.
type SSHServer struct {
	config  SSHServerConfig
	game    config.Config
	server  *ssh.Server
	store   *storage.Store
	players *progress.Registry
	catalog *level.Catalog
	logger  *log.Logger
}

// NewSSHServer creates a new SSH server. The store may be nil, in which
// case progress lives only as long as the process. Pass the registry shared
// with other hosts as players; nil creates one over the store.
func NewSSHServer(cfg SSHServerConfig, game config.Config, store *storage.Store, players *progress.Registry, logger *log.Logger) (*SSHServer, error) {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "axiomdrop-ssh",
		})
	}

	srv := &SSHServer{
		config:  cfg,
		game:    game,
		store:   store,
		players: players,
		catalog: level.NewCatalog(game.Viewport),
		logger:  logger,
	}

	if srv.players == nil {
		srv.players = storage.NewProgressRegistry(store)
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		hostKeyPath = config.UserPath("host_key")
		if hostKeyPath == "" {
			return nil, errors.New("cannot resolve host key path: no home directory")
		}
	}
	hostKeyPath, err := config.ExpandHome(hostKeyPath)
	if err != nil {
		return nil, err
	}

	// Ensure host key directory exists
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	env, err := s.sessionEnv(sshSession.User())
	if err != nil {
		s.logger.Error("could not load progress", "user", sshSession.User(), "error", err)
		return nil, nil
	}

	cfg := s.game.RuntimeConfig(pty.Window.Width, pty.Window.Height)
	model := NewSessionModel(env, cfg)

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// sessionEnv builds the per-user environment. Progress is namespaced by
// the SSH user name, so it is shared with websocket play under that name.
func (s *SSHServer) sessionEnv(user string) (*Env, error) {
	svc, err := s.players.Service(user)
	if err != nil {
		return nil, err
	}
	return &Env{
		Config:   s.game,
		Catalog:  s.catalog,
		Progress: svc,
		Store:    s.store,
		Logger:   s.logger.With("user", user),
		Player:   user,
	}, nil
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until ctx is cancelled.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down SSH server")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}
