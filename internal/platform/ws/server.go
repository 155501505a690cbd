package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/axiom-drop/internal/config"
	"github.com/vovakirdan/axiom-drop/internal/level"
	"github.com/vovakirdan/axiom-drop/internal/progress"
	"github.com/vovakirdan/axiom-drop/internal/storage"
)

// ServerConfig holds configuration for the websocket server.
type ServerConfig struct {
	// Address is the host:port to listen on (e.g., ":8080").
	Address string

	// WriteWait bounds a single write to a client.
	WriteWait time.Duration

	// PongWait is how long a client may stay silent before it is dropped.
	PongWait time.Duration

	// ReadLimit caps the size of one client command.
	ReadLimit int64
}

// DefaultServerConfig returns a config with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:   ":8080",
		WriteWait: 10 * time.Second,
		PongWait:  60 * time.Second,
		ReadLimit: 4096,
	}
}

// withDefaults fills zero fields from DefaultServerConfig.
func (c ServerConfig) withDefaults() ServerConfig {
	d := DefaultServerConfig()
	if c.WriteWait <= 0 {
		c.WriteWait = d.WriteWait
	}
	if c.PongWait <= 0 {
		c.PongWait = d.PongWait
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = d.ReadLimit
	}
	return c
}

// pingPeriod must be shorter than PongWait.
func (c ServerConfig) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}

// Server serves the level catalog, player progress and live play sessions.
type Server struct {
	config   ServerConfig
	game     config.Config
	catalog  *level.Catalog
	store    *storage.Store
	players  *progress.Registry
	logger   *log.Logger
	sessions *Registry
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	wg       sync.WaitGroup
	httpSrv  *http.Server
}

// NewServer creates a websocket server. The store may be nil, in which case
// progress and history live only as long as the process. Pass the registry
// shared with other hosts as players; nil creates one over the store.
func NewServer(cfg ServerConfig, game config.Config, store *storage.Store, players *progress.Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if players == nil {
		players = storage.NewProgressRegistry(store)
	}
	cfg = cfg.withDefaults()
	s := &Server{
		config:   cfg,
		game:     game,
		catalog:  level.NewCatalog(game.Viewport),
		store:    store,
		players:  players,
		logger:   logger,
		sessions: NewRegistry(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are native apps and browsers on any origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.httpSrv = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /levels", s.handleLevels)
	mux.HandleFunc("GET /progress", s.handleProgress)
	mux.HandleFunc("GET /play", s.handlePlay)
	return mux
}

// Sessions returns the live session registry.
func (s *Server) Sessions() *Registry {
	return s.sessions
}

func (s *Server) progressFor(player string) (*progress.Service, error) {
	return s.players.Service(player)
}

// handleLevels serves the catalog. With ?player= each level carries the
// player's unlocked and completed flags.
func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	levels := s.catalog.Levels()
	if d := level.Difficulty(r.URL.Query().Get("difficulty")); d != "" {
		if !d.Valid() {
			s.httpError(w, http.StatusBadRequest, fmt.Errorf("unknown difficulty %q", d))
			return
		}
		levels = s.catalog.ByDifficulty(d)
	}

	var svc *progress.Service
	if player := r.URL.Query().Get("player"); player != "" {
		var err error
		if svc, err = s.progressFor(player); err != nil {
			s.httpError(w, http.StatusInternalServerError, err)
			return
		}
	}

	out := make([]LevelSummary, len(levels))
	for i, l := range levels {
		out[i] = LevelSummary{Level: l}
		if svc != nil {
			unlocked, completed := svc.IsLevelUnlocked(l.ID), svc.IsLevelCompleted(l.ID)
			out[i].Unlocked, out[i].Completed = &unlocked, &completed
		}
	}
	s.writeJSON(w, out)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	svc, err := s.progressFor(r.URL.Query().Get("player"))
	if err != nil {
		s.httpError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, svc.Progress())
}

// handlePlay upgrades to a websocket and runs a session on ?level=.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, err := strconv.Atoi(q.Get("level"))
	if err != nil {
		s.httpError(w, http.StatusBadRequest, fmt.Errorf("level must be a number: %w", err))
		return
	}
	lvl, ok := s.catalog.ByID(id)
	if !ok {
		s.httpError(w, http.StatusNotFound, fmt.Errorf("level %d not found", id))
		return
	}

	player := q.Get("player")
	svc, err := s.progressFor(player)
	if err != nil {
		s.httpError(w, http.StatusInternalServerError, err)
		return
	}
	if !svc.IsLevelUnlocked(id) {
		s.httpError(w, http.StatusForbidden, fmt.Errorf("level %d is locked", id))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	session := NewSession(SessionConfig{
		ID:       fmt.Sprintf("ws-%d", s.nextID.Add(1)),
		Player:   player,
		Level:    lvl,
		Config:   s.game,
		Progress: svc,
		Store:    s.store,
		Logger:   s.logger,
	})
	s.serve(conn, session, r.RemoteAddr)
}

// serve wires a connection to a session and runs both until either ends.
func (s *Server) serve(conn *websocket.Conn, session *Session, remote string) {
	s.sessions.Register(session)
	s.logger.Info("session started", "session", session.ID(), "remote", remote)

	c := &client{conn: conn, session: session, config: s.config, logger: s.logger}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.sessions.Unregister(session.ID())
		if err := session.Run(context.Background()); err != nil {
			s.logger.Error("session failed", "session", session.ID(), "error", err)
		}
		s.logger.Info("session ended", "session", session.ID(), "remote", remote)
	}()
	go c.writePump()
	go c.readPump()
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("could not write response", "error", err)
	}
}

func (s *Server) httpError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	//nolint:errcheck // Best-effort error body
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// ListenAndServe starts the server and blocks until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("ws: listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting websocket server", "address", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down websocket server")
	return s.Shutdown()
}

// Shutdown stops accepting connections and ends every live session.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.httpSrv.Shutdown(ctx)
	s.sessions.StopAll()
	s.wg.Wait()
	return err
}
