// Package server exposes embedded SQLite sessions over the remote store
// protocol spoken by pkg/clients/remote.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapsqlite/pkg/clients/embedded"
	"github.com/leapstack-labs/leapsqlite/pkg/clients/remote"
	"github.com/leapstack-labs/leapsqlite/pkg/core"
)

// Config holds configuration for the store server.
type Config struct {
	Addr     string
	Database string
	Mode     core.OpenMode

	// Name is the database name clients request. Requests may also use
	// the Database path itself.
	Name   string
	Params map[string]any

	// Token, when set, is required as a bearer token on every request.
	Token string

	// MaxConns caps concurrent client connections. Zero means no limit.
	MaxConns int

	Logger *slog.Logger
}

// Server serves remote store sessions. Each session owns its own embedded client.
type Server struct {
	cfg    Config
	logger *slog.Logger
	driver *embedded.Driver

	mu       sync.Mutex
	sessions map[uuid.UUID]*embedded.Client
}

// New creates a store server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		cfg:      cfg,
		logger:   logger,
		driver:   embedded.NewDriver(logger),
		sessions: make(map[uuid.UUID]*embedded.Client),
	}
}

// Handler returns the HTTP handler for the store protocol.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
			NoColor: true,
		}),
		middleware.Recoverer,
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Route(remote.SessionsPath, func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", s.closeSession)
				r.Post(remote.StatementsPath, s.runStatement)
			})
		})
	})
	return r
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting store server", "addr", s.cfg.Addr, "database", s.cfg.Database)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	if s.cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConns)
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down store server...")
		err := srv.Shutdown(shutdownCtx)
		s.Close()
		return err
	})

	return eg.Wait()
}

// Close ends every open session.
func (s *Server) Close() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[uuid.UUID]*embedded.Client)
	s.mu.Unlock()

	for id, c := range sessions {
		if err := c.Close(); err != nil {
			s.logger.Warn("failed to close session", "session", id, "error", err)
		}
	}
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token != "" {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.Token)) != 1 {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req remote.SessionRequest
	if r.ContentLength != 0 {
		if err := remote.DecodeJSON(r.Body, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid session request: "+err.Error())
			return
		}
	}
	if req.Database != "" && req.Database != s.cfg.Database && req.Database != s.cfg.Name {
		writeError(w, http.StatusNotFound, "unknown database: "+req.Database)
		return
	}

	client, err := s.driver.Open(r.Context(), core.AdapterConfig{
		Database: s.cfg.Database,
		Mode:     s.cfg.Mode,
		Params:   s.cfg.Params,
	})
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	id := uuid.New()
	s.mu.Lock()
	s.sessions[id] = client.(*embedded.Client)
	s.mu.Unlock()

	s.logger.Debug("opened session", "session", id)
	writeJSON(w, http.StatusCreated, remote.SessionResponse{Session: id.String()})
}

func (s *Server) closeSession(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	client, found := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	if err := client.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("closed session", "session", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) runStatement(w http.ResponseWriter, r *http.Request) {
	id, ok := s.sessionID(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	client, found := s.sessions[id]
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var req remote.StatementRequest
	if err := remote.DecodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid statement request: "+err.Error())
		return
	}

	res, err := execute(r.Context(), client, core.ParseStatementKind(req.Kind), req.SQL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, remote.StatementResponse{
		Columns:         res.Columns,
		Rows:            jsonRows(res.Rows),
		LastInsertID:    res.LastInsertID,
		HasLastInsertID: res.HasLastInsertID,
		RowsAffected:    res.RowsAffected,
	})
}

func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown session")
		return uuid.UUID{}, false
	}
	return id, true
}

func execute(ctx context.Context, c core.Client, kind core.StatementKind, query string) (*core.Result, error) {
	switch kind {
	case core.StatementSelect, core.StatementPragma:
		return c.Select(ctx, query)
	case core.StatementInsert:
		return c.Insert(ctx, query)
	case core.StatementUpdate:
		return c.Update(ctx, query)
	case core.StatementDelete:
		return c.Delete(ctx, query)
	case core.StatementCreateTable:
		return c.CreateTable(ctx, query)
	case core.StatementDropTable:
		return c.DropTable(ctx, query)
	default:
		return nil, errors.New("unsupported statement")
	}
}

// jsonRows renders BLOB cells as text so they survive JSON encoding.
func jsonRows(rows [][]any) [][]any {
	for _, row := range rows {
		for i, cell := range row {
			if b, ok := cell.([]byte); ok {
				row[i] = string(b)
			}
		}
	}
	return rows
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, remote.StatementResponse{Error: msg})
}
