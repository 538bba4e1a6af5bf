// Package server exposes boards over HTTP and WebSocket.
//
// Boards are projects in a [store.Store]. The server loads a board on first
// use, keeps its engine in memory and serializes every operation on it with
// a per-board mutex. Mutations are written back to the store before the
// response is sent.
//
// # Routes
//
//	GET    /healthz
//	GET    /boards
//	PUT    /boards/{name}
//	GET    /boards/{name}
//	DELETE /boards/{name}
//	POST   /boards/{name}/place
//	POST   /boards/{name}/repair
//	GET    /boards/{name}/fit?size=WxH
//	POST   /boards/{name}/tiles
//	DELETE /boards/{name}/tiles/{id}
//	GET    /boards/{name}/drag          (WebSocket)
//
// # Errors
//
// Failures are JSON objects {"code": ..., "message": ...}. NOT_FOUND maps to
// 404; CAPACITY_EXCEEDED, STALE_SESSION, INVALID_DISPLACEMENT and the drag
// session codes map to 409; other INVALID_* codes map to 400; everything
// else is a 500.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/tilegrid/internal/board"
	"github.com/matzehuels/tilegrid/pkg/drag"
	"github.com/matzehuels/tilegrid/pkg/errors"
	"github.com/matzehuels/tilegrid/pkg/grid"
	"github.com/matzehuels/tilegrid/pkg/store"
)

// Options configures a Server.
type Options struct {
	// Grid is used for projects that do not set their own.
	Grid    grid.Grid
	Metrics drag.Metrics
	Logger  *log.Logger
}

// Server hosts boards from a store.
type Server struct {
	store    store.Store
	opts     Options
	logger   *log.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	mu     sync.Mutex
	boards map[string]*entry

	done      chan struct{}
	closeOnce sync.Once
}

// entry is a cached board. board is nil until loaded.
type entry struct {
	mu    sync.Mutex
	board *board.Board
}

// New creates a server backed by s.
func New(s store.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	srv := &Server{
		store:  s,
		opts:   opts,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		boards: make(map[string]*entry),
		done:   make(chan struct{}),
	}
	srv.router = srv.routes()
	return srv
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/boards", func(r chi.Router) {
		r.Get("/", s.handleListBoards)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetBoard)
			r.Put("/", s.handlePutBoard)
			r.Delete("/", s.handleDeleteBoard)
			r.Post("/place", s.handlePlace)
			r.Post("/repair", s.handleRepair)
			r.Get("/fit", s.handleFit)
			r.Post("/tiles", s.handleAddTile)
			r.Delete("/tiles/{id}", s.handleRemoveTile)
			r.Get("/drag", s.handleDrag)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and closes open drag sockets.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// Close disconnects every drag socket. It is safe to call more than once.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// =============================================================================
// Board Cache
// =============================================================================

func (s *Server) entry(name string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.boards[name]
	if !ok {
		e = &entry{}
		s.boards[name] = e
	}
	return e
}

func (s *Server) forget(name string, e *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boards[name] == e {
		delete(s.boards, name)
	}
}

func (s *Server) boardOptions(ctx context.Context) board.Options {
	return board.Options{
		Grid:    s.opts.Grid,
		Metrics: s.opts.Metrics,
		Logger:  s.logger,
		Context: ctx,
	}
}

// withBoard runs fn with exclusive access to the named board, loading it
// from the store first if needed.
func (s *Server) withBoard(ctx context.Context, name string, fn func(b *board.Board) error) error {
	e := s.entry(name)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.board == nil {
		p, err := s.store.Get(ctx, name)
		if stderrors.Is(err, store.ErrNotFound) {
			s.forget(name, e)
			return errors.New(errors.ErrCodeNotFound, "board %q not found", name)
		}
		if err != nil {
			s.forget(name, e)
			return errors.Wrap(errors.ErrCodeInternal, err, "load board %s", name)
		}
		b, rep, err := board.Open(p, s.boardOptions(context.WithoutCancel(ctx)))
		if err != nil {
			s.forget(name, e)
			return err
		}
		if rep.Repair.Changed() || len(rep.Placed) > 0 {
			s.logger.Debug("normalized board on load", "board", name, "moved", rep.Repair.Moved, "placed", rep.Placed)
		}
		e.board = b
	}
	if err := fn(e.board); err != nil {
		// A failed save leaves the cached board ahead of the store. Drop it
		// so the next request reloads the stored project.
		if errors.Is(err, errors.ErrCodeInternal) {
			e.board = nil
		}
		return err
	}
	return nil
}

// replace installs b as the cached board for name.
func (s *Server) replace(name string, b *board.Board) {
	e := s.entry(name)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.board = b
}

// persist writes the board's project to the store.
func (s *Server) persist(ctx context.Context, b *board.Board) error {
	if err := s.store.Put(ctx, b.Project); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save board %s", b.Project.Name)
	}
	return nil
}
