// internal/server/server.go
package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"chaibuddies/internal/calllog"
	"chaibuddies/internal/personas"
	"chaibuddies/internal/session"
)

// SessionFactory builds a fresh chat session wired to the shared backend
type SessionFactory func(opts ...session.Option) *session.Session

// Server exposes chat sessions over HTTP and websockets
type Server struct {
	registry   *personas.Registry
	newSession SessionFactory
	calls      *calllog.Store
	logger     *log.Logger
	router     *gin.Engine

	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	session *session.Session
	closed  chan struct{}
}

type Option func(*Server)

// WithCallLog enables GET /api/calls
func WithCallLog(store *calllog.Store) Option {
	return func(s *Server) { s.calls = store }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(registry *personas.Registry, factory SessionFactory, opts ...Option) *Server {
	s := &Server{
		registry:   registry,
		newSession: factory,
		logger:     log.New(io.Discard, "", 0),
		sessions:   make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	s.setupRoutes(router)
	s.router = router
	return s
}

// Handler returns the HTTP handler serving the API
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeAll()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) setupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/personas", s.listPersonas)
		api.GET("/calls", s.listCalls)

		api.POST("/sessions", s.createSession)
		api.GET("/sessions/:id", s.getSession)
		api.DELETE("/sessions/:id", s.deleteSession)
		api.POST("/sessions/:id/personas", s.selectPersonas)
		api.POST("/sessions/:id/personas/all", s.selectAll)
		api.PUT("/sessions/:id/settings", s.updateSettings)
		api.POST("/sessions/:id/start", s.start)
		api.POST("/sessions/:id/messages", s.send)
		api.POST("/sessions/:id/reset", s.reset)
		api.GET("/sessions/:id/transcript", s.transcript)
		api.GET("/sessions/:id/ws", s.handleWebSocket)
	}
}

func (s *Server) add(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = &entry{session: sess, closed: make(chan struct{})}
}

func (s *Server) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[id]
	return e, ok
}

func (s *Server) remove(id string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	return e, ok
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.sessions {
		e.session.Reset()
		close(e.closed)
		delete(s.sessions, id)
	}
}

// SessionCount reports how many sessions are open
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
