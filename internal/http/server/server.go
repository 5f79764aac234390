package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"shortener/internal/http/handlers/link"
	"shortener/internal/http/handlers/middlewares"
	"shortener/internal/http/handlers/ping"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

const PathPing = "/ping"

// ReservedCodes lists the first path segments routed away from the gateway;
// a short code equal to one of them could never redirect.
func ReservedCodes() []string {
	return []string{strings.TrimPrefix(PathPing, "/")}
}

type Server struct {
	httpServer *http.Server
	router     *mux.Router
	log        zerolog.Logger
	gateway    link.Gateway
	health     ping.Service
	addr       string
}

func NewServer(log zerolog.Logger, addr string, gw link.Gateway, health ping.Service) (*Server, error) {
	if addr == "" {
		return nil, errors.New("server address cannot be empty")
	}
	if gw == nil {
		return nil, errors.New("gateway cannot be nil")
	}
	if health == nil {
		return nil, errors.New("health service cannot be nil")
	}

	s := &Server{
		router:  mux.NewRouter(),
		log:     log,
		gateway: gw,
		health:  health,
		addr:    addr,
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(middlewares.MiddlewareLogging(s.log))
	s.router.Use(middlewares.MiddlewareCompressing())

	s.router.HandleFunc(PathPing, ping.HandlerPing(s.health, s.log)).Methods(http.MethodGet)

	// Method checks belong to the gateway so unsupported methods get its 405 body.
	s.router.HandleFunc("/", link.HandlerLink(s.gateway))
	s.router.HandleFunc("/{short_code}", link.HandlerLink(s.gateway))
}

// Handler exposes the routed handler, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	// Requests keep ctx values but are not canceled with it; Shutdown drains them.
	base := context.WithoutCancel(ctx)
	s.httpServer.BaseContext = func(_ net.Listener) context.Context { return base }

	s.log.Info().Str("address", s.addr).Msg("Starting server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
