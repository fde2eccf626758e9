package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/handlers"

	"github.com/mwhite/pointdeck/internal/config"
	"github.com/mwhite/pointdeck/internal/server"
)

// PointdeckApp is the HTTP surface in front of the coordinator: the
// websocket upgrade endpoint, a health probe, and the expvar metrics
// registered by the stats package on the shared mux.
type PointdeckApp struct {
	log            *log.Logger
	mux            *http.Server
	ps             *server.PokerServer
	allowedOrigins []string
}

func NewPointdeckApp(mux *http.ServeMux, logger *log.Logger, ps *server.PokerServer, cfg *config.Config) *PointdeckApp {
	s := &PointdeckApp{
		log:            logger,
		ps:             ps,
		allowedOrigins: cfg.AllowedOrigins,
	}

	mux.HandleFunc("GET /api/health", s.health)
	mux.HandleFunc("GET /ws", s.serveWs)
	mux.HandleFunc("/api/", s.notFound)

	h := handlers.CORS(
		handlers.MaxAge(3600),
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Origin", "Content-Type", "Accept"}),
		handlers.AllowCredentials(),
	)(mux)

	h = s.errorHandler(h)

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: h,
	}

	s.mux = srv
	return s
}

func (s *PointdeckApp) Start() error {
	s.log.Printf("Starting server on %s\n", s.mux.Addr)
	return s.mux.ListenAndServe()
}

func (s *PointdeckApp) Shutdown(ctx context.Context) error {
	s.log.Println("Shutting down server...")
	if err := s.mux.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.log.Println("Server shutdown complete")
	return nil
}
