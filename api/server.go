/*
server.go - HTTP server setup and routing

The wire contract keeps the Spanish field and path names the operations team
already works with; trailing slashes are normalized away before routing.
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server wraps the HTTP server with its router.
type Server struct {
	handler *Handler
	router  *chi.Mux
	srv     *http.Server
	log     zerolog.Logger
}

// NewServer creates a configured server.
func NewServer(h *Handler, port int, log zerolog.Logger) *Server {
	s := &Server{
		handler: h,
		router:  chi.NewRouter(),
		log:     log.With().Str("component", "server").Logger(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.StripSlashes)
	s.router.Use(middleware.Timeout(30 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	s.router.Use(s.requestLogger)
}

func (s *Server) setupRoutes() {
	h := s.handler

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/objetivos-perfiles", func(r chi.Router) {
			// Fixed paths before the {id} wildcard.
			r.Get("/alertas", h.ObjectiveAlerts)
			r.Get("/calendario_eventos", h.ObjectiveCalendar)
			r.Get("/estadisticas", h.ObjectiveStats)
			r.Get("/pendientes", h.PendingObjectives)
			r.Get("/historial-por-agencia", h.AgencyHistory)

			r.Get("/", h.ListObjectives)
			r.Post("/", h.CreateObjective)
			r.Get("/{id}", h.GetObjective)
			r.Delete("/{id}", h.DeleteObjective)
			r.Patch("/{id}/planificar", h.PlanObjective)
			r.Patch("/{id}/mover-planificacion", h.MoveObjectiveAllocation)
		})

		r.Route("/distribuidoras", func(r chi.Router) {
			r.Get("/", h.ListDistributors)
			r.Post("/", h.CreateDistributor)
		})
		r.Route("/casas", func(r chi.Router) {
			r.Get("/", h.ListHouses)
			r.Post("/", h.CreateHouse)
		})
		r.Route("/agencias", func(r chi.Router) {
			r.Get("/", h.ListAgencies)
			r.Post("/", h.CreateAgency)
			r.Get("/{id}", h.GetAgency)
		})
		r.Route("/perfiles", func(r chi.Router) {
			r.Get("/", h.ListProfiles)
			r.Post("/", h.CreateProfile)
			r.Get("/{id}/estadisticas", h.ProfileStats)
		})
		r.Route("/operaciones", func(r chi.Router) {
			r.Get("/", h.ListOperations)
			r.Post("/", h.CreateOperation)
			r.Post("/{id}/liquidar", h.SettleOperation)
		})
		r.Route("/transacciones", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.CreateTransaction)
		})
		r.Get("/metricas-operativas", h.OperationalSnapshot)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Start begins listening for requests.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Router exposes the mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
