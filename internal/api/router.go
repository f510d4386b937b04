package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/savegress/carebridge/internal/assessment"
	"github.com/savegress/carebridge/internal/syncer"
)

// Server represents the API server consumed by the UI shell
type Server struct {
	router   chi.Router
	handlers *Handlers
}

// NewServer creates a new API server
func NewServer(service *assessment.Service, coordinator *syncer.Coordinator) *Server {
	s := &Server{
		router: chi.NewRouter(),
		handlers: &Handlers{
			service:     service,
			coordinator: coordinator,
		},
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// CORS: the UI shell is served from its own origin in development
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handlers.HealthCheck)

	s.router.Route("/api/v1/carebridge", func(r chi.Router) {
		r.Route("/symptoms", func(r chi.Router) {
			r.Post("/", s.handlers.SubmitSymptoms)
			r.Get("/", s.handlers.RecentSymptoms)
			r.Get("/common", s.handlers.CommonSymptoms)
		})

		r.Route("/vitals", func(r chi.Router) {
			r.Post("/", s.handlers.SubmitVitals)
			r.Get("/", s.handlers.RecentVitals)
		})

		r.Route("/consultations", func(r chi.Router) {
			r.Post("/", s.handlers.RequestConsultation)
			r.Get("/", s.handlers.RecentConsultations)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Post("/", s.handlers.SyncNow)
			r.Get("/status", s.handlers.SyncStatus)
		})
	})
}

// Router returns the chi router
func (s *Server) Router() chi.Router {
	return s.router
}
