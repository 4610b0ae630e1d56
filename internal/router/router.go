package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/duodate-app/duodate-api/internal/api/dates"
)

// Config contains dependencies needed for the router setup.
type Config struct {
	DateHandler *dates.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are applied
// before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", cfg.DateHandler.Health)

	r.Route("/api/dates", func(r chi.Router) {
		r.Post("/generate", cfg.DateHandler.GenerateDates)
		r.Post("/generate-room", cfg.DateHandler.GenerateRoomDates)
	})

	return r
}
