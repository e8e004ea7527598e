package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/neowatch/neowatch/internal/api/realtime"
)

// NewRouter sets up all command-surface routes.
func NewRouter(handler *Handler, broadcaster *realtime.Broadcaster, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.Health)

		r.Route("/simulation", func(r chi.Router) {
			r.Get("/", handler.GetSimulationState)
			r.Post("/paused", handler.SetPaused)
			r.Post("/timescale", handler.SetTimeScale)
			r.Post("/timestep", handler.SetTimeStep)
			r.Post("/reset", handler.ResetSimulation)
		})

		r.Route("/deflect", func(r chi.Router) {
			r.Post("/impulse", handler.ApplyDeflection)
			r.Post("/ionbeam", handler.ApplyIonBeam)
			r.Post("/tractor", handler.ApplyGravityTractor)
		})

		r.Route("/asteroids", func(r chi.Router) {
			r.Get("/{id}/approach", handler.GetImpactPrediction)
			r.Post("/{id}/montecarlo", handler.RunMonteCarlo)
		})

		r.Route("/neows", func(r chi.Router) {
			r.Post("/apikey", handler.SetAPIKey)
			r.Post("/fetch", handler.FetchAsteroids)
			r.Post("/browse", handler.FetchMoreAsteroids)
			r.Post("/fetch/{id}", handler.FetchAsteroidByID)
			r.Get("/cached", handler.GetCachedAsteroids)
		})

		r.Get("/bodies/{id}", handler.GetBodyDetails)
	})

	r.Get("/ws", broadcaster.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
