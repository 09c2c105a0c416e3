package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-puzzle-api/internal/application/puzzle"
	"github.com/go-puzzle-api/internal/application/user"
	"github.com/go-puzzle-api/internal/config"
	"github.com/go-puzzle-api/internal/transport/http/handler"
	appmiddleware "github.com/go-puzzle-api/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. Background workers
// started here stop when ctx is cancelled.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(appmiddleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10, on the credential endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)
	go func() {
		<-ctx.Done()
		sensitiveRL.Close()
	}()

	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:      deps.UserRepo,
		TokenProvider: deps.JWTProvider,
	})
	puzzleSvc := puzzle.NewService(puzzle.ServiceDeps{
		PuzzleRepo:       deps.PuzzleRepo,
		ImageStore:       deps.ImageStore,
		Cipher:           deps.Cipher,
		Normalizer:       deps.Normalizer,
		Events:           deps.Events,
		LastPlayedOffset: cfg.LastPlayedOffset,
	})

	healthH := handler.NewHealthHandler()
	sessionH := handler.NewSessionHandler(userSvc)
	userH := handler.NewUserHandler(userSvc)
	puzzleH := handler.NewPuzzleHandler(puzzleSvc, deps.Normalizer.MaxBytes())

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		// Public routes
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(deps.JWTProvider))

			r.Get("/users/me", userH.Me)
			r.Delete("/users/me", userH.DeleteMe)

			r.Get("/puzzles", puzzleH.List)
			r.Post("/puzzles", puzzleH.Create)
			r.Get("/puzzles/{id}", puzzleH.Get)
			r.Put("/puzzles/{id}", puzzleH.Update)
			r.Delete("/puzzles/{id}", puzzleH.Delete)
		})
	})

	return r
}
