package server

import (
	"github.com/fekuna/omnipos-menu-service/internal/auth"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/fekuna/omnipos-menu-service/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Mounter registers its routes on the /api/v1 router.
type Mounter interface {
	Mount(r chi.Router)
}

func NewRouter(log logger.ZapLogger, health *HealthHandler, mounts ...Mounter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(auth.Middleware)
	r.Use(middleware.Language)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", health.Check)
		for _, m := range mounts {
			m.Mount(r)
		}
	})

	return r
}
