package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/nfseaudit/internal/http/audit"
	"github.com/MrJamesThe3rd/nfseaudit/internal/http/document"
	"github.com/MrJamesThe3rd/nfseaudit/internal/http/sequence"
)

type Options struct {
	AllowedOrigins []string
	// JWTSecret turns on bearer authentication for /api/v1 when set.
	JWTSecret string
}

func New(
	opts Options,
	auditV1 *audit.Handler,
	sequenceV1 *sequence.Handler,
	documentsV1 *document.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	router.Route("/api/v1", func(r chi.Router) {
		if opts.JWTSecret != "" {
			r.Use(Authenticate(opts.JWTSecret))
		}

		r.Route("/audit", auditV1.Routes)

		r.Route("/sequence", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			sequenceV1.Routes(r)
		})

		r.Route("/documents", documentsV1.Routes)
	})

	return router
}
