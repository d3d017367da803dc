package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// requestTimeout bounds a full request, including the classifier call
	requestTimeout = 60 * time.Second
	// defaultMaxBodySize caps request bodies when no limit is configured
	defaultMaxBodySize = 1 << 20
)

// NewRouter creates a chi router with all endpoints and middleware
func NewRouter(service ClassifierService, maxBodySize int64) http.Handler {
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}

	h := &Handler{service: service}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(middleware.RequestSize(maxBodySize))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Heartbeat("/ping"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Post("/classify", h.handleClassify)
	})

	return r
}
