// Package server exposes the load profile simulator over HTTP: upload a
// source profile, simulate target years, and download the remapped series
// as CSV or charts.
package server

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/stromwerk/loadshaper"
	"github.com/stromwerk/loadshaper/remap"
)

// Server holds one simulation session: the active simulator and the results
// of the last simulated years. The engine itself is single-threaded; the
// mutex serializes handler access to it.
type Server struct {
	opt *loadshaper.Options

	mu      sync.Mutex
	sim     *loadshaper.Simulator
	results map[int]*remap.Result
}

// New creates a Server. The options act as the template for new sessions;
// the region may be overridden per upload.
func New(opt *loadshaper.Options) *Server {
	if opt == nil {
		opt = loadshaper.NewDefaultOptions()
	}
	return &Server{
		opt:     opt,
		results: make(map[int]*remap.Result),
	}
}

// Router returns the configured HTTP handler.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/regions", s.listRegions)
		r.Post("/profiles", s.uploadProfile)
		r.Get("/profiles", s.getProfile)

		r.Route("/simulations", func(r chi.Router) {
			r.Post("/", s.runSimulations)
			r.Route("/{year}", func(r chi.Router) {
				r.Get("/", s.getSimulation)
				r.Get("/records.csv", s.downloadCSV)
				r.Get("/chart", s.renderChart)
				r.Get("/anomalies", s.getAnomalies)
				r.Get("/patterns", s.getPatterns)
				r.Get("/comparison", s.getComparison)
			})
		})
	})

	return r
}
