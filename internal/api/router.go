package api

import (
	"context"
	"net/http"

	"github.com/arencloud/chione/internal/inventory"
	"github.com/arencloud/chione/internal/logging"
	"github.com/arencloud/chione/internal/middleware"
	"github.com/arencloud/chione/internal/models"
	"github.com/arencloud/chione/internal/version"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// AccountStore is the persisted provider account.
type AccountStore interface {
	Current(ctx context.Context) (*models.AccountConfig, error)
	Save(ctx context.Context, cfg models.AccountConfig, replace bool) (*models.AccountConfig, error)
}

// AccountVerifier checks credentials against the provider before they are saved.
type AccountVerifier func(ctx context.Context, cfg models.AccountConfig) error

type apiServer struct {
	logger   logging.Logger
	inv      *inventory.Service
	accounts AccountStore
	verify   AccountVerifier
}

func Router(logger logging.Logger, inv *inventory.Service, accounts AccountStore, verify AccountVerifier) http.Handler {
	s := &apiServer{logger: logger, inv: inv, accounts: accounts, verify: verify}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET", "POST", "OPTIONS"}, AllowedHeaders: []string{"*"}}))
	r.Use(middleware.RequestLog(logger))
	r.Use(middleware.Metrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("ok")) })
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"name": "chione", "version": version.Version})
		})
		r.Route("/v1", func(r chi.Router) {
			s.registerConfigs(r)
			s.registerVaults(r)
			s.registerInventories(r)
		})
	})
	return r
}
