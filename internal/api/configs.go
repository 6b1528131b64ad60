package api

import (
	"errors"
	"net/http"

	"github.com/arencloud/chione/internal/store"
	"github.com/go-chi/chi/v5"
)

func (s *apiServer) registerConfigs(r chi.Router) {
	r.Get("/configs", s.getConfig)
	r.Post("/configs", s.postConfig)
}

func (s *apiServer) getConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.accounts.Current(r.Context())
	if errors.Is(err, store.ErrNotConfigured) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg.Redacted())
}

// postConfig saves the account. A first save checks the credentials by listing
// vaults; replacing an existing account needs ?replace=true.
func (s *apiServer) postConfig(w http.ResponseWriter, r *http.Request) {
	var in accountRequest
	if err := decode(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	replace := r.URL.Query().Get("replace") == "true"
	cfg := in.model()

	if _, err := s.accounts.Current(r.Context()); err == nil && !replace {
		respondError(w, http.StatusBadRequest, "account already set; use query param replace=true to override it")
		return
	} else if err != nil && !errors.Is(err, store.ErrNotConfigured) {
		s.respondServiceError(w, r, err)
		return
	}

	if s.verify != nil {
		if err := s.verify(r.Context(), cfg); err != nil {
			s.logger.Info("account verification failed", "account", cfg.Account, "region", cfg.Region, "error", err)
			respondError(w, http.StatusBadRequest, "could not list vaults with the given credentials")
			return
		}
	}

	saved, err := s.accounts.Save(r.Context(), cfg, replace)
	if errors.Is(err, store.ErrAlreadyConfigured) {
		respondError(w, http.StatusBadRequest, "account already set; use query param replace=true to override it")
		return
	}
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	s.logger.Info("account saved", "account", saved.Account, "region", saved.Region, "replaced", replace)
	writeJSON(w, http.StatusCreated, saved.Redacted())
}
