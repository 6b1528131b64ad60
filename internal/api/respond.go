package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arencloud/chione/internal/inventory"
	"github.com/arencloud/chione/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondServiceError maps core and store errors onto HTTP statuses.
func (s *apiServer) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *inventory.ProviderError
	switch {
	case errors.Is(err, inventory.ErrUnknownVault):
		respondError(w, http.StatusNotFound, err.Error()+"; call GET /api/v1/vaults first")
	case errors.Is(err, inventory.ErrAlreadyRequested):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrNotConfigured):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &pe):
		s.logger.Error("provider call failed", "op", pe.Op, "vault", pe.Vault, "code", pe.Code(), "error", pe.Err)
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
