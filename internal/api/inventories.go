package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *apiServer) registerInventories(r chi.Router) {
	r.Post("/inventories/requests", s.requestInventory)
	r.Get("/inventories/requests/status", s.pollInventory)
	r.Get("/inventories", s.downloadInventory)
}

// requestInventory starts a job for a vault that has none.
func (s *apiServer) requestInventory(w http.ResponseWriter, r *http.Request) {
	var in inventoryRequest
	if err := decode(w, r, &in); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := s.inv.RequestInventory(r.Context(), in.VaultName)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"vault": v.Name, "status": v.InventoryStatus, "jobId": v.InventoryJobID})
}

// pollInventory reports the job status without ever starting a job.
func (s *apiServer) pollInventory(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("vault_name")
	if !validVaultName(name) {
		respondError(w, http.StatusBadRequest, "vault_name is required")
		return
	}
	status, err := s.inv.PollStatus(r.Context(), name)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vault": name, "status": status})
}

func (s *apiServer) downloadInventory(w http.ResponseWriter, r *http.Request) {
	s.serveInventory(w, r, r.URL.Query().Get("vault_name"))
}
