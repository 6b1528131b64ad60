package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *apiServer) registerVaults(r chi.Router) {
	r.Get("/vaults", s.syncVaults)
	r.Get("/vaults/stored", s.storedVaults)
	r.Get("/vaults/{name}/inventory/status", s.inventoryStatus)
	r.Get("/vaults/{name}/inventory", s.vaultInventory)
}

// syncVaults lists the provider's vaults, recording any new ones.
func (s *apiServer) syncVaults(w http.ResponseWriter, r *http.Request) {
	vaults, err := s.inv.SyncVaults(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vaults)
}

func (s *apiServer) storedVaults(w http.ResponseWriter, r *http.Request) {
	vaults, err := s.inv.Vaults(r.Context())
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, vaults)
}

func (s *apiServer) inventoryStatus(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !validVaultName(name) {
		respondError(w, http.StatusBadRequest, "invalid vault name")
		return
	}
	status, err := s.inv.Status(r.Context(), name)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"vault": name, "status": status})
}

func (s *apiServer) vaultInventory(w http.ResponseWriter, r *http.Request) {
	s.serveInventory(w, r, chi.URLParam(r, "name"))
}

// serveInventory answers 200 with the archive list, or 202 while the job runs.
func (s *apiServer) serveInventory(w http.ResponseWriter, r *http.Request, name string) {
	if !validVaultName(name) {
		respondError(w, http.StatusBadRequest, "invalid vault name")
		return
	}
	inv, err := s.inv.Inventory(r.Context(), name)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	if inv.Pending {
		writeJSON(w, http.StatusAccepted, inv)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

