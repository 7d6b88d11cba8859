package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/recupaai/recovery/internal/usecase"
)

type LeadHandler struct {
	Leads usecase.LeadRepositoryInterface
}

func NewLeadHandler(leads usecase.LeadRepositoryInterface) *LeadHandler {
	return &LeadHandler{Leads: leads}
}

// HandleList devolve os 50 leads mais recentes para o painel.
func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	leads, err := h.Leads.FindRecent(r.Context(), 50)
	if err != nil {
		http.Error(w, "Erro ao buscar leads", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(leads)
}
