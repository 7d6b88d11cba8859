package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recupaai/recovery/internal/entity"
	"github.com/recupaai/recovery/internal/usecase"
)

type createProductRequest struct {
	ExternalProductID string  `json:"external_product_id"`
	Name              string  `json:"name"`
	Platform          string  `json:"platform"`
	Price             float64 `json:"price"`
	AgentPersona      string  `json:"agent_persona"`
	ObjectionHandling string  `json:"objection_handling"`
	DownsellLink      string  `json:"downsell_link"`
	DelayMinutes      int     `json:"delay_minutes"`
}

type ProductHandler struct {
	Products usecase.ProductRepositoryInterface
}

func NewProductHandler(products usecase.ProductRepositoryInterface) *ProductHandler {
	return &ProductHandler{Products: products}
}

// HandleCreate cadastra um produto recuperável do cliente: é o mapeamento que
// liga o ID do produto na plataforma à persona do agente e ao delay de
// contato. Sem esse registro, eventos de abandono do produto são descartados.
func (h *ProductHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")

	var req createProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad JSON", http.StatusBadRequest)
		return
	}
	if req.ExternalProductID == "" || req.Name == "" {
		http.Error(w, "external_product_id e name são obrigatórios", http.StatusBadRequest)
		return
	}

	existing, err := h.Products.FindByExternalID(r.Context(), req.ExternalProductID, clientID)
	if err != nil {
		log.Printf("❌ Erro ao verificar produto %s: %v", req.ExternalProductID, err)
		http.Error(w, "Erro ao verificar produto", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		http.Error(w, "Produto já cadastrado para este cliente", http.StatusConflict)
		return
	}

	product := entity.NewProduct(clientID, req.ExternalProductID, req.Name, req.Platform)
	product.Price = req.Price
	product.AgentPersona = req.AgentPersona
	product.ObjectionHandling = req.ObjectionHandling
	product.DownsellLink = req.DownsellLink
	if req.DelayMinutes > 0 {
		product.DelayMinutes = req.DelayMinutes
	}

	if err := h.Products.Create(r.Context(), product); err != nil {
		log.Printf("❌ Erro ao cadastrar produto %s: %v", req.ExternalProductID, err)
		http.Error(w, "Erro ao cadastrar produto", http.StatusInternalServerError)
		return
	}

	log.Printf("📦 Produto %s cadastrado para cliente %s (delay %dmin)", product.Name, clientID, product.DelayMinutes)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(product)
}
