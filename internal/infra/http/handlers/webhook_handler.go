package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recupaai/recovery/internal/infra/metrics"
	"github.com/recupaai/recovery/internal/usecase"
)

// platformEvent cobre o payload de abandono/compra da Hotmart/Kiwify/Eduzz.
// Hotmart às vezes manda o ID do produto como número no campo "id".
type platformEvent struct {
	Event          string          `json:"event"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone_number"`
	PhoneLocalCode string          `json:"phone_local_code"`
	ProductID      string          `json:"product_id"`
	RawID          json.RawMessage `json:"id"`
	Name           string          `json:"name"`
	CheckoutURL    string          `json:"checkout_url"`
	Price          float64         `json:"price"`
}

type WebhookHandler struct {
	Dispatcher *usecase.RecoveryDispatcher
}

func NewWebhookHandler(dispatcher *usecase.RecoveryDispatcher) *WebhookHandler {
	return &WebhookHandler{Dispatcher: dispatcher}
}

// Handle recebe eventos da plataforma de checkout. Depois que o evento foi
// aceito, a resposta é sempre 200: falha de processamento é logada e medida,
// nunca devolvida ao remetente (evita tempestade de retries da plataforma).
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	platform := chi.URLParam(r, "platform")
	clientID := chi.URLParam(r, "clientID")

	var event platformEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Bad JSON", http.StatusBadRequest)
		return
	}

	metrics.RecordWebhookEvent(platform, event.Event)
	log.Printf("📨 [WEBHOOK %s] Evento %s para cliente %s", platform, event.Event, clientID)

	externalProductID := event.ProductID
	if externalProductID == "" {
		externalProductID = decodeRawID(event.RawID)
	}

	switch event.Event {
	case "PURCHASE_APPROVED", "ORDER_APPROVED":
		err := h.Dispatcher.OnPurchaseCompleted(r.Context(), clientID, externalProductID, event.Email)
		if err != nil && !errors.Is(err, usecase.ErrProductNotConfigured) {
			log.Printf("❌ Kill switch falhou: %v", err)
			metrics.RecordIntegrationError("webhook")
		} else if err == nil {
			metrics.RecordLeadOutcome("converted_organically")
		}
		writeAck(w, map[string]string{"status": "success", "action": "kill_switch_activated"})

	case "CART_ABANDONMENT":
		leadID, err := h.Dispatcher.OnAbandonment(r.Context(), usecase.AbandonmentInput{
			ClientID:          clientID,
			ExternalProductID: externalProductID,
			Email:             event.Email,
			Phone:             event.PhoneLocalCode + event.Phone,
			Name:              event.Name,
			CheckoutURL:       event.CheckoutURL,
			Value:             event.Price,
		})
		switch {
		case errors.Is(err, usecase.ErrProductNotConfigured):
			writeAck(w, map[string]string{"status": "ignored", "reason": "product_not_configured"})
		case err != nil:
			log.Printf("❌ Abandono não processado: %v", err)
			metrics.RecordIntegrationError("webhook")
			writeAck(w, map[string]string{"status": "accepted"})
		default:
			metrics.RecordLeadOutcome("created")
			writeAck(w, map[string]string{"status": "queued", "lead_id": leadID})
		}

	default:
		writeAck(w, map[string]string{"status": "ignored", "reason": "unknown_event_" + event.Event})
	}
}

// decodeRawID aceita tanto "id": "abc-123" quanto "id": 456.
func decodeRawID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asNumber int64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return fmt.Sprintf("%d", asNumber)
	}
	return ""
}

func writeAck(w http.ResponseWriter, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(body)
}
