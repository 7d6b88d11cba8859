package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/recupaai/recovery/internal/entity"
	"github.com/recupaai/recovery/internal/infra/metrics"
	"github.com/recupaai/recovery/internal/usecase"
)

// UazapiInstanceClient é o pedaço da UAZAPI que o handler de instância usa.
type UazapiInstanceClient interface {
	InitInstance(ctx context.Context, instanceKey string) error
	Connect(ctx context.Context, instanceKey string) (string, error)
	Status(ctx context.Context, instanceKey string) (string, error)
}

type InstanceHandler struct {
	Instances usecase.InstanceRepositoryInterface
	Uazapi    UazapiInstanceClient
}

func NewInstanceHandler(instances usecase.InstanceRepositoryInterface, uazapi UazapiInstanceClient) *InstanceHandler {
	return &InstanceHandler{Instances: instances, Uazapi: uazapi}
}

// HandleConnect inicializa a instância do cliente na UAZAPI e devolve o QR
// code de pareamento. O registro local fica em "connecting" até o status
// confirmar a conexão.
func (h *InstanceHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	instanceKey := "instance_" + clientID

	if err := h.Uazapi.InitInstance(r.Context(), instanceKey); err != nil {
		// Instância pode já existir; o connect abaixo decide.
		log.Printf("⚠️ Init da instância %s: %v", instanceKey, err)
	}

	qrCode, err := h.Uazapi.Connect(r.Context(), instanceKey)
	if err != nil {
		log.Printf("❌ Connect da instância %s: %v", instanceKey, err)
		metrics.RecordIntegrationError("uazapi")
		http.Error(w, "Erro ao conectar instância", http.StatusBadGateway)
		return
	}

	instance := &entity.Instance{
		InstanceKey:  instanceKey,
		ClientID:     clientID,
		Status:       entity.InstanceConnecting,
		QRCodeBase64: qrCode,
	}
	if err := h.Instances.Upsert(r.Context(), instance); err != nil {
		log.Printf("❌ Upsert da instância %s: %v", instanceKey, err)
		http.Error(w, "Erro ao salvar instância", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(instance)
}

// HandleStatus consulta o estado na UAZAPI e sincroniza o registro local.
func (h *InstanceHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	instanceKey := "instance_" + clientID

	status, err := h.Uazapi.Status(r.Context(), instanceKey)
	if err != nil {
		log.Printf("⚠️ Status da instância %s: %v", instanceKey, err)
		metrics.RecordIntegrationError("uazapi")
		status = entity.InstanceDisconnected
	} else if err := h.Instances.UpdateStatus(r.Context(), instanceKey, status); err != nil {
		log.Printf("⚠️ Falha ao sincronizar status da instância %s: %v", instanceKey, err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}
