package usecase

import (
	"context"
	"time"

	"github.com/recupaai/recovery/internal/entity"
)

// LeadPatch descreve uma escrita condicional sobre o lead. AppendMessages é
// append-only: as entradas entram no fim do conversation_log na ordem dada,
// dentro do mesmo UPDATE que troca o status.
type LeadPatch struct {
	Status         *entity.LeadStatus
	AppendMessages []entity.Message
}

type LeadRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*entity.Lead, error)
	FindActiveByPhone(ctx context.Context, phoneNormalized string) (*entity.Lead, error)
	FindActiveByEmailAndProduct(ctx context.Context, email, productID string) (*entity.Lead, error)
	FindByEmailAndProduct(ctx context.Context, email, productID string) ([]*entity.Lead, error)
	FindStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]*entity.Lead, error)
	FindRecent(ctx context.Context, limit int) ([]*entity.Lead, error)
	Create(ctx context.Context, lead *entity.Lead) error

	// ConditionalUpdate aplica o patch somente se o status atual ainda for
	// expectedStatus (compare-and-swap). Retorna false quando outro escritor
	// venceu a corrida; nesse caso nada foi alterado.
	ConditionalUpdate(ctx context.Context, id string, expectedStatus entity.LeadStatus, patch LeadPatch) (bool, error)
}

type ProductRepositoryInterface interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	FindByExternalID(ctx context.Context, externalID, clientID string) (*entity.Product, error)
	Create(ctx context.Context, product *entity.Product) error
}

type InstanceRepositoryInterface interface {
	FindConnected(ctx context.Context, clientID string) (*entity.Instance, error)
	Upsert(ctx context.Context, instance *entity.Instance) error
	UpdateStatus(ctx context.Context, instanceKey, status string) error
}

// ReplyGenerator produz a próxima mensagem curta do assistente. window é a
// cauda do histórico (mais antigos primeiro), já limitada pelo orquestrador.
type ReplyGenerator interface {
	Generate(ctx context.Context, product *entity.Product, lead *entity.Lead, window []entity.Message) (string, error)
}

// MessageSender entrega um texto pelo canal do cliente (UAZAPI).
type MessageSender interface {
	SendText(ctx context.Context, instanceKey, phone, text string) error
}

type QueueProducerInterface interface {
	PublishRecovery(ctx context.Context, payload RecoveryPayload, delay time.Duration) error
	PublishRecoveryRetry(ctx context.Context, payload RecoveryPayload, backoff time.Duration) error
}

// AlertService avisa o operador sobre condições que exigem ação humana.
type AlertService interface {
	SendRecoveryFailed(leadEmail, leadName, productName string) error
}
