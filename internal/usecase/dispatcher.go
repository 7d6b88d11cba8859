package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/recupaai/recovery/internal/entity"
)

// TurnRunner é o contrato que o dispatcher tem com o orquestrador de conversa.
type TurnRunner interface {
	Execute(ctx context.Context, leadID, inboundText string) (TurnResult, error)
}

// RecoveryDispatcher liga as três portas de entrada (webhook de plataforma,
// fila de recuperação e mensagem recebida) ao orquestrador, e aplica o kill
// switch irrevogável quando a plataforma reporta compra concluída.
type RecoveryDispatcher struct {
	Leads        LeadRepositoryInterface
	Products     ProductRepositoryInterface
	Queue        QueueProducerInterface
	Turns        TurnRunner
	StateMachine *LeadStateMachine
	Alerts       AlertService
}

func NewRecoveryDispatcher(
	leads LeadRepositoryInterface,
	products ProductRepositoryInterface,
	queue QueueProducerInterface,
	turns TurnRunner,
	stateMachine *LeadStateMachine,
	alerts AlertService,
) *RecoveryDispatcher {
	return &RecoveryDispatcher{
		Leads:        leads,
		Products:     products,
		Queue:        queue,
		Turns:        turns,
		StateMachine: stateMachine,
		Alerts:       alerts,
	}
}

// OnAbandonment cria o lead em pending_recovery e agenda exatamente um job de
// primeiro contato, respeitando o delay configurado no produto. O enqueue só
// acontece depois do Create retornar: o job nunca referencia um lead que o
// worker ainda não consegue ler. Evento duplicado (mesmo email + produto com
// lead ainda ativo) não cria segundo lead nem segundo job.
func (d *RecoveryDispatcher) OnAbandonment(ctx context.Context, input AbandonmentInput) (string, error) {
	product, err := d.Products.FindByExternalID(ctx, input.ExternalProductID, input.ClientID)
	if err != nil {
		return "", fmt.Errorf("buscar produto %s: %w", input.ExternalProductID, err)
	}
	if product == nil || !product.IsActive {
		log.Printf("⚠️ Produto %s não configurado para cliente %s, evento descartado", input.ExternalProductID, input.ClientID)
		return "", fmt.Errorf("%w: %s", ErrProductNotConfigured, input.ExternalProductID)
	}

	existing, err := d.Leads.FindActiveByEmailAndProduct(ctx, input.Email, product.ID)
	if err != nil {
		return "", fmt.Errorf("verificar duplicidade: %w", err)
	}
	if existing != nil {
		log.Printf("ℹ️ Lead ativo já existe para %s / %s, evento duplicado ignorado", input.Email, product.Name)
		return existing.ID, nil
	}

	lead := entity.NewLead(
		input.ClientID,
		product.ID,
		input.Email,
		input.Name,
		input.Phone,
		entity.NormalizePhone(input.Phone),
		input.CheckoutURL,
		input.Value,
	)
	if err := d.Leads.Create(ctx, lead); err != nil {
		return "", fmt.Errorf("criar lead: %w", err)
	}

	payload := RecoveryPayload{LeadID: lead.ID}
	if err := d.Queue.PublishRecovery(ctx, payload, product.OutreachDelay()); err != nil {
		// O lead existe; o reconciliador de pendentes reagenda depois.
		log.Printf("❌ Falha ao enfileirar recuperação do lead %s: %v", lead.ID, err)
		return lead.ID, fmt.Errorf("enfileirar recuperação: %w", err)
	}

	log.Printf("📋 Lead %s criado, recuperação agendada em %s", lead.ID, product.OutreachDelay())
	return lead.ID, nil
}

// OnPurchaseCompleted é o kill switch: a plataforma avisou que o cliente
// comprou, então todo lead ativo de (email, produto) vai para
// converted_organically. Pode correr com um turno em andamento; a escrita
// condicional resolve, e quem perde a corrida relê e tenta de novo a partir
// do estado observado. Não haver lead não é erro.
func (d *RecoveryDispatcher) OnPurchaseCompleted(ctx context.Context, clientID, externalProductID, email string) error {
	product, err := d.Products.FindByExternalID(ctx, externalProductID, clientID)
	if err != nil {
		return fmt.Errorf("buscar produto %s: %w", externalProductID, err)
	}
	if product == nil {
		return fmt.Errorf("%w: %s", ErrProductNotConfigured, externalProductID)
	}

	leads, err := d.Leads.FindByEmailAndProduct(ctx, email, product.ID)
	if err != nil {
		return fmt.Errorf("buscar leads de %s: %w", email, err)
	}

	for _, lead := range leads {
		if err := d.finalizeOrganically(ctx, lead); err != nil {
			log.Printf("⚠️ Kill switch não aplicado ao lead %s: %v", lead.ID, err)
		}
	}
	return nil
}

// finalizeOrganically leva o lead até converted_organically. Perder a corrida
// para um turno que comitou no meio do caminho não desiste: relê e tenta de
// novo do status recém-observado. A finalização sempre vence a próxima
// escrita; o loop só para quando o lead está terminal.
func (d *RecoveryDispatcher) finalizeOrganically(ctx context.Context, lead *entity.Lead) error {
	for {
		if lead.Status.IsTerminal() {
			return nil
		}

		err := d.StateMachine.Transition(ctx, lead, entity.StatusConvertedOrganically)
		if err == nil {
			log.Printf("🔒 Kill switch: lead %s convertido organicamente", lead.ID)
			return nil
		}
		if !errors.Is(err, ErrStaleState) {
			return err
		}

		fresh, err := d.Leads.GetByID(ctx, lead.ID)
		if err != nil {
			return fmt.Errorf("reler lead %s: %w", lead.ID, err)
		}
		if fresh == nil {
			return nil
		}
		lead = fresh
	}
}

// OnJob consome um job da fila e roda o primeiro contato. O erro retornado
// (ou a falta dele) é o que o worker usa para decidir entre retry e descarte.
// Só registro inexistente descarta; erro transiente do banco na mesma busca
// volta para a fila, porque nada foi comitado e reprocessar é seguro.
func (d *RecoveryDispatcher) OnJob(ctx context.Context, leadID string) error {
	result, err := d.Turns.Execute(ctx, leadID, "")
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrLeadNotFound) || errors.Is(err, ErrProductNotFound) {
		// Reprocessar nunca vai dar outro resultado: descarta.
		log.Printf("ℹ️ Job do lead %s descartado (%s): %v", leadID, result, err)
		return nil
	}
	return err
}

// OnInboundMessage trata uma resposta do cliente no WhatsApp. Roda em
// background (fire-and-forget): falha aqui é só logada, nunca devolvida ao
// webhook da UAZAPI.
func (d *RecoveryDispatcher) OnInboundMessage(ctx context.Context, phone, text, instanceKey string) error {
	normalized := entity.NormalizePhone(phone)
	if normalized == "" {
		return nil
	}

	lead, err := d.Leads.FindActiveByPhone(ctx, normalized)
	if err != nil {
		return fmt.Errorf("buscar lead pelo telefone %s: %w", normalized, err)
	}
	if lead == nil {
		log.Printf("ℹ️ Mensagem de %s ignorada: nenhum lead ativo", normalized)
		return nil
	}

	result, err := d.Turns.Execute(ctx, lead.ID, text)
	if err != nil {
		return fmt.Errorf("turno do lead %s (%s): %w", lead.ID, result, err)
	}
	return nil
}

// OnDeliveryExhausted marca o lead como failed depois que a fila esgotou as
// tentativas de entrega, e avisa o operador por email.
func (d *RecoveryDispatcher) OnDeliveryExhausted(ctx context.Context, leadID string) error {
	lead, err := d.Leads.GetByID(ctx, leadID)
	if err != nil || lead == nil {
		return err
	}
	if lead.Status.IsTerminal() {
		return nil
	}

	if err := d.StateMachine.Transition(ctx, lead, entity.StatusFailed); err != nil {
		log.Printf("⚠️ Lead %s não marcado como failed: %v", lead.ID, err)
		return nil
	}

	product, err := d.Products.GetByID(ctx, lead.ProductID)
	productName := ""
	if err == nil && product != nil {
		productName = product.Name
	}

	if d.Alerts != nil {
		if err := d.Alerts.SendRecoveryFailed(lead.Email, lead.DisplayName(), productName); err != nil {
			log.Printf("⚠️ Alerta de falha não enviado para lead %s: %v", lead.ID, err)
		}
	}
	log.Printf("❌ Lead %s marcado como failed após esgotar tentativas", lead.ID)
	return nil
}
