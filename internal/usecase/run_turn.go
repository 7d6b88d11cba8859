package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/recupaai/recovery/internal/entity"
)

// transcriptWindow limita quantas entradas do histórico vão para o gerador.
// Janela fixa no fim do log: contexto não cresce sem limite.
const transcriptWindow = 6

// RunTurnUseCase executa um turno de conversa: ou o primeiro contato
// automático (inboundText vazio) ou a resposta a uma mensagem do cliente.
//
// Regras que não podem quebrar:
//   - status terminal aborta em silêncio (kill switch);
//   - falha do gerador degrada para o template fixo, nunca derruba o turno;
//   - falha de entrega não comita nada (transcript e status intactos);
//   - as entradas do turno entram no histórico numa única escrita condicional,
//     cliente antes do assistente.
type RunTurnUseCase struct {
	Leads        LeadRepositoryInterface
	Products     ProductRepositoryInterface
	Instances    InstanceRepositoryInterface
	Generator    ReplyGenerator
	Sender       MessageSender
	StateMachine *LeadStateMachine
}

func NewRunTurnUseCase(
	leads LeadRepositoryInterface,
	products ProductRepositoryInterface,
	instances InstanceRepositoryInterface,
	generator ReplyGenerator,
	sender MessageSender,
	stateMachine *LeadStateMachine,
) *RunTurnUseCase {
	return &RunTurnUseCase{
		Leads:        leads,
		Products:     products,
		Instances:    instances,
		Generator:    generator,
		Sender:       sender,
		StateMachine: stateMachine,
	}
}

func (uc *RunTurnUseCase) Execute(ctx context.Context, leadID, inboundText string) (TurnResult, error) {
	lead, err := uc.Leads.GetByID(ctx, leadID)
	if err != nil {
		return TurnNotFound, fmt.Errorf("buscar lead %s: %w", leadID, err)
	}
	if lead == nil {
		return TurnNotFound, fmt.Errorf("%w: %s", ErrLeadNotFound, leadID)
	}

	// Kill switch: terminal não gera nem envia mais nada, e não é erro.
	if lead.Status.IsTerminal() {
		log.Printf("🔒 Lead %s já finalizado (%s), turno abortado", lead.ID, lead.Status)
		return TurnFinalized, nil
	}

	product, err := uc.Products.GetByID(ctx, lead.ProductID)
	if err != nil {
		return TurnNotFound, fmt.Errorf("buscar produto %s: %w", lead.ProductID, err)
	}
	if product == nil {
		return TurnNotFound, fmt.Errorf("%w: %s", ErrProductNotFound, lead.ProductID)
	}

	// A entrada do cliente fica pendente em memória até a entrega dar certo.
	// Comitar antes quebraria a garantia de "nenhuma mutação parcial".
	var pending []entity.Message
	if inboundText != "" {
		pending = append(pending, entity.Message{
			Role:    entity.RoleCustomer,
			Content: inboundText,
			At:      time.Now(),
		})
	}

	instance, err := uc.Instances.FindConnected(ctx, lead.ClientID)
	if err != nil {
		return TurnChannelUnavailable, fmt.Errorf("buscar instância: %w", err)
	}
	if instance == nil {
		return TurnChannelUnavailable, fmt.Errorf("%w: cliente %s", ErrChannelUnavailable, lead.ClientID)
	}

	reply := uc.generateReply(ctx, product, lead, pending)

	phone := lead.PhoneNormalized
	if phone == "" {
		phone = entity.NormalizePhone(lead.Phone)
	}
	if err := uc.Sender.SendText(ctx, instance.InstanceKey, phone, reply); err != nil {
		log.Printf("❌ Entrega falhou para lead %s: %v", lead.ID, err)
		return TurnDeliveryFailed, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	pending = append(pending, entity.Message{
		Role:    entity.RoleAssistant,
		Content: reply,
		At:      time.Now(),
	})

	err = uc.StateMachine.TransitionWithMessages(ctx, lead, entity.StatusContacted, pending)
	if err != nil {
		// A mensagem já saiu. Se um webhook de compra finalizou o lead no meio
		// do caminho, aceitamos a corrida: nada é desfeito, mas nenhum turno
		// futuro roda porque a finalização venceu a escrita.
		log.Printf("⚠️ Mensagem enviada mas transição não aplicada (lead %s): %v", lead.ID, err)
		return TurnSent, nil
	}

	log.Printf("✅ Turno concluído para lead %s (%d entrada(s) no histórico)", lead.ID, len(pending))
	return TurnSent, nil
}

// generateReply chama o gerador com a janela final do histórico. Qualquer
// falha (timeout, cota, gerador não configurado) cai no template fixo montado
// só com dados que já estão no registro.
func (uc *RunTurnUseCase) generateReply(ctx context.Context, product *entity.Product, lead *entity.Lead, pending []entity.Message) string {
	if uc.Generator == nil {
		return FallbackMessage(lead, product)
	}

	window := append(append([]entity.Message{}, lead.ConversationLog...), pending...)
	if len(window) > transcriptWindow {
		window = window[len(window)-transcriptWindow:]
	}

	reply, err := uc.Generator.Generate(ctx, product, lead, window)
	if err != nil || reply == "" {
		log.Printf("⚠️ Gerador indisponível para lead %s, usando template: %v", lead.ID, err)
		return FallbackMessage(lead, product)
	}
	return reply
}

// FallbackMessage é a mensagem determinística usada quando o gerador falha.
func FallbackMessage(lead *entity.Lead, product *entity.Product) string {
	return fmt.Sprintf("Olá %s, vi que não concluiu a compra do %s.", lead.DisplayName(), product.Name)
}
