package usecase

import (
	"context"
	"fmt"

	"github.com/recupaai/recovery/internal/entity"
)

// LeadStateMachine é a única autoridade sobre mudanças de status. Toda
// transição vira um UPDATE condicional chaveado no status que o chamador leu,
// então dois escritores concorrentes que leram o mesmo status nunca avançam
// os dois: um vence, o outro recebe ErrStaleState e precisa reler.
type LeadStateMachine struct {
	Repo LeadRepositoryInterface
}

func NewLeadStateMachine(repo LeadRepositoryInterface) *LeadStateMachine {
	return &LeadStateMachine{Repo: repo}
}

// Transition valida e aplica lead.Status -> target.
func (sm *LeadStateMachine) Transition(ctx context.Context, lead *entity.Lead, target entity.LeadStatus) error {
	return sm.TransitionWithMessages(ctx, lead, target, nil)
}

// TransitionWithMessages aplica a transição e anexa mensagens ao histórico no
// mesmo UPDATE condicional. É assim que o orquestrador garante "tudo ou nada":
// ou o turno inteiro (cliente + assistente + status) entra, ou nada entra.
func (sm *LeadStateMachine) TransitionWithMessages(ctx context.Context, lead *entity.Lead, target entity.LeadStatus, messages []entity.Message) error {
	if lead.Status.IsTerminal() {
		return fmt.Errorf("%w: status %s", ErrAlreadyFinalized, lead.Status)
	}
	if !lead.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, lead.Status, target)
	}

	ok, err := sm.Repo.ConditionalUpdate(ctx, lead.ID, lead.Status, LeadPatch{
		Status:         &target,
		AppendMessages: messages,
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: lead %s não estava mais em %s", ErrStaleState, lead.ID, lead.Status)
	}

	lead.Status = target
	lead.ConversationLog = append(lead.ConversationLog, messages...)
	return nil
}
