package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/recupaai/recovery/internal/entity"
	"github.com/recupaai/recovery/internal/usecase"
)

func TestTransitionTerminalLeadIsRejected(t *testing.T) {
	leads := new(MockLeadRepository)
	sm := usecase.NewLeadStateMachine(leads)

	lead := pendingLead()
	lead.Status = entity.StatusConvertedOrganically

	err := sm.Transition(context.Background(), lead, entity.StatusContacted)

	assert.ErrorIs(t, err, usecase.ErrAlreadyFinalized)
	leads.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTransitionIllegalEdgeIsRejected(t *testing.T) {
	leads := new(MockLeadRepository)
	sm := usecase.NewLeadStateMachine(leads)

	// pending_recovery -> recovered_by_ai não existe no grafo.
	err := sm.Transition(context.Background(), pendingLead(), entity.StatusRecoveredByAI)

	assert.ErrorIs(t, err, usecase.ErrIllegalTransition)
	leads.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Perder a corrida no banco vira ErrStaleState e o lead em memória não muda.
func TestTransitionStaleStateOnLostRace(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	sm := usecase.NewLeadStateMachine(leads)

	lead := pendingLead()
	leads.On("ConditionalUpdate", ctx, "lead-1", entity.StatusPendingRecovery, mock.Anything).Return(false, nil)

	err := sm.Transition(ctx, lead, entity.StatusContacted)

	assert.ErrorIs(t, err, usecase.ErrStaleState)
	assert.Equal(t, entity.StatusPendingRecovery, lead.Status)
}

// Sucesso atualiza o lead em memória junto: status e histórico.
func TestTransitionWithMessagesMutatesLeadOnSuccess(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	sm := usecase.NewLeadStateMachine(leads)

	lead := pendingLead()
	messages := []entity.Message{{Role: entity.RoleAssistant, Content: "Oi!"}}
	leads.On("ConditionalUpdate", ctx, "lead-1", entity.StatusPendingRecovery, mock.MatchedBy(func(patch usecase.LeadPatch) bool {
		return patch.Status != nil && *patch.Status == entity.StatusContacted && len(patch.AppendMessages) == 1
	})).Return(true, nil)

	err := sm.TransitionWithMessages(ctx, lead, entity.StatusContacted, messages)

	assert.NoError(t, err)
	assert.Equal(t, entity.StatusContacted, lead.Status)
	assert.Len(t, lead.ConversationLog, 1)
}

// Contacted -> contacted é válido: cada turno seguinte reusa a mesma borda.
func TestTransitionContactedSelfLoop(t *testing.T) {
	ctx := context.Background()
	leads := new(MockLeadRepository)
	sm := usecase.NewLeadStateMachine(leads)

	lead := pendingLead()
	lead.Status = entity.StatusContacted
	leads.On("ConditionalUpdate", ctx, "lead-1", entity.StatusContacted, mock.Anything).Return(true, nil)

	err := sm.Transition(ctx, lead, entity.StatusContacted)

	assert.NoError(t, err)
}
