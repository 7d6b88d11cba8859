package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/recupaai/recovery/internal/entity"
	"github.com/recupaai/recovery/internal/usecase"
)

func newTurnFixture() (*MockLeadRepository, *MockProductRepository, *MockInstanceRepository, *MockReplyGenerator, *MockMessageSender, *usecase.RunTurnUseCase) {
	leads := new(MockLeadRepository)
	products := new(MockProductRepository)
	instances := new(MockInstanceRepository)
	generator := new(MockReplyGenerator)
	sender := new(MockMessageSender)
	sm := usecase.NewLeadStateMachine(leads)
	uc := usecase.NewRunTurnUseCase(leads, products, instances, generator, sender, sm)
	return leads, products, instances, generator, sender, uc
}

func pendingLead() *entity.Lead {
	return &entity.Lead{
		ID:              "lead-1",
		ClientID:        "client-1",
		ProductID:       "prod-1",
		Email:           "maria@example.com",
		Name:            "Maria",
		Phone:           "+55 11 98765-4321",
		PhoneNormalized: "5511987654321",
		Status:          entity.StatusPendingRecovery,
	}
}

func configuredProduct() *entity.Product {
	return &entity.Product{
		ID:           "prod-1",
		ClientID:     "client-1",
		Name:         "Curso de Python",
		AgentPersona: "Amigável",
		DelayMinutes: 15,
		IsActive:     true,
	}
}

func connectedInstance() *entity.Instance {
	return &entity.Instance{
		InstanceKey: "instance_client-1",
		ClientID:    "client-1",
		Status:      entity.InstanceConnected,
	}
}

// Primeiro contato com sucesso: status avança e o histórico ganha exatamente
// uma entrada do assistente com o texto gerado.
func TestRunTurnFirstOutreachSuccess(t *testing.T) {
	ctx := context.Background()
	leads, products, instances, generator, sender, uc := newTurnFixture()

	generated := "Oi! Notei que você não finalizou..."

	leads.On("GetByID", ctx, "lead-1").Return(pendingLead(), nil)
	products.On("GetByID", ctx, "prod-1").Return(configuredProduct(), nil)
	instances.On("FindConnected", ctx, "client-1").Return(connectedInstance(), nil)
	generator.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(generated, nil)
	sender.On("SendText", ctx, "instance_client-1", "5511987654321", generated).Return(nil)
	leads.On("ConditionalUpdate", ctx, "lead-1", entity.StatusPendingRecovery, mock.MatchedBy(func(patch usecase.LeadPatch) bool {
		return patch.Status != nil &&
			*patch.Status == entity.StatusContacted &&
			len(patch.AppendMessages) == 1 &&
			patch.AppendMessages[0].Role == entity.RoleAssistant &&
			patch.AppendMessages[0].Content == generated
	})).Return(true, nil)

	result, err := uc.Execute(ctx, "lead-1", "")

	assert.NoError(t, err)
	assert.Equal(t, usecase.TurnSent, result)
	leads.AssertExpectations(t)
	sender.AssertExpectations(t)
}

// Kill switch: lead finalizado não gera, não envia, não escreve.
func TestRunTurnFinalizedLeadAbortsSilently(t *testing.T) {
	ctx := context.Background()
	leads, _, _, generator, sender, uc := newTurnFixture()

	lead := pendingLead()
	lead.Status = entity.StatusConvertedOrganically
	leads.On("GetByID", ctx, "lead-1").Return(lead, nil)

	result, err := uc.Execute(ctx, "lead-1", "Oi, ainda tem a oferta?")

	assert.NoError(t, err)
	assert.Equal(t, usecase.TurnFinalized, result)
	generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	leads.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Gerador fora do ar degrada para o template determinístico; o turno segue.
func TestRunTurnGeneratorFailureFallsBackToTemplate(t *testing.T) {
	ctx := context.Background()
	leads, products, instances, generator, sender, uc := newTurnFixture()

	fallback := "Olá Maria, vi que não concluiu a compra do Curso de Python."

	leads.On("GetByID", ctx, "lead-1").Return(pendingLead(), nil)
	products.On("GetByID", ctx, "prod-1").Return(configuredProduct(), nil)
	instances.On("FindConnected", ctx, "client-1").Return(connectedInstance(), nil)
	generator.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("timeout"))
	sender.On("SendText", ctx, "instance_client-1", "5511987654321", fallback).Return(nil)
	leads.On("ConditionalUpdate", ctx, "lead-1", entity.StatusPendingRecovery, mock.MatchedBy(func(patch usecase.LeadPatch) bool {
		return len(patch.AppendMessages) == 1 && patch.AppendMessages[0].Content == fallback
	})).Return(true, nil)

	result, err := uc.Execute(ctx, "lead-1", "")

	assert.NoError(t, err)
	assert.Equal(t, usecase.TurnSent, result)
	sender.AssertExpectations(t)
}

// Falha de entrega não comita nada: sem escrita no histórico, sem transição.
func TestRunTurnDeliveryFailureCommitsNothing(t *testing.T) {
	ctx := context.Background()
	leads, products, instances, generator, sender, uc := newTurnFixture()

	leads.On("GetByID", ctx, "lead-1").Return(pendingLead(), nil)
	products.On("GetByID", ctx, "prod-1").Return(configuredProduct(), nil)
	instances.On("FindConnected", ctx, "client-1").Return(connectedInstance(), nil)
	generator.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("texto", nil)
	sender.On("SendText", ctx, "instance_client-1", "5511987654321", "texto").Return(errors.New("api 500"))

	result, err := uc.Execute(ctx, "lead-1", "tá caro demais")

	assert.Error(t, err)
	assert.ErrorIs(t, err, usecase.ErrDeliveryFailed)
	assert.Equal(t, usecase.TurnDeliveryFailed, result)
	leads.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// Sem instância conectada o turno falha antes de gerar qualquer coisa.
func TestRunTurnChannelUnavailable(t *testing.T) {
	ctx := context.Background()
	leads, products, instances, generator, sender, uc := newTurnFixture()

	leads.On("GetByID", ctx, "lead-1").Return(pendingLead(), nil)
	products.On("GetByID", ctx, "prod-1").Return(configuredProduct(), nil)
	instances.On("FindConnected", ctx, "client-1").Return(nil, nil)

	result, err := uc.Execute(ctx, "lead-1", "")

	assert.ErrorIs(t, err, usecase.ErrChannelUnavailable)
	assert.Equal(t, usecase.TurnChannelUnavailable, result)
	generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "SendText", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunTurnLeadNotFound(t *testing.T) {
	ctx := context.Background()
	leads, _, _, _, _, uc := newTurnFixture()

	leads.On("GetByID", ctx, "ghost").Return(nil, nil)

	result, err := uc.Execute(ctx, "ghost", "")

	assert.ErrorIs(t, err, usecase.ErrLeadNotFound)
	assert.Equal(t, usecase.TurnNotFound, result)
}

// Resposta do cliente: as duas entradas (cliente e assistente) entram na
// mesma escrita, cliente primeiro.
func TestRunTurnInboundAppendsCustomerBeforeAssistant(t *testing.T) {
	ctx := context.Background()
	leads, products, instances, generator, sender, uc := newTurnFixture()

	lead := pendingLead()
	lead.Status = entity.StatusContacted
	lead.ConversationLog = []entity.Message{{Role: entity.RoleAssistant, Content: "Oi!"}}

	leads.On("GetByID", ctx, "lead-1").Return(lead, nil)
	products.On("GetByID", ctx, "prod-1").Return(configuredProduct(), nil)
	instances.On("FindConnected", ctx, "client-1").Return(connectedInstance(), nil)
	generator.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(window []entity.Message) bool {
		// A janela inclui a entrada pendente do cliente no fim.
		return len(window) == 2 && window[1].Role == entity.RoleCustomer && window[1].Content == "quanto custa?"
	})).Return("Custa R$ 99!", nil)
	sender.On("SendText", ctx, "instance_client-1", "5511987654321", "Custa R$ 99!").Return(nil)
	leads.On("ConditionalUpdate", ctx, "lead-1", entity.StatusContacted, mock.MatchedBy(func(patch usecase.LeadPatch) bool {
		return len(patch.AppendMessages) == 2 &&
			patch.AppendMessages[0].Role == entity.RoleCustomer &&
			patch.AppendMessages[1].Role == entity.RoleAssistant
	})).Return(true, nil)

	result, err := uc.Execute(ctx, "lead-1", "quanto custa?")

	assert.NoError(t, err)
	assert.Equal(t, usecase.TurnSent, result)
	leads.AssertExpectations(t)
}

// Corrida aceita: o webhook de compra finalizou o lead entre o envio e a
// escrita condicional. A mensagem saiu, o turno reporta sent, nada é desfeito.
func TestRunTurnLosesRaceToKillSwitch(t *testing.T) {
	ctx := context.Background()
	leads, products, instances, generator, sender, uc := newTurnFixture()

	leads.On("GetByID", ctx, "lead-1").Return(pendingLead(), nil)
	products.On("GetByID", ctx, "prod-1").Return(configuredProduct(), nil)
	instances.On("FindConnected", ctx, "client-1").Return(connectedInstance(), nil)
	generator.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("texto", nil)
	sender.On("SendText", ctx, "instance_client-1", "5511987654321", "texto").Return(nil)
	leads.On("ConditionalUpdate", ctx, "lead-1", entity.StatusPendingRecovery, mock.Anything).Return(false, nil)

	result, err := uc.Execute(ctx, "lead-1", "")

	assert.NoError(t, err)
	assert.Equal(t, usecase.TurnSent, result)
}

// A janela enviada ao gerador é limitada às últimas entradas do histórico.
func TestRunTurnTranscriptWindowIsBounded(t *testing.T) {
	ctx := context.Background()
	leads, products, instances, generator, sender, uc := newTurnFixture()

	lead := pendingLead()
	lead.Status = entity.StatusContacted
	for i := 0; i < 10; i++ {
		lead.ConversationLog = append(lead.ConversationLog, entity.Message{Role: entity.RoleCustomer, Content: "msg"})
	}

	leads.On("GetByID", ctx, "lead-1").Return(lead, nil)
	products.On("GetByID", ctx, "prod-1").Return(configuredProduct(), nil)
	instances.On("FindConnected", ctx, "client-1").Return(connectedInstance(), nil)
	generator.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.MatchedBy(func(window []entity.Message) bool {
		return len(window) == 6
	})).Return("ok", nil)
	sender.On("SendText", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	leads.On("ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	_, err := uc.Execute(ctx, "lead-1", "")

	assert.NoError(t, err)
	generator.AssertExpectations(t)
}
