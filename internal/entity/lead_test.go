package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recupaai/recovery/internal/entity"
)

func TestNewLeadStartsPending(t *testing.T) {
	lead := entity.NewLead("client-1", "prod-1", "maria@example.com", "Maria", "+55 11 98765-4321", "5511987654321", "https://pay.kiwify.com/abc", 99.9)

	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, entity.StatusPendingRecovery, lead.Status)
	assert.Empty(t, lead.ConversationLog)
}

func TestDisplayNameFallsBackToCliente(t *testing.T) {
	lead := &entity.Lead{Name: ""}
	assert.Equal(t, "Cliente", lead.DisplayName())

	lead.Name = "Maria"
	assert.Equal(t, "Maria", lead.DisplayName())
}

func TestLeadStatusTransitions(t *testing.T) {
	cases := []struct {
		from    entity.LeadStatus
		to      entity.LeadStatus
		allowed bool
	}{
		{entity.StatusPendingRecovery, entity.StatusContacted, true},
		{entity.StatusPendingRecovery, entity.StatusConvertedOrganically, true},
		{entity.StatusPendingRecovery, entity.StatusFailed, true},
		{entity.StatusPendingRecovery, entity.StatusRecoveredByAI, false},
		{entity.StatusContacted, entity.StatusContacted, true},
		{entity.StatusContacted, entity.StatusRecoveredByAI, true},
		{entity.StatusContacted, entity.StatusConvertedOrganically, true},
		{entity.StatusContacted, entity.StatusFailed, true},
		{entity.StatusContacted, entity.StatusPendingRecovery, false},
		{entity.StatusConvertedOrganically, entity.StatusContacted, false},
		{entity.StatusRecoveredByAI, entity.StatusContacted, false},
		{entity.StatusFailed, entity.StatusContacted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.False(t, entity.StatusPendingRecovery.IsTerminal())
	assert.False(t, entity.StatusContacted.IsTerminal())
	assert.True(t, entity.StatusConvertedOrganically.IsTerminal())
	assert.True(t, entity.StatusRecoveredByAI.IsTerminal())
	assert.True(t, entity.StatusFailed.IsTerminal())
}
