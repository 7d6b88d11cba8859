package entity

import (
	"time"

	"github.com/google/uuid"
)

type LeadStatus string

const (
	StatusPendingRecovery      LeadStatus = "pending_recovery"
	StatusContacted            LeadStatus = "contacted"
	StatusConvertedOrganically LeadStatus = "converted_organically"
	StatusRecoveredByAI        LeadStatus = "recovered_by_ai"
	StatusFailed               LeadStatus = "failed"
)

const (
	RoleCustomer  = "customer"
	RoleAssistant = "assistant"
)

// Message é uma entrada do histórico de conversa (JSONB, append-only).
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

type Lead struct {
	ID              string     `json:"id"`
	ClientID        string     `json:"client_id"`
	ProductID       string     `json:"product_id"`
	Email           string     `json:"email"`
	Name            string     `json:"name,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	PhoneNormalized string     `json:"phone_normalized,omitempty"`
	CheckoutURL     string     `json:"checkout_url,omitempty"`
	Value           float64    `json:"value"`
	Status          LeadStatus `json:"status"`
	ConversationLog []Message  `json:"conversation_log,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func NewLead(clientID, productID, email, name, phone, phoneNormalized, checkoutURL string, value float64) *Lead {
	return &Lead{
		ID:              uuid.New().String(),
		ClientID:        clientID,
		ProductID:       productID,
		Email:           email,
		Name:            name,
		Phone:           phone,
		PhoneNormalized: phoneNormalized,
		CheckoutURL:     checkoutURL,
		Value:           value,
		Status:          StatusPendingRecovery,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
}

// DisplayName devolve o nome usado nas mensagens. Nunca vazio.
func (l *Lead) DisplayName() string {
	if l.Name == "" {
		return "Cliente"
	}
	return l.Name
}

// allowedTransitions é a única fonte de verdade sobre o ciclo de vida do lead.
// Estados terminais não aparecem como chave: deles não se sai nunca (kill switch).
var allowedTransitions = map[LeadStatus][]LeadStatus{
	StatusPendingRecovery: {StatusContacted, StatusConvertedOrganically, StatusFailed},
	StatusContacted:       {StatusContacted, StatusConvertedOrganically, StatusRecoveredByAI, StatusFailed},
}

func (s LeadStatus) IsTerminal() bool {
	switch s {
	case StatusConvertedOrganically, StatusRecoveredByAI, StatusFailed:
		return true
	}
	return false
}

func (s LeadStatus) CanTransitionTo(target LeadStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}
