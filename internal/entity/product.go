package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product é a configuração de recuperação de um produto vendável de um cliente.
// Do ponto de vista do orquestrador é somente leitura.
type Product struct {
	ID                string    `json:"id"`
	ClientID          string    `json:"client_id"`
	ExternalProductID string    `json:"external_product_id"` // ID do produto na plataforma (kiwify, hotmart, eduzz)
	Name              string    `json:"name"`
	Platform          string    `json:"platform,omitempty"`
	Price             float64   `json:"price"`
	AgentPersona      string    `json:"agent_persona,omitempty"` // "Você é um especialista..."
	ObjectionHandling string    `json:"objection_handling,omitempty"`
	DownsellLink      string    `json:"downsell_link,omitempty"` // Link com desconto
	DelayMinutes      int       `json:"delay_minutes"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}

func NewProduct(clientID, externalProductID, name, platform string) *Product {
	return &Product{
		ID:                uuid.New().String(),
		ClientID:          clientID,
		ExternalProductID: externalProductID,
		Name:              name,
		Platform:          platform,
		DelayMinutes:      15,
		IsActive:          true,
		CreatedAt:         time.Now(),
	}
}

func (p *Product) OutreachDelay() time.Duration {
	if p.DelayMinutes <= 0 {
		return 0
	}
	return time.Duration(p.DelayMinutes) * time.Minute
}
