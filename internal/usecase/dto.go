package usecase

// RecoveryPayload é o job da fila: só o ID do lead. Todo o resto é relido do
// banco na hora do processamento, para não trabalhar com estado velho.
type RecoveryPayload struct {
	LeadID   string `json:"lead_id"`
	Attempts int    `json:"attempts"`
}

// TurnResult é o desfecho de um turno de conversa (RunTurn).
type TurnResult string

const (
	TurnSent               TurnResult = "sent"
	TurnFinalized          TurnResult = "finalized"
	TurnChannelUnavailable TurnResult = "channel_unavailable"
	TurnDeliveryFailed     TurnResult = "delivery_failed"
	TurnNotFound           TurnResult = "not_found"
)

// AbandonmentInput é o evento de carrinho abandonado vindo da plataforma.
type AbandonmentInput struct {
	ClientID          string
	ExternalProductID string
	Email             string
	Phone             string
	Name              string
	CheckoutURL       string
	Value             float64
}
