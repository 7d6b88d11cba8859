package usecase

import "errors"

// Taxonomia de erros do fluxo de recuperação. A classificação decide a
// política de retry da fila: transiente volta pra fila, terminal é descartado.
var (
	ErrLeadNotFound         = errors.New("lead não encontrado")
	ErrProductNotFound      = errors.New("produto não encontrado")
	ErrProductNotConfigured = errors.New("produto não configurado para este cliente")
	ErrChannelUnavailable   = errors.New("nenhuma instância de WhatsApp conectada")
	ErrDeliveryFailed       = errors.New("falha ao entregar mensagem")
	ErrIllegalTransition    = errors.New("transição de status não permitida")
	ErrAlreadyFinalized     = errors.New("lead já finalizado")
	ErrStaleState           = errors.New("status mudou desde a leitura")
)

// IsRetryable diz se o worker da fila deve reprocessar o job. Infra
// transiente (canal, entrega, banco) sim; estado terminal ou registro
// inexistente nunca, porque reprocessar não muda o resultado.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrLeadNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrProductNotConfigured) ||
		errors.Is(err, ErrAlreadyFinalized) ||
		errors.Is(err, ErrIllegalTransition) {
		return false
	}
	return true
}
