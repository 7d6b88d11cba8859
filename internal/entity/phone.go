package entity

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "BR"

// NormalizePhone converte o telefone para a forma canônica usada em todo o
// sistema: somente dígitos, com DDI (ex: "5511999999999"). Webhook de
// plataforma, webhook de mensagem e fila precisam casar no mesmo lead, então
// todos passam por aqui antes de qualquer busca ou escrita.
func NormalizePhone(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}

	number, err := phonenumbers.Parse(trimmed, defaultRegion)
	if err == nil && phonenumbers.IsValidNumber(number) {
		return strings.TrimPrefix(phonenumbers.Format(number, phonenumbers.E164), "+")
	}

	// Número fora do padrão: mantém só os dígitos para ainda permitir match.
	return digitsOnly(trimmed)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
