package ai

import (
	"fmt"
	"strings"

	"github.com/recupaai/recovery/internal/entity"
)

const systemPromptTemplate = `
Você é um especialista em recuperação de vendas do produto {product_name}.
Seu nome é {agent_name}.

CONTEXTO:
O cliente {lead_name} iniciou o checkout mas não finalizou.
Link de Checkout: {checkout_url}
Preço do produto: R$ {product_price}

SUA MISSÃO:
Descobrir educadamente por que ele não comprou e tentar reverter.
Use a técnica de vendas: Empatia -> Sondagem -> Solução.

DIRETRIZES DE COMPORTAMENTO:
- Persona: {agent_persona}
- Tratamento de Objeções: {objection_handling}
- Link de Downsell (OFERECER APENAS SE A OBJEÇÃO FOR PREÇO): {downsell_link}

REGRAS RÍGIDAS:
1. Respostas curtas e naturais para WhatsApp (máx 2 frases).
2. NUNCA invente dados que não estão aqui.
3. Se o cliente disser que já comprou, parabenize e encerre.
4. Se o cliente for rude ou pedir para parar, peça desculpas e encerre.
5. Aguarde a resposta do cliente antes de mandar a próxima info.
`

func buildSystemPrompt(product *entity.Product, lead *entity.Lead) string {
	replacer := strings.NewReplacer(
		"{product_name}", orDefault(product.Name, "Produto"),
		"{agent_name}", "Assistente",
		"{lead_name}", lead.DisplayName(),
		"{checkout_url}", orDefault(lead.CheckoutURL, product.ExternalProductID),
		"{product_price}", priceOrUnknown(lead.Value),
		"{agent_persona}", orDefault(product.AgentPersona, "Amigável e prestativo"),
		"{objection_handling}", orDefault(product.ObjectionHandling, "Foque no valor agregado"),
		"{downsell_link}", orDefault(product.DownsellLink, "Não disponível"),
	)
	return replacer.Replace(systemPromptTemplate)
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func priceOrUnknown(value float64) string {
	if value <= 0 {
		return "não informado"
	}
	return fmt.Sprintf("%.2f", value)
}
