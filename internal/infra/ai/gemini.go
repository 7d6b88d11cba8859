package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/recupaai/recovery/internal/entity"
	"github.com/recupaai/recovery/internal/infra/metrics"
)

const (
	defaultModel   = "gemini-2.0-flash"
	generateBudget = 15 * time.Second
)

// GeminiGenerator implementa o gerador de respostas com a API do Gemini.
// Falha aqui nunca derruba o turno: o orquestrador degrada para o template.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY não configurada")
	}
	if model == "" {
		model = defaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("falha ao criar cliente genai: %w", err)
	}

	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, product *entity.Product, lead *entity.Lead, window []entity.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateBudget)
	defer cancel()

	contents := toContents(window)
	if len(contents) == 0 {
		// Primeiro contato: histórico vazio, só a instrução de abertura.
		contents = []*genai.Content{
			genai.NewContentFromText("Inicie a conversa com uma mensagem de recuperação.", genai.RoleUser),
		}
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildSystemPrompt(product, lead), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
		MaxOutputTokens:   150,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		metrics.RecordGeneratorFallback()
		return "", fmt.Errorf("gemini: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		metrics.RecordGeneratorFallback()
		return "", fmt.Errorf("gemini: resposta vazia")
	}
	return text, nil
}

func toContents(window []entity.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(window))
	for _, msg := range window {
		role := genai.Role(genai.RoleUser)
		if msg.Role == entity.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}
	return contents
}
