package uazapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/recupaai/recovery/internal/entity"
	"github.com/recupaai/recovery/internal/infra/metrics"
)

// Client fala com a UAZAPI: envio de texto e ciclo de vida da instância.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// SendText entrega uma mensagem de texto pelo número da instância. Qualquer
// status fora de 2xx é erro de entrega; quem decide retry é o chamador.
func (c *Client) SendText(ctx context.Context, instanceKey, phone, text string) error {
	if c.baseURL == "" || c.apiKey == "" {
		return fmt.Errorf("uazapi não configurado")
	}

	payload := sendTextRequest{
		InstanceName: instanceKey,
		Number:       phone,
		Text:         text,
	}

	status, body, err := c.post(ctx, "/message/text", payload)
	if err != nil {
		metrics.RecordIntegrationError("uazapi")
		return fmt.Errorf("uazapi: %w", err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		metrics.RecordIntegrationError("uazapi")
		return fmt.Errorf("uazapi retornou status %d: %s", status, body)
	}

	metrics.RecordMessageSent()
	log.Printf("✅ UAZAPI: Mensagem enviada para %s", phone)
	return nil
}

// InitInstance cria a instância do cliente caso ainda não exista.
func (c *Client) InitInstance(ctx context.Context, instanceKey string) error {
	status, body, err := c.post(ctx, "/instance/init", instanceRequest{InstanceName: instanceKey})
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return fmt.Errorf("uazapi init retornou status %d: %s", status, body)
	}
	return nil
}

// Connect pede o QR code de pareamento da instância.
func (c *Client) Connect(ctx context.Context, instanceKey string) (string, error) {
	status, body, err := c.post(ctx, "/instance/connect", instanceRequest{InstanceName: instanceKey})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("uazapi connect retornou status %d: %s", status, body)
	}

	var resp connectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("resposta de connect inválida: %w", err)
	}
	return resp.Base64, nil
}

// Status consulta o estado da instância e traduz para o vocabulário interno.
func (c *Client) Status(ctx context.Context, instanceKey string) (string, error) {
	url := fmt.Sprintf("%s/instance/status?instanceName=%s", c.baseURL, instanceKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("uazapi status retornou %d: %s", resp.StatusCode, body)
	}

	var data statusResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("resposta de status inválida: %w", err)
	}

	if data.Instance.State == "open" {
		return entity.InstanceConnected, nil
	}
	return entity.InstanceDisconnected, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody, nil
}
