package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/recupaai/recovery/internal/usecase"
)

// uazapiWebhook é a notificação de mensagem recebida da UAZAPI.
type uazapiWebhook struct {
	InstanceName string `json:"instanceName"`
	Message      *struct {
		Key struct {
			FromMe    bool   `json:"fromMe"`
			RemoteJid string `json:"remoteJid"`
		} `json:"key"`
		Message struct {
			Conversation        string `json:"conversation"`
			ExtendedTextMessage *struct {
				Text string `json:"text"`
			} `json:"extendedTextMessage"`
		} `json:"message"`
	} `json:"message"`
}

type MessageHandler struct {
	Dispatcher  *usecase.RecoveryDispatcher
	rateLimiter *RateLimiter
}

func NewMessageHandler(dispatcher *usecase.RecoveryDispatcher) *MessageHandler {
	return &MessageHandler{
		Dispatcher:  dispatcher,
		rateLimiter: NewRateLimiter(30, time.Minute), // 30 msg/min por número
	}
}

// Handle recebe a notificação de mensagem da UAZAPI e dispara o turno de
// conversa em background. A resposta sai na hora; falha de processamento é
// só logada (fire-and-forget, entrega best-effort).
func (h *MessageHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var payload uazapiWebhook
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeAck(w, map[string]string{"status": "error", "details": "bad json"})
		return
	}

	if payload.Message == nil {
		writeAck(w, map[string]string{"status": "ignored", "reason": "no_message_data"})
		return
	}

	// Mensagens enviadas por nós mesmos voltam pelo webhook; ignora.
	if payload.Message.Key.FromMe {
		writeAck(w, map[string]string{"status": "ignored", "reason": "from_me"})
		return
	}

	phone := remoteJidToPhone(payload.Message.Key.RemoteJid)

	text := payload.Message.Message.Conversation
	if text == "" && payload.Message.Message.ExtendedTextMessage != nil {
		text = payload.Message.Message.ExtendedTextMessage.Text
	}
	if text == "" {
		writeAck(w, map[string]string{"status": "ignored", "reason": "no_text_content"})
		return
	}

	if !h.rateLimiter.Allow(phone) {
		writeAck(w, map[string]string{"status": "ignored", "reason": "rate_limited"})
		return
	}

	instanceKey := payload.InstanceName
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		if err := h.Dispatcher.OnInboundMessage(ctx, phone, text, instanceKey); err != nil {
			log.Printf("❌ [INBOUND] Falha ao processar mensagem de %s: %v", phone, err)
		}
	}()

	writeAck(w, map[string]string{"status": "processing"})
}

// remoteJidToPhone extrai o telefone de "5511999999999@s.whatsapp.net".
func remoteJidToPhone(jid string) string {
	for i := 0; i < len(jid); i++ {
		if jid[i] == '@' {
			return jid[:i]
		}
	}
	return jid
}
