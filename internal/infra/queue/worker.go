package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/recupaai/recovery/internal/usecase"
)

const maxAttempts = 3

// RecoveryHandler é o contrato do worker com o dispatcher de recuperação.
type RecoveryHandler interface {
	OnJob(ctx context.Context, leadID string) error
	OnDeliveryExhausted(ctx context.Context, leadID string) error
}

// RetryPublisher devolve jobs transientes para a fila de espera.
type RetryPublisher interface {
	PublishRecoveryRetry(ctx context.Context, payload usecase.RecoveryPayload, backoff time.Duration) error
}

type Worker struct {
	Channel    *amqp.Channel
	Dispatcher RecoveryHandler
	Producer   RetryPublisher
}

func NewWorker(ch *amqp.Channel, dispatcher RecoveryHandler, producer RetryPublisher) *Worker {
	return &Worker{
		Channel:    ch,
		Dispatcher: dispatcher,
		Producer:   producer,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		log.Fatalf("❌ Falha ao registrar consumidor RabbitMQ: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			w.handleDelivery(d)
		}
	}()

	log.Printf(" [*] Worker rodando e aguardando na fila '%s'", queueName)
	<-forever
}

func (w *Worker) handleDelivery(d amqp.Delivery) {
	var payload usecase.RecoveryPayload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		log.Printf("❌ [WORKER] JSON Inválido: %s", err)
		// Mensagem podre (malformada). Rejeita sem requeue para não travar a fila.
		d.Nack(false, false)
		return
	}

	log.Printf("📥 [WORKER] Processando recuperação do lead %s (tentativa %d)", payload.LeadID, payload.Attempts+1)

	ctx := context.Background()
	err := w.Dispatcher.OnJob(ctx, payload.LeadID)
	if err == nil {
		d.Ack(false)
		return
	}

	if !usecase.IsRetryable(err) {
		log.Printf("❌ [WORKER] Erro não recuperável no lead %s: %s", payload.LeadID, err)
		d.Nack(false, false)
		return
	}

	if payload.Attempts+1 >= maxAttempts {
		log.Printf("❌ [WORKER] Lead %s esgotou %d tentativas: %s", payload.LeadID, maxAttempts, err)
		if exErr := w.Dispatcher.OnDeliveryExhausted(ctx, payload.LeadID); exErr != nil {
			log.Printf("⚠️ [WORKER] Falha ao finalizar lead %s: %s", payload.LeadID, exErr)
		}
		d.Ack(false)
		return
	}

	// Backoff fixo via TTL na fila de espera; a mensagem volta sozinha.
	retry := usecase.RecoveryPayload{LeadID: payload.LeadID, Attempts: payload.Attempts + 1}
	if pubErr := w.Producer.PublishRecoveryRetry(ctx, retry, time.Minute); pubErr != nil {
		log.Printf("⚠️ [WORKER] Falha ao reagendar lead %s, devolvendo à fila: %s", payload.LeadID, pubErr)
		d.Nack(false, true)
		return
	}

	log.Printf("🔁 [WORKER] Lead %s reagendado (erro transiente: %s)", payload.LeadID, err)
	d.Ack(false)
}
