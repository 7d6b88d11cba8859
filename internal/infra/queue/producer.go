package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/recupaai/recovery/internal/usecase"
)

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

// PublishRecovery agenda o primeiro contato de um lead. Com delay > 0 a
// mensagem vai para a fila de espera daquele delay; o TTL da fila expira e a
// mensagem cai na fila de trabalho. Sem delay, publica direto.
func (p *RabbitMQProducer) PublishRecovery(ctx context.Context, payload usecase.RecoveryPayload, delay time.Duration) error {
	return p.publish(ctx, payload, delay)
}

// PublishRecoveryRetry devolve um job transiente para a fila de espera com o
// backoff pedido pelo worker.
func (p *RabbitMQProducer) PublishRecoveryRetry(ctx context.Context, payload usecase.RecoveryPayload, backoff time.Duration) error {
	if backoff <= 0 {
		backoff = time.Minute
	}
	return p.publish(ctx, payload, backoff)
}

func (p *RabbitMQProducer) publish(ctx context.Context, payload usecase.RecoveryPayload, delay time.Duration) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %v", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent, // Mensagem salva no disco
	}

	if delay > 0 {
		queueName, args := waitQueueFor(delay)
		if _, err := p.Ch.QueueDeclare(queueName, true, false, false, false, args); err != nil {
			return fmt.Errorf("falha ao declarar fila de espera: %v", err)
		}
		err = p.Ch.PublishWithContext(ctx, "", queueName, false, false, msg)
	} else {
		err = p.Ch.PublishWithContext(ctx, ExchangeName, RoutingKey, false, false, msg)
	}

	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %v", err)
	}
	return nil
}

// waitQueueFor dá o nome e os argumentos da fila de espera de um delay. Uma
// fila por valor de delay, com TTL no nível da fila: todas as mensagens ali
// expiram na ordem em que entraram, então um backoff de 1 minuto nunca fica
// preso atrás de um delay de 1 hora. x-expires apaga a fila depois de ociosa.
func waitQueueFor(delay time.Duration) (string, amqp.Table) {
	ms := delay.Milliseconds()
	name := fmt.Sprintf("%s.%dms", WaitQueuePrefix, ms)
	args := amqp.Table{
		"x-dead-letter-exchange":    ExchangeName,
		"x-dead-letter-routing-key": RoutingKey,
		"x-message-ttl":             ms,
		"x-expires":                 ms + (10 * time.Minute).Milliseconds(),
	}
	return name, args
}
