package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName    = "ex.recovery"
	QueueName       = "q.recovery"
	WaitQueuePrefix = "q.recovery.wait"
	DLQName         = "q.recovery.dlq"
	DLXName         = "ex.recovery.dlx" // Dead Letter Exchange
	RoutingKey      = "k.recovery"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewRabbitMQ(user, pass, host, port string) (*RabbitMQ, error) {
	dsn := fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, host, port)

	conn, err := amqp.Dial(dsn)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir canal: %w", err)
	}

	if err := setupTopology(ch); err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch}, nil
}

// setupTopology monta a malha de recuperação:
//
//	q.recovery.wait.<ttl>ms --(TTL da fila)--> ex.recovery --> q.recovery --(Nack)--> ex.recovery.dlx --> q.recovery.dlq
//
// O delay do primeiro contato e o backoff de retry são o TTL de uma fila de
// espera; quando expira, a mensagem cai na fila de trabalho. As filas de
// espera são declaradas pelo producer, uma por valor de delay: o RabbitMQ só
// expira a cabeça da fila, então misturar TTLs diferentes numa fila só
// seguraria um backoff curto atrás de um delay longo.
func setupTopology(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	_, err = ch.QueueDeclare(DLQName, true, false, false, false, nil)
	if err != nil {
		return err
	}

	err = ch.QueueBind(DLQName, RoutingKey, DLXName, false, nil)
	if err != nil {
		return err
	}

	err = ch.ExchangeDeclare(ExchangeName, "direct", true, false, false, false, nil)
	if err != nil {
		return err
	}

	workArgs := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": RoutingKey,
	}
	_, err = ch.QueueDeclare(QueueName, true, false, false, false, workArgs)
	if err != nil {
		return err
	}

	return ch.QueueBind(QueueName, RoutingKey, ExchangeName, false, nil)
}
