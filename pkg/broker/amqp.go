// -----------------------------------------------------------------------------
// AMQP Publisher
// -----------------------------------------------------------------------------
// Yaşam döngüsü olaylarını RabbitMQ'ya iletir. events.Listener arayüzünü
// uygular; dispatcher'a Wildcard ile kaydedilir ve her olayı olay adı
// routing key olacak şekilde topic exchange'e yayınlar.
//
// Mesaj gövdesi:
//
//	{"name":"order.purchased","occurred_at":"2030-01-01T10:00:00Z","payload":{...}}
// -----------------------------------------------------------------------------

package broker

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/biyonik/ticketbox-core/pkg/events"
)

// Channel, publisher'ın ihtiyaç duyduğu amqp.Channel alt kümesi.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Envelope, exchange'e yazılan mesaj gövdesidir.
type Envelope struct {
	Name       string      `json:"name"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// AMQPPublisher, olayları bir topic exchange'e yayınlar.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  Channel
	exchange string
	logger   *log.Logger
}

var _ events.Listener = (*AMQPPublisher)(nil)

// Dial, RabbitMQ'ya bağlanır, kanal açar ve exchange'i tanımlar.
func Dial(url, exchange string, logger *log.Logger) (*AMQPPublisher, error) {
	logger.Printf("🔄 RabbitMQ bağlantısı kuruluyor (exchange=%s)", exchange)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	p, err := NewAMQPPublisher(channel, exchange, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn

	logger.Println("✅ Connected to RabbitMQ")
	return p, nil
}

// NewAMQPPublisher, açık bir kanal üzerinden publisher oluşturur ve
// durable topic exchange'i tanımlar.
func NewAMQPPublisher(channel Channel, exchange string, logger *log.Logger) (*AMQPPublisher, error) {
	err := channel.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("amqp exchange declare: %w", err)
	}

	return &AMQPPublisher{channel: channel, exchange: exchange, logger: logger}, nil
}

// Handle, olayı exchange'e yayınlar.
func (p *AMQPPublisher) Handle(event events.Event) error {
	body, err := json.Marshal(Envelope{
		Name:       event.Name(),
		OccurredAt: event.OccurredAt().UTC(),
		Payload:    event.Payload(),
	})
	if err != nil {
		return fmt.Errorf("amqp encode %s: %w", event.Name(), err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.Publish(p.exchange, event.Name(), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.OccurredAt(),
		Body:         body,
	})
	if err != nil {
		p.logger.Printf("❌ AMQP publish hatası [%s]: %v", event.Name(), err)
		return fmt.Errorf("amqp publish %s: %w", event.Name(), err)
	}
	return nil
}

// Close, kanalı ve bağlantıyı kapatır.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Close(); err != nil {
		return err
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
