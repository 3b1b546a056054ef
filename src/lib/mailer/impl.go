package mailer

import (
	"bookstore/src/config"
	"bookstore/src/lib"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type Mode string

const (
	MODE_QUEUE Mode = "queue"
	MODE_SMTP  Mode = "smtp"
	MODE_LOG   Mode = "log"
)

type Mailer struct {
	mode      Mode
	queue     string
	publisher lib.EventPublisher
	sender    func(*lib.SendMailInput) error
}

// New picks the delivery mode from the environment: the Kafka email queue when a broker is
// configured, direct SMTP when a host is configured, otherwise log-and-drop.
func New() *Mailer {
	m := &Mailer{
		mode:      MODE_LOG,
		queue:     config.EmailQueue(),
		publisher: lib.GetEventPublisher(),
		sender:    lib.SendMail,
	}
	if lib.KafkaEnabled() {
		m.mode = MODE_QUEUE
	} else if lib.SMTPConfigured() {
		m.mode = MODE_SMTP
	}
	return m
}

func NewWithSender(mode Mode, publisher lib.EventPublisher, sender func(*lib.SendMailInput) error) *Mailer {
	return &Mailer{
		mode:      mode,
		queue:     config.EmailQueue(),
		publisher: publisher,
		sender:    sender,
	}
}

func (m *Mailer) Mode() Mode {
	return m.mode
}

func (m *Mailer) Send(input *lib.SendMailInput) error {
	if input.From == "" {
		input.From = config.MailFrom()
	}
	if input.FromName == "" {
		input.FromName = "Bookstore"
	}
	switch m.mode {
	case MODE_QUEUE:
		if err := m.publisher.Publish(m.queue, "", input); err != nil {
			return fmt.Errorf("error sending message to queue: %s", err.Error())
		}
		return nil
	case MODE_SMTP:
		return m.sender(input)
	default:
		log.Printf("[mailer] SMTP not configured, dropping mail to %v: %s\n", input.To, input.Subject)
		return nil
	}
}

// HandleQueuedMessage sends one message taken off the email queue.
func (m *Mailer) HandleQueuedMessage(value []byte) error {
	var input lib.SendMailInput
	if err := json.Unmarshal(value, &input); err != nil {
		return fmt.Errorf("invalid email payload: %w", err)
	}
	if !lib.SMTPConfigured() {
		log.Printf("[mailer] SMTP not configured, dropping queued mail to %v\n", input.To)
		return nil
	}
	return m.sender(&input)
}

// StartConsumer drains the email queue in the background until ctx is canceled.
func (m *Mailer) StartConsumer(ctx context.Context) error {
	if m.mode != MODE_QUEUE {
		return nil
	}
	return lib.KafkaConsumer(ctx, "bookstore-mailer", []string{m.queue}, func(msg *kafka.Message) {
		if err := m.HandleQueuedMessage(msg.Value); err != nil {
			log.Printf("Error sending queued email: %s\n", err.Error())
		}
	})
}
