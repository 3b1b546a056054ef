package common

import (
	"bookstore/src/config"
	"bookstore/src/lib"
	"bookstore/src/types"
	"log"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

type Mailer interface {
	Send(input *lib.SendMailInput) error
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID    uint
	Email string
	Role  types.Role
	State string
}

func (a Actor) IsChief() bool {
	return a.Role == types.ROLE_CHIEF_ADMIN
}

type Deps struct {
	DB                *gorm.DB
	Gateway           lib.PaymentGateway
	Clock             clockwork.Clock
	Locker            lib.Locker
	Publisher         lib.EventPublisher
	Mailer            Mailer
	VerifyAttempts    int
	VerifyDelay       time.Duration
	StrictTransitions bool
	EventsTopic       string
}

type Services struct {
	Transactions *TransactionService
	Verifier     *Verifier
	Webhooks     *WebhookProcessor
	Reconciler   *Reconciler
	Orders       *OrderService
	AdminOrders  *AdminOrderService
	Products     *ProductService
}

func NewServices(d Deps) *Services {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Locker == nil {
		d.Locker = lib.NoopLocker{}
	}
	if d.Publisher == nil {
		d.Publisher = lib.NoopPublisher{}
	}
	if d.Mailer == nil {
		d.Mailer = logMailer{}
	}
	if d.EventsTopic == "" {
		d.EventsTopic = config.DEFAULT_EVENTS_TOPIC
	}
	n := &notifier{mailer: d.Mailer, publisher: d.Publisher, topic: d.EventsTopic}
	transactions := &TransactionService{db: d.DB, notify: n, clock: d.Clock}
	verifier := NewVerifier(d.Gateway, d.Clock, d.VerifyAttempts, d.VerifyDelay)
	return &Services{
		Transactions: transactions,
		Verifier:     verifier,
		Webhooks: &WebhookProcessor{
			verifier:     verifier,
			transactions: transactions,
			locker:       d.Locker,
		},
		Reconciler: &Reconciler{
			db:      d.DB,
			gateway: d.Gateway,
			locker:  d.Locker,
			notify:  n,
			clock:   d.Clock,
		},
		Orders:      &OrderService{db: d.DB, notify: n, strict: d.StrictTransitions},
		AdminOrders: &AdminOrderService{db: d.DB},
		Products:    &ProductService{db: d.DB},
	}
}

// notifier queues emails and publishes domain events. Failures are logged, never returned.
type notifier struct {
	mailer    Mailer
	publisher lib.EventPublisher
	topic     string
}

func (n *notifier) mail(input *lib.SendMailInput) {
	if len(input.To) == 0 || input.To[0] == "" {
		return
	}
	if err := n.mailer.Send(input); err != nil {
		log.Printf("Error queueing email to %v: %s\n", input.To, err.Error())
	}
}

func (n *notifier) event(eventType string, key string, data any) {
	if err := n.publisher.Publish(n.topic, key, lib.NewDomainEvent(eventType, data)); err != nil {
		log.Printf("Error publishing %s event: %s\n", eventType, err.Error())
	}
}

type logMailer struct{}

func (logMailer) Send(input *lib.SendMailInput) error {
	log.Printf("[mailer] %v: %s\n", input.To, input.Subject)
	return nil
}
