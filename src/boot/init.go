package boot

import (
	"bookstore/src/common"
	"bookstore/src/config"
	"bookstore/src/db"
	"bookstore/src/lib"
	"bookstore/src/lib/mailer"
	"bookstore/src/models"
	"context"
	"log"
	"time"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(models.All()...)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler builds the application scheduler. A nil clock means wall-clock time.
func InitScheduler(clock clockwork.Clock) (*lib.Scheduler, error) {
	sched, err := lib.NewScheduler(clock)
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return nil, err
	}
	return sched, nil
}

func ScheduleReconciliation(sched *lib.Scheduler, reconciler *common.Reconciler, interval time.Duration) error {
	j, err := sched.Every("reconcile-failed-transactions", interval, func(ctx context.Context) error {
		reconciler.Sweep(ctx)
		return nil
	})
	if err != nil {
		log.Printf("Error scheduling reconciliation: %s\n", err.Error())
		return err
	}
	log.Printf("Job ID: %s %s every %s\n", j.Name(), j.ID().String(), interval)
	return nil
}

func StopScheduler(sched *lib.Scheduler) {
	if sched == nil {
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Printf("An error has occurred while stopping Scheduler: %s\n", err.Error())
	}
}

// InitBroker creates the Kafka topics and starts the email queue consumer. It is a no-op without
// a broker.
func InitBroker(ctx context.Context, m *mailer.Mailer) {
	if !lib.KafkaEnabled() {
		log.Println("[kafka] KAFKA_BROKER not set. Skipping broker setup")
		return
	}
	if _, err := lib.KafkaCreateTopics(ctx, config.EmailQueue(), config.EventsTopic()); err != nil {
		log.Printf("[kafka] Error creating topics: %s\n", err.Error())
	}
	if err := m.StartConsumer(ctx); err != nil {
		log.Printf("[kafka] Email consumer stopped: %s\n", err.Error())
	}
}
