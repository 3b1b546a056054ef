package lib

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type TaskFunc func(ctx context.Context) error

// Scheduler runs the recurring reconciliation sweep and one-off background tasks.
// The clock is injected so tests can drive it.
type Scheduler struct {
	inner  gocron.Scheduler
	clock  clockwork.Clock
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(clock clockwork.Clock) (*Scheduler, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	inner, err := gocron.NewScheduler(
		gocron.WithClock(clock),
		gocron.WithLocation(time.UTC),
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithError(func(jobID uuid.UUID, jobName string, err error) {
					log.Printf("[scheduler] Job %s (%s) failed: %s\n", jobName, jobID.String(), err.Error())
				}),
			),
		),
	)
	if err != nil {
		log.Printf("Error initializing Scheduler: %s\n", err.Error())
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		inner:  inner,
		clock:  clock,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

func (s *Scheduler) Clock() clockwork.Clock {
	return s.clock
}

// Every registers fn to run on a fixed interval. A run that overlaps the next tick
// pushes that tick back instead of running twice.
func (s *Scheduler) Every(name string, interval time.Duration, fn TaskFunc) (gocron.Job, error) {
	j, err := s.inner.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() error {
			return fn(s.ctx)
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	log.Printf("[scheduler] Registered job %s every %s: %s\n", name, interval, j.ID().String())
	return j, nil
}

// Enqueue runs fn once in the background as soon as the scheduler is running.
// The job is removed from the scheduler after its single run.
func (s *Scheduler) Enqueue(name string, fn TaskFunc) (*string, error) {
	j, err := s.inner.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartImmediately()),
		gocron.NewTask(func() error {
			return fn(s.ctx)
		}),
		gocron.WithName(name),
		gocron.WithLimitedRuns(1),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue %s: %w", name, err)
	}
	id := j.ID().String()
	log.Printf("Job: %s %s\n", id, j.Name())
	return &id, nil
}

func (s *Scheduler) Start() {
	s.inner.Start()
	log.Printf("Jobs in queue: %d\n", len(s.inner.Jobs()))
}

// Shutdown cancels the task context and waits for running jobs to return.
func (s *Scheduler) Shutdown() error {
	s.cancel()
	if err := s.inner.Shutdown(); err != nil {
		log.Printf("An error has occurred while stopping Scheduler: %s\n", err.Error())
		return err
	}
	return nil
}
