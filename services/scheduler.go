package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic jobs: expired code purge and appointment reminders.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{cron: cron.New(cron.WithLocation(loc))}
}

// Add registers job under a standard five field cron spec.
func (s *Scheduler) Add(spec, name string, job func(ctx context.Context)) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		job(context.Background())
		log.Printf("[CRON] %s finished in %v", name, time.Since(start))
	})
	return err
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("[CRON] scheduler started with %d jobs", len(s.cron.Entries()))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
