// Package scheduler runs the periodic calendar health check that used to be
// an externally-invoked cron script.
package scheduler

import (
	"context"
	"log"

	"github.com/agendamaconica/calendar-api/internal/workflow"
	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron     *cron.Cron
	workflow *workflow.Service
}

func New(wf *workflow.Service) *Scheduler {
	return &Scheduler{cron: cron.New(), workflow: wf}
}

// Start registers the calendar check on the given cron spec and launches the
// scheduler goroutine.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		log.Printf("Starting calendar check")
		if err := s.workflow.CheckLastEvent(context.Background()); err != nil {
			log.Printf("Calendar check failed: %v", err)
		}
		log.Printf("Calendar check completed")
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
