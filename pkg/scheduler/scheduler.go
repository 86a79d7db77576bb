package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/ggorockee/reviewmaps-alerts/pkg/logger/types"
	"github.com/robfig/cron/v3"
)

// Scheduler owns the process-wide cron triggers. Jobs are registered before
// Start and run sequentially per trigger; a failing run is logged and the
// job simply waits for its next trigger, since every scan is idempotent.
type Scheduler struct {
	cron   *cron.Cron
	logger *types.Logger
}

func New(logger *types.Logger, location *time.Location) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(location)),
		logger: logger,
	}
}

// Register adds a named job with a standard 5-field cron spec.
func (s *Scheduler) Register(spec, name string, handler func(ctx context.Context) error) error {
	_, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if errRun := handler(context.Background()); errRun != nil {
			s.logger.Errorf("job %s failed: %v", name, errRun)
			return
		}
		s.logger.Infof("job %s finished in %s", name, time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}
	return nil
}

// Start launches the triggers.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels pending triggers and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
