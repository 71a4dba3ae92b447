package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/scorebook/pkg/logger"
	"github.com/robfig/cron/v3"
)

// scheduler runs job at every activation of a cron schedule until its
// context ends. Runs never overlap: a run that overruns the next
// activation delays it.
type scheduler struct {
	spec   string
	sched  cron.Schedule
	job    func(ctx context.Context, now time.Time)
	now    func() time.Time
	logger logger.Logger
}

func newScheduler(spec string, job func(context.Context, time.Time), l logger.Logger) (*scheduler, error) {
	spec = strings.TrimSpace(spec)
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return &scheduler{spec: spec, sched: sched, job: job, now: time.Now, logger: l}, nil
}

func (s *scheduler) run(ctx context.Context) {
	for {
		now := s.now()
		next := s.sched.Next(now)
		s.logger.Info(ctx, "next scheduled fetch",
			logger.String("cron", s.spec),
			logger.String("at", next.Format(time.RFC3339)),
		)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case fired := <-timer.C:
			s.job(ctx, fired)
		}
	}
}
