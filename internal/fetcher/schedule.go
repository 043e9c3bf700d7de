package fetcher

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/nikbrunner/sbm/internal/logger"
)

// ParseSchedule validates a standard five-field cron expression or a
// descriptor such as "@daily" or "@every 6h".
func ParseSchedule(spec string) (cron.Schedule, error) {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// RunScheduled calls job on every tick of spec until ctx is done. A tick is
// skipped while the previous run is still going.
func RunScheduled(ctx context.Context, spec string, job func(context.Context), log logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return err
	}

	c := cron.New(cron.WithChain(
		cron.Recover(cron.DefaultLogger),
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))
	c.Schedule(schedule, cron.FuncJob(func() {
		log.Debug("scheduled job started", logger.String("schedule", spec))
		job(ctx)
	}))
	c.Start()
	log.Info("job scheduled", logger.String("schedule", spec))

	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
