package notification

import (
	"context"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// SweepScheduler runs the reminder sweep once a day at 06:00 UTC.
type SweepScheduler struct {
	sweep     *SweepService
	scheduler gocron.Scheduler
	logger    *zap.Logger
}

func NewSweepScheduler(sweep *SweepService, logger *zap.Logger) (*SweepScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &SweepScheduler{sweep: sweep, scheduler: scheduler, logger: logger}, nil
}

// Start registers the daily job under the fx lifecycle.
func (s *SweepScheduler) Start(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_, err := s.scheduler.NewJob(
				gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(6, 0, 0))),
				gocron.NewTask(func() {
					s.sweep.Run(context.Background())
				}),
			)
			if err != nil {
				return err
			}
			s.scheduler.Start()
			s.logger.Info("reminder sweep scheduled daily at 06:00 UTC")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return s.scheduler.Shutdown()
		},
	})
}
