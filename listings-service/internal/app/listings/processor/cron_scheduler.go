package processor

import (
	"context"

	"wanderlust/pkg/logger"

	"github.com/robfig/cron/v3"
)

// OrphanSweeper удаляет отзывы, оставшиеся без объявления
type OrphanSweeper interface {
	SweepOrphans(ctx context.Context) (int64, error)
}

// CronScheduler периодически запускает сверку отзывов
// Следующий запуск пропускается, если предыдущий еще не завершился
type CronScheduler struct {
	cron    *cron.Cron
	sweeper OrphanSweeper
}

func NewCronScheduler(sweeper OrphanSweeper) *CronScheduler {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	return &CronScheduler{
		cron:    c,
		sweeper: sweeper,
	}
}

// Start регистрирует задачу и сразу выполняет первую сверку
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting orphan review sweep scheduler")

	if _, err := s.cron.AddFunc(schedule, func() { s.sweep(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	s.sweep(ctx)

	return nil
}

func (s *CronScheduler) sweep(ctx context.Context) {
	removed, err := s.sweeper.SweepOrphans(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Orphan review sweep failed")
		return
	}

	logger.Debug().Int64("removed", removed).Msg("Orphan review sweep completed")
}

// Stop дожидается завершения запущенных задач
func (s *CronScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Orphan review sweep scheduler stopped")
}

func (s *CronScheduler) GetEntries() []cron.Entry {
	return s.cron.Entries()
}
