package workers

import (
	"context"
	"fmt"
	"time"

	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/metrics"

	"github.com/robfig/cron/v3"
)

const runTimeout = 5 * time.Minute

// Job - одна фоновая задача. RunOnce возвращает число затронутых записей.
type Job interface {
	Name() string
	RunOnce(ctx context.Context) (int64, error)
}

// Scheduler запускает задачи по cron-выражениям (robfig/cron, секунд нет,
// поддерживаются @hourly и @every).
type Scheduler struct {
	cron *cron.Cron
	ctx  context.Context
	done chan struct{}
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:  context.Background(),
		done: make(chan struct{}),
	}
}

// Add регистрирует задачу. Вызывать до Start.
func (s *Scheduler) Add(spec string, job Job) error {
	if _, err := s.cron.AddFunc(spec, func() { Run(s.ctx, job) }); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", job.Name(), spec, err)
	}
	logger.Info("worker scheduled", "worker", job.Name(), "schedule", spec)
	return nil
}

// Start запускает cron. Останавливается при отмене ctx, Wait дожидается
// завершения текущих запусков.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()

	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
		logger.Info("workers stopped")
		close(s.done)
	}()
}

func (s *Scheduler) Wait() {
	<-s.done
}

// Run выполняет задачу один раз с таймаутом, логирует и пишет метрики
func Run(ctx context.Context, job Job) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	affected, err := job.RunOnce(ctx)
	metrics.RecordWorkerRun(job.Name(), err)
	logger.WorkerLog(job.Name(), "run", affected, err)
	return affected, err
}
