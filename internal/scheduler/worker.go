package scheduler

import (
	"context"
	"fmt"
	"time"

	"dialer_portal_backend/internal/dialer/repository"
	"dialer_portal_backend/platform/config"
	"dialer_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *repository.Repository
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   repository.New(pool),
		log:    log,
	}

	mux.HandleFunc(TaskPoolHourlyReset, w.handlePoolHourlyReset)
	mux.HandleFunc(TaskPoolDailyReset, w.handlePoolDailyReset)

	return w, nil
}

func (w *Worker) handlePoolHourlyReset(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseResetPayload(task)
	if err != nil {
		return err
	}

	reactivated, err := w.repo.ResetHourlyCounters(ctx)
	if err != nil {
		return err
	}

	w.log.Info("pool hourly counters reset",
		"reactivated", reactivated,
		"drift", drift(payload.ScheduledAt))
	return nil
}

func (w *Worker) handlePoolDailyReset(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseResetPayload(task)
	if err != nil {
		return err
	}

	reset, err := w.repo.ResetDailyCounters(ctx)
	if err != nil {
		return err
	}

	w.log.Info("pool daily counters reset",
		"numbers", reset,
		"drift", drift(payload.ScheduledAt))
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func drift(scheduledAt time.Time) time.Duration {
	if scheduledAt.IsZero() {
		return 0
	}
	return time.Since(scheduledAt).Round(time.Millisecond)
}
