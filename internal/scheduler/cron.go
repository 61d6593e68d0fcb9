package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"

	"dialer_portal_backend/platform/config"
	"dialer_portal_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Cron registers the periodic pool reset entries with asynq's scheduler.
type Cron struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewCron(cfg config.SchedulerConfig, log *logger.Logger) (*Cron, error) {
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

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{})

	hourlyTask, err := NewPoolHourlyResetTask(ResetPayload{})
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(cfg.GetPoolHourlyResetCron(), hourlyTask, asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register hourly reset: %w", err)
	}

	dailyTask, err := NewPoolDailyResetTask(ResetPayload{})
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(cfg.GetPoolDailyResetCron(), dailyTask, asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register daily reset: %w", err)
	}

	return &Cron{scheduler: scheduler, log: log}, nil
}

func (c *Cron) Run(ctx context.Context) {
	if c == nil || c.scheduler == nil {
		return
	}

	go func() {
		<-ctx.Done()
		c.scheduler.Shutdown()
	}()

	if err := c.scheduler.Run(); err != nil {
		c.log.Error("cron scheduler stopped", "error", err)
	}
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
