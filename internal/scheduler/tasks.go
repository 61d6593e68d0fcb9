// Package scheduler owns the background task plumbing for the dialer:
// the hourly and daily pool counter resets run as asynq cron tasks.
package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskPoolHourlyReset = "dialer.pool.hourly_reset"

const TaskPoolDailyReset = "dialer.pool.daily_reset"

// ResetPayload records when the reset was scheduled, for logging drift.
type ResetPayload struct {
	ScheduledAt time.Time `json:"scheduledAt"`
}

func NewPoolHourlyResetTask(payload ResetPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPoolHourlyReset, data), nil
}

func NewPoolDailyResetTask(payload ResetPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPoolDailyReset, data), nil
}

func ParseResetPayload(task *asynq.Task) (ResetPayload, error) {
	var payload ResetPayload
	if len(task.Payload()) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ResetPayload{}, err
	}
	return payload, nil
}
