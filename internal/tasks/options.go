package tasks

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// ParseSchedule validates a standard five-field cron expression.
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return schedule, nil
}

// NextRun returns the first activation of spec after now.
func NextRun(spec string, now time.Time) (time.Time, error) {
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.Next(now), nil
}

func blobDeleteOptions(key string) []asynq.Option {
	return []asynq.Option{
		asynq.TaskID("blob:" + key),
		asynq.Queue(QueueLow),
		asynq.MaxRetry(RetryMax),
		asynq.Timeout(TimeoutShort),
	}
}

func enrollmentEmailOptions(transactionID string) []asynq.Option {
	return []asynq.Option{
		asynq.TaskID("enrollment-email:" + transactionID),
		asynq.Queue(QueueCritical),
		asynq.MaxRetry(RetryDefault),
		asynq.Timeout(TimeoutShort),
		asynq.Retention(Retention),
	}
}

func alertDigestOptions() []asynq.Option {
	return []asynq.Option{
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(RetryMin),
		asynq.Timeout(TimeoutMedium),
	}
}
