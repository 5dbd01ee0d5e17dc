package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"ndara/internal/config"
	"ndara/internal/utils/logger"

	"github.com/hibiken/asynq"
)

// Scheduler handles periodic task scheduling
type Scheduler struct {
	scheduler *asynq.Scheduler
	logger    *logger.Logger
}

// NewScheduler creates a new task scheduler
func NewScheduler(cfg config.RedisConfig, logger *logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler: asynq.NewScheduler(redisClientOpt(cfg), &asynq.SchedulerOpts{}),
		logger:    logger,
	}
}

// Start blocks running the scheduler until Stop is called
func (s *Scheduler) Start() error {
	s.logger.Info("starting task scheduler")
	return s.scheduler.Run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
	s.logger.Info("task scheduler stopped")
}

// RegisterAlertDigest mails the open security alerts to recipient on spec.
// An empty recipient disables the digest.
func (s *Scheduler) RegisterAlertDigest(spec, recipient string) error {
	if recipient == "" {
		s.logger.Warn("no operations address, security digest disabled")
		return nil
	}
	payload, err := json.Marshal(AlertDigestPayload{Recipient: recipient})
	if err != nil {
		return err
	}
	return s.RegisterCustomTask(spec, TypeSecurityAlertDigest, payload, alertDigestOptions()...)
}

// RegisterCustomTask registers a custom periodic task
func (s *Scheduler) RegisterCustomTask(spec string, taskType string, payload []byte, opts ...asynq.Option) error {
	next, err := NextRun(spec, time.Now())
	if err != nil {
		return err
	}
	entryID, err := s.scheduler.Register(spec, asynq.NewTask(taskType, payload, opts...))
	if err != nil {
		return fmt.Errorf("failed to register custom task: %w", err)
	}

	s.logger.Info("registered custom task %s %s %s, next run at %s", taskType, spec, entryID, next.Format(time.RFC3339))
	return nil
}
