package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ndara/internal/config"
	"ndara/internal/utils/logger"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// TaskClient enqueues work that must survive the request that produced it
type TaskClient struct {
	client      *asynq.Client
	logger      *logger.Logger
	redisClient *redis.Client
}

func redisClientOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewTaskClient creates a new TaskClient with the given Redis configuration
func NewTaskClient(cfg config.RedisConfig) *TaskClient {
	return &TaskClient{
		client: asynq.NewClient(redisClientOpt(cfg)),
		redisClient: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		logger: logger.New("TASKS"),
	}
}

// Redis exposes the plain client shared with the rate limiter
func (c *TaskClient) Redis() *redis.Client {
	return c.redisClient
}

func (c *TaskClient) EnqueueBlobDelete(ctx context.Context, p BlobDeletePayload) error {
	return c.enqueue(ctx, TypeBlobDelete, p, blobDeleteOptions(p.Key)...)
}

func (c *TaskClient) EnqueueEnrollmentEmail(ctx context.Context, p EnrollmentEmailPayload) error {
	return c.enqueue(ctx, TypeEnrollmentEmail, p, enrollmentEmailOptions(p.TransactionID)...)
}

func (c *TaskClient) enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", taskType, err)
	}
	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(taskType, body), opts...)
	if isDuplicate(err) {
		c.logger.Debug("task %s already queued", taskType)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", taskType, err)
	}
	c.logger.Info("queued %s as %s on %s", taskType, info.ID, info.Queue)
	return nil
}

// isDuplicate reports whether an enqueue was rejected because a task with
// the same id or uniqueness key is already known.
func isDuplicate(err error) bool {
	return errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask)
}

// Close closes the underlying asynq and redis clients
func (c *TaskClient) Close() error {
	return errors.Join(c.client.Close(), c.redisClient.Close())
}
