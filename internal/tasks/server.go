package tasks

import (
	"context"
	"fmt"

	"ndara/internal/config"
	"ndara/internal/utils/logger"

	"github.com/hibiken/asynq"
)

var queues = map[string]int{
	QueueCritical: 6, // High priority
	QueueDefault:  3, // Medium priority
	QueueLow:      1, // Low priority
}

// Server handles task processing
type Server struct {
	server      *asynq.Server
	handler     *TaskHandler
	logger      *logger.Logger
	concurrency int
}

// NewServer creates a new task processing server
func NewServer(redisCfg config.RedisConfig, workerCfg config.WorkerConfig, handler *TaskHandler, logger *logger.Logger) *Server {
	concurrency := workerCfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	server := asynq.NewServer(
		redisClientOpt(redisCfg),
		asynq.Config{
			Concurrency:    concurrency,
			Queues:         queues,
			StrictPriority: true,
			ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
				logger.Warn("task %s failed: %v", task.Type(), err)
			}),
		},
	)

	return &Server{
		server:      server,
		handler:     handler,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Mux routes every task type to its handler
func (s *Server) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBlobDelete, s.handler.HandleBlobDelete)
	mux.HandleFunc(TypeEnrollmentEmail, s.handler.HandleEnrollmentEmail)
	mux.HandleFunc(TypeSecurityAlertDigest, s.handler.HandleAlertDigest)
	return mux
}

// Start starts the task processing server
func (s *Server) Start() error {
	s.logger.Info("starting task processing server concurrency %d queues %v", s.concurrency, queues)

	if err := s.server.Start(s.Mux()); err != nil {
		return fmt.Errorf("failed to start task server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the task processing server
func (s *Server) Shutdown() {
	s.logger.Info("shutting down task processing server")
	s.server.Shutdown()
}
