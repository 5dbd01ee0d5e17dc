package main

import (
	"context"
	"crypto/rsa"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ndara/docs/swagger"
	"ndara/internal/api"
	"ndara/internal/config"
	"ndara/internal/db"
	"ndara/internal/events"
	"ndara/internal/handlers"
	"ndara/internal/models"
	"ndara/internal/permissions"
	"ndara/internal/services"
	"ndara/internal/store"
	"ndara/internal/store/gormstore"
	"ndara/internal/store/memstore"
	"ndara/internal/tasks"
	"ndara/internal/tasks/rate"
	"ndara/internal/utils/crypto"
	"ndara/internal/utils/logger"
	"ndara/internal/validator"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

// @title Ndara Afrique API
// @version 1.0
// @description Course authoring, enrollment and back-office actions of the Ndara Afrique platform.
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	logger := logger.New("ndara")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	setLogLevel(cfg.Server.LogLevel)

	// Service tokens signed with the platform key are optional
	var publicKey *rsa.PublicKey
	if cfg.Crypto.PrivateKey != "" {
		keys, err := crypto.LoadKeys(cfg.Crypto.PrivateKey)
		if err != nil {
			log.Fatalf("Failed to initialize keys: %v", err)
		}
		publicKey = keys.Public()
	}

	backend, dbInstance := openStore(cfg, logger)
	defer func() {
		if dbInstance != nil {
			if err := db.Close(dbInstance); err != nil {
				logger.Error("Failed to close database connection", err)
			}
		}
	}()

	st := store.NewClient(backend, cfg.Store.BatchLimit)
	if err := models.SeedRoles(context.Background(), st); err != nil {
		logger.Warn("Default roles not seeded: %v", err)
	}

	// Uploads answer 503 while no bucket is configured
	var (
		storage handlers.AssetStorage
		blobs   services.BlobStore
	)
	if cfg.Storage.Provider != "none" {
		s3Service, err := services.NewS3Service(context.Background(), cfg.Storage)
		if err != nil {
			logger.Warn("Asset storage disabled: %v", err)
		} else {
			storage, blobs = s3Service, s3Service
		}
	}

	var (
		taskClient *tasks.TaskClient
		queue      services.TaskQueue
	)
	if cfg.Worker.Enabled {
		taskClient = tasks.NewTaskClient(cfg.Redis)
		queue = taskClient
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.Error("Failed to close task client", err)
			}
		}()
	}

	validate := validator.New()
	bus := events.NewEventBus()
	subscribe(bus, logger)

	svc := services.New(services.Deps{
		Store:     st,
		Validator: validate,
		Bus:       bus,
		Blobs:     blobs,
		Queue:     queue,
	})

	var (
		taskServer    *tasks.Server
		taskScheduler *tasks.Scheduler
	)
	if taskClient != nil {
		limiter := rate.NewQueueRateLimiter(taskClient.Redis(), rate.QueueConfig{
			Name:      "mail",
			RateLimit: rate.RateLimit{Window: time.Hour, MaxJobs: cfg.Mail.MaxPerHour},
		})
		taskHandler := tasks.NewTaskHandler(tasks.HandlerDeps{
			Blobs:   blobs,
			Mailer:  tasks.NewSendGridMailer(cfg.Mail),
			Limiter: limiter,
			Alerts:  svc,
		})

		taskServer = tasks.NewServer(cfg.Redis, cfg.Worker, taskHandler, logger)
		go func() {
			if err := taskServer.Start(); err != nil {
				logger.Error("Task server error", err)
			}
		}()

		taskScheduler = tasks.NewScheduler(cfg.Redis, logger)
		if cfg.Mail.OpsEmail != "" {
			if err := taskScheduler.RegisterAlertDigest(cfg.Mail.AlertDigestCron, cfg.Mail.OpsEmail); err != nil {
				logger.Error("Failed to schedule security digest", err)
			}
		}
		go func() {
			if err := taskScheduler.Start(); err != nil {
				logger.Error("Task scheduler error", err)
			}
		}()
	}

	// Swagger documentation
	swagger.SwaggerInfo.Title = "Ndara Afrique API"
	swagger.SwaggerInfo.Version = "1.0"
	swagger.SwaggerInfo.Host = hostOf(cfg.Server.PublicURL)

	apiServer := api.NewServer(cfg, api.Deps{
		Services:  svc,
		Activator: services.NewEnrollmentActivator(svc, cfg.Payments.SuccessStatuses),
		Resolver:  permissions.NewResolver(st),
		Validator: validate,
		Storage:   storage,
		PublicKey: publicKey,
		DB:        dbInstance,
	})
	go func() {
		logger.Success("API server listening on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := apiServer.Start(); err != nil {
			logger.Error("API server error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if taskScheduler != nil {
		taskScheduler.Stop()
	}
	if taskServer != nil {
		taskServer.Shutdown()
	}
	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown API server", err)
	}
	bus.Wait()

	logger.Info("Servers shutdown gracefully")
}

// openStore picks the document backend. A missing or unreachable database
// does not stop the process: every action then fails as unavailable.
func openStore(cfg *config.Config, logger *logger.Logger) (store.Backend, *gorm.DB) {
	if cfg.Store.Provider == "memory" {
		logger.Warn("Using the in-memory document store, data is lost on restart")
		return memstore.New(), nil
	}
	if name := cfg.MissingStoreEnv(); name != "" {
		logger.Warn("Document store unavailable: %s is not set", name)
		return store.Unavailable("variable " + name + " manquante"), nil
	}
	dbInstance, err := db.Connect(cfg)
	if err != nil {
		logger.Error("Failed to connect to database", err)
		return store.Unavailable("base de données injoignable"), nil
	}
	return gormstore.New(dbInstance), dbInstance
}

func subscribe(bus *events.EventBus, logger *logger.Logger) {
	bus.On(events.RolePermissionsUpdated, func(data interface{}) {
		logger.Info("Role permissions changed: %+v", data)
	})
	bus.On(events.AlertResolved, func(data interface{}) {
		logger.Info("Security alert resolved: %+v", data)
	})
	bus.On(events.EnrollmentActivated, func(data interface{}) {
		if e, ok := data.(models.Enrollment); ok {
			logger.Info("Student %s enrolled in %s", e.StudentID, e.CourseID)
		}
	})
}

func setLogLevel(level string) {
	logger.SetLevel(logger.ParseLevel(level))
}

func hostOf(publicURL string) string {
	u, err := url.Parse(publicURL)
	if err != nil || u.Host == "" {
		return publicURL
	}
	return u.Host
}
