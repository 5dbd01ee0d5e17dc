package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ndara/internal/config"
	"ndara/internal/store/gormstore"
	console "ndara/internal/utils/logger"
)

var log = console.New("DB")

// DSN renders the Postgres connection string of cfg
func DSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		cfg.Host,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.Port,
		cfg.SSLMode,
	)
}

// Connect opens the Postgres database backing the document store and
// migrates the documents table. It retries while the database starts up.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := DSN(cfg.Database)

	log.Info("Connecting to database %s on %s...", cfg.Database.Name, cfg.Database.Host)
	maxRetries := 5
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger:                                   logger.Default.LogMode(logger.Warn),
			DisableForeignKeyConstraintWhenMigrating: true,
			PrepareStmt:                              true,
			AllowGlobalUpdate:                        false,
			TranslateError:                           true,
		})
		if err != nil {
			lastErr = err
			log.Warn("Failed to connect to database (attempt %d/%d): %v", i+1, maxRetries, err)
			time.Sleep(time.Second * 5)
			continue
		}
		log.Success("Connected to database")

		// Configure connection pool
		sqlDB, err := db.DB()
		if err != nil {
			return nil, log.Error("Failed to get underlying *sql.DB instance", err)
		}
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(time.Hour)
		sqlDB.SetConnMaxIdleTime(time.Minute * 30)

		log.Info("Running migrations...")
		if err := gormstore.Migrate(db); err != nil {
			return nil, log.Error("Failed to run migrations", err)
		}
		log.Success("Migrations completed")

		return db, nil
	}
	return nil, log.Error("failed to connect to database after %d attempts", lastErr, maxRetries)
}

func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
