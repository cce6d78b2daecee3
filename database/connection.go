package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Ananth-NQI/orderbot/internal/config"
	"github.com/Ananth-NQI/orderbot/internal/log"
	"github.com/Ananth-NQI/orderbot/internal/models"
)

// Cloud Run mounts Cloud SQL sockets here.
const socketDir = "/cloudsql"

// DSN builds the PostgreSQL connection string. A Cloud SQL instance name
// selects the Unix socket; otherwise host and port are used.
func DSN(cfg config.DatabaseConfig) string {
	if cfg.InstanceConnectionName != "" {
		return fmt.Sprintf("host=%s/%s user=%s password=%s dbname=%s sslmode=disable",
			socketDir, cfg.InstanceConnectionName, cfg.User, cfg.Password, cfg.Name)
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
}

// Connect opens the database and migrates the order tables.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	logger := log.WithComponent("database")

	if cfg.InstanceConnectionName != "" {
		logger.Info().Str("instance", cfg.InstanceConnectionName).Msg("connecting to Cloud SQL via socket")
	} else {
		logger.Info().Str("host", cfg.Host).Str("port", cfg.Port).Msg("connecting to PostgreSQL")
	}

	db, err := gorm.Open(postgres.Open(DSN(cfg)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	logger.Info().Msg("database connected and migrated")
	return db, nil
}
