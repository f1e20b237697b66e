package config

import (
	"fmt"

	"lablinc/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func postgresDSN(cfg *Config) string {
	if cfg.DatabaseURL != "" {
		return cfg.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode, cfg.Timezone)
}

// ConnectDB opens the configured database.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{}
	if cfg.IsProduction() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Warn)
	}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "file:lablinc.db?_foreign_keys=on"
		}
		dialector = sqlite.Open(dsn)
	default:
		dialector = postgres.Open(postgresDSN(cfg))
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.DBDriver, err)
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
