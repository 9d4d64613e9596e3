// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fiachehr/go-eav/internal/config"
	"github.com/fiachehr/go-eav/internal/models"
)

var DB *gorm.DB

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var err error
	var gormConfig *gorm.Config

	// Configure GORM logger
	if cfg.LogLevel == "silent" {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		}
	} else {
		gormConfig = &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		}
	}

	// Connect to database
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB
	sqlDB, err := DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return DB, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Error getting underlying sql.DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database connection: %v", err)
	} else {
		log.Println("Database connection closed successfully")
	}
}

func RunMigrations(db *gorm.DB) error {
	log.Println("Running database migrations...")

	// Enable UUID extension
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Attribute{},
		&models.AttributeGroup{},
		&models.AttributableAttributeGroup{},
		&models.AttributeValue{},
		&models.Translation{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// createIndexes adds the composite indexes the query engine leans on.
// The attribute_id + typed column pairs keep the per-predicate sub-queries
// from scanning the whole fact table, and the prefix index on value_text
// bounds the key length for substring search over unbounded text.
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// Catalog indexes
		"CREATE INDEX IF NOT EXISTS idx_attributes_type_active ON attributes(type, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_attribute_groups_module ON attribute_groups(module_id)",

		// Fact table lookup indexes
		"CREATE INDEX IF NOT EXISTS idx_attributable ON attributable_attributes(attributable_type, attributable_id)",
		"CREATE INDEX IF NOT EXISTS idx_attribute_id ON attributable_attributes(attribute_id)",

		// Per-type predicate indexes
		"CREATE INDEX IF NOT EXISTS idx_attr_number ON attributable_attributes(attribute_id, value_number)",
		"CREATE INDEX IF NOT EXISTS idx_attr_decimal ON attributable_attributes(attribute_id, value_decimal)",
		"CREATE INDEX IF NOT EXISTS idx_attr_date ON attributable_attributes(attribute_id, value_date)",
		"CREATE INDEX IF NOT EXISTS idx_attr_datetime ON attributable_attributes(attribute_id, value_datetime)",
		"CREATE INDEX IF NOT EXISTS idx_attr_boolean ON attributable_attributes(attribute_id, value_boolean)",
		"CREATE INDEX IF NOT EXISTS idx_attr_text ON attributable_attributes(attribute_id, left(value_text, 255))",

		// Translation lookup
		"CREATE INDEX IF NOT EXISTS idx_translations_owner ON eav_translations(translatable_type, translatable_id)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}
