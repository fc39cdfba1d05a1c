// internal/database/connection.go
package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/workbridge/workbridge-backend/internal/config"
	"github.com/workbridge/workbridge-backend/internal/models"
)

func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		// TranslateError lets callers detect unique-index violations as
		// gorm.ErrDuplicatedKey (duplicate application submissions).
		TranslateError: true,
	}
	if cfg.LogLevel == "silent" {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Database connection established successfully")
	return db, nil
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

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error; err != nil {
		return fmt.Errorf("failed to create UUID extension: %w", err)
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.ProfessionalProfile{},
		&models.Project{},
		&models.Application{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_role_status ON users(role, status)",

		// Project indexes
		"CREATE INDEX IF NOT EXISTS idx_projects_client ON projects(client_id)",
		"CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status)",
		"CREATE INDEX IF NOT EXISTS idx_projects_category_status ON projects(category, status)",
		"CREATE INDEX IF NOT EXISTS idx_projects_created_at ON projects(created_at DESC)",

		// Application indexes
		"CREATE INDEX IF NOT EXISTS idx_applications_professional ON applications(professional_id)",
		"CREATE INDEX IF NOT EXISTS idx_applications_project_status ON applications(project_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_applications_priority ON applications(project_id, priority_score DESC)",

		// At most one accepted application per project, enforced by the
		// database itself.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_one_accepted_per_project ON applications(project_id) WHERE status = 'accepted'",

		// Notification indexes
		"CREATE INDEX IF NOT EXISTS idx_notifications_user_status ON notifications(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at DESC)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			log.Printf("Warning: Failed to create index: %s, Error: %v", index, err)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}
