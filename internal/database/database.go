package database

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"loan-service/internal/models"
)

// Connect opens the MySQL connection pool and exits the process on failure.
func Connect(dsn string) *gorm.DB {
	db, err := Open(dsn)
	if err != nil {
		log.Fatal("Failed to connect to database", "err", err)
	}

	log.Info("Database connection established")
	return db
}

// Open is Connect without the process exit, for tests and tooling.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.LoanAccount{},
		&models.WithdrawalRequest{},
		&models.MeetingRequest{},
	)
}

func Migrate(db *gorm.DB) {
	if err := AutoMigrate(db); err != nil {
		log.Fatal("Failed to migrate database", "err", err)
	}
	log.Info("Database migration completed")
}

// Ping reports whether the database answers within ctx.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
