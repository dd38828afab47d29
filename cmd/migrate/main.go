package main

import (
	"github.com/charmbracelet/log"

	"loan-service/internal/config"
	"loan-service/internal/database"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration", "err", err)
	}

	// Initialize Database
	db := database.Connect(cfg.MySQLDSN())

	// Run Migrations
	log.Info("Running database migrations...")
	database.Migrate(db)

	log.Info("Migrations completed successfully!")
}
