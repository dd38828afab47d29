package main

import (
	"github.com/charmbracelet/log"
	"github.com/hibiken/asynq"

	"loan-service/internal/config"
	"loan-service/internal/integrations/zoom"
	"loan-service/internal/worker"
)

func main() {
	config.LoadDotEnv("../../.env", ".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration", "err", err)
	}
	logger := config.NewLogger(cfg.LogLevel)
	log.SetDefault(logger)

	if !cfg.ZoomEnabled() {
		log.Fatal("ZOOM_BASE_URL is required to process meeting cleanups")
	}
	links := zoom.NewClient(cfg.ZoomBaseURL, cfg.ZoomToken)

	redisOpt := asynq.RedisClientOpt{Addr: cfg.RedisURL}

	logger.Info("Starting Asynq Worker...")
	if err := worker.StartWorker(redisOpt, worker.NewWorker(links, logger)); err != nil {
		log.Fatal("could not run server", "err", err)
	}
}
