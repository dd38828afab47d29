package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"loan-service/internal/auth"
	"loan-service/internal/config"
	"loan-service/internal/database"
	grpcServer "loan-service/internal/grpc"
	"loan-service/internal/handlers"
	"loan-service/internal/integrations/zoom"
	"loan-service/internal/repository"
	"loan-service/internal/services"
	"loan-service/internal/worker"
	"loan-service/internal/workflow"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		log.Fatal("Invalid configuration", "err", err)
	}
	logger := config.NewLogger(cfg.LogLevel)
	log.SetDefault(logger)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	// Initialize Database
	db := database.Connect(cfg.MySQLDSN())
	database.Migrate(db)

	users := repository.NewUserRepository(db)
	accounts := repository.NewLoanAccountRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, users)
	if err != nil {
		log.Fatal("Failed to create token issuer", "err", err)
	}

	// Redis/Asynq Client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisURL})
	defer asynqClient.Close()

	var links workflow.MeetingLinkProvider
	if cfg.ZoomEnabled() {
		links = zoom.NewClient(cfg.ZoomBaseURL, cfg.ZoomToken)
	} else {
		logger.Warn("ZOOM_BASE_URL not set, video meetings cannot be scheduled")
	}

	authService := services.NewAuthService(users, tokens, auth.NewTOTP(cfg.TOTPIssuer), logger)
	accountService := services.NewAccountService(accounts, users, logger)
	withdrawalService := workflow.NewWithdrawalService(withdrawalRepo, accounts, logger)
	meetingService := workflow.NewMeetingService(meetingRepo, links, worker.NewCleanupQueue(asynqClient), workflow.MeetingOptions{
		Timeout: cfg.IntegrationTimeout,
		Logger:  logger,
	})
	reportingService := services.NewReportingService(withdrawalRepo, meetingRepo, logger)

	// Initialize Gin
	r := gin.Default()
	h := handlers.NewHandler(tokens, authService, accountService, withdrawalService, meetingService, logger)
	handlers.RegisterRoutes(r, h)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start gRPC health server
	health := grpcServer.NewServer(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}, logger)
	go health.Watch(ctx, 15*time.Second)
	go func() {
		if err := grpcServer.StartGRPCServer(cfg.GRPCPort, health); err != nil {
			log.Fatal("Failed to start gRPC server", "err", err)
		}
	}()

	// Start Cron Schedulers
	scheduler, err := reportingService.StartScheduler(cfg.ReportCron)
	if err != nil {
		log.Fatal("Failed to schedule backlog report", "err", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("HTTP Server starting", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "err", err)
	}
	health.Stop()
	<-scheduler.Stop().Done()
}
