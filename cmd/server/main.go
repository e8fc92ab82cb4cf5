package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/traveldesk/traveldesk/internal/application/port"
	"github.com/traveldesk/traveldesk/internal/application/service"
	"github.com/traveldesk/traveldesk/internal/config"
	"github.com/traveldesk/traveldesk/internal/infrastructure/external/lark"
	"github.com/traveldesk/traveldesk/internal/infrastructure/persistence/repository"
	"github.com/traveldesk/traveldesk/internal/infrastructure/storage"
	httpserver "github.com/traveldesk/traveldesk/internal/interfaces/http"
	"github.com/traveldesk/traveldesk/internal/receipt"
	"github.com/traveldesk/traveldesk/internal/reconcile"
	"github.com/traveldesk/traveldesk/internal/settlement"
	"github.com/traveldesk/traveldesk/pkg/database"
	"github.com/traveldesk/traveldesk/pkg/utils"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting TravelDesk",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	for _, dir := range []string{cfg.Settlement.OutputDir, cfg.Storage.ReceiptDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create directory", zap.String("dir", dir), zap.Error(err))
		}
	}

	// Repositories
	appRepo := repository.NewApplicationRepository(db, logger)
	claimRepo := repository.NewClaimRepository(db, logger)
	masterRepo := repository.NewMasterDataRepository(db, logger)
	rateSource := repository.NewDARateSource(db,
		cfg.Allowance.ProrationThresholdDecimal(),
		cfg.Allowance.ProrationFactorDecimal(),
		logger)

	// Notifications
	var messenger port.Messenger = lark.NoopMessenger{}
	if cfg.Lark.Enabled {
		sdkClient := lark.NewSDKClient(lark.Config{
			AppID:           cfg.Lark.AppID,
			AppSecret:       cfg.Lark.AppSecret,
			ApproverOpenIDs: cfg.Lark.ApproverOpenIDs,
		}, logger)
		messenger = lark.NewMessenger(sdkClient, cfg.Lark.ApproverOpenIDs, logger)
	}

	// Services
	sugar := &sugaredLogger{logger.Sugar()}
	engine := reconcile.NewEngine(rateSource, logger)
	inspector := receipt.NewInspector(logger)
	fileStore := storage.NewLocalFileStore(cfg.Storage.ReceiptDir, logger)

	travelService := service.NewTravelService(appRepo, messenger,
		cfg.Allowance.CEOThresholdDecimal(), sugar)
	claimService := service.NewClaimService(claimRepo, appRepo, masterRepo,
		engine, inspector, fileStore, sugar)

	statements := settlement.NewGenerator(cfg.Settlement.CompanyName, logger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		StatementDir: cfg.Settlement.OutputDir,
	}, travelService, claimService, masterRepo, statements, sugar)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("Shutdown signal received")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}

// sugaredLogger adapts zap's sugared logger to the service logging interface.
type sugaredLogger struct {
	sugar *zap.SugaredLogger
}

func (l *sugaredLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *sugaredLogger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}
