package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/Mustansar840/quick-management/internal/config"
	httpiface "github.com/Mustansar840/quick-management/internal/interfaces/http"
	"github.com/Mustansar840/quick-management/internal/ledger"
	"github.com/Mustansar840/quick-management/internal/lock"
	"github.com/Mustansar840/quick-management/internal/registry"
	"github.com/Mustansar840/quick-management/internal/repository"
	"github.com/Mustansar840/quick-management/internal/workflow"
	"github.com/Mustansar840/quick-management/pkg/database"
	"github.com/Mustansar840/quick-management/pkg/utils"
)

func main() {
	// Local overrides for development; missing .env is fine.
	_ = gotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
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

	logger.Info("Starting fleet trip ledger service",
		zap.String("workbook", cfg.Ledger.WorkbookPath),
		zap.Int("port", cfg.Server.Port))

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create data directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize audit database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	excelStore := ledger.NewExcelStore(cfg.Ledger.WorkbookPath, logger)
	if err := excelStore.EnsureWorkbook(cfg.Ledger.RegistrySheet, cfg.Ledger.TripSheet); err != nil {
		logger.Fatal("Failed to prepare ledger workbook", zap.Error(err))
	}
	store := ledger.NewCachedStore(excelStore, cfg.Ledger.CacheTTL)

	var driverLock lock.DriverLock
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		driverLock = lock.NewRedisLock(client)
		logger.Info("Using redis driver lock", zap.String("addr", cfg.Redis.Addr))
	} else {
		driverLock = lock.NewMemoryLock()
	}

	auditRepo := repository.NewAuditRepository(db.DB, logger)
	loader := registry.NewLoader(logger)

	engine := workflow.NewEngine(store, loader, driverLock, auditRepo, workflow.Config{
		RegistrySheet: cfg.Ledger.RegistrySheet,
		TripSheet:     cfg.Ledger.TripSheet,
		LockTTL:       cfg.Ledger.LockTTL,
	}, logger)

	handlers := httpiface.NewHandlers(engine, auditRepo, logger)
	server := httpiface.NewServer(httpiface.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
