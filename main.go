package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"motoloans/config"
	"motoloans/database"
	"motoloans/ledger"
	"motoloans/models"
	"motoloans/repositories"
	"motoloans/services"
	"motoloans/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func initSummaryCache(ctx context.Context, cfg *config.Config) (services.SummaryCache, func()) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		// Без кеша сводки считаются при каждом запросе
		utils.Log.Warn("redis unavailable, summary cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = client.Close()
		return nil, func() {}
	}

	utils.Log.Info("summary cache enabled", zap.String("addr", cfg.Redis.Addr))
	return services.NewRedisSummaryCache(client, cfg.Redis.SummaryTTL), func() { _ = client.Close() }
}

func initNotifier(cfg *config.Config) services.Notifier {
	if cfg.SMTP.Host == "" || cfg.SMTP.NotifyTo == "" {
		utils.Log.Info("smtp not configured, loan notifications disabled")
		return nil
	}
	return services.NewEmailService(cfg)
}

func bootstrapAdmin(ctx context.Context, cfg *config.Config, owners *services.OwnerService) error {
	if cfg.Bootstrap.AdminUsername == "" {
		return nil
	}

	if _, err := owners.FindByUsername(ctx, cfg.Bootstrap.AdminUsername); err == nil {
		return nil
	} else if !models.IsNotFound(err) {
		return err
	}

	owner, err := owners.Provision(ctx, services.ProvisionOwnerRequest{
		Username: cfg.Bootstrap.AdminUsername,
		Password: cfg.Bootstrap.AdminPassword,
		Roles:    []models.Role{models.RoleAdmin},
	})
	if err != nil {
		return err
	}
	utils.Log.Info("admin account provisioned", zap.String("owner_id", owner.ID))
	return nil
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Инициализируем логгер
	if err := utils.InitLogger(utils.LoggerConfig{
		Level:      cfg.Log.Level,
		Filename:   cfg.Log.Filename,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer utils.SyncLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Инициализируем подключение к базе данных
	db, err := database.NewDatabase(cfg)
	if err != nil {
		utils.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			utils.Log.Error("failed to close database", zap.Error(err))
		}
	}()

	cache, closeCache := initSummaryCache(ctx, cfg)
	defer closeCache()

	engine, err := ledger.NewEngine(ledger.Policy{
		Period: ledger.Period{
			Unit:  ledger.PeriodUnit(cfg.Ledger.PeriodUnit),
			Every: cfg.Ledger.PeriodEvery,
		},
		GraceLatePayments:   cfg.Ledger.GraceLatePayments,
		DefaultPendingLoans: cfg.Ledger.DefaultPendingLoans,
	})
	if err != nil {
		utils.Log.Fatal("invalid ledger policy", zap.Error(err))
	}

	store := repositories.NewGormStore(db.GetDB())
	loanService := services.NewLoanService(store, engine, initNotifier(cfg), cache)

	if err := bootstrapAdmin(ctx, cfg, services.NewOwnerService(store)); err != nil {
		utils.Log.Fatal("failed to provision admin account", zap.Error(err))
	}

	// Запускаем планировщик дефолтов
	scheduler := services.NewDefaultSweepScheduler(loanService, cfg.Ledger.SweepInterval)
	scheduler.Start(ctx)
	utils.Log.Info("default sweep scheduler started",
		zap.Duration("interval", cfg.Ledger.SweepInterval),
		zap.Stringer("period", engine.Policy().Period))

	<-ctx.Done()
	utils.Log.Info("shutting down")
	scheduler.Wait()
	utils.Log.Info("metrics at shutdown", zap.Any("metrics", utils.GetMetrics().Snapshot()))
}
