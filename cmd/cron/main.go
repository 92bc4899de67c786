package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/karimelbaz/sallati-backend/internal/cron"
	"github.com/karimelbaz/sallati-backend/internal/notifications"
	"github.com/karimelbaz/sallati-backend/internal/suppliers"
	"github.com/karimelbaz/sallati-backend/pkg/config"
	"github.com/karimelbaz/sallati-backend/pkg/db"
	"github.com/karimelbaz/sallati-backend/pkg/instance"
	"github.com/karimelbaz/sallati-backend/pkg/logger"
	"github.com/karimelbaz/sallati-backend/pkg/metrics"
	"github.com/karimelbaz/sallati-backend/pkg/migrate"
	"github.com/karimelbaz/sallati-backend/pkg/redis"
)

const lockKeyFormat = "slt:cron:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	notificationsRepo := notifications.NewRepo(dbClient)
	notificationsSvc := notifications.NewService(notificationsRepo)
	suppliersRepo := suppliers.NewRepo(dbClient)

	inboxCleanup, err := cron.NewInboxCleanupJob(cron.InboxCleanupJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: notificationsRepo,
		Retention:  cfg.Cron.InboxRetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inbox cleanup job", err)
		os.Exit(1)
	}

	supplierReminder, err := cron.NewSupplierReminderJob(cron.SupplierReminderJobParams{
		Logger:    logg,
		Suppliers: suppliersRepo,
		Inbox:     notificationsSvc,
		AfterDays: cfg.Cron.SupplierReminderDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier reminder job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(inboxCleanup, supplierReminder),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"worker_id": instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
