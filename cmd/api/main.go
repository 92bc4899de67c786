package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/karimelbaz/sallati-backend/api/routes"
	authsvc "github.com/karimelbaz/sallati-backend/internal/auth"
	"github.com/karimelbaz/sallati-backend/internal/cart"
	"github.com/karimelbaz/sallati-backend/internal/catalog"
	"github.com/karimelbaz/sallati-backend/internal/identity"
	"github.com/karimelbaz/sallati-backend/internal/notifications"
	"github.com/karimelbaz/sallati-backend/internal/notify"
	sessiontracker "github.com/karimelbaz/sallati-backend/internal/session"
	"github.com/karimelbaz/sallati-backend/internal/suppliers"
	"github.com/karimelbaz/sallati-backend/internal/users"
	"github.com/karimelbaz/sallati-backend/pkg/auth/session"
	"github.com/karimelbaz/sallati-backend/pkg/config"
	"github.com/karimelbaz/sallati-backend/pkg/db"
	"github.com/karimelbaz/sallati-backend/pkg/logger"
	"github.com/karimelbaz/sallati-backend/pkg/metrics"
	"github.com/karimelbaz/sallati-backend/pkg/migrate"
	"github.com/karimelbaz/sallati-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepo(dbClient)
	suppliersRepo := suppliers.NewRepo(dbClient)
	catalogRepo := catalog.NewRepo(dbClient)
	notificationsRepo := notifications.NewRepo(dbClient)

	notificationsSvc := notifications.NewService(notificationsRepo)
	catalogSvc := catalog.NewService(catalogRepo)
	suppliersSvc := suppliers.NewService(suppliersRepo)
	notifySvc := notify.NewService(suppliersRepo, notificationsSvc, logg)

	broadcaster := identity.NewBroadcaster(cfg.JWT, usersRepo, sessionManager)
	authService := authsvc.NewService(usersRepo, sessionManager, broadcaster, cfg.JWT, cfg.Password, logg)

	tracker := sessiontracker.NewMachine(
		broadcaster,
		sessiontracker.GoScheduler{},
		logg,
		cfg.Session.FallbackTimeout(),
		nil,
	)
	if err := tracker.Start(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to start session tracker", err)
		os.Exit(1)
	}

	cartScope := cart.NewScope()
	cartStore := cart.NewSnapshotStore(redisClient, redisClient, cfg.Cart.SnapshotTTL)
	cartManager := cart.NewManager(cartScope, cartStore, logg)

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	handler := routes.NewRouter(routes.Deps{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		SessionManager:  sessionManager,
		HTTPMetrics:     httpMetrics,
		AuthService:     authService,
		SessionTracker:  tracker,
		CatalogService:  catalogSvc,
		SupplierService: suppliersSvc,
		CartManager:     cartManager,
		Notifications:   notificationsSvc,
		NotifyService:   notifySvc,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}

	tracker.Stop()

	var closeErr error
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "error closing resources", closeErr)
	}
}
