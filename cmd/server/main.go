package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/design-studio/internal/config"
	"github.com/iliyamo/design-studio/internal/database"
	"github.com/iliyamo/design-studio/internal/generator"
	"github.com/iliyamo/design-studio/internal/handler"
	"github.com/iliyamo/design-studio/internal/logger"
	"github.com/iliyamo/design-studio/internal/metrics"
	"github.com/iliyamo/design-studio/internal/middleware"
	"github.com/iliyamo/design-studio/internal/oauth"
	"github.com/iliyamo/design-studio/internal/queue"
	"github.com/iliyamo/design-studio/internal/repository"
	"github.com/iliyamo/design-studio/internal/router"
	"github.com/iliyamo/design-studio/internal/service"
	"github.com/iliyamo/design-studio/internal/store/memstore"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	lc := config.LoadLogConfig()
	log := logger.Init(lc.Env, lc.Level)
	defer func() { _ = log.Sync() }()

	if err := run(log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, ready, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	gcfg := config.LoadGeneratorConfig()
	gen := generator.NewClient(gcfg, log)
	ready["generator"] = gen.Health

	notifier, stopNotifier := startNotifier(config.LoadQueueConfig(), stores.Notifications, log)
	defer stopNotifier()

	quota := service.NewQuota(stores.Quota, gcfg.Timeout+gcfg.HoldGrace)
	coupons := service.NewCoupons(stores.Coupons)
	orders := service.NewOrders(stores.Designs, stores.Orders, coupons, notifier, log)
	showcase := service.NewShowcase(stores.Showcase)
	google := oauth.NewGoogle(cfg.GoogleTokenInfoURL, cfg.GoogleClientID, log)
	creds := service.NewCredentials(stores.Users, cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost, google, log)

	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		if err := creds.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		log.Warn("redis unavailable, rate limiting and response cache disabled", zap.Error(err))
	} else {
		defer func() { _ = rdb.Close() }()
		ready["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(middleware.RequestID(), metrics.Middleware(), logger.Middleware(log), echomw.Recover())

	router.Register(e, router.Handlers{
		Auth:          handler.NewAuthHandler(creds),
		Designs:       handler.NewDesignHandler(service.NewPipeline(quota, gen, log), quota, orders, showcase),
		Orders:        handler.NewOrderHandler(orders),
		Coupons:       handler.NewCouponHandler(coupons),
		Notifications: handler.NewNotificationHandler(service.NewNotifications(stores.Notifications)),
		Admin:         handler.NewAdminHandler(service.NewAdmin(stores, orders), showcase),
		Prompt:        handler.NewPromptHandler(service.NewPromptAssistant(gen, log)),
	}, guards(creds, rdb), ready)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("storage", cfg.StorageDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(sctx)
}

func guards(auth middleware.Authenticator, rdb *redis.Client) router.Guards {
	return router.Guards{
		Auth:      auth,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	}
}

// openStores selects the persistence backend named by STORAGE_DRIVER.
func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (service.Stores, map[string]handler.Check, func(), error) {
	switch cfg.StorageDriver {
	case "memory":
		log.Warn("using in-memory storage, data is lost on restart")
		db := memstore.New()
		return service.Stores{
			Users:         db.Users(),
			Quota:         db.Quota(),
			Designs:       db.Designs(),
			Orders:        db.Orders(),
			Coupons:       db.Coupons(),
			Notifications: db.Notifications(),
			Showcase:      db.Showcase(),
			Stats:         db.Stats(),
		}, map[string]handler.Check{}, func() {}, nil

	case "mysql":
		db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return service.Stores{}, nil, nil, fmt.Errorf("open database: %w", err)
		}
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return service.Stores{}, nil, nil, err
		}
		return service.Stores{
			Users:         repository.NewUserRepo(db),
			Quota:         repository.NewQuotaRepo(db),
			Designs:       repository.NewDesignRepo(db),
			Orders:        repository.NewOrderRepo(db),
			Coupons:       repository.NewCouponRepo(db),
			Notifications: repository.NewNotificationRepo(db),
			Showcase:      repository.NewShowcaseRepo(db),
			Stats:         repository.NewStatsRepo(db),
		}, map[string]handler.Check{"database": db.PingContext}, func() { _ = db.Close() }, nil
	}
	return service.Stores{}, nil, nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
}

// startNotifier returns the notifier for NOTIFY_TRANSPORT and a stop
// function that drains it.  With amqp the consumer persisting the queue
// runs in-process.
func startNotifier(qc config.QueueConfig, store service.NotificationStore, log *zap.Logger) (service.Notifier, func()) {
	if qc.Transport != "amqp" {
		direct := service.NewDirectNotifier(store, log)
		return direct, direct.Wait
	}

	pub := queue.NewPublisher(qc.URL, qc.NotificationQueue, log)
	consumer := queue.NewConsumer(qc.URL, qc.NotificationQueue, qc.Prefetch, store, log)
	cctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = consumer.Run(cctx)
	}()
	log.Info("notifications via rabbitmq", zap.String("queue", qc.NotificationQueue))

	return pub, func() {
		pub.Close()
		cancel()
		<-done
	}
}
