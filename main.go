package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"example.com/storefront/internal/config"
	domorder "example.com/storefront/internal/domain/order"
	domproduct "example.com/storefront/internal/domain/product"
	domuser "example.com/storefront/internal/domain/user"
	"example.com/storefront/internal/infra/client/storeapi"
	"example.com/storefront/internal/infra/notify"
	"example.com/storefront/internal/infra/persistence/memory"
	"example.com/storefront/internal/infra/persistence/mysql"
	"example.com/storefront/internal/infra/persistence/postgres"
	"example.com/storefront/internal/infra/persistence/redis"
	"example.com/storefront/internal/infra/resilience"
	"example.com/storefront/internal/infra/security"
	httpapi "example.com/storefront/internal/interface/http"
	"example.com/storefront/internal/logger"
	authuc "example.com/storefront/internal/usecase/auth"
	cartuc "example.com/storefront/internal/usecase/cart"
	orderuc "example.com/storefront/internal/usecase/order"
	productuc "example.com/storefront/internal/usecase/product"
	sessionuc "example.com/storefront/internal/usecase/session"
)

type app struct {
	cfg     *config.Config
	log     *zap.Logger
	checks  map[string]httpapi.HealthCheck
	closers []func()
	api     *storeapi.Client
	db      *sql.DB
}

func main() {
	cfg, warnings, err := config.Load(config.DefaultFiles)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	for _, w := range warnings {
		log.Warn(w)
	}
	log.Info("configuration loaded", zap.String("config", cfg.String()))

	if err := run(cfg, log); err != nil {
		log.Fatal("storefront stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, log: log, checks: map[string]httpapi.HealthCheck{}}
	defer a.close()

	handler, err := a.build(ctx)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.App.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exiting")
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) build(ctx context.Context) (http.Handler, error) {
	cfg := a.cfg

	if cfg.MySQL.DSN != "" {
		db, err := mysql.Open(ctx, cfg.MySQL.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.closers = append(a.closers, func() { _ = db.Close() })
		a.checks["mysql"] = db.PingContext
	}

	if cfg.Catalog.Source == "remote" || cfg.Auth.Provider == "remote" || cfg.Orders.Provider == "remote" {
		a.api = storeapi.New(cfg.API.BaseURL, cfg.API.Timeout, a.breaker("storeapi"), a.log)
	}

	store, err := a.store(ctx)
	if err != nil {
		return nil, err
	}

	catalog := a.catalog()

	authenticator, err := a.authenticator(ctx)
	if err != nil {
		return nil, err
	}

	notifier, err := a.notifier()
	if err != nil {
		return nil, err
	}

	var orderRepo domorder.Repository = memory.NewOrderRepository()
	if a.db != nil {
		orderRepo = mysql.NewOrderRepository(a.db)
	}
	orderOpts := []orderuc.Option{orderuc.WithProcessingDelay(cfg.Orders.ProcessingDelay)}
	if notifier != nil {
		orderOpts = append(orderOpts, orderuc.WithNotifier(notifier))
	}
	orderSvc := orderuc.NewService(orderRepo, a.log, orderOpts...)

	var submitter domorder.Submitter = orderSvc
	if cfg.Orders.Provider == "remote" {
		submitter = a.api.Submitter()
	}

	cartSvc := cartuc.NewService(catalog, store, submitter, a.log,
		cartuc.WithSubmitTimeout(cfg.Orders.SubmitTimeout),
	)
	holder := sessionuc.NewHolder(authenticator, store, a.log)

	holder.Load(ctx)
	cartSvc.LoadPersisted(ctx)

	verifier, _ := authenticator.(httpapi.TokenVerifier)

	api := httpapi.NewAPI(httpapi.Dependencies{
		ProductService: productuc.NewService(catalog),
		CartService:    cartSvc,
		SessionHolder:  holder,
		OrderService:   orderSvc,
		TokenVerifier:  verifier,
		HealthChecks:   a.checks,
		Logger:         a.log,
	})
	return api.Router(), nil
}

func (a *app) breaker(name string) resilience.Settings {
	return resilience.Settings{
		Name:                name,
		ConsecutiveFailures: a.cfg.Breaker.ConsecutiveFailures,
		OpenTimeout:         a.cfg.Breaker.OpenTimeout,
	}
}

func (a *app) store(ctx context.Context) (cartuc.Store, error) {
	cfg := a.cfg.Storage
	switch cfg.Driver {
	case "redis":
		client, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return redis.NewStore(client, cfg.KeyPrefix, cfg.TTL), nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.PostgresDSN, 5*time.Second)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		a.checks["postgres"] = pool.Ping
		return postgres.NewStore(pool, cfg.KeyPrefix), nil
	default:
		return memory.NewStore(), nil
	}
}

func (a *app) catalog() domproduct.Catalog {
	switch a.cfg.Catalog.Source {
	case "mysql":
		return mysql.NewProductRepository(a.db)
	case "remote":
		return a.api.Catalog()
	default:
		return memory.NewCatalog(memory.SampleProducts()...)
	}
}

func (a *app) authenticator(ctx context.Context) (sessionuc.Authenticator, error) {
	if a.cfg.Auth.Provider == "remote" {
		return a.api.Authenticator(), nil
	}

	hasher := security.NewBcryptService(a.cfg.Auth.BcryptCost)
	tokens := security.NewJWTService(a.cfg.Auth.JWTSecret, a.cfg.Auth.JWTExpiration)

	var users domuser.Repository
	if a.db != nil {
		users = mysql.NewUserRepository(a.db)
	} else {
		mem := memory.NewUserRepository()
		hash, err := hasher.Hash("password")
		if err != nil {
			return nil, fmt.Errorf("seed demo user: %w", err)
		}
		if _, err := mem.Create(ctx, &domuser.User{Name: "Test User", Email: "test@example.com", PasswordHash: hash}); err != nil {
			return nil, fmt.Errorf("seed demo user: %w", err)
		}
		users = mem
	}
	return authuc.NewService(users, hasher, tokens), nil
}

func (a *app) notifier() (orderuc.Notifier, error) {
	cfg := a.cfg.Notify
	switch cfg.Driver {
	case "smtp":
		n := notify.NewSMTPNotifier(cfg.SMTPAddr, cfg.SMTPFrom, nil)
		return notify.NewGuarded(n, a.breaker("smtp"), a.log), nil
	case "nats":
		nc, js, err := notify.ConnectJetStream(cfg.NATSURL, 5*time.Second)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, nc.Close)
		a.checks["nats"] = func(context.Context) error {
			if !nc.IsConnected() {
				return errors.New("nats disconnected")
			}
			return nil
		}
		return notify.NewGuarded(notify.NewNATSNotifier(js, cfg.NATSSubject), a.breaker("nats"), a.log), nil
	default:
		return nil, nil
	}
}
