package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fjod/storefront/internal/cart"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/checkout"
	"github.com/fjod/storefront/internal/config"
	"github.com/fjod/storefront/internal/geo"
	storefrontgrpc "github.com/fjod/storefront/internal/grpc"
	h "github.com/fjod/storefront/internal/http"
	"github.com/fjod/storefront/internal/identity"
	"github.com/fjod/storefront/internal/ledger"
	"github.com/fjod/storefront/internal/order"
	"github.com/fjod/storefront/internal/payment"
	"github.com/fjod/storefront/internal/publisher"
	"github.com/fjod/storefront/internal/session"
	"github.com/fjod/storefront/internal/storage"
	"github.com/fjod/storefront/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := issueToken(cfg, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "failed to issue token: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg, log); err != nil {
		log.Fatal("storefront stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	log.Info("storefront starting", zap.String("environment", cfg.Environment))

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	store, err := openStore(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("open ledger store: %w", err)
	}
	defer store.Close()
	log.Info("ledger store ready", zap.String("backend", cfg.Ledger.Backend))

	orderLedger := ledger.New(store)

	checkoutOpts := []checkout.Option{checkout.WithLogger(log)}
	if cfg.KafkaEnabled() {
		pub := publisher.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		defer pub.Close()
		checkoutOpts = append(checkoutOpts, checkout.WithPublisher(pub))
		log.Info("publishing order events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// One validator, simulator and factory serve every session so order ids
	// stay unique across shoppers.
	validator := payment.NewValidator()
	simulator := payment.NewSimulator(payment.WithLatency(cfg.Payment.Latency))
	factory := order.NewFactory()

	sessions := session.NewManager(func(c *cart.Store) *checkout.Orchestrator {
		return checkout.NewOrchestrator(c, validator, simulator, factory, orderLedger, checkoutOpts...)
	}, cfg.Session.CleanupInterval,
		session.WithIdleTimeout(cfg.Session.IdleTimeout),
		session.WithLogger(log))
	defer sessions.Close()

	routerCfg := h.RouterConfig{
		Catalog:        catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, catalog.WithLogger(log)),
		Sessions:       sessions,
		Orders:         orderLedger,
		Identity:       identity.ContextIdentity{},
		RequestTimeout: cfg.HTTP.RequestTimeout,
		MaxBodyBytes:   cfg.HTTP.MaxBodyBytes,
		Logger:         log,
	}
	if cfg.Geo.Enabled {
		routerCfg.Locator = geo.NewNominatimLocator(cfg.Geo.BaseURL, cfg.Geo.Timeout, log)
	}
	var tokens storefrontgrpc.TokenParser
	if cfg.Auth.JWTSecret != "" {
		auth, err := identity.NewJWTAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		if err != nil {
			return err
		}
		routerCfg.Auth = auth.Middleware
		tokens = auth
	} else {
		log.Warn("AUTH_JWT_SECRET is not set, every shopper is anonymous and checkout is disabled")
	}

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      otelhttp.NewHandler(h.NewRouter(routerCfg), "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(storefrontgrpc.AuthInterceptor(tokens)),
	)
	storefrontgrpc.RegisterOrdersServiceServer(grpcServer, storefrontgrpc.NewOrdersHandler(orderLedger, sessions))

	errCh := make(chan error, 2)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Info("grpc server listening", zap.String("port", cfg.GRPC.Port))
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var serveErr error
	select {
	case <-quit:
	case serveErr = <-errCh:
	}

	log.Info("shutting down storefront")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http server forced to shutdown", zap.Error(err))
	}
	grpcServer.GracefulStop()

	log.Info("storefront stopped")
	return serveErr
}

// issueToken prints a bearer token for args[0] (user id) and the optional
// args[1] (email), signed with the configured secret.
func issueToken(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: storefront token <user-id> [email]")
	}
	auth, err := identity.NewJWTAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	if err != nil {
		return err
	}
	email := ""
	if len(args) > 1 {
		email = args[1]
	}
	token, err := auth.Issue(args[0], email, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	lc := cfg.Ledger
	switch lc.Backend {
	case config.BackendMemory:
		return storage.NewMemoryStore(), nil

	case config.BackendSQLite:
		s, err := storage.NewSQLiteStore(lc.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(filepath.Join(lc.MigrationsPath, "sqlite")); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil

	case config.BackendPostgres:
		s, err := storage.NewPostgresStore(&storage.Credentials{
			Host:     lc.Postgres.Host,
			Port:     lc.Postgres.Port,
			User:     lc.Postgres.User,
			Password: lc.Postgres.Password,
			DBName:   lc.Postgres.DBName,
		})
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(filepath.Join(lc.MigrationsPath, "postgres")); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     lc.Redis.Addr,
			Password: lc.Redis.Password,
			DB:       lc.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		return storage.NewRedisStore(client, lc.Redis.Prefix), nil

	case config.BackendMongo:
		db, err := storage.ConnectMongoDB(ctx, lc.Mongo.URI, lc.Mongo.Database)
		if err != nil {
			return nil, err
		}
		s := storage.NewMongoStore(db)
		if err := s.CreateIndexes(ctx); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown ledger backend %q", lc.Backend)
}
