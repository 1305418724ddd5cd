package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/prudhivi99/Distributed-Systems/storefront/internal/config"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/consumer"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/db"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/discovery"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/handlers"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/logger"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/messaging"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/models"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/publisher"
	"github.com/prudhivi99/Distributed-Systems/storefront/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "optional config file (.env, yaml or json)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{
		Service: "orders-api",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("orders-api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var (
		orders   db.OrderRepository
		products db.ProductRepository
	)

	// PostgreSQL when configured, otherwise an in-memory store with demo data
	if cfg.PostgresEnabled() {
		database, err := db.NewPostgresDB(ctx, log, cfg.DbHost, cfg.DbPort, cfg.DbUser, cfg.DbPas, cfg.DbName)
		if err != nil {
			return err
		}
		defer database.Close()
		orders = db.NewOrderRepository(database)
		products = db.NewProductRepository(database)
	} else {
		log.Warn().Msg("POSTGRES_HOST not set, using in-memory repositories")
		orders = db.NewMemoryOrderRepository()
		memProducts := db.NewMemoryProductRepository()
		if err := seedProducts(ctx, memProducts); err != nil {
			return err
		}
		products = memProducts
	}

	// Redis read-through cache for products
	if cfg.RedisAddr != "" {
		cache, err := storage.NewRedisStore(ctx, storage.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix + "-api",
			TTL:      cfg.ProductCacheTTL,
		})
		if err != nil {
			return err
		}
		defer cache.Close()
		products = db.NewCachedProductRepository(products, cache, log)
		log.Info().Dur("ttl", cfg.ProductCacheTTL).Msg("product cache enabled")
	}

	g, gctx := errgroup.WithContext(ctx)

	// RabbitMQ order events and the inventory consumer
	var pub handlers.EventPublisher
	if cfg.RabbitEnabled() {
		mq, err := messaging.NewRabbitMQ(log, cfg.RabbitHost, cfg.RabbitPort, cfg.RabbitUser, cfg.RabbitPas)
		if err != nil {
			return err
		}
		defer mq.Close()

		orderPublisher, err := publisher.NewOrderPublisher(mq)
		if err != nil {
			return err
		}
		pub = orderPublisher

		deliveries, err := mq.Consume(publisher.OrderEventsQueue)
		if err != nil {
			return err
		}
		inventory := consumer.NewInventoryConsumer(products, log)
		g.Go(func() error { return inventory.Run(gctx, deliveries) })
	}

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.RouterDeps{
		Orders:    orders,
		Products:  products,
		Publisher: pub,
		Credentials: handlers.Credentials{
			Username: cfg.AuthUsername,
			Password: cfg.AuthPassword,
			Token:    cfg.AuthToken,
		},
		Log: log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Consul registration
	if cfg.ConsulEnabled() {
		consul, err := discovery.NewConsulClient(log, cfg.ConsulHost, cfg.ConsulPort)
		if err != nil {
			return err
		}
		err = consul.Register(discovery.ServiceConfig{
			Name: cfg.ConsulService,
			ID:   cfg.ServiceID,
			Port: cfg.ServerPort,
			Tags: []string{"api", "orders", "products"},
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := consul.Deregister(cfg.ServiceID); err != nil {
				log.Warn().Err(err).Msg("failed to deregister")
			}
		}()
	}

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("orders-api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func seedProducts(ctx context.Context, repo db.ProductRepository) error {
	seed := []models.CreateProductRequest{
		{Name: "Desk Lamp", Price: decimal.RequireFromString("1000.00"), Quantity: 25,
			Images: []string{"https://shop.example.com/media/lamp.jpg"}, Description: "Warm white LED lamp"},
		{Name: "Office Chair", Price: decimal.RequireFromString("500.00"), Quantity: 10},
		{Name: "Notebook", Price: decimal.RequireFromString("12.50"), Quantity: 200},
	}
	for _, req := range seed {
		if _, err := repo.Create(ctx, req); err != nil {
			return fmt.Errorf("failed to seed products: %w", err)
		}
	}
	return nil
}
