package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/catalog"
	"github.com/wichananm65/storefront/internal/checkout"
	"github.com/wichananm65/storefront/internal/config"
	"github.com/wichananm65/storefront/internal/events"
	"github.com/wichananm65/storefront/internal/identity"
	"github.com/wichananm65/storefront/internal/logger"
	"github.com/wichananm65/storefront/internal/order"
	"github.com/wichananm65/storefront/internal/payment"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := cfg.RequireJWTSecret(); err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// the checkout confirms card payments with this key
	if err := cfg.RequireStripeKey(); err != nil {
		log.Fatal("payment provider not configured", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := mustOpenDB(cfg.Database)
	defer db.Close()
	if _, err := db.ExecContext(ctx, catalog.Schema); err != nil {
		log.Fatal("ensure products table", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("connect to Redis", zap.Error(err))
	}

	mongoDB, err := order.ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatal("connect to MongoDB", zap.Error(err))
	}
	defer mongoDB.Client().Disconnect(context.Background())
	orderRepo := order.NewMongoRepository(mongoDB)
	if err := orderRepo.CreateIndexes(ctx); err != nil {
		log.Warn("could not create order indexes", zap.Error(err))
	}

	// orders are still written when the broker is down, just without the event
	var publisher order.Publisher
	if conn, err := events.Dial(cfg.Rabbit.URL); err != nil {
		log.Warn("order events disabled", zap.Error(err))
	} else {
		defer conn.Close()
		p, err := events.NewPublisher(conn)
		if err != nil {
			log.Warn("order events disabled", zap.Error(err))
		} else {
			defer p.Close()
			publisher = p
		}
	}

	catalogService := catalog.NewService(catalog.NewPostgresRepository(db))
	cartService := cart.NewService(cart.NewRedisStorage(rdb), catalogService, log)
	orderWriter := order.NewWriter(orderRepo, publisher, log)

	session := payment.NewSession(payment.SessionConfig{
		IntentURL:        cfg.Payment.IntentURL,
		Timeout:          cfg.Payment.Timeout,
		BreakerFailures:  uint32(cfg.Payment.BreakerFailures),
		BreakerOpenDelay: cfg.Payment.BreakerOpenDelay,
	}, &http.Client{Timeout: cfg.Payment.Timeout}, payment.NewStripeProvider(cfg.Payment.StripeSecretKey, nil), log)

	orchestrator := checkout.New(checkout.Config{
		Currency:       cfg.Payment.Currency,
		PersistTimeout: cfg.Mongo.WriteTimeout,
	}, cartService, session, orderWriter, log)

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.Middleware(log))
	setupCORS(app)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	catalog.NewHandler(catalogService).RegisterPublicRoutes(app)

	app.Use(identity.Middleware(cfg.JWTSecret, isPublic))

	cart.NewHandler(cartService).RegisterProtectedRoutes(app)
	order.NewHandler(order.NewService(orderRepo)).RegisterProtectedRoutes(app)
	checkout.NewHandler(orchestrator).RegisterProtectedRoutes(app)

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown", zap.Error(err))
		}
	}()

	log.Info("storefront listening", zap.String("addr", cfg.Addr))
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

// isPublic lets catalog reads and the health check through without a token.
func isPublic(c *fiber.Ctx) bool {
	if c.Method() != fiber.MethodGet {
		return false
	}
	p := c.Path()
	return p == "/health" || p == "/api/v1/products" || strings.HasPrefix(p, "/api/v1/products/")
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
}

func mustOpenDB(cfg config.DatabaseConfig) *sql.DB {
	if cfg.URL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		panic(err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		panic(fmt.Errorf("ping database: %w", err))
	}

	return db
}
