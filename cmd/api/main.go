package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/wichananm65/storefront/internal/config"
	"github.com/wichananm65/storefront/internal/logger"
	"github.com/wichananm65/storefront/internal/payment"
)

// The intent endpoint holds the Stripe secret key so the checkout side only
// ever sees client secrets.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.RequireStripeKey(); err != nil {
		log.Fatal("payment provider not configured", zap.Error(err))
	}

	app := fiber.New()
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.Middleware(log))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Idempotency-Key",
	}))

	provider := payment.NewStripeProvider(cfg.Payment.StripeSecretKey, nil)
	payment.NewIntentHandler(provider, cfg.Payment.Currency, log).RegisterRoutes(app)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		_ = app.ShutdownWithTimeout(5 * time.Second)
	}()

	log.Info("payment intent endpoint listening", zap.String("addr", cfg.IntentAddr))
	if err := app.Listen(cfg.IntentAddr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
