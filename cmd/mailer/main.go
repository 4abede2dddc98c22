package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/wichananm65/storefront/internal/config"
	"github.com/wichananm65/storefront/internal/events"
	"github.com/wichananm65/storefront/internal/logger"
	"github.com/wichananm65/storefront/internal/mailer"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := events.Dial(cfg.Rabbit.URL)
	if err != nil {
		log.Fatal("connect to RabbitMQ", zap.Error(err))
	}
	defer conn.Close()

	sender := mailer.NewSMTPSender(mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	})
	notifier := mailer.NewNotifier(sender, cfg.SMTP.From, log)

	if err := events.StartOrderCreatedConsumer(ctx, conn, "storefront-mailer", notifier.HandleOrderCreated, log); err != nil {
		log.Fatal("start order.created consumer", zap.Error(err))
	}
	log.Info("mailer consuming", zap.String("queue", events.OrderCreatedQueue))

	<-ctx.Done()
	log.Info("mailer stopped")
}
