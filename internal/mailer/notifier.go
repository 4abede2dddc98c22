package mailer

import (
	"context"
	"fmt"

	"github.com/wichananm65/storefront/internal/events"
	"go.uber.org/zap"
)

// Notifier sends an order confirmation for every order.created event.
type Notifier struct {
	sender Sender
	from   string
	log    *zap.Logger
}

func NewNotifier(sender Sender, from string, log *zap.Logger) *Notifier {
	return &Notifier{sender: sender, from: from, log: log}
}

// HandleOrderCreated matches events.OrderCreatedHandler. Orders without an
// email address are acknowledged without sending anything.
func (n *Notifier) HandleOrderCreated(ctx context.Context, p events.OrderCreatedPayload) error {
	if p.UserEmail == "" {
		n.log.Warn("order has no email address, skipping confirmation",
			zap.String("order_id", p.OrderID),
			zap.String("user_id", p.UserID))
		return nil
	}

	body, err := RenderConfirmation(p)
	if err != nil {
		return fmt.Errorf("render confirmation: %w", err)
	}
	if err := n.sender.Send(ctx, Message{
		From:    n.from,
		To:      p.UserEmail,
		Subject: confirmationSubject,
		HTML:    body,
	}); err != nil {
		return err
	}

	n.log.Info("confirmation email sent",
		zap.String("order_id", p.OrderID),
		zap.String("to", p.UserEmail))
	return nil
}
