package payment

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IntentCreator is the server side of intent creation.
type IntentCreator interface {
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
}

// IntentHandler serves the intent endpoint the checkout session calls.
type IntentHandler struct {
	creator  IntentCreator
	currency string
	log      *zap.Logger
}

func NewIntentHandler(creator IntentCreator, defaultCurrency string, log *zap.Logger) *IntentHandler {
	return &IntentHandler{creator: creator, currency: defaultCurrency, log: log}
}

func (h *IntentHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/create-payment-intent", h.createIntent)
}

type createIntentRequest struct {
	Amount   *int64 `json:"amount"`
	Currency string `json:"currency"`
}

func (h *IntentHandler) createIntent(c *fiber.Ctx) error {
	payload := new(createIntentRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body", "details": err.Error()})
	}
	if payload.Amount == nil || *payload.Amount < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be a non-negative integer"})
	}
	currency := payload.Currency
	if currency == "" {
		currency = h.currency
	}

	intent, err := h.creator.CreateIntent(c.UserContext(), IntentRequest{
		Amount:         *payload.Amount,
		Currency:       currency,
		IdempotencyKey: c.Get("Idempotency-Key"),
	})
	if err != nil {
		details := err.Error()
		var ice *IntentCreationError
		if errors.As(err, &ice) {
			details = ice.Message
		}
		h.log.Error("create payment intent failed", zap.Int64("amount", *payload.Amount), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to create payment intent",
			"details": details,
		})
	}

	return c.JSON(fiber.Map{"clientSecret": intent.ClientSecret, "id": intent.ID})
}
