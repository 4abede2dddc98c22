package checkout

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront/internal/identity"
	"github.com/wichananm65/storefront/internal/order"
)

type Handler struct {
	orchestrator *Orchestrator
}

func NewHandler(o *Orchestrator) *Handler {
	return &Handler{orchestrator: o}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout", h.submit)
	app.Get("/api/v1/checkout/status", h.status)
}

type submitRequest struct {
	ShippingInfo  order.ShippingInfo `json:"shippingInfo"`
	PaymentMethod string             `json:"paymentMethod"`
}

func (h *Handler) submit(c *fiber.Ctx) error {
	id, err := identity.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"code":    KindNotAuthenticated,
			"message": "Please sign in to check out.",
		})
	}
	payload := new(submitRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":    KindValidation,
			"message": err.Error(),
		})
	}

	placed, err := h.orchestrator.Submit(c.UserContext(), Request{
		UserID:        id.UserID,
		UserEmail:     id.Email,
		ShippingInfo:  payload.ShippingInfo,
		PaymentMethod: payload.PaymentMethod,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(placed)
}

func (h *Handler) status(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"code": KindNotAuthenticated, "message": "unauthorized"})
	}
	a, ok := h.orchestrator.Status(userID)
	if !ok {
		return c.JSON(fiber.Map{"state": StateIdle})
	}
	return c.JSON(a)
}

func writeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrCheckoutInProgress) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"code":    "checkout_in_progress",
			"message": "Your previous checkout is still being processed.",
		})
	}

	var ce *Error
	if !errors.As(err, &ce) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	body := fiber.Map{"code": ce.Kind, "message": ce.Message}
	if ce.PaymentID != "" {
		body["paymentId"] = ce.PaymentID
	}
	return c.Status(statusFor(ce)).JSON(body)
}

func statusFor(ce *Error) int {
	if ce.Captured() {
		return fiber.StatusInternalServerError
	}
	switch ce.Kind {
	case KindValidation, KindEmptyOrder:
		return fiber.StatusBadRequest
	case KindNotAuthenticated:
		return fiber.StatusUnauthorized
	case KindPaymentDeclined:
		return fiber.StatusPaymentRequired
	case KindIntentCreation:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
