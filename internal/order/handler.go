package order

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront/internal/identity"
)

// Handler serves the signed-in user's order history.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/orders", h.getOrders)
	app.Get("/api/v1/orders/payment/:paymentId", h.getOrderByPayment)
	app.Get("/api/v1/orders/:id", h.getOrder)
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	orders, err := h.service.ListByUser(c.UserContext(), userID, c.QueryInt("limit", defaultHistoryLimit))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(orders)
}

func (h *Handler) getOrder(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	o, err := h.service.Get(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return notFoundOr500(c, err)
	}
	return c.JSON(o)
}

func (h *Handler) getOrderByPayment(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	o, err := h.service.GetByPaymentID(c.UserContext(), userID, c.Params("paymentId"))
	if err != nil {
		return notFoundOr500(c, err)
	}
	return c.JSON(o)
}

func notFoundOr500(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
}
