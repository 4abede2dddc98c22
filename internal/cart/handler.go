package cart

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront/internal/catalog"
	"github.com/wichananm65/storefront/internal/identity"
)

// Handler exposes the session cart. The session is the authenticated user.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/cart", h.getCart)
	app.Delete("/api/v1/cart", h.clearCart)
	app.Post("/api/v1/cart/items", h.addItem)
	app.Patch("/api/v1/cart/items/:id", h.setQuantity)
	app.Delete("/api/v1/cart/items/:id", h.removeItem)
}

type cartResponse struct {
	Items Snapshot        `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func respond(c *fiber.Ctx, snap Snapshot) error {
	if snap == nil {
		snap = Snapshot{}
	}
	return c.JSON(cartResponse{Items: snap, Total: snap.Total()})
}

type addItemRequest struct {
	ProductID string `json:"productId"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) getCart(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	snap, err := h.service.Snapshot(c.UserContext(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return respond(c, snap)
}

func (h *Handler) addItem(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(addItemRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "productId is required"})
	}

	snap, err := h.service.AddProduct(c.UserContext(), userID, payload.ProductID)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, snap)
}

func (h *Handler) setQuantity(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	payload := new(quantityRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	// quantities below 1 are ignored by the cart and return the current state
	snap, err := h.service.SetQuantity(c.UserContext(), userID, c.Params("id"), payload.Quantity)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, snap)
}

func (h *Handler) removeItem(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	snap, err := h.service.Remove(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, snap)
}

func (h *Handler) clearCart(c *fiber.Ctx) error {
	userID, err := identity.UserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	if err := h.service.Clear(c.UserContext(), userID); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	case errors.Is(err, ErrInvalidItem):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"message": err.Error()})
	default:
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": err.Error()})
	}
}
