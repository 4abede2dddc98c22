package cart

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront/internal/catalog"
	"github.com/wichananm65/storefront/internal/identity"
	"go.uber.org/zap"
)

func makeAppWithCartHandler(cHandler *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			c.Locals(identity.ContextKey, &jwt.Token{Claims: jwt.MapClaims{"user_id": v}})
		}
		return c.Next()
	})
	cHandler.RegisterProtectedRoutes(app)
	return app
}

type cartBody struct {
	Items []Item          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func do(t *testing.T, app *fiber.App, method, path, body, user string) (int, cartBody) {
	t.Helper()
	var req = httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	res, err := app.Test(req)
	require.NoError(t, err)

	var out cartBody
	if res.StatusCode == fiber.StatusOK {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	}
	return res.StatusCode, out
}

func TestCartRoutes_Flow(t *testing.T) {
	products := catalog.NewInMemoryRepository([]catalog.Product{
		{ID: "bed", Name: "Cat Scratcher Bed", Price: decimal.RequireFromString("8.40")},
		{ID: "bowl", Name: "Double Food Bowl", Price: decimal.RequireFromString("4.20")},
	})
	app := makeAppWithCartHandler(NewHandler(NewService(NewMemoryStorage(), products, zap.NewNop())))

	routes := map[string]bool{}
	for _, grp := range app.Stack() {
		for _, r := range grp {
			routes[r.Method+" "+r.Path] = true
		}
	}
	assert.True(t, routes["GET /api/v1/cart"])
	assert.True(t, routes["POST /api/v1/cart/items"])
	assert.True(t, routes["PATCH /api/v1/cart/items/:id"])
	assert.True(t, routes["DELETE /api/v1/cart/items/:id"])
	assert.True(t, routes["DELETE /api/v1/cart"])

	code, _ := do(t, app, "GET", "/api/v1/cart", "", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, body := do(t, app, "GET", "/api/v1/cart", "", "42")
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, body.Items)
	assert.True(t, body.Total.IsZero())

	code, _ = do(t, app, "POST", "/api/v1/cart/items", `{"productId":"bed"}`, "42")
	require.Equal(t, fiber.StatusOK, code)
	code, body = do(t, app, "POST", "/api/v1/cart/items", `{"productId":"bed"}`, "42")
	require.Equal(t, fiber.StatusOK, code)
	require.Len(t, body.Items, 1)
	assert.Equal(t, 2, body.Items[0].Quantity)

	code, body = do(t, app, "POST", "/api/v1/cart/items", `{"productId":"bowl"}`, "42")
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, body.Total.Equal(decimal.RequireFromString("21.00")))

	code, body = do(t, app, "PATCH", "/api/v1/cart/items/bowl", `{"quantity":0}`, "42")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, 1, body.Items[1].Quantity)

	code, body = do(t, app, "PATCH", "/api/v1/cart/items/bowl", `{"quantity":3}`, "42")
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, 3, body.Items[1].Quantity)

	code, body = do(t, app, "DELETE", "/api/v1/cart/items/bed", "", "42")
	require.Equal(t, fiber.StatusOK, code)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "bowl", body.Items[0].ID)

	code, _ = do(t, app, "POST", "/api/v1/cart/items", `{"productId":"ghost"}`, "42")
	assert.Equal(t, fiber.StatusNotFound, code)

	code, _ = do(t, app, "DELETE", "/api/v1/cart", "", "42")
	assert.Equal(t, fiber.StatusNoContent, code)

	code, body = do(t, app, "GET", "/api/v1/cart", "", "42")
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, body.Items)

	// carts are per session
	code, body = do(t, app, "GET", "/api/v1/cart", "", "7")
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, body.Items)
}

func TestAddItem_RequiresProductID(t *testing.T) {
	app := makeAppWithCartHandler(NewHandler(NewService(NewMemoryStorage(), catalog.NewInMemoryRepository(nil), zap.NewNop())))

	code, _ := do(t, app, "POST", "/api/v1/cart/items", `{}`, "42")
	assert.Equal(t, fiber.StatusBadRequest, code)
}
