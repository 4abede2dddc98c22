package identity

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoAmI(c *fiber.Ctx) error {
	id, err := FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}
	return c.SendString(id.UserID + "|" + id.Email)
}

func TestFromCtx_ClaimShapes(t *testing.T) {
	cases := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"float", jwt.MapClaims{"user_id": float64(42)}, "42"},
		{"int", jwt.MapClaims{"user_id": 7}, "7"},
		{"string", jwt.MapClaims{"user_id": "uid-abc"}, "uid-abc"},
		{"sub fallback", jwt.MapClaims{"sub": "firebase-uid"}, "firebase-uid"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Use(func(c *fiber.Ctx) error {
				c.Locals(ContextKey, &jwt.Token{Claims: tc.claims})
				return c.Next()
			})
			app.Get("/me", whoAmI)

			res, err := app.Test(httptest.NewRequest("GET", "/me", nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusOK, res.StatusCode)
		})
	}
}

func TestFromCtx_MissingToken(t *testing.T) {
	app := fiber.New()
	app.Get("/me", whoAmI)

	res, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestFromCtx_EmptyUserID(t *testing.T) {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(ContextKey, &jwt.Token{Claims: jwt.MapClaims{"user_id": "  "}})
		return c.Next()
	})
	app.Get("/me", whoAmI)

	res, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestMiddleware_VerifiesSignedToken(t *testing.T) {
	secret := "test-secret"
	app := fiber.New()
	app.Use(Middleware(secret, func(c *fiber.Ctx) bool { return c.Path() == "/public" }))
	app.Get("/public", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/me", whoAmI)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 5,
		"email":   "buyer@example.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	res, err = app.Test(httptest.NewRequest("GET", "/public", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}
