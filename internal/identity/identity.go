package identity

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

// ContextKey is where jwtware stores the parsed token.
const ContextKey = "user"

var ErrUnauthenticated = errors.New("not authenticated")

// Identity is the authenticated principal behind a request.
type Identity struct {
	UserID string
	Email  string
}

// Middleware verifies HS256 bearer tokens. Requests matching public skip
// verification entirely.
func Middleware(secret string, public func(c *fiber.Ctx) bool) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ContextKey:    ContextKey,
		Filter:        public,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
	})
}

// FromCtx reads the identity placed on the context by Middleware.
// The user id claim may be a string or a number; "sub" is accepted when
// "user_id" is absent.
func FromCtx(c *fiber.Ctx) (Identity, error) {
	tok, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok || tok == nil {
		return Identity{}, ErrUnauthenticated
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}

	raw, ok := claims["user_id"]
	if !ok {
		raw = claims["sub"]
	}
	id := claimString(raw)
	if id == "" {
		return Identity{}, ErrUnauthenticated
	}

	email, _ := claims["email"].(string)
	return Identity{UserID: id, Email: email}, nil
}

// UserIDFromCtx is FromCtx for callers that only need the id.
func UserIDFromCtx(c *fiber.Ctx) (string, error) {
	id, err := FromCtx(c)
	if err != nil {
		return "", err
	}
	return id.UserID, nil
}

func claimString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}
