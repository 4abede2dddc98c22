package payment

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type creatorFunc func(ctx context.Context, req IntentRequest) (Intent, error)

func (f creatorFunc) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	return f(ctx, req)
}

func intentApp(creator IntentCreator) *fiber.App {
	app := fiber.New()
	NewIntentHandler(creator, "usd", zap.NewNop()).RegisterRoutes(app)
	return app
}

func post(t *testing.T, app *fiber.App, body string) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest("POST", "/create-payment-intent", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "k-1")
	res, err := app.Test(req)
	require.NoError(t, err)
	out := map[string]string{}
	_ = json.NewDecoder(res.Body).Decode(&out)
	return res.StatusCode, out
}

func TestIntentEndpoint_Success(t *testing.T) {
	var got IntentRequest
	app := intentApp(creatorFunc(func(_ context.Context, req IntentRequest) (Intent, error) {
		got = req
		return Intent{ID: "pi_9", ClientSecret: "pi_9_secret_s", Amount: req.Amount, Currency: req.Currency}, nil
	}))

	code, body := post(t, app, `{"amount":2650}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "pi_9_secret_s", body["clientSecret"])
	assert.Equal(t, "pi_9", body["id"])
	assert.Equal(t, IntentRequest{Amount: 2650, Currency: "usd", IdempotencyKey: "k-1"}, got)
}

func TestIntentEndpoint_BadRequest(t *testing.T) {
	called := false
	app := intentApp(creatorFunc(func(context.Context, IntentRequest) (Intent, error) {
		called = true
		return Intent{}, nil
	}))

	for _, body := range []string{`{}`, `{"amount":-5}`, `not json`} {
		code, _ := post(t, app, body)
		assert.Equal(t, fiber.StatusBadRequest, code, body)
	}
	assert.False(t, called)
}

func TestIntentEndpoint_ProviderFailure(t *testing.T) {
	app := intentApp(creatorFunc(func(context.Context, IntentRequest) (Intent, error) {
		return Intent{}, &IntentCreationError{StatusCode: 401, Message: "Invalid API Key provided"}
	}))

	code, body := post(t, app, `{"amount":100}`)
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Failed to create payment intent", body["error"])
	assert.Equal(t, "Invalid API Key provided", body["details"])
}

func TestIntentEndpoint_RequiresJSONBody(t *testing.T) {
	app := intentApp(creatorFunc(func(_ context.Context, req IntentRequest) (Intent, error) {
		return Intent{ID: "pi_7", ClientSecret: "pi_7_secret_t"}, nil
	}))

	res, err := app.Test(httptest.NewRequest("POST", "/create-payment-intent", strings.NewReader(`{"amount":1}`)))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, res.StatusCode)
}
