package payment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidAmount        = errors.New("amount must not be negative")
	ErrMissingPaymentMethod = errors.New("payment method is required")
	ErrInvalidClientSecret  = errors.New("client secret is malformed")
)

// Intent is a provider-side authorization to charge a fixed amount.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// IntentRequest asks for an intent of Amount minor units.
type IntentRequest struct {
	Amount         int64
	Currency       string
	IdempotencyKey string
}

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Result is the outcome of confirming an intent. A declined card is a
// Failed result, not an error.
type Result struct {
	Status    Status
	PaymentID string
	Code      string
	Reason    string
}

func Succeeded(paymentID string) Result {
	return Result{Status: StatusSucceeded, PaymentID: paymentID}
}

func Failed(code, reason string) Result {
	return Result{Status: StatusFailed, Code: code, Reason: reason}
}

func (r Result) IsSucceeded() bool {
	return r.Status == StatusSucceeded && r.PaymentID != ""
}

// IntentCreationError carries the provider's message for a failed intent.
type IntentCreationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *IntentCreationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("create payment intent: status %d: %s", e.StatusCode, e.Message)
	}
	return "create payment intent: " + e.Message
}

func (e *IntentCreationError) Unwrap() error { return e.Err }

// IntentIDFromSecret extracts "pi_123" from "pi_123_secret_abc".
func IntentIDFromSecret(secret string) (string, error) {
	id, _, ok := strings.Cut(secret, "_secret_")
	if !ok || id == "" {
		return "", ErrInvalidClientSecret
	}
	return id, nil
}
