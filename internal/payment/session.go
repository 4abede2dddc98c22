package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Confirmer confirms an intent with a payment method through the provider.
type Confirmer interface {
	Confirm(ctx context.Context, intentID, paymentMethod string) (Result, error)
}

type SessionConfig struct {
	IntentURL        string
	Timeout          time.Duration
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
}

// Session talks to the intent endpoint and the provider confirm API.
type Session struct {
	intentURL string
	timeout   time.Duration
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker[Intent]
	confirmer Confirmer
	log       *zap.Logger
}

func NewSession(cfg SessionConfig, httpClient *http.Client, confirmer Confirmer, log *zap.Logger) *Session {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	breaker := gobreaker.NewCircuitBreaker[Intent](gobreaker.Settings{
		Name:    "payment-intent",
		Timeout: cfg.BreakerOpenDelay,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// a rejected request is the caller's problem, not the endpoint's
		IsSuccessful: func(err error) bool {
			var ice *IntentCreationError
			if errors.As(err, &ice) && ice.StatusCode >= 400 && ice.StatusCode < 500 {
				return true
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Session{
		intentURL: cfg.IntentURL,
		timeout:   cfg.Timeout,
		http:      httpClient,
		breaker:   breaker,
		confirmer: confirmer,
		log:       log,
	}
}

type intentPayload struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency,omitempty"`
}

type intentReply struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Error        string `json:"error"`
	Details      string `json:"details"`
}

// CreateIntent asks the intent endpoint for a new intent. Every failure is
// an *IntentCreationError.
func (s *Session) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	if req.Amount < 0 {
		return Intent{}, &IntentCreationError{Message: ErrInvalidAmount.Error(), Err: ErrInvalidAmount}
	}

	intent, err := s.breaker.Execute(func() (Intent, error) {
		return s.postIntent(ctx, req)
	})
	if err != nil {
		var ice *IntentCreationError
		if errors.As(err, &ice) {
			return Intent{}, ice
		}
		// open breaker or too many half-open probes
		return Intent{}, &IntentCreationError{Message: "payment service unavailable", Err: err}
	}
	return intent, nil
}

func (s *Session) postIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	body, err := json.Marshal(intentPayload{Amount: req.Amount, Currency: req.Currency})
	if err != nil {
		return Intent{}, &IntentCreationError{Message: err.Error(), Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.intentURL, bytes.NewReader(body))
	if err != nil {
		return Intent{}, &IntentCreationError{Message: err.Error(), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}

	res, err := s.http.Do(httpReq)
	if err != nil {
		return Intent{}, &IntentCreationError{Message: err.Error(), Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Intent{}, &IntentCreationError{StatusCode: res.StatusCode, Message: err.Error(), Err: err}
	}

	var reply intentReply
	decodeErr := json.Unmarshal(raw, &reply)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Intent{}, &IntentCreationError{StatusCode: res.StatusCode, Message: providerMessage(reply, raw)}
	}
	if decodeErr != nil {
		return Intent{}, &IntentCreationError{StatusCode: res.StatusCode, Message: "malformed intent response", Err: decodeErr}
	}
	if reply.ClientSecret == "" {
		return Intent{}, &IntentCreationError{StatusCode: res.StatusCode, Message: "intent response has no client secret"}
	}

	id := reply.ID
	if id == "" {
		if id, err = IntentIDFromSecret(reply.ClientSecret); err != nil {
			return Intent{}, &IntentCreationError{StatusCode: res.StatusCode, Message: err.Error(), Err: err}
		}
	}
	return Intent{ID: id, ClientSecret: reply.ClientSecret, Amount: req.Amount, Currency: req.Currency}, nil
}

func providerMessage(reply intentReply, raw []byte) string {
	switch {
	case reply.Details != "":
		return reply.Details
	case reply.Error != "":
		return reply.Error
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" {
		return msg
	}
	return "empty response from payment service"
}

// Confirm charges the intent behind clientSecret with paymentMethod.
// Missing input is an error and nothing is sent to the provider.
func (s *Session) Confirm(ctx context.Context, clientSecret, paymentMethod string) (Result, error) {
	if strings.TrimSpace(paymentMethod) == "" {
		return Result{}, ErrMissingPaymentMethod
	}
	intentID, err := IntentIDFromSecret(clientSecret)
	if err != nil {
		return Result{}, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	res, err := s.confirmer.Confirm(ctx, intentID, paymentMethod)
	if err != nil {
		return Result{}, fmt.Errorf("confirm %s: %w", intentID, err)
	}
	if res.Status == StatusSucceeded && res.PaymentID == "" {
		res.PaymentID = intentID
	}
	return res, nil
}
