package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeProvider creates and confirms PaymentIntents with the secret key.
// The intent endpoint uses CreateIntent; the checkout confirms through it.
type StripeProvider struct {
	api *client.API
}

// NewStripeProvider uses the default Stripe backends when backends is nil.
func NewStripeProvider(secretKey string, backends *stripe.Backends) *StripeProvider {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeProvider{api: api}
}

func (p *StripeProvider) CreateIntent(ctx context.Context, req IntentRequest) (Intent, error) {
	if req.Amount < 0 {
		return Intent{}, &IntentCreationError{StatusCode: 400, Message: ErrInvalidAmount.Error(), Err: ErrInvalidAmount}
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) {
			return Intent{}, &IntentCreationError{StatusCode: se.HTTPStatusCode, Message: se.Msg, Err: err}
		}
		return Intent{}, &IntentCreationError{Message: err.Error(), Err: err}
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Amount: pi.Amount, Currency: string(pi.Currency)}, nil
}

// Confirm maps card errors and non-terminal statuses to a Failed result.
// Only transport and API errors are returned as errors.
func (p *StripeProvider) Confirm(ctx context.Context, intentID, paymentMethod string) (Result, error) {
	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethod),
	}
	params.Context = ctx

	pi, err := p.api.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.Type == stripe.ErrorTypeCard {
			code := string(se.Code)
			if se.DeclineCode != "" {
				code = string(se.DeclineCode)
			}
			return Failed(code, se.Msg), nil
		}
		return Result{}, fmt.Errorf("stripe confirm: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return Succeeded(pi.ID), nil
	case stripe.PaymentIntentStatusRequiresAction:
		return Failed(string(pi.Status), "additional authentication is required"), nil
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		reason := "the payment method was not accepted"
		if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
			reason = pi.LastPaymentError.Msg
		}
		return Failed(string(pi.Status), reason), nil
	default:
		return Failed(string(pi.Status), "payment did not complete"), nil
	}
}
