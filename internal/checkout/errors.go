package checkout

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation       Kind = "validation_error"
	KindIntentCreation   Kind = "intent_creation_error"
	KindPaymentDeclined  Kind = "payment_declined"
	KindOrderPersistence Kind = "order_persistence_error"
	KindNotAuthenticated Kind = "not_authenticated"
	KindEmptyOrder       Kind = "empty_order"
)

var (
	ErrCheckoutInProgress = errors.New("a checkout is already in progress")
	ErrInvalidTransition  = errors.New("invalid checkout state transition")
)

// Error is the failure of one attempt. Message is safe to show to the user.
// PaymentID is set once a payment has been captured.
type Error struct {
	Kind      Kind
	Message   string
	PaymentID string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Captured reports whether money was taken even though the attempt failed.
func (e *Error) Captured() bool { return e.PaymentID != "" }

func persistenceMessage(paymentID string) string {
	return fmt.Sprintf("Payment succeeded, but we could not record your order. Please contact support with payment id %s.", paymentID)
}
