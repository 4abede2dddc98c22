package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wichananm65/storefront/internal/cart"
	"github.com/wichananm65/storefront/internal/order"
	"github.com/wichananm65/storefront/internal/payment"
	"github.com/wichananm65/storefront/internal/pricing"
	"go.uber.org/zap"
)

type CartSource interface {
	Snapshot(ctx context.Context, session string) (cart.Snapshot, error)
	Clear(ctx context.Context, session string) error
}

type PaymentSession interface {
	CreateIntent(ctx context.Context, req payment.IntentRequest) (payment.Intent, error)
	Confirm(ctx context.Context, clientSecret, paymentMethod string) (payment.Result, error)
}

type OrderWriter interface {
	Save(ctx context.Context, req order.SaveRequest) (order.Order, error)
}

// Config for New. AttemptTTL is how long a finished attempt stays visible
// to Status.
type Config struct {
	Currency       string
	PersistTimeout time.Duration
	AttemptTTL     time.Duration
}

// Request is one submit. The user id doubles as the cart session.
type Request struct {
	UserID        string
	UserEmail     string
	ShippingInfo  order.ShippingInfo
	PaymentMethod string
}

// Attempt is what Status reports about the latest checkout of a session.
type Attempt struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	Kind      Kind      `json:"code,omitempty"`
	PaymentID string    `json:"paymentId,omitempty"`
	OrderID   string    `json:"orderId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Orchestrator drives cart snapshot, intent, confirmation, order write and
// cart clearing for one attempt at a time per session.
type Orchestrator struct {
	mu       sync.Mutex
	attempts map[string]*Attempt

	cart     CartSource
	payments PaymentSession
	orders   OrderWriter

	currency       string
	persistTimeout time.Duration
	attemptTTL     time.Duration
	lastSweep      time.Time
	now            func() time.Time
	log            *zap.Logger
}

func New(cfg Config, carts CartSource, payments PaymentSession, orders OrderWriter, log *zap.Logger) *Orchestrator {
	currency := cfg.Currency
	if currency == "" {
		currency = "usd"
	}
	timeout := cfg.PersistTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ttl := cfg.AttemptTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Orchestrator{
		attempts:       make(map[string]*Attempt),
		cart:           carts,
		payments:       payments,
		orders:         orders,
		currency:       currency,
		persistTimeout: timeout,
		attemptTTL:     ttl,
		now:            time.Now,
		log:            log,
	}
}

// Status returns the latest attempt of session, if any.
func (o *Orchestrator) Status(session string) (Attempt, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	a, ok := o.attempts[session]
	if !ok {
		return Attempt{}, false
	}
	return *a, true
}

// Submit runs one checkout attempt to a terminal state. Failures are returned
// as *Error; ErrCheckoutInProgress means another attempt of the same session
// has not finished.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (order.Order, error) {
	session := strings.TrimSpace(req.UserID)
	if session == "" {
		return order.Order{}, &Error{Kind: KindNotAuthenticated, Message: "Please sign in to check out."}
	}

	a, err := o.begin(session)
	if err != nil {
		return order.Order{}, err
	}
	log := o.log.With(zap.String("attempt_id", a.ID), zap.String("user_id", session))

	placed, err := o.run(ctx, a, session, req, log)
	if err != nil {
		var ce *Error
		if !errors.As(err, &ce) {
			ce = &Error{Kind: KindValidation, Message: "Checkout could not be completed.", Err: err}
		}
		o.fail(a, ce)
		if !ce.Captured() {
			log.Info("checkout failed", zap.String("kind", string(ce.Kind)), zap.Error(ce.Err))
		}
		return order.Order{}, ce
	}
	return placed, nil
}

func (o *Orchestrator) begin(session string) (*Attempt, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now().UTC()
	o.sweepLocked(now)
	if prev, ok := o.attempts[session]; ok && !prev.State.IsTerminal() {
		return nil, ErrCheckoutInProgress
	}
	// the attempt enters validating while the lock is held so a second
	// submit can never see it idle
	a := &Attempt{ID: uuid.NewString(), State: StateValidating, UpdatedAt: now}
	o.attempts[session] = a
	return a, nil
}

// sweepLocked drops finished attempts older than attemptTTL, at most once a
// minute. Attempts that have not finished are never dropped.
func (o *Orchestrator) sweepLocked(now time.Time) {
	if now.Sub(o.lastSweep) < time.Minute {
		return
	}
	o.lastSweep = now
	for session, a := range o.attempts {
		if a.State.IsTerminal() && now.Sub(a.UpdatedAt) > o.attemptTTL {
			delete(o.attempts, session)
		}
	}
}

func (o *Orchestrator) advance(a *Attempt, next State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !a.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, a.State, next)
	}
	a.State = next
	a.UpdatedAt = o.now().UTC()
	return nil
}

func (o *Orchestrator) fail(a *Attempt, ce *Error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if a.State.IsTerminal() {
		return
	}
	a.State = StateFailed
	a.Kind = ce.Kind
	a.PaymentID = ce.PaymentID
	a.UpdatedAt = o.now().UTC()
}

func (o *Orchestrator) run(ctx context.Context, a *Attempt, session string, req Request, log *zap.Logger) (order.Order, error) {
	if missing := req.ShippingInfo.Missing(); len(missing) > 0 {
		return order.Order{}, &Error{
			Kind:    KindValidation,
			Message: "Please fill in all shipping fields: " + strings.Join(missing, ", ") + ".",
		}
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return order.Order{}, &Error{Kind: KindValidation, Message: "Please enter your payment details.", Err: payment.ErrMissingPaymentMethod}
	}
	snapshot, err := o.cart.Snapshot(ctx, session)
	if err != nil {
		return order.Order{}, &Error{Kind: KindValidation, Message: "Your cart could not be read.", Err: err}
	}
	if snapshot.IsEmpty() {
		return order.Order{}, &Error{Kind: KindValidation, Message: "Your cart is empty."}
	}

	if err := o.advance(a, StateCreatingIntent); err != nil {
		return order.Order{}, err
	}
	minor := pricing.ToMinorUnits(snapshot.Total())
	intent, err := o.payments.CreateIntent(ctx, payment.IntentRequest{
		Amount:         minor,
		Currency:       o.currency,
		IdempotencyKey: a.ID,
	})
	if err != nil {
		return order.Order{}, &Error{Kind: KindIntentCreation, Message: intentMessage(err), Err: err}
	}

	if err := o.advance(a, StateConfirming); err != nil {
		return order.Order{}, err
	}
	// capture runs to completion even if the caller goes away
	detached := context.WithoutCancel(ctx)
	result, err := o.payments.Confirm(detached, intent.ClientSecret, req.PaymentMethod)
	if err != nil {
		return order.Order{}, &Error{Kind: KindPaymentDeclined, Message: "Payment could not be confirmed. Please try again.", Err: err}
	}
	if !result.IsSucceeded() {
		msg := "Your payment was declined."
		if result.Reason != "" {
			msg = "Your payment was declined: " + result.Reason
		}
		return order.Order{}, &Error{Kind: KindPaymentDeclined, Message: msg, Err: fmt.Errorf("declined: %s", result.Code)}
	}
	log.Info("payment captured", zap.String("payment_id", result.PaymentID), zap.Int64("amount", minor))

	if err := o.advance(a, StatePersisting); err != nil {
		return order.Order{}, &Error{Kind: KindOrderPersistence, Message: persistenceMessage(result.PaymentID), PaymentID: result.PaymentID, Err: err}
	}
	saveCtx, cancel := context.WithTimeout(detached, o.persistTimeout)
	defer cancel()
	placed, err := o.orders.Save(saveCtx, order.SaveRequest{
		UserID:        session,
		UserEmail:     req.UserEmail,
		Items:         orderItems(snapshot),
		TotalAmount:   pricing.FromMinorUnits(minor),
		ShippingInfo:  req.ShippingInfo,
		PaymentID:     result.PaymentID,
		PaymentStatus: order.StatusSucceeded,
	})
	if err != nil {
		log.Error("payment captured but order not recorded",
			zap.String("payment_id", result.PaymentID),
			zap.String("total", snapshot.Total().StringFixed(2)),
			zap.Int("lines", len(snapshot)),
			zap.Error(err))
		return order.Order{}, &Error{Kind: persistKind(err), Message: persistenceMessage(result.PaymentID), PaymentID: result.PaymentID, Err: err}
	}

	if err := o.cart.Clear(detached, session); err != nil {
		log.Warn("cart not cleared after order", zap.String("order_id", placed.ID), zap.Error(err))
	}

	o.mu.Lock()
	a.State = StateCompleted
	a.PaymentID = placed.PaymentID
	a.OrderID = placed.ID
	a.UpdatedAt = o.now().UTC()
	o.mu.Unlock()

	log.Info("order placed", zap.String("order_id", placed.ID), zap.String("payment_id", placed.PaymentID))
	return placed, nil
}

func persistKind(err error) Kind {
	switch {
	case errors.Is(err, order.ErrNotAuthenticated):
		return KindNotAuthenticated
	case errors.Is(err, order.ErrEmptyOrder):
		return KindEmptyOrder
	default:
		return KindOrderPersistence
	}
}

func intentMessage(err error) string {
	var ice *payment.IntentCreationError
	if errors.As(err, &ice) && ice.Message != "" {
		return "Payment could not be started: " + ice.Message
	}
	return "Payment could not be started. Please try again."
}

func orderItems(snapshot cart.Snapshot) []order.Item {
	items := make([]order.Item, 0, len(snapshot))
	for _, it := range snapshot {
		items = append(items, order.Item{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			ImageURL: it.ImageURL,
		})
	}
	return items
}
