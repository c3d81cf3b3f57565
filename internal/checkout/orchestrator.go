package checkout

import (
	"context"
	"errors"
	"sync"
	"time"

	"bakehouse/internal/cart"
	"bakehouse/internal/model"
	"bakehouse/internal/notify"
	"bakehouse/internal/payment"
	"bakehouse/internal/pricing"
	"bakehouse/internal/repository"
	"bakehouse/internal/schedule"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Step identifies the checkout flow position.
type Step string

const (
	StepDetails   Step = "details"
	StepTime      Step = "time"
	StepPayment   Step = "payment"
	StepConfirmed Step = "confirmed"
)

// Orchestrator drives the three-step checkout flow: customer details,
// pickup time, payment. Progression is gated on per-step validation;
// backward transitions never lose entered data. Confirmed is terminal;
// a new orchestrator (and cart) is needed for the next order.
type Orchestrator struct {
	cart      *cart.Store
	issuer    *pricing.Issuer
	scheduler *schedule.Generator
	provider  payment.Provider
	orders    repository.OrderRepository
	notifier  notify.Notifier
	logger    zerolog.Logger
	now       func() time.Time

	mu          sync.Mutex
	step        Step
	slots       []model.TimeSlot
	attemptID   string
	issued      *pricing.Issued
	issuedLines []pricing.Line
	confirming  bool
	order       *model.Order
}

// NewOrchestrator creates a checkout orchestrator over the given cart.
func NewOrchestrator(
	cartStore *cart.Store,
	issuer *pricing.Issuer,
	scheduler *schedule.Generator,
	provider payment.Provider,
	orders repository.OrderRepository,
	notifier notify.Notifier,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		cart:      cartStore,
		issuer:    issuer,
		scheduler: scheduler,
		provider:  provider,
		orders:    orders,
		notifier:  notifier,
		logger:    logger.With().Str("component", "checkout").Logger(),
		now:       time.Now,
		step:      StepDetails,
		attemptID: uuid.NewString(),
	}
}

// SetClock overrides the time source. Used by tests.
func (o *Orchestrator) SetClock(now func() time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.now = now
}

// Step returns the current checkout step.
func (o *Orchestrator) Step() Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

// Order returns the confirmed order, or nil before confirmation.
func (o *Orchestrator) Order() *model.Order {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.order
}

// RefreshSlots regenerates today's pickup slots. Selection validity is
// always judged against the most recent refresh.
func (o *Orchestrator) RefreshSlots() []model.TimeSlot {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.slots = o.scheduler.Slots(o.now())
	out := make([]model.TimeSlot, len(o.slots))
	copy(out, o.slots)
	return out
}

// SubmitDetails validates and records customer details, advancing to the
// time step. Field errors keep the flow on the details step.
func (o *Orchestrator) SubmitDetails(ctx context.Context, details model.CustomerDetails) map[string]string {
	o.mu.Lock()
	if o.step == StepConfirmed {
		o.mu.Unlock()
		return map[string]string{"step": "checkout already completed"}
	}
	o.mu.Unlock()

	if errs := ValidateCustomerDetails(details); len(errs) > 0 {
		return errs
	}

	o.cart.SetCustomerDetails(ctx, details)

	o.mu.Lock()
	if o.step == StepDetails {
		o.step = StepTime
	}
	o.mu.Unlock()

	return nil
}

// SelectPickup records a pickup selection. The instant must match an
// available slot from the most recent RefreshSlots; stale selections are
// rejected here, at the point of advancing, not retroactively.
func (o *Orchestrator) SelectPickup(ctx context.Context, instant time.Time) error {
	o.mu.Lock()
	if o.step != StepTime {
		o.mu.Unlock()
		return model.NewDomainError(model.ErrCodeValidation, "pickup selection requires the time step")
	}
	slots := o.slots
	o.mu.Unlock()

	if !schedule.Validate(slots, instant) {
		return model.ErrStaleSelection
	}

	o.cart.SetPickupTime(ctx, &instant)
	return nil
}

// AdvanceToPayment re-validates the pickup selection and ensures a
// payment intent exists for the verified total, then moves to the
// payment step.
//
// Pricing failures are fatal to the attempt: an empty (or fully
// unmatched) cart returns the flow to the details step, and a total
// below the provider minimum does too, since the customer must change
// the cart to proceed.
func (o *Orchestrator) AdvanceToPayment(ctx context.Context) error {
	o.mu.Lock()
	if o.step != StepTime {
		o.mu.Unlock()
		return model.NewDomainError(model.ErrCodeValidation, "payment requires a completed time step")
	}
	slots := o.slots
	attemptID := o.attemptID
	o.mu.Unlock()

	state := o.cart.Get()
	if state.PickupTime == nil || !schedule.Validate(slots, *state.PickupTime) {
		return model.ErrStaleSelection
	}

	lines := linesOf(state)

	issued, err := o.issuer.Issue(ctx, lines, attemptID)
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) &&
			(domainErr.Code == model.ErrCodeBelowMinimum || domainErr.Code == model.ErrCodeEmptyCart) {
			o.mu.Lock()
			o.step = StepDetails
			o.mu.Unlock()
		}
		return err
	}

	o.mu.Lock()
	o.issued = issued
	o.issuedLines = lines
	o.step = StepPayment
	o.mu.Unlock()

	o.logger.Info().
		Str("order_code", issued.OrderCode).
		Str("total", issued.Quote.Totals.Total.StringFixed(2)).
		Msg("advanced to payment")

	return nil
}

// ConfirmPayment runs the provider confirmation round trip. On success
// it builds the immutable order snapshot, persists it, clears the cart,
// and fires the confirmation email best-effort. Provider declines keep
// the flow on the payment step for retry; the intent is reused unless
// the cart contents changed since it was issued.
func (o *Orchestrator) ConfirmPayment(ctx context.Context) (*model.Order, error) {
	o.mu.Lock()
	if o.step != StepPayment || o.issued == nil {
		o.mu.Unlock()
		return nil, model.NewDomainError(model.ErrCodeValidation, "payment step is not active")
	}
	if o.confirming {
		o.mu.Unlock()
		return nil, model.NewDomainError(model.ErrCodePaymentFailed, "a payment confirmation is already in flight")
	}
	o.confirming = true
	issued := o.issued
	attemptID := o.attemptID
	issuedLines := o.issuedLines
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.confirming = false
		o.mu.Unlock()
	}()

	state := o.cart.Get()

	// Cart changed since the intent was sized: re-issue for the new
	// snapshot before charging.
	lines := linesOf(state)
	if !sameLines(lines, issuedLines) {
		o.logger.Warn().Msg("cart changed since intent was issued, re-verifying")
		fresh, err := o.issuer.Issue(ctx, lines, attemptID)
		if err != nil {
			return nil, err
		}
		o.mu.Lock()
		o.issued = fresh
		o.issuedLines = lines
		o.mu.Unlock()
		issued = fresh
	}

	if err := o.provider.ConfirmIntent(ctx, issued.Intent.ID); err != nil {
		o.logger.Warn().Err(err).Str("intent_id", issued.Intent.ID).Msg("payment confirmation failed")
		return nil, err
	}

	if state.PickupTime == nil || state.CustomerDetails == nil {
		// Should be unreachable through the gated flow.
		return nil, model.NewDomainError(model.ErrCodeValidation, "checkout state incomplete")
	}

	order := &model.Order{
		ID:         uuid.New(),
		Code:       issued.OrderCode,
		Items:      state.Items,
		Totals:     issued.Quote.Totals,
		PickupTime: *state.PickupTime,
		Customer:   *state.CustomerDetails,
		CreatedAt:  o.now(),
	}

	// Payment has succeeded: storage and notification problems are
	// logged, never allowed to block the confirmed order.
	o.persistOrder(ctx, order)
	o.sendReceipt(ctx, order)

	o.cart.Reset(ctx)

	o.mu.Lock()
	o.order = order
	o.step = StepConfirmed
	o.mu.Unlock()

	o.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_code", order.Code).
		Msg("order confirmed")

	return order, nil
}

// Back moves one step backwards. Entered data is retained, and an
// already-created payment intent stays valid for its original total.
func (o *Orchestrator) Back() {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch o.step {
	case StepPayment:
		o.step = StepTime
	case StepTime:
		o.step = StepDetails
	}
}

func (o *Orchestrator) persistOrder(ctx context.Context, order *model.Order) {
	if o.orders == nil {
		return
	}

	tx, err := o.orders.BeginTx(ctx)
	if err != nil {
		o.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to begin order transaction")
		return
	}

	if err := o.orders.CreateOrder(ctx, tx, order); err != nil {
		o.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to persist order")
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			o.logger.Error().Err(rbErr).Msg("failed to rollback order transaction")
		}
		return
	}

	if err := o.orders.CreateOrderItems(ctx, tx, order.ID, order.Items); err != nil {
		o.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to persist order items")
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			o.logger.Error().Err(rbErr).Msg("failed to rollback order transaction")
		}
		return
	}

	if err := tx.Commit(ctx); err != nil {
		o.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit order transaction")
	}
}

func (o *Orchestrator) sendReceipt(ctx context.Context, order *model.Order) {
	if o.notifier == nil {
		return
	}

	receipt := notify.Receipt{
		Email:        order.Customer.Email,
		CustomerName: order.Customer.Name,
		OrderCode:    order.Code,
		PickupTime:   order.PickupTime,
		Items:        order.Items,
		Totals:       order.Totals,
	}

	if err := o.notifier.SendReceipt(ctx, receipt); err != nil {
		o.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("email", order.Customer.Email).
			Msg("failed to send confirmation email")
	}
}

func linesOf(state model.CartState) []pricing.Line {
	lines := make([]pricing.Line, len(state.Items))
	for i, item := range state.Items {
		lines[i] = pricing.Line{
			ProductID: item.ProductID,
			Size:      item.Size,
			Quantity:  item.Quantity,
		}
	}
	return lines
}

func sameLines(a, b []pricing.Line) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
