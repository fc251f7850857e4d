package checkout

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/shop"
	"github.com/roach88/storefront/internal/store"
)

// FailureMessage is shown to the customer whenever a submission fails.
const FailureMessage = "Checkout failed. Please try again."

// DefaultCallTimeout bounds each backend call.
const DefaultCallTimeout = 15 * time.Second

// Backend is the part of the commerce API checkout needs.
type Backend interface {
	CreateOrder(ctx context.Context, draft shop.OrderDraft, idempotencyKey string) (shop.Order, error)
	CreateCheckoutSession(ctx context.Context, orderID string) (shop.CheckoutSession, error)
}

// Cart is the part of cart.Store checkout needs.
type Cart interface {
	Snapshot() cart.Snapshot
	Clear(ctx context.Context) error
}

// Navigator moves the customer on after a successful submission.
type Navigator interface {
	// Confirm shows the confirmation destination for orderID.
	Confirm(orderID string)
	// OpenExternal opens the payment page in a new context.
	OpenExternal(url string)
}

// Alerter shows a blocking message to the customer.
type Alerter interface {
	Alert(msg string)
}

// Journal records submission attempts. *store.Store implements it.
type Journal interface {
	RecordSubmission(ctx context.Context, sub store.Submission) error
}

// State is the orchestrator's submission state.
type State int32

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Journal states.
const (
	JournalSubmitting = "submitting"
	JournalSucceeded  = "succeeded"
	JournalFailed     = "failed"
)

// Result is a successful submission.
type Result struct {
	Token   string
	Quote   Quote
	Order   shop.Order
	Session shop.CheckoutSession
}

// ConfirmationPath returns the in-app destination for the confirmation view.
func ConfirmationPath(orderID string) string {
	return "/success?" + url.Values{"order": {orderID}}.Encode()
}

// Orchestrator runs submissions against one cart and one backend.
// Safe for concurrent use; at most one submission runs at a time.
type Orchestrator struct {
	cart    Cart
	backend Backend
	nav     Navigator
	alert   Alerter
	journal Journal
	tokens  TokenGenerator
	timeout time.Duration
	logger  *slog.Logger

	state atomic.Int32
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithJournal records every attempt in j.
func WithJournal(j Journal) Option {
	return func(o *Orchestrator) {
		o.journal = j
	}
}

// WithTokenGenerator overrides the default UUIDv7Tokens.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(o *Orchestrator) {
		o.tokens = g
	}
}

// WithCallTimeout bounds each backend call. Zero or negative disables the
// per-call deadline; the caller's context still applies.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// New returns an idle orchestrator.
func New(c Cart, backend Backend, nav Navigator, alert Alerter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:    c,
		backend: backend,
		nav:     nav,
		alert:   alert,
		tokens:  UUIDv7Tokens{},
		timeout: DefaultCallTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Quote prices the current cart for method. An empty method means the
// default for the cart's contents.
func (o *Orchestrator) Quote(method shop.DeliveryMethod) Quote {
	lines := o.cart.Snapshot().Lines
	if method == "" {
		method = DefaultMethod(lines)
	}
	return Price(lines, method)
}

// CanSubmit reports whether Submit would contact the backend now.
func (o *Orchestrator) CanSubmit(f Form) bool {
	if o.State() == StateSubmitting {
		return false
	}
	lines := o.cart.Snapshot().Lines
	return len(Missing(lines, withMethod(f.Normalize(), lines))) == 0
}

// Submit places the order for the current cart.
//
// It returns ErrInFlight if a submission is running, a *NotReadyError if the
// cart or form is incomplete, and a *SubmitError if a backend call fails.
// In those cases the cart is unchanged. On success the cart is cleared, the
// navigator is sent to the confirmation view and the payment page.
func (o *Orchestrator) Submit(ctx context.Context, f Form) (Result, error) {
	for {
		cur := State(o.state.Load())
		if cur == StateSubmitting {
			return Result{}, ErrInFlight
		}

		snap := o.cart.Snapshot()
		form := withMethod(f.Normalize(), snap.Lines)
		if missing := Missing(snap.Lines, form); len(missing) > 0 {
			return Result{}, &NotReadyError{Missing: missing}
		}

		if !o.state.CompareAndSwap(int32(cur), int32(StateSubmitting)) {
			continue
		}
		return o.run(ctx, snap, form)
	}
}

func withMethod(f Form, lines []shop.Line) Form {
	if f.Method == "" {
		f.Method = DefaultMethod(lines)
	}
	return f
}

func (o *Orchestrator) run(ctx context.Context, snap cart.Snapshot, form Form) (Result, error) {
	token := o.tokens.Generate()
	draft := BuildDraft(snap.Lines, form)
	quote := Price(snap.Lines, form.Method)
	logger := o.logger.With("token", token)

	entry := store.Submission{
		Token:          token,
		State:          JournalSubmitting,
		Stage:          string(StageCreateOrder),
		DeliveryMethod: string(form.Method),
		ItemCount:      snap.Count,
		Subtotal:       quote.Subtotal.Exact(),
		Total:          quote.Total.Exact(),
	}
	if hash, err := shop.DraftHash(draft); err == nil {
		entry.DraftHash = hash
	} else {
		logger.Warn("draft hash failed", "error", err)
	}
	o.record(ctx, entry)

	logger.Info("submitting order", "method", form.Method, "items", len(draft.Items), "total", quote.TotalText())

	order, err := withDeadline(ctx, o.timeout, func(ctx context.Context) (shop.Order, error) {
		return o.backend.CreateOrder(ctx, draft, token)
	})
	if err == nil && order.ID == "" {
		err = errMissingOrderID
	}
	if err != nil {
		return Result{}, o.fail(ctx, entry, StageCreateOrder, err)
	}
	entry.OrderID = order.ID
	entry.Stage = string(StageCreateSession)
	o.record(ctx, entry)
	logger.Info("order created", "order_id", order.ID)

	session, err := withDeadline(ctx, o.timeout, func(ctx context.Context) (shop.CheckoutSession, error) {
		return o.backend.CreateCheckoutSession(ctx, order.ID)
	})
	if err != nil {
		return Result{}, o.fail(ctx, entry, StageCreateSession, err)
	}

	// The order is placed; a failed cart write must not turn it into a failure.
	if err := o.cart.Clear(ctx); err != nil {
		logger.Warn("cart clear after checkout failed", "order_id", order.ID, "error", err)
	}

	entry.State = JournalSucceeded
	entry.Stage = ""
	entry.CheckoutURL = session.CheckoutURL
	o.record(ctx, entry)
	o.state.Store(int32(StateSucceeded))
	logger.Info("checkout succeeded", "order_id", order.ID, "session_id", session.ID)

	o.nav.Confirm(order.ID)
	o.nav.OpenExternal(session.CheckoutURL)

	return Result{Token: token, Quote: quote, Order: order, Session: session}, nil
}

func (o *Orchestrator) fail(ctx context.Context, entry store.Submission, stage Stage, err error) error {
	se := &SubmitError{
		Token:   entry.Token,
		Stage:   stage,
		Kind:    classify(err),
		OrderID: entry.OrderID,
		Err:     err,
	}
	entry.State = JournalFailed
	entry.Stage = string(stage)
	entry.FailureKind = string(se.Kind)
	entry.Error = err.Error()
	o.record(ctx, entry)
	o.state.Store(int32(StateFailed))

	o.logger.Error("checkout failed",
		"token", entry.Token,
		"stage", stage,
		"kind", se.Kind,
		"order_id", entry.OrderID,
		"error", err,
	)
	o.alert.Alert(FailureMessage)
	return se
}

// record writes entry to the journal. Journal failures are logged only; they
// never change the outcome of a submission.
func (o *Orchestrator) record(ctx context.Context, entry store.Submission) {
	if o.journal == nil {
		return
	}
	if err := o.journal.RecordSubmission(context.WithoutCancel(ctx), entry); err != nil {
		o.logger.Warn("journal write failed", "token", entry.Token, "error", err)
	}
}

func withDeadline[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}
