package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/shop"
)

// Call is one request received by a FakeBackend.
type Call struct {
	Op             string
	OrderID        string
	IdempotencyKey string
	Draft          shop.OrderDraft
}

// FakeBackend is an in-memory commerce backend. It prices orders the way the
// real backend does, opens mock payment sessions, and lets tests inject
// failures or hold calls open. It serves the same state over Go methods and
// over HTTP (Handler).
//
// Thread-safety: All methods are safe for concurrent use.
type FakeBackend struct {
	trace *Trace

	mu           sync.Mutex
	products     []shop.Product
	categories   []shop.Category
	orders       map[string]shop.Order
	orderSeq     int
	byKey        map[string]string
	calls        []Call
	orderErrs    []error
	sessionErrs  []error
	orderGate    chan struct{}
	orderEntered chan struct{}
}

// BackendOption configures a FakeBackend.
type BackendOption func(*FakeBackend)

// WithProducts seeds the catalog.
func WithProducts(products ...shop.Product) BackendOption {
	return func(b *FakeBackend) {
		b.products = append(b.products, products...)
	}
}

// WithCategories seeds the category list.
func WithCategories(cats ...shop.Category) BackendOption {
	return func(b *FakeBackend) {
		b.categories = append(b.categories, cats...)
	}
}

// WithTrace writes "create_order <key>", "order_created <id>",
// "create_session <id>" and "session_created <id>" events to trace.
func WithTrace(trace *Trace) BackendOption {
	return func(b *FakeBackend) {
		b.trace = trace
	}
}

// NewFakeBackend returns an empty backend.
func NewFakeBackend(opts ...BackendOption) *FakeBackend {
	b := &FakeBackend{
		orders: make(map[string]shop.Order),
		byKey:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FailNextOrder makes the next CreateOrder call return err.
// Calls queue: each failure is used once.
func (b *FakeBackend) FailNextOrder(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orderErrs = append(b.orderErrs, err)
}

// FailNextSession makes the next CreateCheckoutSession call return err.
func (b *FakeBackend) FailNextSession(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessionErrs = append(b.sessionErrs, err)
}

// HoldOrders makes CreateOrder block until release is called or the call's
// context ends. entered receives one value each time a call starts waiting.
func (b *FakeBackend) HoldOrders() (entered <-chan struct{}, release func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	gate := make(chan struct{})
	b.orderGate = gate
	b.orderEntered = make(chan struct{}, 16)
	var once sync.Once
	return b.orderEntered, func() {
		once.Do(func() { close(gate) })
	}
}

// Calls returns every backend call so far, in arrival order.
func (b *FakeBackend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallCount returns how many calls of op arrived.
func (b *FakeBackend) CallCount(op string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Orders returns created orders sorted by id.
func (b *FakeBackend) Orders() []shop.Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]shop.Order, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Backend operation names used in Call.Op.
const (
	OpCreateOrder   = "create_order"
	OpCreateSession = "create_session"
)

// ListProducts filters the catalog by category slug and case-insensitive
// title substring. limit <= 0 means 50.
func (b *FakeBackend) ListProducts(_ context.Context, filter api.ProductFilter) ([]shop.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	out := []shop.Product{}
	for _, p := range b.products {
		if filter.Category != "" && p.CategorySlug != filter.Category {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(filter.Query)) {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

// GetProduct returns a catalog product or a 404 *api.Error.
func (b *FakeBackend) GetProduct(_ context.Context, id string) (shop.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.product(id); ok {
		return p, nil
	}
	return shop.Product{}, &api.Error{Method: http.MethodGet, Path: "/products/" + id, Status: http.StatusNotFound, Detail: "Product not found"}
}

// ListCategories returns the seeded categories.
func (b *FakeBackend) ListCategories(context.Context) ([]shop.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]shop.Category{}, b.categories...), nil
}

// CreateOrder validates and prices draft. A repeated idempotency key returns
// the order created by the first call.
func (b *FakeBackend) CreateOrder(ctx context.Context, draft shop.OrderDraft, key string) (shop.Order, error) {
	b.mu.Lock()
	b.calls = append(b.calls, Call{Op: OpCreateOrder, IdempotencyKey: key, Draft: draft})
	gate, entered := b.orderGate, b.orderEntered
	b.mu.Unlock()
	b.trace.Addf("create_order %s", key)

	if gate != nil {
		entered <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
			return shop.Order{}, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.orderErrs) > 0 {
		err := b.orderErrs[0]
		b.orderErrs = b.orderErrs[1:]
		return shop.Order{}, err
	}
	if id, ok := b.byKey[key]; ok && key != "" {
		return b.orders[id], nil
	}

	order, err := b.price(draft)
	if err != nil {
		return shop.Order{}, err
	}
	b.orderSeq++
	order.ID = fmt.Sprintf("order-%d", b.orderSeq)
	b.orders[order.ID] = order
	if key != "" {
		b.byKey[key] = order.ID
	}
	b.trace.Addf("order_created %s", order.ID)
	return order, nil
}

// GetOrder returns a created order or a 404 *api.Error.
func (b *FakeBackend) GetOrder(_ context.Context, id string) (shop.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if !ok {
		return shop.Order{}, orderNotFound("/orders/" + id)
	}
	return o, nil
}

// CreateCheckoutSession opens a mock session and moves the order to
// pending_payment.
func (b *FakeBackend) CreateCheckoutSession(_ context.Context, orderID string) (shop.CheckoutSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, Call{Op: OpCreateSession, OrderID: orderID})
	b.trace.Addf("create_session %s", orderID)

	if len(b.sessionErrs) > 0 {
		err := b.sessionErrs[0]
		b.sessionErrs = b.sessionErrs[1:]
		return shop.CheckoutSession{}, err
	}
	o, ok := b.orders[orderID]
	if !ok {
		return shop.CheckoutSession{}, orderNotFound("/checkout/session")
	}
	o.Status = shop.OrderPendingPayment
	b.orders[orderID] = o
	b.trace.Addf("session_created %s", orderID)
	return shop.CheckoutSession{
		ID:              "session-" + orderID,
		OrderID:         orderID,
		PaymentProvider: "mock",
		CheckoutURL:     "https://example.com/checkout/mock/" + orderID,
		Status:          "created",
	}, nil
}

func (b *FakeBackend) product(id string) (shop.Product, bool) {
	for _, p := range b.products {
		if p.ID == id {
			return p, true
		}
	}
	return shop.Product{}, false
}

// price computes the backend's figures for draft. Caller holds b.mu.
func (b *FakeBackend) price(draft shop.OrderDraft) (shop.Order, error) {
	if len(draft.Items) == 0 {
		return shop.Order{}, Rejected(http.StatusBadRequest, "Cart is empty")
	}
	var subtotal shop.Money
	physical := false
	for _, item := range draft.Items {
		p, ok := b.product(item.ProductID)
		if !ok {
			return shop.Order{}, Rejected(http.StatusBadRequest, "Invalid product: "+item.ProductID)
		}
		subtotal = subtotal.Add(p.Price.Mul(item.Quantity))
		physical = physical || p.Physical()
	}
	var fee shop.Money
	if draft.DeliveryMethod == shop.DeliveryDelivery && physical {
		fee = shop.Cents(700)
	}
	return shop.Order{
		Email:          draft.Email,
		Name:           draft.Name,
		Notes:          draft.Notes,
		DeliveryMethod: draft.DeliveryMethod,
		Address:        draft.Address,
		Items:          draft.Items,
		Subtotal:       subtotal,
		DeliveryFee:    fee,
		Total:          subtotal.Add(fee),
		Currency:       "USD",
		Status:         shop.OrderCreated,
	}, nil
}

// Rejected returns the error a backend answering status with detail produces.
func Rejected(status int, detail string) error {
	return &api.Error{Method: http.MethodPost, Path: "/orders", Status: status, Detail: detail}
}

func orderNotFound(path string) error {
	return &api.Error{Method: http.MethodGet, Path: path, Status: http.StatusNotFound, Detail: "Order not found"}
}
