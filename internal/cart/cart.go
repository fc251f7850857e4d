package cart

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/storefront/internal/shop"
	"github.com/roach88/storefront/internal/store"
)

// DefaultSlotKey is the slot the cart is persisted under.
const DefaultSlotKey = "cart-items"

// ErrInvalidQuantity is returned by Add and Update in strict mode when the
// quantity is zero or negative.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// Snapshot is an immutable view of the cart at one point in time.
type Snapshot struct {
	Lines    []shop.Line
	Count    int
	Subtotal shop.Money
}

// Empty reports whether the snapshot has no lines.
func (s Snapshot) Empty() bool {
	return len(s.Lines) == 0
}

// Listener receives a snapshot after every mutation.
type Listener func(Snapshot)

type subscription struct {
	id int
	fn Listener
}

// Store is the cart. Create one with New and pass it to whoever needs it.
type Store struct {
	mu     sync.Mutex
	lines  []shop.Line
	slots  store.Slots
	key    string
	strict bool
	logger *slog.Logger

	subMu  sync.Mutex
	subs   []subscription
	nextID int
}

// Option configures a Store.
type Option func(*Store)

// WithSlotKey overrides DefaultSlotKey.
func WithSlotKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

// WithStrictQuantities makes Add and Update reject non-positive quantities
// with ErrInvalidQuantity instead of storing them as given.
func WithStrictQuantities() Option {
	return func(s *Store) {
		s.strict = true
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New loads the cart from slots and returns the store.
//
// It never fails: an absent, corrupt or unparsable payload gives an empty
// cart. The loaded (or emptied) list is written back once before New returns.
func New(ctx context.Context, slots store.Slots, opts ...Option) *Store {
	s := &Store{
		slots:  slots,
		key:    DefaultSlotKey,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s.lines = s.load(ctx)
	if err := s.persist(ctx, s.lines); err != nil {
		s.logger.Warn("cart initial write failed", "slot", s.key, "error", err)
	}
	s.logger.Debug("cart loaded", "slot", s.key, "lines", len(s.lines))
	return s
}

// Add adds quantity of product. An existing line for product.ID has its
// quantity increased; otherwise a new line is appended.
func (s *Store) Add(ctx context.Context, product shop.Product, quantity int) error {
	if s.strict && quantity <= 0 {
		return ErrInvalidQuantity
	}
	return s.mutate(ctx, "add", func(lines []shop.Line) []shop.Line {
		if i := indexOf(lines, product.ID); i >= 0 {
			lines[i] = shop.Line{Product: lines[i].Product, Quantity: lines[i].Quantity + quantity}
			return lines
		}
		return append(lines, shop.Line{Product: product, Quantity: quantity})
	})
}

// Remove drops the line for productID. Removing an absent product is a no-op.
func (s *Store) Remove(ctx context.Context, productID string) error {
	return s.mutate(ctx, "remove", func(lines []shop.Line) []shop.Line {
		out := lines[:0]
		for _, l := range lines {
			if l.Product.ID != productID {
				out = append(out, l)
			}
		}
		return out
	})
}

// Update sets the line's quantity to exactly quantity. Updating an absent
// product is a no-op.
func (s *Store) Update(ctx context.Context, productID string, quantity int) error {
	if s.strict && quantity <= 0 {
		return ErrInvalidQuantity
	}
	return s.mutate(ctx, "update", func(lines []shop.Line) []shop.Line {
		if i := indexOf(lines, productID); i >= 0 {
			lines[i].Quantity = quantity
		}
		return lines
	})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, "clear", func([]shop.Line) []shop.Line {
		return nil
	})
}

// Lines returns a copy of the lines in first-add order.
func (s *Store) Lines() []shop.Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneLines(s.lines)
}

// Count returns the sum of all line quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return count(s.lines)
}

// Subtotal returns the sum of price × quantity over all lines.
func (s *Store) Subtotal() shop.Money {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotal(s.lines)
}

// Snapshot returns lines, count and subtotal computed together.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotOf(s.lines)
}

// Subscribe registers fn to be called after every mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// mutate applies fn to a private copy of the lines, installs the result,
// persists it and notifies subscribers. The in-memory change stands even if
// the write fails; the write error is returned.
func (s *Store) mutate(ctx context.Context, op string, fn func([]shop.Line) []shop.Line) error {
	snap, err := s.apply(ctx, fn)
	if err != nil {
		s.logger.Error("cart write failed", "op", op, "slot", s.key, "error", err)
	} else {
		s.logger.Debug("cart updated", "op", op, "lines", len(snap.Lines), "count", snap.Count)
	}
	s.notify(snap)
	return err
}

func (s *Store) apply(ctx context.Context, fn func([]shop.Line) []shop.Line) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(cloneLines(s.lines))
	s.lines = next
	return snapshotOf(next), s.persist(ctx, next)
}

func (s *Store) notify(snap Snapshot) {
	s.subMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(Snapshot{Lines: cloneLines(snap.Lines), Count: snap.Count, Subtotal: snap.Subtotal})
	}
}

func indexOf(lines []shop.Line, productID string) int {
	for i, l := range lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

func cloneLines(lines []shop.Line) []shop.Line {
	out := make([]shop.Line, len(lines))
	copy(out, lines)
	return out
}

func count(lines []shop.Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func subtotal(lines []shop.Line) shop.Money {
	var total shop.Money
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return total
}

func snapshotOf(lines []shop.Line) Snapshot {
	return Snapshot{
		Lines:    cloneLines(lines),
		Count:    count(lines),
		Subtotal: subtotal(lines),
	}
}
