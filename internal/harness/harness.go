package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/go-git/go-billy/v5/memfs"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/checkout"
	"github.com/roach88/storefront/internal/shop"
	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/testutil"
)

// defaultTokens is how many tok-N tokens a scenario without explicit
// tokens gets.
const defaultTokens = 32

// Harness holds the collaborators of one scenario run.
type Harness struct {
	journal  *store.Store
	cart     *cart.Store
	backend  *testutil.FakeBackend
	orch     *checkout.Orchestrator
	trace    *testutil.Trace
	products map[string]shop.Product
	logger   *slog.Logger
}

// Run executes a scenario in a fresh environment and returns the result.
// The error is non-nil only when the environment could not be built;
// failed expectations are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	journal, err := store.Open(":memory:", store.WithClock(testutil.NewDeterministicClock().Now))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer journal.Close()

	h := &Harness{
		journal:  journal,
		trace:    testutil.NewTrace(),
		products: make(map[string]shop.Product, len(scenario.Catalog)),
		logger:   logger,
	}

	catalog := make([]shop.Product, 0, len(scenario.Catalog))
	for _, entry := range scenario.Catalog {
		p, err := entry.Product()
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, p)
		h.products[p.ID] = p
	}

	h.backend = testutil.NewFakeBackend(testutil.WithProducts(catalog...), testutil.WithTrace(h.trace))
	h.cart = cart.New(ctx, store.NewFileSlots(memfs.New()), cart.WithLogger(logger))
	h.cart.Subscribe(func(s cart.Snapshot) {
		h.trace.Addf("cart count=%d subtotal=%s", s.Count, s.Subtotal)
	})
	h.orch = checkout.New(h.cart, h.backend,
		testutil.NewNavigator(h.trace),
		testutil.NewAlerter(h.trace),
		checkout.WithJournal(journal),
		checkout.WithTokenGenerator(checkout.NewFixedTokens(tokens(scenario)...)),
		checkout.WithLogger(logger),
	)

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	result.Trace = h.trace.Events()
	snap := h.cart.Snapshot()
	result.Final = FinalState{
		State:     h.orch.State().String(),
		CartCount: snap.Count,
		Subtotal:  snap.Subtotal.String(),
		Orders:    len(h.backend.Orders()),
	}

	for i, assertion := range scenario.Assertions {
		if err := h.evaluate(ctx, result, assertion); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return result, nil
}

func tokens(s *Scenario) []string {
	if len(s.Tokens) > 0 {
		return s.Tokens
	}
	out := make([]string, defaultTokens)
	for i := range out {
		out[i] = fmt.Sprintf("tok-%d", i+1)
	}
	return out
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	switch {
	case step.Add != nil:
		return h.cart.Add(ctx, h.products[step.Add.Product], step.Add.Quantity)
	case step.Update != nil:
		return h.cart.Update(ctx, step.Update.Product, step.Update.Quantity)
	case step.Remove != "":
		return h.cart.Remove(ctx, step.Remove)
	case step.Clear:
		return h.cart.Clear(ctx)
	case step.FailNextOrder != nil:
		h.backend.FailNextOrder(step.FailNextOrder.err())
		return nil
	case step.FailNextSession != nil:
		h.backend.FailNextSession(step.FailNextSession.err())
		return nil
	case step.Submit != nil:
		h.submit(ctx, index, step, result)
		return nil
	default:
		return errors.New("no action")
	}
}

func (f *Failure) err() error {
	if f.Status != 0 {
		return testutil.Rejected(f.Status, f.Detail)
	}
	if f.Error != "" {
		return errors.New(f.Error)
	}
	return errors.New("connection refused")
}

func (h *Harness) submit(ctx context.Context, index int, step Step, result *Result) {
	form := checkout.Form{
		Name:   step.Submit.Name,
		Email:  step.Submit.Email,
		Notes:  step.Submit.Notes,
		Method: shop.DeliveryMethod(step.Submit.Method),
	}
	if a := step.Submit.Address; a != nil {
		form.Address = shop.Address{Line1: a.Line1, City: a.City, State: a.State, PostalCode: a.PostalCode}
	}

	res, err := h.orch.Submit(ctx, form)

	got := Expect{}
	var nre *checkout.NotReadyError
	switch {
	case err == nil:
		got.Outcome = OutcomeSucceeded
		got.OrderID = res.Order.ID
		got.Total = res.Quote.TotalText()
		h.trace.Addf("submit succeeded order=%s", res.Order.ID)
	case errors.As(err, &nre):
		got.Outcome = OutcomeBlocked
		got.Missing = nre.Missing
		h.trace.Addf("submit blocked missing=%s", strings.Join(nre.Missing, ","))
	default:
		got.Outcome = OutcomeFailed
		if se, ok := checkout.IsSubmitError(err); ok {
			got.Stage = string(se.Stage)
			got.Kind = string(se.Kind)
			got.OrderID = se.OrderID
			h.trace.Addf("submit failed stage=%s kind=%s", se.Stage, se.Kind)
		} else {
			h.trace.Addf("submit failed error=%v", err)
		}
	}

	if step.Expect != nil {
		for _, msg := range compareExpect(*step.Expect, got) {
			result.AddError(fmt.Sprintf("steps[%d]: %s", index, msg))
		}
	}
}

// compareExpect reports every field of want that got does not match.
func compareExpect(want, got Expect) []string {
	var errs []string
	check := func(name, w, g string) {
		if w != "" && w != g {
			errs = append(errs, fmt.Sprintf("expected %s %q, got %q", name, w, g))
		}
	}
	check("outcome", want.Outcome, got.Outcome)
	check("stage", want.Stage, got.Stage)
	check("kind", want.Kind, got.Kind)
	check("order_id", want.OrderID, got.OrderID)
	check("total", want.Total, got.Total)
	if len(want.Missing) > 0 {
		check("missing", strings.Join(want.Missing, ","), strings.Join(got.Missing, ","))
	}
	return errs
}

func (h *Harness) evaluate(ctx context.Context, result *Result, a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		return assertTraceContains(result.Trace, a)
	case AssertTraceOrder:
		return assertTraceOrder(result.Trace, a)
	case AssertTraceCount:
		return assertTraceCount(result.Trace, a)
	case AssertFinalState:
		return assertFinalState(result.Final, a)
	case AssertJournal:
		return assertJournal(ctx, h.journal, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}
