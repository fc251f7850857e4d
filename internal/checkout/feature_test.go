package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/go-git/go-billy/v5/memfs"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/shop"
	"github.com/roach88/storefront/internal/store"
	"github.com/roach88/storefront/internal/testutil"
)

type checkoutTestContext struct {
	products []shop.Product
	backend  *testutil.FakeBackend
	cart     *cart.Store
	nav      *testutil.Navigator
	alert    *testutil.Alerter
	orch     *Orchestrator
	method   shop.DeliveryMethod
	err      error
}

func (c *checkoutTestContext) reset() {
	c.products = nil
	c.backend = nil
	c.cart = cart.New(context.Background(), store.NewFileSlots(memfs.New()), cart.WithLogger(discard))
	c.nav = testutil.NewNavigator(nil)
	c.alert = testutil.NewAlerter(nil)
	c.orch = nil
	c.method = ""
	c.err = nil
}

// ready builds the backend and orchestrator once the catalog is known.
func (c *checkoutTestContext) ready() {
	if c.orch != nil {
		return
	}
	c.backend = testutil.NewFakeBackend(testutil.WithProducts(c.products...))
	c.orch = New(c.cart, c.backend, c.nav, c.alert, WithLogger(discard))
}

func (c *checkoutTestContext) theCatalogHasAProductPriced(category, id, price string) error {
	m, err := shop.ParseMoney(price)
	if err != nil {
		return err
	}
	c.products = append(c.products, shop.Product{ID: id, Title: id, Price: m, CategorySlug: category})
	return nil
}

func (c *checkoutTestContext) theCartHasOf(qty int, id string) error {
	for _, p := range c.products {
		if p.ID == id {
			return c.cart.Add(context.Background(), p, qty)
		}
	}
	return fmt.Errorf("no product %q in catalog", id)
}

func (c *checkoutTestContext) theBackendRejectsTheNextOrder(status int, detail string) error {
	c.ready()
	c.backend.FailNextOrder(testutil.Rejected(status, detail))
	return nil
}

func (c *checkoutTestContext) theBackendFailsTheNextPaymentSession() error {
	c.ready()
	c.backend.FailNextSession(errors.New("connection reset by peer"))
	return nil
}

func (c *checkoutTestContext) iChoose(method string) error {
	m, err := shop.ParseDeliveryMethod(method)
	if err != nil {
		return err
	}
	c.method = m
	return nil
}

func (c *checkoutTestContext) iCheckOutAs(name, email, method string) error {
	c.ready()
	_, c.err = c.orch.Submit(context.Background(), Form{
		Name:   name,
		Email:  email,
		Method: shop.DeliveryMethod(method),
	})
	return nil
}

func (c *checkoutTestContext) quote() Quote {
	c.ready()
	return c.orch.Quote(c.method)
}

func (c *checkoutTestContext) theQuotedSubtotalIs(want string) error {
	return expectEqual("subtotal", want, c.quote().SubtotalText())
}

func (c *checkoutTestContext) theQuotedDeliveryFeeIs(want string) error {
	return expectEqual("delivery fee", want, c.quote().DeliveryFeeText())
}

func (c *checkoutTestContext) theQuotedTotalIs(want string) error {
	return expectEqual("total", want, c.quote().TotalText())
}

func (c *checkoutTestContext) theCheckoutSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	return expectEqual("state", StateSucceeded.String(), c.orch.State().String())
}

func (c *checkoutTestContext) theCheckoutFailsAt(stage, kind string) error {
	se, ok := IsSubmitError(c.err)
	if !ok {
		return fmt.Errorf("expected a submit error, got %v", c.err)
	}
	if err := expectEqual("stage", stage, string(se.Stage)); err != nil {
		return err
	}
	if err := expectEqual("kind", kind, string(se.Kind)); err != nil {
		return err
	}
	return expectEqual("state", StateFailed.String(), c.orch.State().String())
}

func (c *checkoutTestContext) theFailureNamesOrder(orderID string) error {
	se, ok := IsSubmitError(c.err)
	if !ok {
		return fmt.Errorf("expected a submit error, got %v", c.err)
	}
	return expectEqual("order id", orderID, se.OrderID)
}

func (c *checkoutTestContext) theSubmissionIsBlockedForMissing(fields string) error {
	var nre *NotReadyError
	if !errors.As(c.err, &nre) {
		return fmt.Errorf("expected a not-ready error, got %v", c.err)
	}
	return expectEqual("missing", fields, strings.Join(nre.Missing, ", "))
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	return expectEqual("cart count", "0", fmt.Sprint(c.cart.Count()))
}

func (c *checkoutTestContext) theCartHoldsItems(n int) error {
	return expectEqual("cart count", fmt.Sprint(n), fmt.Sprint(c.cart.Count()))
}

func (c *checkoutTestContext) noOrderWasRequested() error {
	return expectEqual("order calls", "0", fmt.Sprint(c.backend.CallCount(testutil.OpCreateOrder)))
}

func (c *checkoutTestContext) noPaymentSessionWasRequested() error {
	return expectEqual("session calls", "0", fmt.Sprint(c.backend.CallCount(testutil.OpCreateSession)))
}

func (c *checkoutTestContext) theCustomerIsTakenTo(path string) error {
	confirmed := c.nav.Confirmed()
	if len(confirmed) != 1 {
		return fmt.Errorf("expected one confirmation, got %v", confirmed)
	}
	return expectEqual("destination", path, ConfirmationPath(confirmed[0]))
}

func (c *checkoutTestContext) thePaymentPageIsOpened(url string) error {
	return expectEqual("opened", url, strings.Join(c.nav.Opened(), " "))
}

func (c *checkoutTestContext) theCustomerSeesTheAlert(msg string) error {
	return expectEqual("alerts", msg, strings.Join(c.alert.Alerts(), " | "))
}

func expectEqual(what, want, got string) error {
	if want != got {
		return fmt.Errorf("expected %s %q, got %q", what, want, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the catalog has a "([^"]*)" product "([^"]*)" priced "([^"]*)"$`, tc.theCatalogHasAProductPriced)
	ctx.Step(`^the cart has (\d+) of "([^"]*)"$`, tc.theCartHasOf)
	ctx.Step(`^the backend rejects the next order with status (\d+) "([^"]*)"$`, tc.theBackendRejectsTheNextOrder)
	ctx.Step(`^the backend fails the next payment session$`, tc.theBackendFailsTheNextPaymentSession)

	// When steps
	ctx.Step(`^I choose "([^"]*)"$`, tc.iChoose)
	ctx.Step(`^I check out as "([^"]*)" with email "([^"]*)" for "([^"]*)"$`, tc.iCheckOutAs)

	// Then steps
	ctx.Step(`^the quoted subtotal is "([^"]*)"$`, tc.theQuotedSubtotalIs)
	ctx.Step(`^the quoted delivery fee is "([^"]*)"$`, tc.theQuotedDeliveryFeeIs)
	ctx.Step(`^the quoted total is "([^"]*)"$`, tc.theQuotedTotalIs)
	ctx.Step(`^the checkout succeeds$`, tc.theCheckoutSucceeds)
	ctx.Step(`^the checkout fails at stage "([^"]*)" with kind "([^"]*)"$`, tc.theCheckoutFailsAt)
	ctx.Step(`^the failure names order "([^"]*)"$`, tc.theFailureNamesOrder)
	ctx.Step(`^the submission is blocked for missing "([^"]*)"$`, tc.theSubmissionIsBlockedForMissing)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart holds (\d+) items$`, tc.theCartHoldsItems)
	ctx.Step(`^no order was requested$`, tc.noOrderWasRequested)
	ctx.Step(`^no payment session was requested$`, tc.noPaymentSessionWasRequested)
	ctx.Step(`^the customer is taken to "([^"]*)"$`, tc.theCustomerIsTakenTo)
	ctx.Step(`^the payment page "([^"]*)" is opened$`, tc.thePaymentPageIsOpened)
	ctx.Step(`^the customer sees the alert "([^"]*)"$`, tc.theCustomerSeesTheAlert)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
