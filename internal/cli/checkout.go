package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/checkout"
	"github.com/roach88/storefront/internal/shop"
)

// CheckoutQuoteOptions holds options for the checkout quote command.
type CheckoutQuoteOptions struct {
	*RootOptions
	Method string
}

// CheckoutSubmitOptions holds options for the checkout submit command.
type CheckoutSubmitOptions struct {
	*RootOptions
	Name       string
	Email      string
	Notes      string
	Method     string
	Line1      string
	City       string
	State      string
	PostalCode string
}

// SubmitView is a placed order in JSON output. Amounts are the backend's.
type SubmitView struct {
	Token        string `json:"token"`
	OrderID      string `json:"order_id"`
	Status       string `json:"status"`
	Method       string `json:"delivery_method"`
	Subtotal     string `json:"subtotal"`
	DeliveryFee  string `json:"delivery_fee"`
	Total        string `json:"total"`
	Confirmation string `json:"confirmation"`
	CheckoutURL  string `json:"checkout_url"`
}

// NewCheckoutCommand creates the checkout command group.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Price and place an order for the cart",
	}
	cmd.AddCommand(newCheckoutQuoteCommand(rootOpts))
	cmd.AddCommand(newCheckoutSubmitCommand(rootOpts))
	return cmd
}

func newCheckoutQuoteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutQuoteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Show subtotal, delivery fee and total for the cart",
		Long: `Show the checkout summary for the cart.

Delivery of printed or local items costs a flat fee; pickup and digital
delivery are free. Without --method, carts with physical items are quoted
for pickup and all-digital carts for digital delivery.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckoutQuote(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Method, "method", "", "delivery method (digital|pickup|delivery)")

	return cmd
}

func runCheckoutQuote(opts *CheckoutQuoteOptions, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	method, err := parseMethod(opts.Method)
	if err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeUsage, err.Error(), nil)
	}

	c, err := s.cart()
	if err != nil {
		return err
	}
	lines := c.Lines()
	if method == "" {
		method = checkout.DefaultMethod(lines)
	}
	q := checkout.Price(lines, method)

	return s.out.Render(quoteView(lines, q), func(w io.Writer) {
		renderQuote(w, lines, q)
	})
}

func newCheckoutSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutSubmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Place the order and open payment",
		Long: `Place an order for the cart and create a payment session.

On success the cart is emptied and the confirmation and payment links are
printed. On failure the cart is kept as it was and the command can simply be
run again. Every attempt is recorded in the local journal.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckoutSubmit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "customer name (required)")
	cmd.Flags().StringVar(&opts.Email, "email", "", "customer email (required)")
	cmd.Flags().StringVar(&opts.Notes, "notes", "", "order notes")
	cmd.Flags().StringVar(&opts.Method, "method", "", "delivery method (digital|pickup|delivery)")
	cmd.Flags().StringVar(&opts.Line1, "line1", "", "delivery address line")
	cmd.Flags().StringVar(&opts.City, "city", "", "delivery city")
	cmd.Flags().StringVar(&opts.State, "state", "", "delivery state")
	cmd.Flags().StringVar(&opts.PostalCode, "postal-code", "", "delivery postal code")

	return cmd
}

func runCheckoutSubmit(opts *CheckoutSubmitOptions, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	method, err := parseMethod(opts.Method)
	if err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeUsage, err.Error(), nil)
	}

	c, err := s.cart()
	if err != nil {
		return err
	}
	journal, err := s.store()
	if err != nil {
		return err
	}
	client, err := s.api()
	if err != nil {
		return err
	}

	nav := &linkNavigator{}
	orch := checkout.New(c, client, nav, &stderrAlerter{w: s.out.GetErrWriter()},
		checkout.WithJournal(journal),
		checkout.WithCallTimeout(s.cfg.API.CallTimeout),
		checkout.WithLogger(s.logger),
	)

	res, err := orch.Submit(s.ctx(), checkout.Form{
		Name:   opts.Name,
		Email:  opts.Email,
		Notes:  opts.Notes,
		Method: method,
		Address: shop.Address{
			Line1:      opts.Line1,
			City:       opts.City,
			State:      opts.State,
			PostalCode: opts.PostalCode,
		},
	})
	if err != nil {
		return submitError(s, err)
	}

	view := SubmitView{
		Token:        res.Token,
		OrderID:      res.Order.ID,
		Status:       res.Order.Status,
		Method:       string(res.Order.DeliveryMethod),
		Subtotal:     res.Order.Subtotal.String(),
		DeliveryFee:  res.Order.DeliveryFee.String(),
		Total:        res.Order.Total.String(),
		Confirmation: nav.confirmation,
		CheckoutURL:  nav.payment,
	}
	if !res.Order.Total.Equal(res.Quote.Total) {
		s.logger.Warn("backend total differs from quote",
			"order_id", res.Order.ID, "quoted", res.Quote.TotalText(), "charged", view.Total)
	}

	return s.out.Render(view, func(w io.Writer) {
		fmt.Fprintf(w, "Order placed: %s\n", view.OrderID)
		fmt.Fprintf(w, "Total: $%s\n", view.Total)
		fmt.Fprintf(w, "Confirmation: %s\n", view.Confirmation)
		fmt.Fprintf(w, "Payment: %s\n", view.CheckoutURL)
	})
}

func submitError(s *session, err error) error {
	var notReady *checkout.NotReadyError
	switch {
	case errors.As(err, &notReady):
		return s.out.Fail(ExitFailure, ErrCodeNotReady, "checkout not ready", err)
	case errors.Is(err, checkout.ErrInFlight):
		return s.out.Fail(ExitFailure, ErrCodeInFlight, "a checkout is already in progress", err)
	}
	if se, ok := checkout.IsSubmitError(err); ok {
		msg := fmt.Sprintf("%s (%s at %s%s)", checkout.FailureMessage, se.Kind, se.Stage, temporaryNote(err))
		return s.out.Fail(ExitFailure, ErrCodeCheckout, msg, err)
	}
	return s.out.Fail(ExitFailure, ErrCodeGeneric, "checkout failed", err)
}

// parseMethod accepts an empty method, meaning the cart's default.
func parseMethod(s string) (shop.DeliveryMethod, error) {
	if s == "" {
		return "", nil
	}
	return shop.ParseDeliveryMethod(s)
}

// linkNavigator keeps the destinations so they can be printed with the result.
type linkNavigator struct {
	confirmation string
	payment      string
}

func (n *linkNavigator) Confirm(orderID string) {
	n.confirmation = checkout.ConfirmationPath(orderID)
}

func (n *linkNavigator) OpenExternal(url string) {
	n.payment = url
}

// stderrAlerter prints alerts on the diagnostic stream.
type stderrAlerter struct {
	w io.Writer
}

func (a *stderrAlerter) Alert(msg string) {
	fmt.Fprintf(a.w, "! %s\n", msg)
}
