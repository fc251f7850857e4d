package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/shop"
	"github.com/roach88/storefront/internal/store"
)

// OrdersListOptions holds options for the orders list command.
type OrdersListOptions struct {
	*RootOptions
	Limit     int
	Abandoned bool
}

// OrdersExportOptions holds options for the orders export command.
type OrdersExportOptions struct {
	*RootOptions
	Output string
}

// SubmissionView is one journal entry in JSON output.
type SubmissionView struct {
	Seq         int64  `json:"seq"`
	Token       string `json:"token"`
	State       string `json:"state"`
	Stage       string `json:"stage,omitempty"`
	FailureKind string `json:"failure_kind,omitempty"`
	OrderID     string `json:"order_id,omitempty"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	Error       string `json:"error,omitempty"`
	Method      string `json:"delivery_method"`
	Items       int    `json:"items"`
	Subtotal    string `json:"subtotal"`
	Total       string `json:"total"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// OrderView is a backend order with the local attempt that created it.
type OrderView struct {
	Order      shop.Order      `json:"order"`
	Submission *SubmissionView `json:"submission,omitempty"`
}

// ExportResult is the output of orders export.
type ExportResult struct {
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

// NewOrdersCommand creates the orders command group.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect checkout attempts and placed orders",
	}
	cmd.AddCommand(newOrdersListCommand(rootOpts))
	cmd.AddCommand(newOrdersShowCommand(rootOpts))
	cmd.AddCommand(newOrdersExportCommand(rootOpts))
	return cmd
}

func newOrdersListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrdersListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List checkout attempts from the local journal",
		Long: `List checkout attempts recorded in the local journal, newest first.

With --abandoned, list only attempts whose order was created but whose
payment session was not; those orders are held unpaid by the backend.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrdersList(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of entries (0 for all)")
	cmd.Flags().BoolVar(&opts.Abandoned, "abandoned", false, "only attempts with an unpaid order")

	return cmd
}

func runOrdersList(opts *OrdersListOptions, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	db, err := s.store()
	if err != nil {
		return err
	}

	var subs []store.Submission
	if opts.Abandoned {
		subs, err = db.AbandonedSubmissions(s.ctx())
	} else {
		subs, err = db.ListSubmissions(s.ctx(), opts.Limit)
	}
	if err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeJournal, "failed to read journal", err)
	}

	views := make([]SubmissionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, submissionView(sub))
	}

	return s.out.Render(views, func(w io.Writer) {
		renderSubmissions(w, views)
	})
}

func newOrdersShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <order-id>",
		Short:         "Show an order from the backend",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrdersShow(rootOpts, args[0], cmd)
		},
	}
}

func runOrdersShow(opts *RootOptions, orderID string, cmd *cobra.Command) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	client, err := s.api()
	if err != nil {
		return err
	}
	ctx, cancel := s.callCtx()
	order, err := client.GetOrder(ctx, orderID)
	cancel()
	if err != nil {
		return s.backendError("failed to load order "+orderID, err)
	}

	view := OrderView{Order: order}
	db, err := s.store()
	if err != nil {
		return err
	}
	sub, err := db.SubmissionByOrderID(s.ctx(), orderID)
	switch {
	case err == nil:
		sv := submissionView(sub)
		view.Submission = &sv
	case errors.Is(err, store.ErrSubmissionNotFound):
		s.out.VerboseLog("No local checkout attempt for order %s", orderID)
	default:
		return s.out.Fail(ExitCommandError, ErrCodeJournal, "failed to read journal", err)
	}

	return s.out.Render(view, func(w io.Writer) {
		renderOrder(w, view)
	})
}

func newOrdersExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrdersExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "export",
		Short:         "Export the checkout journal to an Excel workbook",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrdersExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "out", "o", "checkouts.xlsx", "output .xlsx file")

	return cmd
}

func runOrdersExport(opts *OrdersExportOptions, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	db, err := s.store()
	if err != nil {
		return err
	}
	subs, err := db.ListSubmissions(s.ctx(), 0)
	if err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeJournal, "failed to read journal", err)
	}
	if err := exportSubmissions(subs, opts.Output); err != nil {
		return s.out.Fail(ExitCommandError, ErrCodeExport, "failed to write "+opts.Output, err)
	}

	result := ExportResult{Path: opts.Output, Rows: len(subs)}
	return s.out.Render(result, func(w io.Writer) {
		fmt.Fprintf(w, "Exported %d checkout attempt(s) to %s\n", result.Rows, result.Path)
	})
}

func submissionView(sub store.Submission) SubmissionView {
	return SubmissionView{
		Seq:         sub.Seq,
		Token:       sub.Token,
		State:       sub.State,
		Stage:       sub.Stage,
		FailureKind: sub.FailureKind,
		OrderID:     sub.OrderID,
		CheckoutURL: sub.CheckoutURL,
		Error:       sub.Error,
		Method:      sub.DeliveryMethod,
		Items:       sub.ItemCount,
		Subtotal:    amountText(sub.Subtotal),
		Total:       amountText(sub.Total),
		CreatedAt:   sub.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   sub.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func renderSubmissions(w io.Writer, views []SubmissionView) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No checkout attempts recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tSTARTED\tSTATE\tORDER\tMETHOD\tITEMS\tTOTAL\tFAILURE")
	for _, v := range views {
		failure := ""
		if v.FailureKind != "" {
			failure = v.FailureKind + " at " + v.Stage
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%d\t$%s\t%s\n",
			v.Seq, v.CreatedAt, v.State, orDash(v.OrderID), v.Method, v.Items, v.Total, failure)
	}
	tw.Flush()
}

func renderOrder(w io.Writer, v OrderView) {
	o := v.Order
	fmt.Fprintf(w, "Order %s (%s)\n", o.ID, o.Status)
	fmt.Fprintf(w, "Customer: %s <%s>\n", o.Name, o.Email)
	fmt.Fprintf(w, "Method: %s\n", o.DeliveryMethod)
	if o.Address != nil {
		fmt.Fprintf(w, "Address: %s, %s, %s %s\n", o.Address.Line1, o.Address.City, o.Address.State, o.Address.PostalCode)
	}
	for _, item := range o.Items {
		fmt.Fprintf(w, "%d x %s\n", item.Quantity, item.ProductID)
	}
	fmt.Fprintf(w, "Subtotal: $%s\n", o.Subtotal)
	fmt.Fprintf(w, "Delivery: $%s\n", o.DeliveryFee)
	fmt.Fprintf(w, "Total: $%s\n", o.Total)
	if v.Submission != nil {
		fmt.Fprintf(w, "Placed from this device at %s (token %s)\n", v.Submission.CreatedAt, v.Submission.Token)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
