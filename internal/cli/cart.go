package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/cart"
)

// CartAddOptions holds options for the cart add command.
type CartAddOptions struct {
	*RootOptions
	Quantity int
}

// NewCartCommand creates the cart command group.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the local cart",
		Long: `Manage the cart. The cart is stored locally and survives between runs;
every change is written before the command returns.`,
	}
	cmd.AddCommand(newCartAddCommand(rootOpts))
	cmd.AddCommand(newCartRemoveCommand(rootOpts))
	cmd.AddCommand(newCartUpdateCommand(rootOpts))
	cmd.AddCommand(newCartClearCommand(rootOpts))
	cmd.AddCommand(newCartShowCommand(rootOpts))
	return cmd
}

func newCartAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CartAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Long: `Add a product to the cart. The product is fetched from the catalog first.
Adding a product already in the cart increases its quantity.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartAdd(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Quantity, "qty", 1, "quantity to add")

	return cmd
}

func runCartAdd(opts *CartAddOptions, productID string, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	client, err := s.api()
	if err != nil {
		return err
	}
	ctx, cancel := s.callCtx()
	p, err := client.GetProduct(ctx, productID)
	cancel()
	if err != nil {
		return s.backendError("failed to load product "+productID, err)
	}

	c, err := s.cart()
	if err != nil {
		return err
	}
	if err := c.Add(s.ctx(), p, opts.Quantity); err != nil {
		return cartError(s, err)
	}
	s.out.VerboseLog("Added %d x %s", opts.Quantity, p.ID)
	return showCart(s, c)
}

func newCartRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <product-id>",
		Short:         "Remove a product from the cart",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartMutation(rootOpts, cmd, func(s *session, c *cart.Store) error {
				return c.Remove(s.ctx(), args[0])
			})
		},
	}
}

func newCartUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "update <product-id> <quantity>",
		Short:         "Set the quantity of a product in the cart",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid quantity %q", args[1]))
			}
			return runCartMutation(rootOpts, cmd, func(s *session, c *cart.Store) error {
				return c.Update(s.ctx(), args[0], qty)
			})
		},
	}
}

func newCartClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Empty the cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartMutation(rootOpts, cmd, func(s *session, c *cart.Store) error {
				return c.Clear(s.ctx())
			})
		},
	}
}

func newCartShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Show the cart with line totals and subtotal",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartMutation(rootOpts, cmd, nil)
		},
	}
}

// runCartMutation loads the cart, applies fn when non-nil and shows the result.
func runCartMutation(opts *RootOptions, cmd *cobra.Command, fn func(*session, *cart.Store) error) error {
	s, err := newSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.cart()
	if err != nil {
		return err
	}
	if fn != nil {
		if err := fn(s, c); err != nil {
			return cartError(s, err)
		}
	}
	return showCart(s, c)
}

func showCart(s *session, c *cart.Store) error {
	snap := c.Snapshot()
	return s.out.Render(cartView(snap), func(w io.Writer) {
		renderCart(w, snap)
	})
}

func cartError(s *session, err error) error {
	if errors.Is(err, cart.ErrInvalidQuantity) {
		return s.out.Fail(ExitCommandError, ErrCodeQuantity, "quantity must be positive", err)
	}
	return s.out.Fail(ExitCommandError, ErrCodeStorage, "failed to save cart", err)
}
