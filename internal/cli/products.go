package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/shop"
)

// ProductsListOptions holds options for the products list command.
type ProductsListOptions struct {
	*RootOptions
	Category string
	Query    string
	Limit    int
}

// NewProductsCommand creates the products command group.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}
	cmd.AddCommand(newProductsListCommand(rootOpts))
	cmd.AddCommand(newProductsShowCommand(rootOpts))
	return cmd
}

func newProductsListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ProductsListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog products",
		Long: `List catalog products, optionally filtered by category slug
(digital, prints, local) or a case-insensitive title search.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductsList(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "category slug")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "title search")
	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "maximum number of products")

	return cmd
}

func runProductsList(opts *ProductsListOptions, cmd *cobra.Command) error {
	s, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if opts.Limit <= 0 {
		return s.out.Fail(ExitCommandError, ErrCodeUsage, fmt.Sprintf("invalid --limit %d: must be positive", opts.Limit), nil)
	}

	client, err := s.api()
	if err != nil {
		return err
	}
	ctx, cancel := s.callCtx()
	defer cancel()

	products, err := client.ListProducts(ctx, api.ProductFilter{
		Limit:    opts.Limit,
		Category: opts.Category,
		Query:    opts.Query,
	})
	if err != nil {
		return s.backendError("failed to load products", err)
	}
	s.out.VerboseLog("Loaded %d product(s) from %s", len(products), client.BaseURL())

	return s.out.Render(products, func(w io.Writer) {
		renderProducts(w, products)
	})
}

func newProductsShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show <product-id>",
		Short:         "Show one product",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProductsShow(rootOpts, args[0], cmd)
		},
	}
}

func runProductsShow(opts *RootOptions, id string, cmd *cobra.Command) error {
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
	defer cancel()

	p, err := client.GetProduct(ctx, id)
	if err != nil {
		return s.backendError("failed to load product "+id, err)
	}

	return s.out.Render(p, func(w io.Writer) {
		fmt.Fprintf(w, "%s\n", p.Title)
		fmt.Fprintf(w, "  id:       %s\n", p.ID)
		fmt.Fprintf(w, "  category: %s\n", p.CategorySlug)
		fmt.Fprintf(w, "  price:    $%s\n", p.Price)
		if p.Description != "" {
			fmt.Fprintf(w, "\n%s\n", p.Description)
		}
	})
}

// NewCategoriesCommand creates the categories command.
func NewCategoriesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "categories",
		Short:         "List catalog categories",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategories(rootOpts, cmd)
		},
	}
}

func runCategories(opts *RootOptions, cmd *cobra.Command) error {
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
	defer cancel()

	cats, err := client.ListCategories(ctx)
	if err != nil {
		return s.backendError("failed to load categories", err)
	}

	return s.out.Render(cats, func(w io.Writer) {
		for _, c := range cats {
			fmt.Fprintf(w, "%-10s %s\n", c.Slug, c.Name)
		}
	})
}

func renderProducts(w io.Writer, products []shop.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tPRICE")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\t%s\t$%s\n", p.ID, p.Title, p.CategorySlug, p.Price)
	}
	tw.Flush()
}
