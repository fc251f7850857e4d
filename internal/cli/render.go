package cli

import (
	"fmt"
	"io"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/checkout"
	"github.com/roach88/storefront/internal/shop"
)

// LineView is one cart line in JSON output.
type LineView struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
	Total     string `json:"total"`
}

// CartView is the cart in JSON output. Amounts have two decimals.
type CartView struct {
	Lines    []LineView `json:"lines"`
	Count    int        `json:"count"`
	Subtotal string     `json:"subtotal"`
}

// QuoteView is a checkout quote in JSON output.
type QuoteView struct {
	Lines       []LineView `json:"lines"`
	Method      string     `json:"delivery_method"`
	Subtotal    string     `json:"subtotal"`
	DeliveryFee string     `json:"delivery_fee"`
	Total       string     `json:"total"`
}

func lineViews(lines []shop.Line) []LineView {
	views := make([]LineView, 0, len(lines))
	for _, l := range lines {
		views = append(views, LineView{
			ProductID: l.Product.ID,
			Title:     l.Product.Title,
			Category:  l.Product.CategorySlug,
			Quantity:  l.Quantity,
			Price:     l.Product.Price.String(),
			Total:     l.Total().String(),
		})
	}
	return views
}

func cartView(snap cart.Snapshot) CartView {
	return CartView{
		Lines:    lineViews(snap.Lines),
		Count:    snap.Count,
		Subtotal: snap.Subtotal.String(),
	}
}

func quoteView(lines []shop.Line, q checkout.Quote) QuoteView {
	return QuoteView{
		Lines:       lineViews(lines),
		Method:      string(q.Method),
		Subtotal:    q.SubtotalText(),
		DeliveryFee: q.DeliveryFeeText(),
		Total:       q.TotalText(),
	}
}

func renderLines(w io.Writer, lines []shop.Line) {
	for _, l := range lines {
		fmt.Fprintf(w, "%d x %s (%s) @ $%s = $%s\n",
			l.Quantity, l.Product.Title, l.Product.ID, l.Product.Price, l.Total())
	}
}

func renderCart(w io.Writer, snap cart.Snapshot) {
	if snap.Empty() {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	renderLines(w, snap.Lines)
	fmt.Fprintf(w, "Items: %d\n", snap.Count)
	fmt.Fprintf(w, "Subtotal: $%s\n", snap.Subtotal)
}

func renderQuote(w io.Writer, lines []shop.Line, q checkout.Quote) {
	renderLines(w, lines)
	fmt.Fprintf(w, "Method: %s\n", q.Method)
	fmt.Fprintf(w, "Subtotal: $%s\n", q.SubtotalText())
	fmt.Fprintf(w, "Delivery: $%s\n", q.DeliveryFeeText())
	fmt.Fprintf(w, "Total: $%s\n", q.TotalText())
}
