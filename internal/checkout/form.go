package checkout

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/storefront/internal/shop"
)

// Form is what the customer enters at checkout.
type Form struct {
	Name    string
	Email   string
	Notes   string
	Method  shop.DeliveryMethod
	Address shop.Address
}

// Normalize trims surrounding whitespace and puts text in NFC so the same
// input typed on different keyboards produces the same draft.
func (f Form) Normalize() Form {
	clean := func(s string) string {
		return norm.NFC.String(strings.TrimSpace(s))
	}
	return Form{
		Name:   clean(f.Name),
		Email:  clean(f.Email),
		Notes:  norm.NFC.String(f.Notes),
		Method: f.Method,
		Address: shop.Address{
			Line1:      clean(f.Address.Line1),
			City:       clean(f.Address.City),
			State:      clean(f.Address.State),
			PostalCode: clean(f.Address.PostalCode),
		},
	}
}

// Missing lists what stops lines and f from being submitted, by field name.
// An empty result means the submission may proceed.
func Missing(lines []shop.Line, f Form) []string {
	var missing []string
	if len(lines) == 0 {
		missing = append(missing, "items")
	}
	if strings.TrimSpace(f.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(f.Email) == "" {
		missing = append(missing, "email")
	}
	if _, err := shop.ParseDeliveryMethod(string(f.Method)); err != nil {
		missing = append(missing, "delivery_method")
	}
	if f.Method == shop.DeliveryDelivery {
		for _, field := range f.Address.MissingFields() {
			missing = append(missing, "address."+field)
		}
	}
	return missing
}

// BuildDraft turns cart lines and a form into an order draft. The address is
// included only for delivery.
func BuildDraft(lines []shop.Line, f Form) shop.OrderDraft {
	items := make([]shop.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, shop.OrderItem{ProductID: l.Product.ID, Quantity: l.Quantity})
	}
	draft := shop.OrderDraft{
		Email:          f.Email,
		Name:           f.Name,
		Notes:          f.Notes,
		DeliveryMethod: f.Method,
		Items:          items,
	}
	if f.Method == shop.DeliveryDelivery {
		addr := f.Address
		draft.Address = &addr
	}
	return draft
}
