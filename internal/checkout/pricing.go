package checkout

import (
	"github.com/roach88/storefront/internal/shop"
)

// PhysicalDeliveryFee is charged for home delivery of printed or local items.
var PhysicalDeliveryFee = shop.Cents(700)

// HasPhysical reports whether any line is in a physical category.
func HasPhysical(lines []shop.Line) bool {
	for _, l := range lines {
		if l.Product.Physical() {
			return true
		}
	}
	return false
}

// DefaultMethod is pickup when the cart holds physical items, digital otherwise.
func DefaultMethod(lines []shop.Line) shop.DeliveryMethod {
	if HasPhysical(lines) {
		return shop.DeliveryPickup
	}
	return shop.DeliveryDigital
}

// DeliveryFee is PhysicalDeliveryFee for delivery of a cart with physical
// items and zero in every other case.
func DeliveryFee(lines []shop.Line, method shop.DeliveryMethod) shop.Money {
	if method == shop.DeliveryDelivery && HasPhysical(lines) {
		return PhysicalDeliveryFee
	}
	return shop.Money{}
}

// Quote is the client-side price of a cart. The backend's figures on the
// created order are authoritative.
type Quote struct {
	Method      shop.DeliveryMethod
	Subtotal    shop.Money
	DeliveryFee shop.Money
	Total       shop.Money
}

// Price computes the quote. Amounts are exact; only the *Text methods round.
func Price(lines []shop.Line, method shop.DeliveryMethod) Quote {
	var subtotal shop.Money
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total())
	}
	fee := DeliveryFee(lines, method)
	return Quote{
		Method:      method,
		Subtotal:    subtotal,
		DeliveryFee: fee,
		Total:       subtotal.Add(fee),
	}
}

// SubtotalText returns the subtotal with two decimals.
func (q Quote) SubtotalText() string { return q.Subtotal.String() }

// DeliveryFeeText returns the delivery fee with two decimals.
func (q Quote) DeliveryFeeText() string { return q.DeliveryFee.String() }

// TotalText returns the total with two decimals, e.g. "47.00".
func (q Quote) TotalText() string { return q.Total.String() }
