package shop

import "fmt"

// Category slugs known to the storefront.
const (
	CategoryDigital = "digital"
	CategoryPrints  = "prints"
	CategoryLocal   = "local"
)

// IsPhysical reports whether products in the category are printed or made
// locally, i.e. must be picked up or delivered.
func IsPhysical(categorySlug string) bool {
	return categorySlug == CategoryPrints || categorySlug == CategoryLocal
}

// Category is a catalog grouping.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Product is a catalog entry as returned by the backend.
// Clients treat it as read-only; the backend re-validates it on order creation.
type Product struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Price        Money  `json:"price"`
	Currency     string `json:"currency,omitempty"`
	CategorySlug string `json:"category_slug"`
	ImageURL     string `json:"image_url,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// Physical reports whether the product belongs to a physical category.
func (p Product) Physical() bool {
	return IsPhysical(p.CategorySlug)
}

// Line is one product with a quantity inside a cart.
type Line struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Total returns price × quantity.
func (l Line) Total() Money {
	return l.Product.Price.Mul(l.Quantity)
}

// DeliveryMethod is the customer-declared fulfilment channel.
type DeliveryMethod string

// Delivery methods.
const (
	DeliveryDigital  DeliveryMethod = "digital"
	DeliveryPickup   DeliveryMethod = "pickup"
	DeliveryDelivery DeliveryMethod = "delivery"
)

// DeliveryMethods lists the valid methods in display order.
var DeliveryMethods = []DeliveryMethod{DeliveryDigital, DeliveryPickup, DeliveryDelivery}

// ParseDeliveryMethod validates a method name.
func ParseDeliveryMethod(s string) (DeliveryMethod, error) {
	for _, m := range DeliveryMethods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid delivery method %q: must be one of %v", s, DeliveryMethods)
}

// Address is a free-form postal address, required only for delivery.
type Address struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// MissingFields returns the JSON names of empty address fields.
func (a Address) MissingFields() []string {
	var missing []string
	if a.Line1 == "" {
		missing = append(missing, "line1")
	}
	if a.City == "" {
		missing = append(missing, "city")
	}
	if a.State == "" {
		missing = append(missing, "state")
	}
	if a.PostalCode == "" {
		missing = append(missing, "postal_code")
	}
	return missing
}

// OrderItem references a product by id in an order draft.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderDraft is the payload sent to create an order.
type OrderDraft struct {
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	Notes          string         `json:"notes"`
	DeliveryMethod DeliveryMethod `json:"delivery_method"`
	Address        *Address       `json:"address"`
	Items          []OrderItem    `json:"items"`
}

// Order statuses reported by the backend.
const (
	OrderCreated        = "created"
	OrderPendingPayment = "pending_payment"
	OrderPaid           = "paid"
	OrderFulfilled      = "fulfilled"
	OrderCancelled      = "cancelled"
)

// Order is the backend's record of a created order. Amounts are the
// backend's authoritative pricing.
type Order struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	Notes          string         `json:"notes,omitempty"`
	DeliveryMethod DeliveryMethod `json:"delivery_method"`
	Address        *Address       `json:"address,omitempty"`
	Items          []OrderItem    `json:"items"`
	Subtotal       Money          `json:"subtotal"`
	DeliveryFee    Money          `json:"delivery_fee"`
	Total          Money          `json:"total"`
	Currency       string         `json:"currency,omitempty"`
	Status         string         `json:"status,omitempty"`
	CreatedAt      string         `json:"created_at,omitempty"`
}

// CheckoutSession is a backend-issued payment handle for one order.
type CheckoutSession struct {
	ID              string `json:"id"`
	OrderID         string `json:"order_id"`
	PaymentProvider string `json:"payment_provider,omitempty"`
	CheckoutURL     string `json:"checkout_url"`
	Status          string `json:"status,omitempty"`
}
