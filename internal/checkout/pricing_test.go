package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/storefront/internal/shop"
)

func line(id, price, category string, qty int) shop.Line {
	return shop.Line{
		Product:  shop.Product{ID: id, Title: id, Price: shop.MustMoney(price), CategorySlug: category},
		Quantity: qty,
	}
}

func TestDeliveryFee_Matrix(t *testing.T) {
	digital := []shop.Line{line("d", "5.00", shop.CategoryDigital, 1)}
	prints := []shop.Line{line("p", "5.00", shop.CategoryPrints, 1)}
	local := []shop.Line{line("l", "5.00", shop.CategoryLocal, 1)}
	mixed := append(append([]shop.Line{}, digital...), prints...)

	tests := []struct {
		name   string
		lines  []shop.Line
		method shop.DeliveryMethod
		fee    string
	}{
		{"digital only, delivery", digital, shop.DeliveryDelivery, "0.00"},
		{"digital only, digital", digital, shop.DeliveryDigital, "0.00"},
		{"prints, delivery", prints, shop.DeliveryDelivery, "7.00"},
		{"prints, pickup", prints, shop.DeliveryPickup, "0.00"},
		{"local, delivery", local, shop.DeliveryDelivery, "7.00"},
		{"local, digital", local, shop.DeliveryDigital, "0.00"},
		{"mixed, delivery", mixed, shop.DeliveryDelivery, "7.00"},
		{"empty, delivery", nil, shop.DeliveryDelivery, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fee, DeliveryFee(tt.lines, tt.method).String())
		})
	}
}

func TestDefaultMethod(t *testing.T) {
	assert.Equal(t, shop.DeliveryDigital, DefaultMethod(nil))
	assert.Equal(t, shop.DeliveryDigital, DefaultMethod([]shop.Line{line("d", "1", shop.CategoryDigital, 1)}))
	assert.Equal(t, shop.DeliveryPickup, DefaultMethod([]shop.Line{
		line("d", "1", shop.CategoryDigital, 1),
		line("l", "1", shop.CategoryLocal, 1),
	}))
}

func TestPrice_PrintsDelivered(t *testing.T) {
	q := Price([]shop.Line{line("p", "20.00", shop.CategoryPrints, 2)}, shop.DeliveryDelivery)

	assert.Equal(t, "40.00", q.SubtotalText())
	assert.Equal(t, "7.00", q.DeliveryFeeText())
	assert.Equal(t, "47.00", q.TotalText())
	assert.Equal(t, shop.DeliveryDelivery, q.Method)
}

func TestPrice_RoundsOnlyForDisplay(t *testing.T) {
	q := Price([]shop.Line{
		line("a", "0.005", shop.CategoryDigital, 1),
		line("b", "0.005", shop.CategoryDigital, 1),
	}, shop.DeliveryDigital)

	assert.Equal(t, "0.010", q.Total.Exact())
	assert.Equal(t, "0.01", q.TotalText())
}

func TestPrice_TotalIsSubtotalPlusFee(t *testing.T) {
	lines := []shop.Line{
		line("a", "3.33", shop.CategoryLocal, 3),
		line("b", "12.10", shop.CategoryDigital, 1),
	}
	for _, m := range shop.DeliveryMethods {
		q := Price(lines, m)
		assert.True(t, q.Total.Equal(q.Subtotal.Add(q.DeliveryFee)), m)
		assert.Equal(t, "22.09", q.SubtotalText())
	}
}
