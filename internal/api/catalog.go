package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/roach88/storefront/internal/shop"
)

// ProductFilter narrows ListProducts. Zero fields are not sent.
type ProductFilter struct {
	Limit    int
	Category string
	Query    string
}

func (f ProductFilter) values() url.Values {
	v := url.Values{}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Category != "" {
		v.Set("category", f.Category)
	}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	return v
}

// ListProducts returns the catalog.
func (c *Client) ListProducts(ctx context.Context, filter ProductFilter) ([]shop.Product, error) {
	var products []shop.Product
	if err := c.do(ctx, http.MethodGet, "/products", filter.values(), nil, nil, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []shop.Product{}
	}
	return products, nil
}

// GetProduct returns one product. Unknown ids match ErrNotFound.
func (c *Client) GetProduct(ctx context.Context, id string) (shop.Product, error) {
	var p shop.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, nil, &p); err != nil {
		return shop.Product{}, err
	}
	return p, nil
}

// ListCategories returns all categories.
func (c *Client) ListCategories(ctx context.Context) ([]shop.Category, error) {
	var cats []shop.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, nil, &cats); err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []shop.Category{}
	}
	return cats, nil
}
