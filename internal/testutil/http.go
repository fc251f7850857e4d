package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/shop"
)

// Handler serves the backend's HTTP API under /api.
func (b *FakeBackend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			limit, _ := strconv.Atoi(q.Get("limit"))
			products, err := b.ListProducts(r.Context(), api.ProductFilter{
				Limit:    limit,
				Category: q.Get("category"),
				Query:    q.Get("q"),
			})
			respond(w, products, err)
		})
		r.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
			p, err := b.GetProduct(r.Context(), chi.URLParam(r, "id"))
			respond(w, p, err)
		})
		r.Get("/categories", func(w http.ResponseWriter, r *http.Request) {
			cats, err := b.ListCategories(r.Context())
			respond(w, cats, err)
		})
		r.Post("/orders", func(w http.ResponseWriter, r *http.Request) {
			var draft shop.OrderDraft
			if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
				respond(w, nil, Rejected(http.StatusUnprocessableEntity, err.Error()))
				return
			}
			order, err := b.CreateOrder(r.Context(), draft, r.Header.Get(api.IdempotencyHeader))
			respond(w, order, err)
		})
		r.Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
			order, err := b.GetOrder(r.Context(), chi.URLParam(r, "id"))
			respond(w, order, err)
		})
		r.Post("/checkout/session", func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				OrderID string `json:"order_id"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				respond(w, nil, Rejected(http.StatusUnprocessableEntity, err.Error()))
				return
			}
			session, err := b.CreateCheckoutSession(r.Context(), body.OrderID)
			respond(w, session, err)
		})
	})
	return r
}

// Serve starts an httptest server for b, closed when t ends, and returns
// the API base URL.
func (b *FakeBackend) Serve(t testing.TB) string {
	t.Helper()
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

func respond(w http.ResponseWriter, v any, err error) {
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		status := http.StatusInternalServerError
		var ae *api.Error
		if errors.As(err, &ae) {
			status = ae.Status
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": detailOf(err)})
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func detailOf(err error) string {
	var ae *api.Error
	if errors.As(err, &ae) {
		return ae.Detail
	}
	return err.Error()
}
