// Package checkout prices a cart and submits it as an order.
//
// Pricing is pure: Price computes subtotal, delivery fee and total from cart
// lines and a delivery method.
//
// Submission is a strictly ordered, partially irreversible sequence run by an
// Orchestrator:
//
//	idle ──Submit──▶ submitting ──order+session ok──▶ succeeded
//	                      │
//	                      └──either call fails──▶ failed
//
// The payment session is requested only after the order call returns, and
// the cart is cleared only after both calls succeed. A failure leaves the
// cart untouched so the customer can retry; a failure of the session call
// leaves an order on the backend, which the SubmitError reports by id.
//
// Only one submission runs at a time per Orchestrator. Submit while another
// submission is running returns ErrInFlight without contacting the backend.
package checkout
