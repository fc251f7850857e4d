// Package harness runs checkout scenarios written in YAML.
//
// A scenario seeds a catalog, drives a cart through mutations and checkout
// submissions against an in-memory backend, and checks the resulting trace
// of side effects and the final state.
//
// # Scenario Format
//
//	name: delivered_prints_checkout
//	description: "Prints delivered to a home address pay the delivery fee"
//	catalog:
//	  - { id: print, title: Harbor Print, price: "20.00", category: prints }
//	tokens: [tok-1]
//	steps:
//	  - add: { product: print, quantity: 2 }
//	  - fail_next_order: { status: 400, detail: "Invalid product: print" }
//	  - submit: { name: Ann, email: ann@example.com, method: pickup }
//	    expect: { outcome: failed, stage: create_order, kind: rejected }
//	assertions:
//	  - type: trace_order
//	    events: ["create_order tok-1", "alert Checkout failed. Please try again."]
//	  - type: final_state
//	    expect: { cart_count: 2, state: failed }
//
// # Trace Events
//
// Every run records, in order:
//
//	cart count=<n> subtotal=<amount>       after each cart mutation
//	create_order <token>                    order call received
//	order_created <order id>                order call succeeded
//	create_session <order id>               session call received
//	session_created <order id>              session call succeeded
//	alert <message>                         customer alert
//	confirm <order id>                      confirmation view
//	open <url>                              payment page opened
//	submit succeeded order=<id>             submission outcome
//	submit failed stage=<s> kind=<k>
//	submit blocked missing=<fields>
//
// # Deterministic Testing
//
// Each run uses a fresh in-memory SQLite journal, a file-backed cart on an
// in-memory filesystem, fixed idempotency tokens and a deterministic clock,
// so the same scenario always produces the same trace. RunWithGolden
// compares that trace against testdata/golden/<name>.golden.
package harness
