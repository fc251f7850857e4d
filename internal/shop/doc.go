// Package shop defines the storefront's data model: products and
// categories from the catalog, cart lines, delivery choices, order drafts,
// and the backend's order and checkout-session responses.
//
// # Money
//
// Prices are exact decimals (Money) backed by cockroachdb/apd. Arithmetic is
// never rounded; only the display form (Money.String) is fixed at two
// decimal places.
//
// # Canonical JSON
//
// MarshalCanonical produces RFC 8785 style JSON (sorted keys, NFC strings,
// no insignificant whitespace). It is used wherever byte-stable output
// matters: the persisted cart payload checksum and recorded traces.
package shop
