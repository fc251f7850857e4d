// Package cart implements the client-side cart store.
//
// A Store owns an ordered list of shop.Line values, at most one per product
// id, in first-add order. Count and Subtotal are always derived from the
// lines on read; nothing else is cached.
//
// Every mutation (Add, Remove, Update, Clear) synchronously:
//  1. replaces the in-memory line list,
//  2. rewrites the whole list to the durable slot,
//  3. notifies subscribers with a snapshot.
//
// New reads the slot once. A missing or unreadable payload yields an empty
// cart and is only logged; the store then rewrites the slot immediately so a
// corrupt payload never survives initialization.
//
// The store is safe for concurrent use. Listeners run on the goroutine that
// performed the mutation, after the store's lock is released, so they may
// call back into the store.
package cart
