// Package store provides durable client-local storage for the storefront.
//
// Two things live here:
//   - Slots: named key/value cells holding a whole serialized document (the
//     cart line list). A slot is rewritten wholesale on every save.
//   - Submissions: a journal of checkout attempts keyed by idempotency token,
//     so an order created server-side whose payment session failed can be
//     found again later.
//
// # Backends
//
// Store is the SQLite implementation of both. FileSlots implements Slots on
// a go-billy filesystem, one file per key, for setups without SQLite.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// # Integrity
//
// Slot payloads are stored with a domain-separated SHA-256 checksum
// (shop.PayloadChecksum). A row whose payload no longer matches its checksum
// is reported as ErrSlotCorrupt; callers treat that the same as an empty slot.
package store
