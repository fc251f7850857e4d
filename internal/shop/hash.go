package shop

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// algorithm to change without confusing old and new digests.
const (
	DomainCartPayload = "storefront/cart/v1"
	DomainOrderDraft  = "storefront/draft/v1"
)

// hashWithDomain computes SHA256(domain || 0x00 || data) as hex.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PayloadChecksum returns the digest stored next to a persisted cart payload.
func PayloadChecksum(payload []byte) string {
	return hashWithDomain(DomainCartPayload, payload)
}

// DraftHash identifies the content of an order draft. Two drafts with the
// same items, contact details and delivery choice hash identically.
func DraftHash(d OrderDraft) (string, error) {
	canonical, err := MarshalCanonical(d)
	if err != nil {
		return "", fmt.Errorf("draft hash: %w", err)
	}
	return hashWithDomain(DomainOrderDraft, canonical), nil
}
