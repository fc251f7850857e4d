package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/storefront/internal/shop"
	"github.com/roach88/storefront/internal/store"
)

// Encode serializes lines the way they are persisted: a JSON array of
// {product, quantity}. An empty cart encodes as [].
func Encode(lines []shop.Line) ([]byte, error) {
	if lines == nil {
		lines = []shop.Line{}
	}
	return json.Marshal(lines)
}

// Decode parses a persisted payload. Lines repeating a product id are merged
// so the one-line-per-product invariant holds even for hand-edited data.
func Decode(payload []byte) ([]shop.Line, error) {
	var raw []shop.Line
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	lines := make([]shop.Line, 0, len(raw))
	for _, l := range raw {
		if i := indexOf(lines, l.Product.ID); i >= 0 {
			lines[i].Quantity += l.Quantity
			continue
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// load reads the slot once. Every failure is logged and becomes an empty cart.
func (s *Store) load(ctx context.Context) []shop.Line {
	payload, err := s.slots.Load(ctx, s.key)
	switch {
	case errors.Is(err, store.ErrSlotEmpty):
		return nil
	case err != nil:
		s.logger.Warn("cart slot unreadable, starting empty", "slot", s.key, "error", err)
		return nil
	}

	lines, err := Decode(payload)
	if err != nil {
		s.logger.Warn("cart payload invalid, starting empty", "slot", s.key, "error", err)
		return nil
	}
	return lines
}

func (s *Store) persist(ctx context.Context, lines []shop.Line) error {
	payload, err := Encode(lines)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.slots.Save(ctx, s.key, payload); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}
