package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/storefront/internal/shop"
)

var (
	// ErrSlotEmpty is returned by Load when nothing has been saved under a key.
	ErrSlotEmpty = errors.New("slot is empty")

	// ErrSlotCorrupt is returned by Load when a stored payload fails its
	// integrity check.
	ErrSlotCorrupt = errors.New("slot payload is corrupt")
)

// Slots is a durable key/value cell store. Each Save replaces the whole
// payload stored under the key.
type Slots interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
}

var (
	_ Slots = (*Store)(nil)
	_ Slots = (*FileSlots)(nil)
)

// Load returns the payload stored under key.
// Returns ErrSlotEmpty if the key was never saved, ErrSlotCorrupt if the
// checksum does not match.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	var checksum string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload, checksum FROM slots WHERE key = ?
	`, key).Scan(&payload, &checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %q: %w", key, err)
	}
	if shop.PayloadChecksum(payload) != checksum {
		return nil, fmt.Errorf("load slot %q: %w", key, ErrSlotCorrupt)
	}
	return payload, nil
}

// Save replaces the payload stored under key.
func (s *Store) Save(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO slots (key, payload, checksum, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			checksum = excluded.checksum,
			updated_at = excluded.updated_at
	`, key, payload, shop.PayloadChecksum(payload), s.timestamp())
	if err != nil {
		return fmt.Errorf("save slot %q: %w", key, err)
	}
	return nil
}

