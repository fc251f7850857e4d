package store

import (
	"path/filepath"
	"testing"
	"time"
)

// fixedNow is the wall clock used by test stores.
var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestSubmission creates a journal entry with minimal required fields.
func createTestSubmission(token, state string) Submission {
	return Submission{
		Token:          token,
		DraftHash:      "draft-" + token,
		State:          state,
		DeliveryMethod: "pickup",
		ItemCount:      2,
		Subtotal:       "40.00",
		Total:          "40.00",
	}
}
