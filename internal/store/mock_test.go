package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/storefront/internal/shop"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return newStore(db), mock
}

func TestSave_PropagatesWriteError(t *testing.T) {
	s, mock := newMockStore(t)
	payload := []byte(`[]`)

	mock.ExpectExec("INSERT INTO slots").
		WithArgs("cart-items", payload, shop.PayloadChecksum(payload), sqlmock.AnyArg()).
		WillReturnError(errors.New("disk I/O error"))

	err := s.Save(context.Background(), "cart-items", payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.Contains(t, err.Error(), `save slot "cart-items"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_ChecksumMismatch(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"payload", "checksum"}).AddRow([]byte(`[]`), "not-the-checksum")
	mock.ExpectQuery("SELECT payload, checksum FROM slots").WithArgs("cart-items").WillReturnRows(rows)

	_, err := s.Load(context.Background(), "cart-items")
	assert.ErrorIs(t, err, ErrSlotCorrupt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_QueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT payload, checksum FROM slots").WillReturnError(errors.New("database is locked"))

	_, err := s.Load(context.Background(), "cart-items")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSlotEmpty)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestRecordSubmission_PropagatesError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO submissions").WillReturnError(errors.New("constraint failed"))

	err := s.RecordSubmission(context.Background(), createTestSubmission("tok", "submitting"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record submission")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSubmissions_BadTimestamp(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{
		"seq", "token", "draft_hash", "state", "stage", "failure_kind", "order_id", "checkout_url", "error",
		"delivery_method", "item_count", "subtotal", "total", "created_at", "updated_at",
	}).AddRow(1, "tok", "h", "failed", "", "", "", "", "", "digital", 1, "1.00", "1.00", "yesterday", "today")
	mock.ExpectQuery("SELECT (.+) FROM submissions").WillReturnRows(rows)

	_, err := s.ListSubmissions(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")
}
