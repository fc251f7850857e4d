package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/storefront/internal/api"
)

var (
	// ErrNotReady is returned when Submit is called before the cart and form
	// are complete. Nothing is sent to the backend.
	ErrNotReady = errors.New("checkout not ready")

	// ErrInFlight is returned when Submit is called while a submission is
	// already running.
	ErrInFlight = errors.New("submission already in progress")
)

// NotReadyError lists the fields blocking submission. It matches ErrNotReady.
type NotReadyError struct {
	Missing []string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrNotReady, strings.Join(e.Missing, ", "))
}

func (e *NotReadyError) Is(target error) bool {
	return target == ErrNotReady
}

// Stage is the backend call a submission failed in.
type Stage string

const (
	StageCreateOrder   Stage = "create_order"
	StageCreateSession Stage = "create_session"
)

// FailureKind classifies why a backend call failed.
type FailureKind string

const (
	// KindRejected means the backend answered with an error status.
	KindRejected FailureKind = "rejected"
	// KindNetwork means no usable answer arrived: connection failures and
	// caller cancellation.
	KindNetwork FailureKind = "network"
	// KindTimeout means the per-call deadline passed.
	KindTimeout FailureKind = "timeout"
	// KindDecode means the backend answered 2xx with an unreadable body.
	KindDecode FailureKind = "decode"
)

// SubmitError describes a failed submission. OrderID is set when the order
// was created but the payment session was not; that order exists on the
// backend and is not retried automatically.
type SubmitError struct {
	Token   string
	Stage   Stage
	Kind    FailureKind
	OrderID string
	Err     error
}

func (e *SubmitError) Error() string {
	if e.OrderID != "" {
		return fmt.Sprintf("checkout %s failed (%s, order=%s): %v", e.Stage, e.Kind, e.OrderID, e.Err)
	}
	return fmt.Sprintf("checkout %s failed (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// IsSubmitError reports whether err wraps a *SubmitError and returns it.
func IsSubmitError(err error) (*SubmitError, bool) {
	var se *SubmitError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// errMissingOrderID is returned when a created order comes back without an id.
var errMissingOrderID = fmt.Errorf("create order: %w: response has no order id", api.ErrDecode)

// classify maps a backend call error to a FailureKind.
func classify(err error) FailureKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, api.ErrDecode):
		return KindDecode
	}
	if _, ok := api.IsError(err); ok {
		return KindRejected
	}
	return KindNetwork
}
