package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/storefront/internal/store"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, event)
		}
	}
	return buf.String()
}

func assertTraceContains(trace []string, a Assertion) error {
	for _, event := range trace {
		if event == a.Event {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("event %q", a.Event),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that events appear in the given relative order.
// Other events may appear in between.
func assertTraceOrder(trace []string, a Assertion) error {
	pos := 0
	for _, want := range a.Events {
		found := false
		for pos < len(trace) {
			event := trace[pos]
			pos++
			if event == want {
				found = true
				break
			}
		}
		if !found {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("events in order %v", a.Events),
				Actual:   fmt.Sprintf("%q missing or out of order", want),
				Trace:    trace,
			}
		}
	}
	return nil
}

func assertTraceCount(trace []string, a Assertion) error {
	n := 0
	for _, event := range trace {
		if strings.HasPrefix(event, a.Prefix) {
			n++
		}
	}
	if n != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d events starting with %q", a.Count, a.Prefix),
			Actual:   fmt.Sprintf("%d", n),
			Trace:    trace,
		}
	}
	return nil
}

func assertFinalState(final FinalState, a Assertion) error {
	var mismatches []string
	for _, key := range sortedKeys(a.Expect) {
		got, ok := final.field(key)
		if !ok {
			return fmt.Errorf("final_state: unknown field %q", key)
		}
		if !looseEqual(a.Expect[key], got) {
			mismatches = append(mismatches, fmt.Sprintf("%s=%v (want %v)", key, got, a.Expect[key]))
		}
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%v", a.Expect),
			Actual:   strings.Join(mismatches, ", "),
		}
	}
	return nil
}

func assertJournal(ctx context.Context, journal *store.Store, a Assertion) error {
	sub, err := journal.SubmissionByToken(ctx, a.Token)
	if err != nil {
		return &AssertionError{
			Type:     AssertJournal,
			Expected: fmt.Sprintf("journal entry for %q", a.Token),
			Actual:   err.Error(),
		}
	}
	fields := map[string]any{
		"state":           sub.State,
		"stage":           sub.Stage,
		"failure_kind":    sub.FailureKind,
		"order_id":        sub.OrderID,
		"checkout_url":    sub.CheckoutURL,
		"delivery_method": sub.DeliveryMethod,
		"item_count":      sub.ItemCount,
		"subtotal":        sub.Subtotal,
		"total":           sub.Total,
	}
	var mismatches []string
	for _, key := range sortedKeys(a.Expect) {
		got, ok := fields[key]
		if !ok {
			return fmt.Errorf("journal: unknown field %q", key)
		}
		if !looseEqual(a.Expect[key], got) {
			mismatches = append(mismatches, fmt.Sprintf("%s=%v (want %v)", key, got, a.Expect[key]))
		}
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertJournal,
			Expected: fmt.Sprintf("%s %v", a.Token, a.Expect),
			Actual:   strings.Join(mismatches, ", "),
		}
	}
	return nil
}

// looseEqual compares a YAML scalar with a Go value by their printed forms,
// so `cart_count: 2` matches int 2 and `subtotal: "40.00"` matches "40.00".
func looseEqual(want, got any) bool {
	return fmt.Sprint(want) == fmt.Sprint(got)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
