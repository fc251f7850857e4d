package testutil

import "sync"

// Navigator records navigation requests.
type Navigator struct {
	trace *Trace

	mu        sync.Mutex
	confirmed []string
	opened    []string
}

// NewNavigator returns a navigator writing "confirm <id>" and "open <url>"
// events to trace. trace may be nil.
func NewNavigator(trace *Trace) *Navigator {
	return &Navigator{trace: trace}
}

// Confirm records a move to the confirmation view.
func (n *Navigator) Confirm(orderID string) {
	n.mu.Lock()
	n.confirmed = append(n.confirmed, orderID)
	n.mu.Unlock()
	n.trace.Addf("confirm %s", orderID)
}

// OpenExternal records an external page being opened.
func (n *Navigator) OpenExternal(url string) {
	n.mu.Lock()
	n.opened = append(n.opened, url)
	n.mu.Unlock()
	n.trace.Addf("open %s", url)
}

// Confirmed returns the order ids passed to Confirm.
func (n *Navigator) Confirmed() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.confirmed...)
}

// Opened returns the URLs passed to OpenExternal.
func (n *Navigator) Opened() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.opened...)
}

// Alerter records alerts.
type Alerter struct {
	trace *Trace

	mu     sync.Mutex
	alerts []string
}

// NewAlerter returns an alerter writing "alert <msg>" events to trace.
// trace may be nil.
func NewAlerter(trace *Trace) *Alerter {
	return &Alerter{trace: trace}
}

// Alert records msg.
func (a *Alerter) Alert(msg string) {
	a.mu.Lock()
	a.alerts = append(a.alerts, msg)
	a.mu.Unlock()
	a.trace.Addf("alert %s", msg)
}

// Alerts returns every alert shown so far.
func (a *Alerter) Alerts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.alerts...)
}
