package harness

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace holds the side effects of the run in order.
	Trace []string `json:"trace"`

	// Errors holds one message per failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`

	// Final is the state after the last step.
	Final FinalState `json:"final"`
}

// FinalState summarizes the cart, orchestrator and backend after a run.
type FinalState struct {
	State     string `json:"state"`
	CartCount int    `json:"cart_count"`
	Subtotal  string `json:"subtotal"`
	Orders    int    `json:"orders"`
}

// field returns a final-state field by its scenario name.
func (f FinalState) field(name string) (any, bool) {
	switch name {
	case "state":
		return f.State, true
	case "cart_count":
		return f.CartCount, true
	case "subtotal":
		return f.Subtotal, true
	case "orders":
		return f.Orders, true
	default:
		return nil, false
	}
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []string{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
