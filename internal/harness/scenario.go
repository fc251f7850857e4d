package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/storefront/internal/shop"
)

// Scenario is one checkout test case.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	// Catalog seeds the backend.
	Catalog []CatalogEntry `yaml:"catalog"`

	// Tokens are the idempotency tokens handed out to submissions in order.
	// Defaults to tok-1, tok-2, ...
	Tokens []string `yaml:"tokens,omitempty"`

	// Steps run in order.
	Steps []Step `yaml:"steps"`

	// Assertions are checked after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// CatalogEntry is a product in the scenario catalog.
type CatalogEntry struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Price    string `yaml:"price"`
	Category string `yaml:"category"`
}

// Product converts the entry.
func (c CatalogEntry) Product() (shop.Product, error) {
	price, err := shop.ParseMoney(c.Price)
	if err != nil {
		return shop.Product{}, fmt.Errorf("product %s: %w", c.ID, err)
	}
	return shop.Product{ID: c.ID, Title: c.Title, Price: price, CategorySlug: c.Category, Currency: "USD"}, nil
}

// Step is one action. Exactly one action field is set.
type Step struct {
	Add             *LineStep   `yaml:"add,omitempty"`
	Update          *LineStep   `yaml:"update,omitempty"`
	Remove          string      `yaml:"remove,omitempty"`
	Clear           bool        `yaml:"clear,omitempty"`
	FailNextOrder   *Failure    `yaml:"fail_next_order,omitempty"`
	FailNextSession *Failure    `yaml:"fail_next_session,omitempty"`
	Submit          *SubmitStep `yaml:"submit,omitempty"`

	// Expect checks the outcome of a submit step.
	Expect *Expect `yaml:"expect,omitempty"`
}

// action returns the name of the step's action, or "" if none or several
// are set.
func (s Step) action() string {
	var names []string
	if s.Add != nil {
		names = append(names, "add")
	}
	if s.Update != nil {
		names = append(names, "update")
	}
	if s.Remove != "" {
		names = append(names, "remove")
	}
	if s.Clear {
		names = append(names, "clear")
	}
	if s.FailNextOrder != nil {
		names = append(names, "fail_next_order")
	}
	if s.FailNextSession != nil {
		names = append(names, "fail_next_session")
	}
	if s.Submit != nil {
		names = append(names, "submit")
	}
	if len(names) != 1 {
		return ""
	}
	return names[0]
}

// LineStep names a catalog product and a quantity.
type LineStep struct {
	Product  string `yaml:"product"`
	Quantity int    `yaml:"quantity"`
}

// Failure describes an injected backend failure. A non-zero Status is an
// error response; otherwise the call fails as a network error with Error.
type Failure struct {
	Status int    `yaml:"status,omitempty"`
	Detail string `yaml:"detail,omitempty"`
	Error  string `yaml:"error,omitempty"`
}

// SubmitStep is the checkout form.
type SubmitStep struct {
	Name    string       `yaml:"name"`
	Email   string       `yaml:"email"`
	Notes   string       `yaml:"notes,omitempty"`
	Method  string       `yaml:"method,omitempty"`
	Address *AddressStep `yaml:"address,omitempty"`
}

// AddressStep is a delivery address.
type AddressStep struct {
	Line1      string `yaml:"line1"`
	City       string `yaml:"city"`
	State      string `yaml:"state"`
	PostalCode string `yaml:"postal_code"`
}

// Submission outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeBlocked   = "blocked"
)

// Expect checks a submission. Empty fields are not checked.
type Expect struct {
	Outcome string   `yaml:"outcome"`
	Stage   string   `yaml:"stage,omitempty"`
	Kind    string   `yaml:"kind,omitempty"`
	OrderID string   `yaml:"order_id,omitempty"`
	Total   string   `yaml:"total,omitempty"`
	Missing []string `yaml:"missing,omitempty"`
}

// Assertion validates the trace, final state or journal.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Event is the exact event (trace_contains).
	Event string `yaml:"event,omitempty"`

	// Events must appear in this relative order (trace_order).
	Events []string `yaml:"events,omitempty"`

	// Prefix selects events counted by trace_count.
	Prefix string `yaml:"prefix,omitempty"`

	// Count is the expected number of events with Prefix (trace_count).
	Count int `yaml:"count,omitempty"`

	// Token selects a journal entry (journal).
	Token string `yaml:"token,omitempty"`

	// Expect holds expected field values (final_state, journal).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
	AssertJournal       = "journal"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	ids := make(map[string]bool, len(s.Catalog))
	for i, entry := range s.Catalog {
		if entry.ID == "" {
			return fmt.Errorf("catalog[%d]: id is required", i)
		}
		if ids[entry.ID] {
			return fmt.Errorf("catalog[%d]: duplicate id %q", i, entry.ID)
		}
		ids[entry.ID] = true
		if _, err := entry.Product(); err != nil {
			return fmt.Errorf("catalog[%d]: %w", i, err)
		}
	}

	for i, step := range s.Steps {
		action := step.action()
		if action == "" {
			return fmt.Errorf("steps[%d]: exactly one action is required", i)
		}
		if step.Expect != nil && action != "submit" {
			return fmt.Errorf("steps[%d]: expect is only valid on submit", i)
		}
		if step.Expect != nil && step.Expect.Outcome == "" {
			return fmt.Errorf("steps[%d].expect: outcome is required", i)
		}
		for _, line := range []*LineStep{step.Add, step.Update} {
			if line != nil && !ids[line.Product] {
				return fmt.Errorf("steps[%d]: unknown product %q", i, line.Product)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Prefix == "" {
			return fmt.Errorf("assertions[%d]: prefix is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertJournal:
		if a.Token == "" {
			return fmt.Errorf("assertions[%d]: token is required for journal", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for journal", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
