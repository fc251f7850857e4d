package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_Files(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		s, err := LoadScenario(path)
		require.NoError(t, err, path)
		assert.NotEmpty(t, s.Name)
	}
}

func TestLoadScenario_Parses(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/delivered_prints_checkout.yaml")
	require.NoError(t, err)

	assert.Equal(t, "delivered_prints_checkout", s.Name)
	require.Len(t, s.Catalog, 2)
	assert.Equal(t, "20.00", s.Catalog[0].Price)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, "add", s.Steps[0].action())
	require.NotNil(t, s.Steps[1].Submit)
	require.NotNil(t, s.Steps[1].Submit.Address)
	assert.Equal(t, "97201", s.Steps[1].Submit.Address.PostalCode)
	assert.Equal(t, "47.00", s.Steps[1].Expect.Total)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

const minimal = `
name: x
description: d
catalog:
  - { id: p, title: P, price: "1.00", category: digital }
steps:
  - add: { product: p, quantity: 1 }
assertions:
  - type: final_state
    expect: { cart_count: 1 }
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimal))
	require.NoError(t, err)
	assert.Equal(t, "x", s.Name)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := map[string]struct {
		yaml string
		want string
	}{
		"unknown field": {
			yaml: minimal + "assertion: []\n",
			want: "field assertion not found",
		},
		"missing name": {
			yaml: "description: d\nsteps: [{clear: true}]\nassertions: [{type: final_state, expect: {cart_count: 0}}]\n",
			want: "name is required",
		},
		"missing description": {
			yaml: "name: x\nsteps: [{clear: true}]\nassertions: [{type: final_state, expect: {cart_count: 0}}]\n",
			want: "description is required",
		},
		"no steps": {
			yaml: "name: x\ndescription: d\nassertions: [{type: final_state, expect: {cart_count: 0}}]\n",
			want: "steps list is required",
		},
		"no assertions": {
			yaml: "name: x\ndescription: d\nsteps: [{clear: true}]\n",
			want: "assertions list is required",
		},
		"two actions": {
			yaml: "name: x\ndescription: d\nsteps: [{clear: true, remove: p}]\nassertions: [{type: final_state, expect: {cart_count: 0}}]\n",
			want: "exactly one action",
		},
		"expect on add": {
			yaml: "name: x\ndescription: d\ncatalog: [{id: p, title: P, price: '1', category: digital}]\nsteps: [{add: {product: p, quantity: 1}, expect: {outcome: failed}}]\nassertions: [{type: final_state, expect: {cart_count: 0}}]\n",
			want: "expect is only valid on submit",
		},
		"unknown product": {
			yaml: "name: x\ndescription: d\nsteps: [{add: {product: ghost, quantity: 1}}]\nassertions: [{type: final_state, expect: {cart_count: 0}}]\n",
			want: `unknown product "ghost"`,
		},
		"bad price": {
			yaml: "name: x\ndescription: d\ncatalog: [{id: p, title: P, price: cheap, category: digital}]\nsteps: [{clear: true}]\nassertions: [{type: final_state, expect: {cart_count: 0}}]\n",
			want: "catalog[0]",
		},
		"duplicate product": {
			yaml: "name: x\ndescription: d\ncatalog: [{id: p, price: '1'}, {id: p, price: '2'}]\nsteps: [{clear: true}]\nassertions: [{type: final_state, expect: {cart_count: 0}}]\n",
			want: "duplicate id",
		},
		"unknown assertion": {
			yaml: "name: x\ndescription: d\nsteps: [{clear: true}]\nassertions: [{type: vibes}]\n",
			want: `unknown assertion type "vibes"`,
		},
		"trace_order without events": {
			yaml: "name: x\ndescription: d\nsteps: [{clear: true}]\nassertions: [{type: trace_order}]\n",
			want: "events list is required",
		},
		"journal without token": {
			yaml: "name: x\ndescription: d\nsteps: [{clear: true}]\nassertions: [{type: journal, expect: {state: failed}}]\n",
			want: "token is required",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
