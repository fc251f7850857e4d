package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{"b": 1, "a": "x", "c": []any{true, nil}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":1,"c":[true,null]}`, string(got))
}

func TestMarshalCanonical_StructTagsAndMoney(t *testing.T) {
	line := Line{
		Product:  Product{ID: "p1", Title: "Flyers", Price: MustMoney("20.0"), CategorySlug: "local"},
		Quantity: 2,
	}
	got, err := MarshalCanonical(line)
	require.NoError(t, err)
	assert.Equal(t,
		`{"product":{"category_slug":"local","description":"","id":"p1","price":20.0,"title":"Flyers"},"quantity":2}`,
		string(got))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical("<b>&</b>")
	require.NoError(t, err)
	assert.Equal(t, `"<b>&</b>"`, string(got))
}

func TestMarshalCanonical_LineSeparatorsLiteral(t *testing.T) {
	got, err := MarshalCanonical("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(got))
}

func TestMarshalCanonical_ControlCharacters(t *testing.T) {
	got, err := MarshalCanonical("tab\there\x01\"q\"\\")
	require.NoError(t, err)
	assert.Equal(t, `"tab\there\u0001\"q\"\\"`, string(got))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestMarshalCanonical_UTF16KeyOrder(t *testing.T) {
	// U+1F600 sorts after U+E000 in UTF-8 byte order but before it in UTF-16
	// (surrogate pairs start at 0xD800).
	got, err := MarshalCanonical(map[string]any{"\U0001F600": 1, "\uE000": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\"\U0001F600\":1,\"\uE000\":2}", string(got))
}

func TestDraftHash_Stable(t *testing.T) {
	d := OrderDraft{
		Email:          "a@example.com",
		Name:           "Ada",
		DeliveryMethod: DeliveryPickup,
		Items:          []OrderItem{{ProductID: "p1", Quantity: 2}},
	}
	h1, err := DraftHash(d)
	require.NoError(t, err)
	h2, err := DraftHash(d)
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	d.Items[0].Quantity = 3
	h3, err := DraftHash(d)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestPayloadChecksum_DomainSeparated(t *testing.T) {
	payload := []byte(`[]`)
	assert.NotEqual(t, PayloadChecksum(payload), hashWithDomain(DomainOrderDraft, payload))
	assert.Equal(t, PayloadChecksum(payload), PayloadChecksum([]byte(`[]`)))
}
