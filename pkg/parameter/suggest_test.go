package parameter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggest(t *testing.T) {
	r := NewResolver(testSchema(t))
	raw := map[string]string{
		"Capacitance":           "100nF",
		"Operating Temperature": "-55°C ~ +125°C",
		"Supply Voltage (Max)":  "5.5V",
		"Mounting Type":         "Surface Mount",
	}

	got := r.Suggest("Input Voltage", raw, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "Supply Voltage (Max)", got[0].Name)
	assert.Equal(t, "5.5V", got[0].Value)
	assert.Greater(t, got[0].Score, got[1].Score)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i].Score, got[i-1].Score, "suggestions not sorted: %v", got)
	}
}

func TestSuggestMatchesValues(t *testing.T) {
	r := NewResolver(testSchema(t))
	raw := map[string]string{
		"Size":      "0402",
		"Footprint": "Package 0402",
		"Weight":    "1g",
	}
	got := r.Suggest("Package", raw, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "Footprint", got[0].Name, "value mentions the parameter")
}

func TestSuggestUsesAliases(t *testing.T) {
	r := NewResolver(testSchema(t))
	raw := map[string]string{
		"Ohms":   "10k",
		"Series": "RC0603",
	}
	got := r.Suggest("Resistance", raw, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "Ohms", got[0].Name, "alias Resistance (Ohms) contains the raw name")
}

func TestSuggestEdgeCases(t *testing.T) {
	r := NewResolver(testSchema(t))
	assert.Nil(t, r.Suggest("Package", nil, 5))
	assert.Nil(t, r.Suggest("Package", map[string]string{"Case": "0402"}, 0))

	got := r.Suggest("Undefined", map[string]string{"b": "1", "a": "1"}, 5)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name, "ties keep lexical order")
}

func TestPartialRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"", "abc", 0},
		{"voltage", "supply voltage (max)", 1},
		{"supply voltage (max)", "voltage", 1},
		{"abcd", "xabce", 0.75},
		{"abc", "xyz", 0},
	}
	for _, tt := range tests {
		if got := partialRatio(tt.a, tt.b); got != tt.want {
			t.Errorf("partialRatio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
