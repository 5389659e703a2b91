package units

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		unit string
		want string
	}{
		{"milli", "5mV", "V", "0.005 V"},
		{"spaced", "5 mV", "V", "0.005 V"},
		{"same unit", "3.3V", "V", "3.3 V"},
		{"bare number", "12", "V", "12 V"},
		{"kilo", "10kΩ", "Ω", "10000 Ω"},
		{"ohm spelling", "10kOhm", "Ω", "10000 Ω"},
		{"ohm sign", "4.7 kΩ", "Ω", "4700 Ω"},
		{"capital K", "10K", "Ω", "10000 Ω"},
		{"micro sign", "100µF", "F", "0.0001 F"},
		{"greek mu", "100μF", "F", "0.0001 F"},
		{"ascii micro", "100uF", "F", "0.0001 F"},
		{"comma decimal", "4,7 nF", "F", "0.0000000047 F"},
		{"comma with two decimals", "2,25 V", "V", "2.25 V"},
		{"comma with four decimals", "0,4700 A", "A", "0.47 A"},
		{"mega", "16MHz", "Hz", "16000000 Hz"},
		{"meter not milli", "5m", "m", "5 m"},
		{"millimeter", "5mm", "m", "0.005 m"},
		{"negative", "-40°C", "°C", "-40 °C"},
		{"exponent", "2.2e-3A", "A", "0.0022 A"},
		{"percent", "1%", "%", "1 %"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Normalize(tt.raw, tt.unit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Text)
			assert.Equal(t, tt.raw, v.Raw)
			assert.True(t, v.Normalized())
			assert.Equal(t, tt.unit, v.Unit)
		})
	}
}

func TestNormalizeExact(t *testing.T) {
	v, err := Normalize("5mV", "V")
	require.NoError(t, err)
	require.NotNil(t, v.Magnitude)
	assert.Equal(t, "0.005", v.Magnitude.String())
}

func TestNormalizePassthrough(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		unit    string
		wantErr error
	}{
		{"no digits", "Surface Mount", "V", nil},
		{"dash", "-", "V", nil},
		{"wrong unit", "5mA", "V", ErrUnknownUnit},
		{"range", "-40°C ~ 85°C", "°C", ErrUnknownUnit},
		{"trailing text", "5V DC", "V", ErrUnknownUnit},
		{"leading text", "approx. 5V", "V", ErrNoNumber},
		{"package code", "0603 (1608 Metric)", "m", ErrUnknownUnit},
		{"thousands comma", "1,000 V", "V", ErrNoNumber},
		{"thousands comma with prefix", "2,200 pF", "F", ErrNoNumber},
		{"thousands comma bare", "4,700", "Ω", ErrNoNumber},
		{"hours are not hecto", "10 h", "s", ErrUnknownUnit},
		{"deci is not bare", "3d", "m", ErrUnknownUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Normalize(tt.raw, tt.unit)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.wantErr), "err = %v, want %v", err, tt.wantErr)
			}
			assert.Equal(t, tt.raw, v.Text, "raw string must pass through unchanged")
			assert.False(t, v.Normalized())
		})
	}
}

func TestCanonical(t *testing.T) {
	tests := map[string]string{
		"ohm":    "Ω",
		"Ohms":   "Ω",
		"\u2126": "\u03a9",
		" V ":    "V",
		"Hz":     "Hz",
		"hz":     "Hz",
	}
	for in, want := range tests {
		if got := Canonical(in); got != want {
			t.Errorf("Canonical(%q) = %q, want %q", in, got, want)
		}
	}
}
