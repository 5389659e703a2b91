package parameter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/fold"
)

const testParametersYAML = `# parameters used by the shop
Input Voltage:
  _aliases: [Voltage - Input]
  _unit: V
Package:
Capacitance:
  _unit: F
`

func TestAddAlias(t *testing.T) {
	tests := []struct {
		name  string
		param string
		want  []string
	}{
		{"existing list", "Input Voltage", []string{"Voltage - Input", "Supply Voltage (Max)"}},
		{"null value", "Package", []string{"Supply Voltage (Max)"}},
		{"mapping without aliases", "capacitance", []string{"Supply Voltage (Max)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := AddAlias([]byte(testParametersYAML), tt.param, "Supply Voltage (Max)")
			require.NoError(t, err)
			assert.Contains(t, string(out), "# parameters used by the shop")

			specs, err := ParseYAML(out)
			require.NoError(t, err)
			require.Len(t, specs, 3)
			schema, err := BuildSchema(specs)
			require.NoError(t, err)

			def, ok := schema.Lookup("supply voltage (max)")
			require.True(t, ok)
			assert.True(t, fold.Equal(def.Name, tt.param))
			assert.Equal(t, tt.want, def.Aliases)
		})
	}
}

func TestAddAliasKeepsUnit(t *testing.T) {
	out, err := AddAlias([]byte(testParametersYAML), "Capacitance", "Cap")
	require.NoError(t, err)
	specs, err := ParseYAML(out)
	require.NoError(t, err)
	assert.Equal(t, "Capacitance", specs[2].Name)
	assert.Equal(t, "F", specs[2].Unit)
	assert.Equal(t, []string{"Cap"}, specs[2].Aliases)
}

func TestAddAliasExisting(t *testing.T) {
	data := []byte(testParametersYAML)
	out, err := AddAlias(data, "Input Voltage", "voltage - input")
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestAddAliasErrors(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		param string
		alias string
		code  errors.Code
	}{
		{"empty alias", testParametersYAML, "Package", " ", errors.ErrCodeInvalidInput},
		{"unknown parameter", testParametersYAML, "Colour", "Color", errors.ErrCodeNotFound},
		{"empty file", "", "Package", "Case", errors.ErrCodeNotFound},
		{"scalar aliases", "Package:\n  _aliases: Case\n", "Package", "Footprint", errors.ErrCodeConfig},
		{"invalid yaml", "Package: [", "Package", "Case", errors.ErrCodeConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddAlias([]byte(tt.data), tt.param, tt.alias)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "code = %s", errors.GetCode(err))
		})
	}
}
