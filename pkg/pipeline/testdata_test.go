package pipeline

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/partimport/pkg/hook"
	"github.com/matzehuels/partimport/pkg/part"
)

const testCategories = `
Electronics:
  _structural: true
  _parameters: [Package]
  Passives:
    _structural: true
    _parameters: [Tolerance]
    Capacitors:
      _aliases: [Ceramic Capacitors, MLCC]
      _parameters: [Capacitance, Voltage Rating]
    Resistors:
      _aliases: [Chip Resistor - Surface Mount]
      _parameters: [Resistance]
  Power:
    _parameters: [Input Voltage]
    Regulators:
  Obsolete:
    _ignore: true
    Tubes:
Mechanical:
  Screws:
`

const testParameters = `
Package:
  _aliases: [Package / Case]
Tolerance:
Capacitance:
  _unit: F
Voltage Rating:
  _aliases: [Voltage - Rated]
  _unit: V
Resistance:
  _unit: Ω
Input Voltage:
  _aliases: [Voltage - Input]
  _unit: V
`

func testLogger(buf *bytes.Buffer) *log.Logger {
	return log.NewWithOptions(buf, log.Options{Level: log.DebugLevel})
}

func testSnapshot(t *testing.T, hooks ...hook.Hook) *Snapshot {
	t.Helper()
	s, err := Parse([]byte(testCategories), []byte(testParameters), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s.Hooks = hooks
	return s
}

func testEngine(t *testing.T, hooks ...hook.Hook) (*Engine, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewEngine(testSnapshot(t, hooks...), testLogger(&buf)), &buf
}

func capacitor(sku string) *part.Raw {
	return &part.Raw{
		Supplier:     "lcsc",
		SKU:          sku,
		MPN:          "CL05B104KO5NNNC",
		Manufacturer: "Samsung",
		CategoryPath: []string{"Capacitors", "Ceramic Capacitors"},
		Parameters: map[string]string{
			"Capacitance":           "100nF",
			"Voltage - Rated":       "16V",
			"Package / Case":        "0402",
			"Tolerance":             "±10%",
			"Operating Temperature": "-55°C ~ +125°C",
		},
	}
}
