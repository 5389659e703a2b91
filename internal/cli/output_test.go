package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/partimport/pkg/category"
	"github.com/matzehuels/partimport/pkg/part"
	"github.com/matzehuels/partimport/pkg/pipeline"
)

func testEngine(t *testing.T) *pipeline.Engine {
	t.Helper()
	snap, err := pipeline.Parse([]byte(testCategories), []byte(testParameters), nil)
	require.NoError(t, err)
	return pipeline.NewEngine(snap, log.New(io.Discard))
}

func TestWriteTree(t *testing.T) {
	tree := testEngine(t).Snapshot().Tree

	tests := []struct {
		name    string
		opts    treeOptions
		want    []string
		notWant []string
	}{
		{"plain", treeOptions{}, []string{"Passives/", "Capacitors", "Resistors", "Obsolete"}, []string{"MLCC", "+Capacitance"}},
		{"aliases", treeOptions{Aliases: true}, []string{"(Ceramic Capacitors, MLCC)"}, nil},
		{"parameters", treeOptions{Parameters: true}, []string{"+Capacitance", "+Resistance"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			writeTree(&buf, tree, tt.opts)
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestWriteResolved(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	t.Run("resolved", func(t *testing.T) {
		raw := &part.Raw{
			Supplier:     "lcsc",
			SKU:          "C1525",
			MPN:          "CL05B104KO5NNNC",
			Manufacturer: "Samsung",
			CategoryPath: []string{"Capacitors", "MLCC"},
			Parameters:   map[string]string{"Capacitance": "100nF", "Voltage": "16V"},
		}
		p, out := engine.Resolve(ctx, raw)
		require.NotNil(t, p)

		var buf bytes.Buffer
		writeResolved(&buf, raw.Key(), p, out)
		s := buf.String()
		assert.Contains(t, s, "lcsc:C1525")
		assert.Contains(t, s, "Passives / Capacitors")
		assert.Contains(t, s, "CL05B104KO5NNNC")
		assert.Contains(t, s, "Capacitance")
		assert.Contains(t, s, `skipped "Voltage": unknown`)
	})

	t.Run("unresolved", func(t *testing.T) {
		raw := &part.Raw{Supplier: "lcsc", SKU: "C1", CategoryPath: []string{"Connectors"}}
		p, out := engine.Resolve(ctx, raw)
		require.Nil(t, p)

		var buf bytes.Buffer
		writeResolved(&buf, raw.Key(), p, out)
		assert.Contains(t, buf.String(), "failure")
		assert.Contains(t, buf.String(), string(category.ReasonNoMatch))
	})
}

func TestWriteReport(t *testing.T) {
	report := &pipeline.Report{Items: []pipeline.Item{
		{Index: 0, Key: "lcsc:C1", Outcome: pipeline.Outcome{Result: part.Success}},
		{Index: 1, Key: "lcsc:C2", Outcome: pipeline.Outcome{Result: part.Failure, Category: category.Result{Reason: category.ReasonIgnoredTarget}}},
		{Index: 2, Key: "tme:X3", Outcome: pipeline.Outcome{Result: part.Error, Err: errors.New("supplier unavailable")}},
	}}

	var buf bytes.Buffer
	writeReport(&buf, report)
	s := buf.String()
	assert.NotContains(t, s, "lcsc:C1")
	assert.Contains(t, s, "lcsc:C2")
	assert.Contains(t, s, "ignored_target")
	assert.Contains(t, s, "supplier unavailable")
	assert.Contains(t, s, "1 success")
	assert.Contains(t, s, "1 ignored")
}

func TestFormatCounts(t *testing.T) {
	tests := []struct {
		name    string
		counts  map[part.Result]int
		ignored int
		want    []string
	}{
		{"empty", nil, 0, []string{"nothing imported"}},
		{"mixed", map[part.Result]int{part.Success: 17, part.Incomplete: 1, part.Failure: 2}, 0, []string{"17 success", "1 incomplete", "2 failure"}},
		{"ignored", map[part.Result]int{part.Failure: 3}, 3, []string{"3 failure", "3 ignored"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatCounts(tt.counts, tt.ignored)
			for _, s := range tt.want {
				assert.Contains(t, got, s)
			}
		})
	}
}
