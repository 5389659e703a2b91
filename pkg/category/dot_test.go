package category

import (
	"strings"
	"testing"
)

func TestDOT(t *testing.T) {
	tree := testTree(t)
	dot := tree.DOT(DOTOptions{Parameters: true, Aliases: true})

	for _, want := range []string{
		"digraph categories {",
		`n0 [label="Electronics\n+ Package", style="rounded,filled,dashed"];`,
		`label="Capacitors\naka Ceramic Capacitors, MLCC, Chip Capacitors\n+ Capacitance, Voltage Rating"`,
		"fillcolor=lightgrey",
		"n0 -> n1;",
		"n8 -> n9;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if n := strings.Count(dot, "->"); n != tree.Len()-len(tree.Roots()) {
		t.Errorf("edges = %d, want %d", n, tree.Len()-len(tree.Roots()))
	}
}

func TestDOTPlainLabels(t *testing.T) {
	dot := testTree(t).DOT(DOTOptions{})
	if strings.Contains(dot, "aka ") || strings.Contains(dot, "+ ") {
		t.Errorf("plain DOT has details:\n%s", dot)
	}
}
