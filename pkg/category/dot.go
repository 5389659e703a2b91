package category

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// DOTOptions configures [Tree.DOT].
type DOTOptions struct {
	// Parameters adds each node's own parameters to its label.
	Parameters bool
	// Aliases adds each node's aliases to its label.
	Aliases bool
}

// DOT renders the taxonomy as a Graphviz digraph. Structural categories are
// drawn dashed and ignored subtrees grey.
func (t *Tree) DOT(opts DOTOptions) string {
	var buf bytes.Buffer
	buf.WriteString("digraph categories {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for n := range t.Walk() {
		attrs := []string{fmt.Sprintf("label=%q", t.label(n, opts))}
		switch {
		case t.ignored[n.ID]:
			attrs = append(attrs, "style=\"rounded,filled\"", "fillcolor=lightgrey", "fontcolor=grey40")
		case n.Structural:
			attrs = append(attrs, "style=\"rounded,filled,dashed\"")
		}
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for n := range t.Walk() {
		for _, c := range n.Children {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", n.ID, c)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func (t *Tree) label(n *Node, opts DOTOptions) string {
	lines := []string{n.Name}
	if opts.Aliases && len(n.Aliases) > 0 {
		lines = append(lines, "aka "+strings.Join(n.Aliases, ", "))
	}
	if opts.Parameters && len(n.Parameters) > 0 {
		lines = append(lines, "+ "+strings.Join(n.Parameters, ", "))
	}
	return strings.Join(lines, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
