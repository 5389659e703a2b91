package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/matzehuels/partimport/pkg/category"
	"github.com/matzehuels/partimport/pkg/parameter"
	"github.com/matzehuels/partimport/pkg/part"
	"github.com/matzehuels/partimport/pkg/pipeline"
)

var headerStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func writeKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Resolved Parts
// =============================================================================

// writeResolved prints the outcome of resolving one part.
func writeResolved(w io.Writer, key string, p *part.Resolved, out pipeline.Outcome) {
	fmt.Fprintf(w, "%s %s %s\n", resultIcon(out.Result), StyleTitle.Render(key), resultStyle(out.Result).Render(out.Result.String()))

	if p == nil {
		if out.Category.Reason != "" {
			writeKeyValue(w, "reason", string(out.Category.Reason))
		}
		if out.Err != nil {
			writeKeyValue(w, "error", out.Err.Error())
		}
		return
	}

	writeKeyValue(w, "category", category.JoinPath(p.CategoryPath))
	if p.MPN != "" {
		writeKeyValue(w, "mpn", p.MPN)
	}
	if p.Manufacturer != "" {
		writeKeyValue(w, "manufacturer", p.Manufacturer)
	}
	if p.Description != "" {
		writeKeyValue(w, "description", p.Description)
	}

	if len(p.Parameters) > 0 {
		names := make([]string, 0, len(p.Parameters))
		for name := range p.Parameters {
			names = append(names, name)
		}
		slices.Sort(names)
		t := newTable("Parameter", "Value", "Raw")
		for _, name := range names {
			v := p.Parameters[name]
			raw := ""
			if v.Raw != v.Text {
				raw = v.Raw
			}
			t.Row(name, v.Text, raw)
		}
		fmt.Fprintln(w, t.Render())
	}

	if len(p.Unassigned) > 0 {
		fmt.Fprintln(w, StyleWarning.Render("unassigned: "+strings.Join(p.Unassigned, ", ")))
	}
	for _, s := range out.Skipped {
		fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("skipped %q: %s", s.Name, s.Reason)))
	}
	for _, msg := range p.Warnings {
		fmt.Fprintln(w, StyleWarning.Render("warning: "+msg))
	}
	for _, f := range p.HookErrors {
		fmt.Fprintln(w, StyleError.Render(fmt.Sprintf("hook %s failed: %s", f.Hook, f.Error)))
	}
}

// writeReport lists the items of a batch that did not fully succeed.
func writeReport(w io.Writer, report *pipeline.Report) {
	var rows [][]string
	for _, item := range report.Items {
		if item.Outcome.Result == part.Success {
			continue
		}
		detail := string(item.Outcome.Category.Reason)
		switch {
		case item.Outcome.Err != nil:
			detail = item.Outcome.Err.Error()
		case item.Part != nil && len(item.Part.Unassigned) > 0:
			detail = "unassigned: " + strings.Join(item.Part.Unassigned, ", ")
		}
		rows = append(rows, []string{
			fmt.Sprint(item.Index + 1),
			item.Key,
			resultStyle(item.Outcome.Result).Render(item.Outcome.Result.String()),
			detail,
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(w, newTable("#", "Part", "Result", "Detail").Rows(rows...).Render())
	}
	fmt.Fprintln(w, formatCounts(report.Counts(), report.Ignored()))
}

// =============================================================================
// Taxonomy
// =============================================================================

type treeOptions struct {
	Aliases    bool
	Parameters bool
}

// writeTree prints the taxonomy. Structural categories are marked with a
// trailing slash, ignored subtrees are dimmed.
func writeTree(w io.Writer, t *category.Tree, opts treeOptions) {
	root := tree.New().
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
	for _, id := range t.Roots() {
		root.Child(subtree(t, id, opts))
	}
	fmt.Fprintln(w, root.String())
}

func subtree(t *category.Tree, id category.ID, opts treeOptions) any {
	label := categoryLabel(t, id, opts)
	children := t.Children(id)
	if len(children) == 0 {
		return label
	}
	st := tree.Root(label).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
	for _, c := range children {
		st.Child(subtree(t, c, opts))
	}
	return st
}

func categoryLabel(t *category.Tree, id category.ID, opts treeOptions) string {
	n := t.Node(id)
	name := n.Name
	style := StyleValue
	switch {
	case t.IsIgnored(id):
		style = StyleDim
	case n.Structural:
		name += "/"
		style = StyleHighlight
	}
	label := style.Render(name)
	if opts.Aliases && len(n.Aliases) > 0 {
		label += " " + StyleDim.Render("("+strings.Join(n.Aliases, ", ")+")")
	}
	if opts.Parameters && len(n.Parameters) > 0 {
		label += " " + StyleNumber.Render("+"+strings.Join(n.Parameters, ", +"))
	}
	return label
}

// writeParameters prints the parameter schema.
func writeParameters(w io.Writer, defs []parameter.Definition) {
	t := newTable("Parameter", "Unit", "Aliases", "Description")
	for _, d := range defs {
		t.Row(d.Name, d.Unit, strings.Join(d.Aliases, ", "), d.Description)
	}
	fmt.Fprintln(w, t.Render())
}

// writeSuggestions prints ranked category suggestions.
func writeSuggestions(w io.Writer, suggestions []category.Suggestion) {
	t := newTable("#", "Category", "Score")
	for i, s := range suggestions {
		t.Row(fmt.Sprint(i+1), category.JoinPath(s.Path), fmt.Sprintf("%.2f", s.Score))
	}
	fmt.Fprintln(w, t.Render())
}
