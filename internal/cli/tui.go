package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/partimport/pkg/category"
	"github.com/matzehuels/partimport/pkg/parameter"
	"github.com/matzehuels/partimport/pkg/part"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// CategoryPickerModel - manual categorization of unmatched parts
// =============================================================================

// pickerAction is what the user decided for a part.
type pickerAction int

const (
	pickerSkip pickerAction = iota
	pickerSelect
	pickerSelectAndLearn
	pickerAbort
)

// CategoryPickerModel is the bubbletea model that asks the user to place a
// part whose supplier category matched nothing. Candidates are the ranked
// suggestions; typing filters them.
type CategoryPickerModel struct {
	Part        *part.Raw
	Suggestions []category.Suggestion
	Cursor      int
	Filter      string

	action pickerAction
	chosen []string
}

// NewCategoryPickerModel creates a picker for raw.
func NewCategoryPickerModel(raw *part.Raw, suggestions []category.Suggestion) CategoryPickerModel {
	return CategoryPickerModel{Part: raw, Suggestions: suggestions}
}

// visible returns the suggestions matching the filter.
func (m CategoryPickerModel) visible() []category.Suggestion {
	if m.Filter == "" {
		return m.Suggestions
	}
	f := strings.ToLower(m.Filter)
	var out []category.Suggestion
	for _, s := range m.Suggestions {
		if strings.Contains(strings.ToLower(category.JoinPath(s.Path)), f) {
			out = append(out, s)
		}
	}
	return out
}

func (m CategoryPickerModel) Init() tea.Cmd {
	return nil
}

func (m CategoryPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	visible := m.visible()

	switch key.Type {
	case tea.KeyCtrlC:
		m.action = pickerAbort
		return m, tea.Quit
	case tea.KeyEsc:
		m.action = pickerSkip
		return m, tea.Quit
	case tea.KeyUp:
		if m.Cursor > 0 {
			m.Cursor--
		}
	case tea.KeyDown:
		if m.Cursor < len(visible)-1 {
			m.Cursor++
		}
	case tea.KeyEnter, tea.KeyTab:
		if len(visible) == 0 {
			return m, nil
		}
		m.chosen = visible[m.Cursor].Path
		m.action = pickerSelect
		if key.Type == tea.KeyTab {
			m.action = pickerSelectAndLearn
		}
		return m, tea.Quit
	case tea.KeyBackspace:
		if m.Filter != "" {
			m.Filter = m.Filter[:len(m.Filter)-1]
			m.Cursor = 0
		}
	case tea.KeyRunes, tea.KeySpace:
		m.Filter += key.String()
		m.Cursor = 0
	}
	return m, nil
}

func (m CategoryPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Category for " + m.Part.Key()))
	b.WriteString("\n")
	if m.Part.MPN != "" {
		b.WriteString(listDimStyle.Render(m.Part.MPN + "  " + m.Part.Description))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render("supplier category: " + category.JoinPath(m.Part.CategoryPath)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  ⇥ select and remember alias  esc skip"))
	b.WriteString("\n\n")

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(listDimStyle.Render("  no matching category"))
		b.WriteString("\n")
	}
	for i, s := range visible {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(style.Render(cursor + category.JoinPath(s.Path)))
		b.WriteString("  " + listDimStyle.Render(fmt.Sprintf("%.2f", s.Score)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("filter: ") + m.Filter)
	return b.String()
}

// =============================================================================
// ParameterPickerModel - manual value for unmatched category parameters
// =============================================================================

// ParameterPickerModel asks the user for the value of a category parameter
// no supplier parameter matched. Candidates are the part's raw parameters,
// best match first. Typing enters a value by hand.
type ParameterPickerModel struct {
	Part       *part.Raw
	Name       string
	Candidates []parameter.Candidate
	Cursor     int
	Input      string

	action pickerAction
	value  string
	alias  string
}

// NewParameterPickerModel creates a picker for parameter name of raw.
func NewParameterPickerModel(raw *part.Raw, name string, candidates []parameter.Candidate) ParameterPickerModel {
	return ParameterPickerModel{Part: raw, Name: name, Candidates: candidates}
}

func (m ParameterPickerModel) Init() tea.Cmd {
	return nil
}

func (m ParameterPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC:
		m.action = pickerAbort
		return m, tea.Quit
	case tea.KeyEsc:
		m.action = pickerSkip
		return m, tea.Quit
	case tea.KeyUp:
		if m.Cursor > 0 {
			m.Cursor--
		}
	case tea.KeyDown:
		if m.Cursor < len(m.Candidates)-1 {
			m.Cursor++
		}
	case tea.KeyEnter, tea.KeyTab:
		if v := strings.TrimSpace(m.Input); v != "" {
			m.value = v
			m.action = pickerSelect
			return m, tea.Quit
		}
		if len(m.Candidates) == 0 {
			return m, nil
		}
		c := m.Candidates[m.Cursor]
		m.value = c.Value
		m.action = pickerSelect
		if key.Type == tea.KeyTab {
			m.alias = c.Name
			m.action = pickerSelectAndLearn
		}
		return m, tea.Quit
	case tea.KeyBackspace:
		if m.Input != "" {
			r := []rune(m.Input)
			m.Input = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.Input += key.String()
	}
	return m, nil
}

func (m ParameterPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select " + m.Name + " for " + m.Part.Key()))
	b.WriteString("\n")
	if m.Part.MPN != "" {
		b.WriteString(listDimStyle.Render(m.Part.MPN + "  " + m.Part.Description))
		b.WriteString("\n")
	}
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  ⇥ select and remember alias  esc skip"))
	b.WriteString("\n\n")

	if len(m.Candidates) == 0 {
		b.WriteString(listDimStyle.Render("  no supplier parameters"))
		b.WriteString("\n")
	}
	width := 0
	for _, c := range m.Candidates {
		width = max(width, lipgloss.Width(c.Value))
	}
	for i, c := range m.Candidates {
		cursor := "  "
		style := listNormalStyle
		if i == m.Cursor && m.Input == "" {
			cursor = "▸ "
			style = listSelectedStyle
		}
		pad := strings.Repeat(" ", width-lipgloss.Width(c.Value))
		b.WriteString(style.Render(cursor + c.Value + pad))
		b.WriteString("  " + listDimStyle.Render("| "+c.Name))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("value: ") + m.Input)
	return b.String()
}
