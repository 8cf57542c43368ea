package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wander/internal/model"
	"wander/internal/search"
	"wander/internal/util"
)

const (
	// SearchButtonLabel is drawn on the second row of the options summary.
	SearchButtonLabel = "[ Search ]"
	busyButtonLabel   = "[ Searching… ]"

	// optionsSummaryRows is the height of the collapsed options block.
	optionsSummaryRows = 3

	maxRadius = 50000
)

// SearchOptions are the user-editable parts of a search.
type SearchOptions struct {
	Keyword string
	Radius  int
	Type    model.SearchType
	Sort    model.SortOption
}

type searchOptionsSubmittedMsg struct {
	Options SearchOptions
}

type formCancelledMsg struct{}

const (
	fieldKeyword = iota
	fieldRadius
	fieldType
	fieldSort
	fieldCount
)

// SearchOptionsModel is the search options form.
type SearchOptionsModel struct {
	keys         FormKeyMap
	focusedField int
	keyword      textinput.Model
	radius       textinput.Model
	typeIdx      int
	sort         model.SortOption
}

// NewSearchOptionsModel creates the form prefilled with current.
func NewSearchOptionsModel(current SearchOptions) *SearchOptionsModel {
	keyword := textinput.New()
	keyword.Placeholder = "Keyword (optional)"
	keyword.CharLimit = 80
	keyword.SetValue(current.Keyword)
	keyword.Focus()

	radius := textinput.New()
	radius.Placeholder = "Radius in meters"
	radius.CharLimit = 5
	radius.SetValue(strconv.Itoa(current.Radius))

	typeIdx := 0
	for i, t := range model.SearchTypes {
		if t == current.Type {
			typeIdx = i
			break
		}
	}

	sort := current.Sort
	if sort == "" {
		sort = model.SortRelevance
	}

	return &SearchOptionsModel{
		keys:    DefaultFormKeyMap(),
		keyword: keyword,
		radius:  radius,
		typeIdx: typeIdx,
		sort:    sort,
	}
}

// Update handles input.
func (m SearchOptionsModel) Update(msg tea.KeyMsg) (SearchOptionsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m, func() tea.Msg { return formCancelledMsg{} }
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	case key.Matches(msg, m.keys.NextField):
		m.setFocus((m.focusedField + 1) % fieldCount)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.setFocus((m.focusedField + fieldCount - 1) % fieldCount)
		return m, nil
	}

	switch m.focusedField {
	case fieldType:
		if key.Matches(msg, m.keys.Cycle) || msg.String() == " " {
			step := 1
			if msg.String() == "left" {
				step = len(model.SearchTypes) - 1
			}
			m.typeIdx = (m.typeIdx + step) % len(model.SearchTypes)
		}
		return m, nil
	case fieldSort:
		if key.Matches(msg, m.keys.Cycle) || msg.String() == " " {
			m.sort = search.NextSortOption(m.sort)
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focusedField == fieldKeyword {
		m.keyword, cmd = m.keyword.Update(msg)
	} else {
		m.radius, cmd = m.radius.Update(msg)
	}
	return m, cmd
}

func (m *SearchOptionsModel) setFocus(field int) {
	m.keyword.Blur()
	m.radius.Blur()
	m.focusedField = field
	switch field {
	case fieldKeyword:
		m.keyword.Focus()
	case fieldRadius:
		m.radius.Focus()
	}
}

// Options validates the form.
func (m *SearchOptionsModel) Options() (SearchOptions, error) {
	raw := strings.TrimSpace(m.radius.Value())
	radius, err := strconv.Atoi(raw)
	if err != nil || radius <= 0 {
		return SearchOptions{}, fmt.Errorf("radius must be a positive number of meters")
	}
	if radius > maxRadius {
		return SearchOptions{}, fmt.Errorf("radius must be at most %d meters", maxRadius)
	}
	return SearchOptions{
		Keyword: strings.TrimSpace(m.keyword.Value()),
		Radius:  radius,
		Type:    model.SearchTypes[m.typeIdx],
		Sort:    m.sort,
	}, nil
}

func (m *SearchOptionsModel) save() tea.Cmd {
	opts, err := m.Options()
	return func() tea.Msg {
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return searchOptionsSubmittedMsg{Options: opts}
	}
}

// View renders the form.
func (m *SearchOptionsModel) View(width, height int) string {
	fieldWidth := max(10, width-8)
	m.keyword.Width = fieldWidth
	m.radius.Width = fieldWidth

	fields := []string{
		renderFormField("Keyword", m.keyword.View(), m.focusedField == fieldKeyword),
		renderFormField("Radius (m)", m.radius.View(), m.focusedField == fieldRadius),
		renderFormField("Type", cycleValue(typeLabel(model.SearchTypes[m.typeIdx]), m.focusedField == fieldType), m.focusedField == fieldType),
		renderFormField("Sort by", cycleValue(string(m.sort), m.focusedField == fieldSort), m.focusedField == fieldSort),
	}

	return PanelStyle.
		Width(max(10, width-4)).
		Render(strings.Join(fields, "\n"))
}

func cycleValue(v string, focused bool) string {
	if focused {
		return "‹ " + v + " ›"
	}
	return v
}

func renderFormField(label, input string, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, LabelStyle.Render(label), input))
}

func typeLabel(t model.SearchType) string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// renderOptionsSummary is the collapsed options block: one summary line and
// the search button.
func renderOptionsSummary(opts SearchOptions, busy bool, width int) string {
	parts := []string{typeLabel(opts.Type), util.FormatRadius(opts.Radius), "sort " + string(opts.Sort)}
	if opts.Keyword != "" {
		parts = append([]string{"“" + opts.Keyword + "”"}, parts...)
	}
	summary := HelpDescStyle.Render(util.TruncateString(strings.Join(parts, " · "), max(4, width-2)))

	button := ButtonStyle.Render(SearchButtonLabel)
	if busy {
		button = ButtonBusyStyle.Render(busyButtonLabel)
	}
	return lipgloss.JoinVertical(lipgloss.Left, " "+summary, " "+button, "")
}
