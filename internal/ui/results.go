package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wander/internal/model"
	"wander/internal/search"
	"wander/internal/util"
)

// cardHeight is the rows one result card occupies, including the gap.
const cardHeight = 4

const (
	textIdle          = "Click in the map to start searching"
	textIdleLocated   = "Press s to search this area"
	textLoading       = "Searching nearby places..."
	textNoResults     = "No results found"
	textNoFavorites   = "No favorites yet"
	textError         = "Something went wrong..."
	footerLoadMore    = "Load more"
	footerLoadingMore = "Searching..."
	footerRefreshing  = "Refreshing..."
	footerNoMore      = "No more results"
)

// resultsState is everything the results placeholder depends on.
type resultsState struct {
	Mode        model.ViewMode
	HasLocation bool
	Status      search.Status
	Count       int
}

// resultsText returns the placeholder shown instead of the list, or "" when
// the list itself should be drawn.
func resultsText(s resultsState) string {
	if s.Mode == model.ViewFavorites {
		if s.Count == 0 {
			return textNoFavorites
		}
		return ""
	}
	if s.Count > 0 {
		return ""
	}
	switch s.Status {
	case search.StatusIdle:
		if s.HasLocation {
			return textIdleLocated
		}
		return textIdle
	case search.StatusFetchingFirst:
		return textLoading
	case search.StatusError:
		return textError
	default:
		return textNoResults
	}
}

// footerState is what the pagination line needs from the fetcher.
type footerState struct {
	Status       search.Status
	FetchingNext bool
	HasNext      bool
}

// footerText is the pagination line under a search list. A first page in
// flight over a shown list is a refetch.
func footerText(s footerState) string {
	switch {
	case s.FetchingNext:
		return footerLoadingMore
	case s.Status == search.StatusFetchingFirst:
		return footerRefreshing
	case s.Status == search.StatusError:
		return textError + " press r to retry"
	case s.HasNext:
		return footerLoadMore
	case s.Status == search.StatusExhausted:
		return footerNoMore
	default:
		return ""
	}
}

// ResultsModel is the scrollable list of place cards.
type ResultsModel struct {
	places   []model.Place
	cursor   int
	offset   int
	selected string

	viewportHeight int
}

func NewResultsModel() *ResultsModel {
	return &ResultsModel{}
}

// SetPlaces replaces the list, keeping the cursor on the same place when it
// is still present.
func (m *ResultsModel) SetPlaces(places []model.Place) {
	var current string
	if p, ok := m.Current(); ok {
		current = p.ID
	}
	m.places = places
	m.cursor = 0
	for i, p := range places {
		if p.ID == current {
			m.cursor = i
			break
		}
	}
	m.clamp()
}

func (m *ResultsModel) Places() []model.Place { return m.places }

func (m *ResultsModel) Len() int { return len(m.places) }

// Current returns the place under the cursor.
func (m *ResultsModel) Current() (model.Place, bool) {
	if m.cursor < 0 || m.cursor >= len(m.places) {
		return model.Place{}, false
	}
	return m.places[m.cursor], true
}

// Find returns the place with the given id.
func (m *ResultsModel) Find(id string) (model.Place, bool) {
	for _, p := range m.places {
		if p.ID == id {
			return p, true
		}
	}
	return model.Place{}, false
}

// SetSelected marks the highlighted card.
func (m *ResultsModel) SetSelected(id string) { m.selected = id }

// FocusID moves the cursor to the given place.
func (m *ResultsModel) FocusID(id string) bool {
	for i, p := range m.places {
		if p.ID == id {
			m.cursor = i
			m.ensureVisible()
			return true
		}
	}
	return false
}

// ItemAt maps a row inside the list area to the card drawn there.
func (m *ResultsModel) ItemAt(row int) (string, bool) {
	if row < 0 {
		return "", false
	}
	idx := m.offset + row/cardHeight
	if row%cardHeight == cardHeight-1 || idx >= len(m.places) {
		return "", false
	}
	return m.places[idx].ID, true
}

// View renders the cards that fit in height rows.
func (m *ResultsModel) View(width, height int) string {
	perPage := max(1, height/cardHeight)
	m.viewportHeight = perPage
	m.ensureVisible()

	var cards []string
	for i := m.offset; i < len(m.places) && i < m.offset+perPage; i++ {
		cards = append(cards, m.renderCard(m.places[i], width, i == m.cursor))
	}
	return strings.Join(cards, "\n")
}

func (m *ResultsModel) renderCard(p model.Place, width int, focused bool) string {
	nameStyle := NormalRowStyle.Bold(true)
	if focused {
		nameStyle = SelectedRowStyle
	}
	marker := "  "
	if p.ID == m.selected {
		marker = lipgloss.NewStyle().Foreground(ColorYellow).Render("▌ ")
	}

	inner := max(4, width-2)
	name := nameStyle.Render(util.TruncateString(p.Name, inner))

	rating := lipgloss.NewStyle().Foreground(ColorYellow).Render(util.FormatRatingStars(p.Rating)) +
		" " + HelpDescStyle.Render(util.FormatReviews(p.Rating, p.RatingCount))

	where := p.Vicinity
	if d := util.FormatDistance(p.DistanceKm); d != "" {
		if where != "" {
			where = d + " · " + where
		} else {
			where = d
		}
	}
	where = HelpDescStyle.Render(util.TruncateString(where, inner))

	lines := []string{marker + name, marker + rating, marker + where, ""}
	return strings.Join(lines, "\n")
}

// Status is the "row x/y" summary for the panel footer.
func (m *ResultsModel) Status() string {
	if len(m.places) == 0 {
		return ""
	}
	return fmt.Sprintf("%d/%d", m.cursor+1, len(m.places))
}

func (m *ResultsModel) clamp() {
	if m.cursor >= len(m.places) {
		m.cursor = len(m.places) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

func (m *ResultsModel) ensureVisible() {
	vh := m.viewportHeight
	if vh == 0 {
		vh = 5
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+vh {
		m.offset = m.cursor - vh + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// MoveDown moves the cursor down.
func (m *ResultsModel) MoveDown() {
	if m.cursor < len(m.places)-1 {
		m.cursor++
		m.ensureVisible()
	}
}

// MoveUp moves the cursor up.
func (m *ResultsModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		m.ensureVisible()
	}
}

// AtBottom reports whether the cursor is on the last card.
func (m *ResultsModel) AtBottom() bool {
	return len(m.places) > 0 && m.cursor == len(m.places)-1
}

// JumpToTop jumps to the first item.
func (m *ResultsModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last item.
func (m *ResultsModel) JumpToBottom() {
	if len(m.places) > 0 {
		m.cursor = len(m.places) - 1
		m.ensureVisible()
	}
}

// HalfPageDown moves down half a page.
func (m *ResultsModel) HalfPageDown() {
	m.cursor += max(1, m.viewportHeight/2)
	if m.cursor >= len(m.places) {
		m.cursor = len(m.places) - 1
	}
	m.clamp()
}

// HalfPageUp moves up half a page.
func (m *ResultsModel) HalfPageUp() {
	m.cursor -= max(1, m.viewportHeight/2)
	m.clamp()
}
