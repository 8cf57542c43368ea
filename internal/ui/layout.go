package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wander/internal/model"
	"wander/internal/util"
)

const (
	headerRows = 2 // title plus its bottom border
	statusRows = 1
	footerRows = 2 // help line plus its top border

	minPanelWidth = 30
	maxPanelWidth = 48
	minMapWidth   = 20
)

// layout is the screen geometry for one frame. Rows are relative to the
// top of the body unless noted.
type layout struct {
	bodyTop    int // absolute row
	bodyHeight int
	mapWidth   int

	panelX     int // absolute column of the panel content
	panelWidth int // 0 when the panel is hidden

	optionsRows int
	listTop     int
	listHeight  int
}

func (m *Model) panelVisible() bool {
	return m.screen != model.ScreenExplore ||
		m.store.ShowResults.Get() ||
		m.store.ShowSearchOptions.Get()
}

func (m *Model) layout() layout {
	l := layout{
		bodyTop:    headerRows,
		bodyHeight: max(1, m.height-headerRows-statusRows-footerRows),
		mapWidth:   m.width,
	}
	if !m.panelVisible() {
		return l
	}

	pw := min(max(m.width*2/5, minPanelWidth), maxPanelWidth)
	if m.width-pw < minMapWidth {
		pw = m.width / 2
	}
	l.mapWidth = m.width - pw
	l.panelX = l.mapWidth + 1
	l.panelWidth = pw - 1

	if m.store.ShowSearchOptions.Get() {
		l.optionsRows = optionsSummaryRows
	}
	l.listTop = l.optionsRows + 1
	l.listHeight = max(0, l.bodyHeight-l.listTop-1)
	return l
}

// handleMouse turns a terminal click into a pointer event, lets the global
// observers see it first and then performs the click's own action.
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || m.showingHelp {
		return m, nil
	}
	l := m.layout()

	var button model.Button
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if msg.X < l.mapWidth {
			m.mapw.ZoomIn()
		} else {
			m.results.MoveUp()
		}
		return m, nil
	case tea.MouseButtonWheelDown:
		if msg.X < l.mapWidth {
			m.mapw.ZoomOut()
			return m, nil
		}
		m.results.MoveDown()
		if m.results.AtBottom() {
			return m, m.loadMore()
		}
		return m, nil
	case tea.MouseButtonLeft:
		button = model.ButtonLeft
	case tea.MouseButtonRight:
		button = model.ButtonRight
	default:
		return m, nil
	}

	ev := m.pointerEvent(l, button, msg.X, msg.Y)
	m.observer.Dispatch(ev)

	if button != model.ButtonLeft || m.mode == model.ModeInsert {
		return m, nil
	}
	return m.handleClick(l, ev, msg.Y-l.bodyTop)
}

func (m *Model) pointerEvent(l layout, button model.Button, x, y int) model.PointerEvent {
	ev := model.PointerEvent{Button: button, Region: model.RegionNone}
	row := y - l.bodyTop
	if row < 0 || row >= l.bodyHeight {
		return ev
	}

	if x < l.mapWidth {
		ev.Region = m.mapw.RegionAt(x, row)
		if g, ok := m.mapw.GeoAt(x, row); ok {
			ev.At = &g
		}
		if ev.Region == model.RegionMapPin {
			ev.PlaceID, _ = m.mapw.PinAt(x, row)
		}
		return ev
	}
	if l.panelWidth == 0 || x < l.panelX {
		return ev
	}

	col := x - l.panelX
	ev.Region = model.RegionPanel
	switch m.screen {
	case model.ScreenPlaceDetail:
		// Header line, then the panel border, then the photo.
		if photo := PhotoRows(l.bodyHeight); row >= 2 && row < 2+photo && m.detail != nil && m.detail.photo != "" {
			ev.Region = model.RegionImage
		} else {
			ev.Region = model.RegionCard
		}
		if m.detail != nil {
			ev.PlaceID = m.detail.Place().ID
		}
	case model.ScreenExplore:
		if row < l.optionsRows {
			if row == 1 && col >= 1 && col < 1+lipgloss.Width(SearchButtonLabel) {
				ev.Region = model.RegionSearchButton
			}
			return ev
		}
		if m.store.ShowResults.Get() && row >= l.listTop && row < l.listTop+l.listHeight && m.listPlaceholder() == "" {
			if id, ok := m.results.ItemAt(row - l.listTop); ok {
				ev.Region = model.RegionCard
				ev.PlaceID = id
			}
		}
	}
	return ev
}

func (m Model) handleClick(l layout, ev model.PointerEvent, row int) (Model, tea.Cmd) {
	switch ev.Region {
	case model.RegionOverlayConfirm:
		m.recenterPending = true
		m.overlay.Confirm()

	case model.RegionMapPin:
		m.mapSet.clicked.Set(ev.PlaceID)
		m.mapSet.selected.Set(ev.PlaceID)
		m.results.FocusID(ev.PlaceID)
		m.results.SetSelected(ev.PlaceID)
		m.listSet.showResults.Set(true)

	case model.RegionCard:
		if ev.PlaceID == "" || m.screen != model.ScreenExplore {
			return m, nil
		}
		if m.store.SelectedPlace.Get() == ev.PlaceID {
			if p, ok := m.results.Find(ev.PlaceID); ok {
				return m, m.openDetail(p)
			}
		}
		m.results.FocusID(ev.PlaceID)
		m.selectPlace(ev.PlaceID)

	case model.RegionSearchButton:
		return m, m.searchNow()

	case model.RegionPanel:
		if m.screen == model.ScreenExplore && row == l.listTop+l.listHeight && m.listFooter() == footerLoadMore {
			return m, m.loadMore()
		}
	}
	return m, nil
}

// listPlaceholder is the text drawn instead of the result cards, if any.
func (m *Model) listPlaceholder() string {
	return resultsText(resultsState{
		Mode:        m.orch.Mode(),
		HasLocation: m.orch.Point() != nil,
		Status:      m.fetcher.Status(),
		Count:       m.results.Len(),
	})
}

func (m *Model) listFooter() string {
	if m.orch.Mode() == model.ViewFavorites || m.results.Len() == 0 {
		return ""
	}
	return footerText(footerState{
		Status:       m.fetcher.Status(),
		FetchingNext: m.fetcher.IsFetchingNextPage(),
		HasNext:      m.fetcher.HasNextPage(),
	})
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	l := m.layout()

	breadcrumbParts := []string{"Explore"}
	if m.orch.Mode() == model.ViewFavorites {
		breadcrumbParts = []string{"Favorites"}
	}
	switch m.screen {
	case model.ScreenPlaceDetail:
		if m.detail != nil {
			breadcrumbParts = append(breadcrumbParts, m.detail.Place().Name)
		}
	case model.ScreenSearchOptions:
		breadcrumbParts = append(breadcrumbParts, "Search options")
	}
	header := m.renderHeader(breadcrumbParts)

	body := lipgloss.NewStyle().
		Width(l.mapWidth).
		Height(l.bodyHeight).
		MaxHeight(l.bodyHeight).
		Render(m.mapw.View())
	if l.panelWidth > 0 {
		panel := SidePanelStyle.
			Width(l.panelWidth).
			Height(l.bodyHeight).
			MaxHeight(l.bodyHeight).
			Render(m.renderPanel(l))
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
	}

	status := m.renderStatusLine()
	footer := RenderHelp(m.screen, m.mode, m.overlay.Active(), m.width)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, status, footer)
}

func (m Model) renderPanel(l layout) string {
	switch m.screen {
	case model.ScreenSearchOptions:
		if m.optionsForm != nil {
			return m.optionsForm.View(l.panelWidth, l.bodyHeight)
		}
	case model.ScreenPlaceDetail:
		if m.detail != nil {
			return m.detail.View(l.panelWidth, l.bodyHeight)
		}
	}

	var parts []string
	if l.optionsRows > 0 {
		parts = append(parts, renderOptionsSummary(m.options, m.store.SearchBusy.Get(), l.panelWidth))
	}
	parts = append(parts, m.renderListTitle(l.panelWidth))

	if !m.store.ShowResults.Get() {
		return strings.Join(parts, "\n")
	}

	listStyle := lipgloss.NewStyle().Height(l.listHeight).MaxHeight(l.listHeight)
	if text := m.listPlaceholder(); text != "" {
		parts = append(parts, listStyle.Render(EmptyStateStyle.Padding(1, 2).Render(text)))
	} else {
		parts = append(parts, listStyle.Render(m.results.View(l.panelWidth, l.listHeight)))
	}
	if footer := m.listFooter(); footer != "" {
		style := HelpDescStyle
		if footer == footerLoadMore {
			style = HelpKeyStyle.Underline(true)
		}
		parts = append(parts, " "+style.Render(footer))
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderListTitle(width int) string {
	title := "Results"
	if m.orch.Mode() == model.ViewFavorites {
		title = "Favorites"
	}
	meta := []string{"sort " + string(m.options.Sort)}
	if pos := m.results.Status(); pos != "" {
		meta = append([]string{pos}, meta...)
	}
	if !m.store.ShowResults.Get() {
		meta = append(meta, "hidden")
	}
	line := LabelStyle.Render(" "+title) + HelpDescStyle.Render(" · "+strings.Join(meta, " · "))
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

func (m Model) renderHeader(breadcrumbParts []string) string {
	title := HeaderStyle.Render("wander")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(util.TruncateString(part, 40))
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb

	zoom, _ := m.mapw.Zoom()
	center := "no location"
	if p := m.orch.Point(); p != nil {
		center = p.String()
	}
	right := BreadcrumbStyle.Render(fmt.Sprintf("%s · r %s · z%d", center, util.FormatRadius(m.options.Radius), zoom)) + "  "

	padding := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	headerContent := left + strings.Repeat(" ", padding) + right
	return TitleStyle.Width(m.width).Render(headerContent)
}

func (m Model) renderStatusLine() string {
	if m.error != "" {
		return ErrorStyle.Width(m.width).MaxHeight(1).Render("Error: " + m.error)
	}
	if m.info != "" {
		return SuccessStyle.Width(m.width).MaxHeight(1).Render(m.info)
	}

	parts := []string{"search " + m.fetcher.Status().String()}
	if q, ok := m.fetcher.Query(); ok && q.Keyword != "" {
		parts = append(parts, "“"+q.Keyword+"”")
	}
	if p := m.store.CurrentPosition.Get(); p != nil {
		parts = append(parts, "you are at "+p.String())
	}
	if len(m.favoritesData) > 0 {
		parts = append(parts, fmt.Sprintf("%d favorites", len(m.favoritesData)))
	}
	return StatusBarStyle.Width(m.width).MaxHeight(1).Render(strings.Join(parts, "  ·  "))
}
