package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wander/internal/model"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, overlay bool, width int) string {
	if mode == model.ModeInsert {
		return renderFormHelp(width)
	}
	if overlay {
		return renderOverlayHelp(width)
	}

	switch screen {
	case model.ScreenPlaceDetail:
		return renderPlaceDetailHelp(width)
	default:
		return renderExploreHelp(width)
	}
}

func renderExploreHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("HJKL", "pan"),
		helpKey("+/-", "zoom"),
		helpKey("right-click", "set center"),
		helpKey("s", "search"),
		helpKey("m", "more"),
		helpKey("/", "options"),
		helpKey("o", "sort"),
		helpKey("F", "favorites"),
		helpKey("p", "my position"),
		helpKey("?", "help"),
	}
	return renderHelpLine(keys, width)
}

func renderOverlayHelp(width int) string {
	keys := []string{
		helpKey("enter", "set center here"),
		helpKey("esc", "dismiss"),
	}
	return renderHelpLine(keys, width)
}

func renderPlaceDetailHelp(width int) string {
	keys := []string{
		helpKey("h/esc", "back"),
		helpKey("f", "toggle favorite"),
		helpKey("c", "center here"),
		helpKey("u/ctrl+r", "undo/redo"),
	}
	return renderHelpLine(keys, width)
}

func renderFormHelp(width int) string {
	keys := []string{
		helpKey("tab", "next field"),
		helpKey("←/→", "change"),
		helpKey("enter", "search"),
		helpKey("esc", "cancel"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Map"),
		helpSection([]helpItem{
			{"H J K L / shift+arrows", "Pan the map"},
			{"+ / -", "Zoom in / out"},
			{"right-click", "Open \"Set center here\""},
			{"left-click pin", "Select a place"},
			{"p", "Center on my position"},
		}),
		titleSection("Results"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"gg", "Jump to top"},
			{"G", "Jump to bottom"},
			{"ctrl+d / ctrl+u", "Half page down / up"},
			{"enter / l", "Open place detail"},
			{"s", "Search this area"},
			{"m", "Load more results"},
			{"r", "Retry a failed search"},
			{"o", "Cycle sort: relevance, distance, rating"},
			{"tab", "Show / hide results"},
		}),
		titleSection("Favorites"),
		helpSection([]helpItem{
			{"F", "Toggle favorites view"},
			{"f", "Save / remove the current place"},
			{"u / ctrl+r", "Undo / redo"},
		}),
		titleSection("Search options"),
		helpSection([]helpItem{
			{"/", "Open search options"},
			{"tab / shift+tab", "Next / previous field"},
			{"← / →", "Change type or sort"},
			{"enter", "Search"},
			{"esc", "Cancel"},
		}),
		titleSection("General"),
		helpSection([]helpItem{
			{"?", "Toggle help"},
			{"q", "Quit"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
