package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"wander/internal/model"
	"wander/internal/util"
)

// PlaceDetailModel represents the place detail pane.
type PlaceDetailModel struct {
	place    model.Place
	favorite bool

	photo        string
	photoPending bool
}

// NewPlaceDetailModel creates a detail pane for p. photoPending is true while
// a photo lookup is running.
func NewPlaceDetailModel(p model.Place, favorite, photoPending bool) *PlaceDetailModel {
	return &PlaceDetailModel{place: p, favorite: favorite, photoPending: photoPending}
}

func (m *PlaceDetailModel) Place() model.Place { return m.place }

// SetPhoto installs the rendered photo when it belongs to this place.
func (m *PlaceDetailModel) SetPhoto(msg model.PhotoLoadedMsg) {
	if msg.PlaceID != m.place.ID {
		return
	}
	m.photo = msg.Art
	m.photoPending = false
}

func (m *PlaceDetailModel) SetFavorite(v bool) { m.favorite = v }

// PhotoRows is the height reserved for the photo at the given pane height.
func PhotoRows(height int) int {
	return max(0, min(16, height/2-2))
}

// View renders the place detail.
func (m *PlaceDetailModel) View(width, height int) string {
	p := m.place

	shortcuts := HelpDescStyle.Render("f favorite  c center here  h back")
	header := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Right).
		Render(shortcuts)

	var sections []string

	switch {
	case m.photo != "":
		sections = append(sections, m.photo)
	case m.photoPending:
		sections = append(sections, EmptyStateStyle.Padding(0).Render("Loading photo..."))
	case p.PhotoRef == "":
		sections = append(sections, EmptyStateStyle.Padding(0).Render("No photo"))
	}

	var fields []string
	name := p.Name
	if m.favorite {
		name += " " + lipgloss.NewStyle().Foreground(ColorYellow).Render("♥")
	}
	fields = append(fields, renderField("Name", name))
	fields = append(fields, renderField("Rating",
		lipgloss.NewStyle().Foreground(ColorYellow).Render(util.FormatRatingStars(p.Rating))+" "+
			util.FormatReviews(p.Rating, p.RatingCount)))
	if d := util.FormatDistance(p.DistanceKm); d != "" {
		fields = append(fields, renderField("Distance", d))
	}
	fields = append(fields, renderField("Vicinity", p.Vicinity))
	fields = append(fields, renderField("Location", p.Location.String()))
	sections = append(sections, strings.Join(fields, "\n"))

	info := PanelStyle.
		Width(max(10, width-4)).
		Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(lipgloss.Left, header, info)
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}
