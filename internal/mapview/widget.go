// Package mapview is a terminal map: a Web Mercator viewport of cells with a
// search radius, result pins and the right-click menu drawn over it.
package mapview

import (
	"math"
	"strings"

	"github.com/asim/quadtree"
	"github.com/charmbracelet/lipgloss"

	"wander/internal/location"
	"wander/internal/model"
)

// ConfirmLabel is the overlay menu's single action.
const ConfirmLabel = "[ Set center here ]"

var (
	DefaultCenter = model.GeoPoint{Lat: 35.6762, Lng: 139.6503}

	// LocatedZoom is used when the URL carries a location, DefaultZoom otherwise.
	LocatedZoom = 13
	DefaultZoom = 10
)

var (
	gridStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B473D"))
	radiusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DB8"))
	centerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D6E0D3")).Bold(true)
	pinStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	activePinStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f9e2af")).Bold(true)
	positionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1")).Bold(true)
	menuStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#1D221E")).Background(lipgloss.Color("#8FA082"))
)

// Widget is the map. It is not safe for concurrent use; the event loop owns it.
type Widget struct {
	center    model.GeoPoint
	zoom      int
	zoomKnown bool
	width     int
	height    int

	places []model.Place
	pins   *quadtree.QuadTree

	searchCenter *model.GeoPoint
	radius       int
	overlay      *model.GeoPoint
	position     *model.GeoPoint
	highlight    string
}

// New creates a map centered on the URL location when there is one.
func New(initial *model.GeoPoint) *Widget {
	w := &Widget{center: DefaultCenter, zoom: DefaultZoom}
	if initial != nil {
		w.center = *initial
		w.zoom = LocatedZoom
	}
	return w
}

// Resize sets the viewport in cells. The zoom is reported as known once the
// map has a size, the terminal analogue of the map having loaded.
func (w *Widget) Resize(width, height int) {
	w.width, w.height = width, height
	if width > 0 && height > 0 {
		w.zoomKnown = true
	}
}

func (w *Widget) Size() (int, int) { return w.width, w.height }

func (w *Widget) Center() model.GeoPoint { return w.center }

func (w *Widget) PanTo(p model.GeoPoint) {
	if p.Valid() {
		w.center = p
	}
}

func (w *Widget) Zoom() (int, bool) { return w.zoom, w.zoomKnown }

func (w *Widget) SetZoom(z int) {
	if z < MinZoom {
		z = MinZoom
	}
	if z > MaxZoom {
		z = MaxZoom
	}
	w.zoom = z
}

func (w *Widget) ZoomIn()  { w.SetZoom(w.zoom + 1) }
func (w *Widget) ZoomOut() { w.SetZoom(w.zoom - 1) }

// Pan moves the center by whole cells.
func (w *Widget) Pan(dx, dy int) {
	cx, cy := project(w.center, w.zoom)
	w.center = unproject(cx+float64(dx)*cellPx, cy+float64(dy)*cellPx*2, w.zoom)
}

// GeoAt returns the coordinate under a cell.
func (w *Widget) GeoAt(col, row int) (model.GeoPoint, bool) {
	if col < 0 || row < 0 || col >= w.width || row >= w.height {
		return model.GeoPoint{}, false
	}
	cx, cy := project(w.center, w.zoom)
	px := cx + (float64(col)+0.5-float64(w.width)/2)*cellPx
	py := cy + (float64(row)+0.5-float64(w.height)/2)*cellPx*2
	return unproject(px, py, w.zoom), true
}

// CellOf returns the cell containing p, if it is in view.
func (w *Widget) CellOf(p model.GeoPoint) (col, row int, ok bool) {
	cx, cy := project(w.center, w.zoom)
	px, py := project(p, w.zoom)
	col = int(math.Floor((px-cx)/cellPx + float64(w.width)/2))
	row = int(math.Floor((py-cy)/(cellPx*2) + float64(w.height)/2))
	ok = col >= 0 && row >= 0 && col < w.width && row < w.height
	return col, row, ok
}

// SetPins replaces the result pins.
func (w *Widget) SetPins(places []model.Place) {
	w.places = append([]model.Place(nil), places...)

	center := quadtree.NewPoint(0, 0, nil)
	half := quadtree.NewPoint(90, 180, nil)
	w.pins = quadtree.New(quadtree.NewAABB(center, half), 0, nil)
	for i := range w.places {
		p := &w.places[i]
		if !p.Location.Valid() {
			continue
		}
		w.pins.Insert(quadtree.NewPoint(p.Location.Lat, p.Location.Lng, p))
	}
}

// PinAt returns the place whose pin occupies a cell.
func (w *Widget) PinAt(col, row int) (string, bool) {
	if w.pins == nil {
		return "", false
	}
	g, ok := w.GeoAt(col, row)
	if !ok {
		return "", false
	}

	probe := quadtree.NewPoint(g.Lat, g.Lng, nil)
	half := probe.HalfPoint(metersPerCell(g.Lat, w.zoom) * 2)
	for _, pt := range w.pins.Search(quadtree.NewAABB(probe, half)) {
		p, ok := pt.Data().(*model.Place)
		if !ok {
			continue
		}
		if c, r, in := w.CellOf(p.Location); in && c == col && r == row {
			return p.ID, true
		}
	}
	return "", false
}

// SetRadius sets the search circle. A nil center hides it.
func (w *Widget) SetRadius(center *model.GeoPoint, meters int) {
	w.searchCenter = center
	w.radius = meters
}

// SetOverlay shows the right-click menu at p, or hides it when nil.
func (w *Widget) SetOverlay(p *model.GeoPoint) { w.overlay = p }

// SetPosition marks the device position.
func (w *Widget) SetPosition(p *model.GeoPoint) { w.position = p }

// SetHighlight draws one pin as active.
func (w *Widget) SetHighlight(placeID string) { w.highlight = placeID }

// menuSpan returns the cells covered by the overlay's confirm action.
func (w *Widget) menuSpan() (col, row, length int, ok bool) {
	if w.overlay == nil {
		return 0, 0, 0, false
	}
	c, r, in := w.CellOf(*w.overlay)
	if !in {
		return 0, 0, 0, false
	}
	length = len(ConfirmLabel)
	col = c + 1
	if col+length > w.width {
		col = c - length
	}
	if col < 0 {
		col = 0
	}
	return col, r, length, true
}

// RegionAt classifies a cell for pointer events.
func (w *Widget) RegionAt(col, row int) model.Region {
	if col < 0 || row < 0 || col >= w.width || row >= w.height {
		return model.RegionNone
	}
	if mc, mr, n, ok := w.menuSpan(); ok && row == mr && col >= mc && col < mc+n {
		return model.RegionOverlayConfirm
	}
	if _, ok := w.PinAt(col, row); ok {
		return model.RegionMapPin
	}
	return model.RegionMap
}

type cell struct {
	ch    string
	style *lipgloss.Style
}

// View renders the map.
func (w *Widget) View() string {
	if w.width <= 0 || w.height <= 0 {
		return ""
	}

	grid := make([][]cell, w.height)
	for r := range grid {
		grid[r] = make([]cell, w.width)
		for c := range grid[r] {
			grid[r][c] = cell{ch: " "}
			if c%6 == 0 && r%3 == 0 {
				grid[r][c] = cell{ch: "·", style: &gridStyle}
			}
		}
	}

	if w.searchCenter != nil && w.radius > 0 {
		band := metersPerCell(w.searchCenter.Lat, w.zoom) * 0.6
		for r := 0; r < w.height; r++ {
			for c := 0; c < w.width; c++ {
				g, _ := w.GeoAt(c, r)
				d := location.Haversine(*w.searchCenter, g) * 1000
				if math.Abs(d-float64(w.radius)) <= band {
					grid[r][c] = cell{ch: "∙", style: &radiusStyle}
				}
			}
		}
		if c, r, ok := w.CellOf(*w.searchCenter); ok {
			grid[r][c] = cell{ch: "+", style: &centerStyle}
		}
	}

	for _, p := range w.places {
		c, r, ok := w.CellOf(p.Location)
		if !ok {
			continue
		}
		if p.ID == w.highlight {
			grid[r][c] = cell{ch: "◆", style: &activePinStyle}
		} else if grid[r][c].style != &activePinStyle {
			grid[r][c] = cell{ch: "●", style: &pinStyle}
		}
	}

	if w.position != nil {
		if c, r, ok := w.CellOf(*w.position); ok {
			grid[r][c] = cell{ch: "@", style: &positionStyle}
		}
	}

	if w.overlay != nil {
		if c, r, ok := w.CellOf(*w.overlay); ok {
			grid[r][c] = cell{ch: "✚", style: &menuStyle}
		}
		if mc, mr, n, ok := w.menuSpan(); ok {
			for i := 0; i < n && mc+i < w.width; i++ {
				grid[mr][mc+i] = cell{ch: string(ConfirmLabel[i]), style: &menuStyle}
			}
		}
	}

	var b strings.Builder
	for r, line := range grid {
		for _, c := range line {
			if c.style != nil {
				b.WriteString(c.style.Render(c.ch))
			} else {
				b.WriteString(c.ch)
			}
		}
		if r < len(grid)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
