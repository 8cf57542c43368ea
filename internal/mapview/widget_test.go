package mapview

import (
	"math"
	"strings"
	"testing"

	"wander/internal/model"
)

func sized(center *model.GeoPoint) *Widget {
	w := New(center)
	w.Resize(80, 24)
	return w
}

func TestNewZoomDependsOnLocation(t *testing.T) {
	w := New(nil)
	if w.Center() != DefaultCenter || w.zoom != DefaultZoom {
		t.Errorf("default map = %v z%d", w.Center(), w.zoom)
	}
	if _, known := w.Zoom(); known {
		t.Error("zoom known before the map has a size")
	}

	p := model.GeoPoint{Lat: 48.85, Lng: 2.35}
	w = sized(&p)
	if z, known := w.Zoom(); !known || z != LocatedZoom {
		t.Errorf("located zoom = %d known=%v", z, known)
	}
}

func TestProjectionRoundTrip(t *testing.T) {
	for _, p := range []model.GeoPoint{{Lat: 35.6762, Lng: 139.6503}, {Lat: -33.86, Lng: 151.2}, {Lat: 0, Lng: 0}} {
		x, y := project(p, 13)
		got := unproject(x, y, 13)
		if math.Abs(got.Lat-p.Lat) > 1e-9 || math.Abs(got.Lng-p.Lng) > 1e-9 {
			t.Errorf("round trip %v -> %v", p, got)
		}
	}
}

func TestCellGeoRoundTrip(t *testing.T) {
	w := sized(nil)
	for _, cell := range [][2]int{{0, 0}, {40, 12}, {79, 23}, {13, 5}} {
		g, ok := w.GeoAt(cell[0], cell[1])
		if !ok {
			t.Fatalf("GeoAt(%v) out of view", cell)
		}
		c, r, ok := w.CellOf(g)
		if !ok || c != cell[0] || r != cell[1] {
			t.Errorf("CellOf(GeoAt(%v)) = %d,%d,%v", cell, c, r, ok)
		}
	}
	if _, ok := w.GeoAt(80, 0); ok {
		t.Error("GeoAt outside the viewport")
	}
}

func TestPanToAndPan(t *testing.T) {
	w := sized(nil)
	target := model.GeoPoint{Lat: 34.69, Lng: 135.50}
	w.PanTo(target)
	if w.Center() != target {
		t.Fatalf("center = %v", w.Center())
	}

	w.PanTo(model.GeoPoint{Lat: math.NaN(), Lng: 0})
	if w.Center() != target {
		t.Error("PanTo accepted an invalid point")
	}

	w.Pan(10, 0)
	if c := w.Center(); c.Lng <= target.Lng || math.Abs(c.Lat-target.Lat) > 1e-9 {
		t.Errorf("pan east moved to %v", c)
	}
	w.Pan(0, 5)
	if c := w.Center(); c.Lat >= target.Lat {
		t.Errorf("pan south moved to %v", c)
	}
}

func TestSetZoomClamps(t *testing.T) {
	w := sized(nil)
	w.SetZoom(99)
	if z, _ := w.Zoom(); z != MaxZoom {
		t.Errorf("zoom = %d", z)
	}
	w.SetZoom(-3)
	w.ZoomOut()
	if z, _ := w.Zoom(); z != MinZoom {
		t.Errorf("zoom = %d", z)
	}
}

func TestPinHitTesting(t *testing.T) {
	w := sized(nil)
	pinAt, _ := w.GeoAt(20, 10)
	w.SetPins([]model.Place{
		{ID: "a", Location: pinAt},
		{ID: "bad", Location: model.GeoPoint{Lat: math.NaN()}},
	})

	if id, ok := w.PinAt(20, 10); !ok || id != "a" {
		t.Errorf("PinAt = %q,%v", id, ok)
	}
	if _, ok := w.PinAt(25, 10); ok {
		t.Error("pin found in an empty cell")
	}
	if r := w.RegionAt(20, 10); r != model.RegionMapPin {
		t.Errorf("region = %s", r)
	}
	if r := w.RegionAt(30, 3); r != model.RegionMap {
		t.Errorf("region = %s", r)
	}
	if r := w.RegionAt(-1, 3); r != model.RegionNone {
		t.Errorf("region = %s", r)
	}
}

func TestOverlayConfirmRegion(t *testing.T) {
	w := sized(nil)
	p, _ := w.GeoAt(10, 8)
	w.SetOverlay(&p)

	if r := w.RegionAt(11, 8); r != model.RegionOverlayConfirm {
		t.Errorf("region right of the marker = %s", r)
	}
	if r := w.RegionAt(11+len(ConfirmLabel), 8); r != model.RegionMap {
		t.Errorf("region past the label = %s", r)
	}
	if !strings.Contains(w.View(), "S") {
		t.Error("view does not draw the menu")
	}

	w.SetOverlay(nil)
	if r := w.RegionAt(11, 8); r != model.RegionMap {
		t.Errorf("region after closing = %s", r)
	}
}

func TestOverlayLabelFlipsAtRightEdge(t *testing.T) {
	w := sized(nil)
	p, _ := w.GeoAt(75, 4)
	w.SetOverlay(&p)

	if r := w.RegionAt(75-len(ConfirmLabel), 4); r != model.RegionOverlayConfirm {
		t.Errorf("flipped label region = %s", r)
	}
}

func TestViewSize(t *testing.T) {
	w := sized(nil)
	c := w.Center()
	w.SetRadius(&c, 1500)
	lines := strings.Split(w.View(), "\n")
	if len(lines) != 24 {
		t.Errorf("lines = %d, want 24", len(lines))
	}
	if New(nil).View() != "" {
		t.Error("unsized map rendered")
	}
}
