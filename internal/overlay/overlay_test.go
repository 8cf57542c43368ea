package overlay

import (
	"net/url"
	"testing"

	"wander/internal/model"
	"wander/internal/pointer"
	"wander/internal/state"
)

type fakeNav struct {
	replaced []url.Values
}

func (n *fakeNav) Replace(q url.Values) { n.replaced = append(n.replaced, q) }

func setup(t *testing.T) (*Controller, *pointer.Observer, *fakeNav) {
	t.Helper()
	nav := &fakeNav{}
	c, err := New(state.NewStore(), nav)
	if err != nil {
		t.Fatal(err)
	}
	obs := pointer.New()
	c.Attach(obs)
	return c, obs, nav
}

func rightClick(obs *pointer.Observer, lat, lng float64) uint64 {
	seq := obs.NextSeq()
	obs.Dispatch(model.PointerEvent{
		Seq:    seq,
		Button: model.ButtonRight,
		Region: model.RegionMap,
		At:     &model.GeoPoint{Lat: lat, Lng: lng},
	})
	return seq
}

func TestRightClickThenOutsideClickClears(t *testing.T) {
	c, obs, nav := setup(t)

	rightClick(obs, 35.1, 139.1)
	if !c.Active() {
		t.Fatal("right-click did not open the menu")
	}

	obs.Dispatch(model.PointerEvent{Button: model.ButtonLeft, Region: model.RegionPanel})
	if c.Active() {
		t.Error("outside left-click left the menu open")
	}
	if len(nav.replaced) != 0 {
		t.Error("dismiss navigated")
	}
}

func TestRightClickThenConfirmCommits(t *testing.T) {
	c, obs, nav := setup(t)

	rightClick(obs, 35.68, 139.65)
	obs.Dispatch(model.PointerEvent{Button: model.ButtonLeft, Region: model.RegionOverlayConfirm})
	if !c.Active() {
		t.Fatal("click on confirm dismissed the menu before confirming")
	}

	if !c.Confirm() {
		t.Fatal("Confirm reported no menu")
	}
	if c.Active() {
		t.Error("menu still open after confirm")
	}
	if len(nav.replaced) != 1 {
		t.Fatalf("replaced %d times", len(nav.replaced))
	}
	q := nav.replaced[0]
	if q.Get("lat") != "35.68" || q.Get("lng") != "139.65" {
		t.Errorf("replaced with %v", q)
	}
	if c.Confirm() {
		t.Error("second Confirm reported an open menu")
	}
}

func TestArmingEventDoesNotDismiss(t *testing.T) {
	c, obs, _ := setup(t)

	seq := rightClick(obs, 1, 2)
	// The same event observed again as a document click.
	obs.Dispatch(model.PointerEvent{Seq: seq, Button: model.ButtonLeft, Region: model.RegionMap})
	if !c.Active() {
		t.Error("arming event dismissed its own menu")
	}
}

func TestOnlyOneMenu(t *testing.T) {
	c, obs, _ := setup(t)

	rightClick(obs, 1, 1)
	rightClick(obs, 2, 2)
	if p := c.Point(); p == nil || p.Lat != 2 {
		t.Errorf("point = %v, want latest right-click", p)
	}
}

func TestRightClickOutsideMapIgnored(t *testing.T) {
	c, obs, _ := setup(t)

	obs.Dispatch(model.PointerEvent{
		Button: model.ButtonRight,
		Region: model.RegionCard,
		At:     &model.GeoPoint{Lat: 1, Lng: 1},
	})
	if c.Active() {
		t.Error("right-click on a card opened the menu")
	}
}

func TestDetachStopsListening(t *testing.T) {
	c, obs, _ := setup(t)
	c.Detach()

	rightClick(obs, 1, 1)
	if c.Active() || obs.Len() != 0 {
		t.Errorf("active=%v subs=%d after detach", c.Active(), obs.Len())
	}
}
