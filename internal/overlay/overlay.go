// Package overlay manages the "set center here" menu anchored to a map
// right-click.
package overlay

import (
	"net/url"

	"wander/internal/location"
	"wander/internal/model"
	"wander/internal/pointer"
	"wander/internal/state"
)

// Navigator commits a new URL query.
type Navigator interface {
	Replace(q url.Values)
}

// Controller owns the overlay channel. At most one menu exists; a new
// right-click replaces it.
type Controller struct {
	menu state.Reader[*model.GeoPoint]
	set  state.Setter[*model.GeoPoint]
	nav  Navigator

	// armedBy is the event that opened the menu. The same event must not
	// also dismiss it.
	armedBy uint64
	release []func()
}

func New(store *state.Store, nav Navigator) (*Controller, error) {
	set, err := store.Overlay.Bind(state.WriterOverlay)
	if err != nil {
		return nil, err
	}
	return &Controller{menu: store.Overlay, set: set, nav: nav}, nil
}

// Attach subscribes to right-clicks on the map and left-clicks anywhere.
func (c *Controller) Attach(obs *pointer.Observer) {
	c.Detach()
	c.release = append(c.release,
		obs.Subscribe(c.open, pointer.Any(
			pointer.NotButton(model.ButtonRight),
			pointer.Not(pointer.InRegions(model.RegionMap, model.RegionMapPin)),
		)),
		obs.Subscribe(c.dismiss, pointer.Any(
			pointer.NotButton(model.ButtonLeft),
			pointer.InRegions(model.RegionOverlayConfirm),
		)),
	)
}

// Detach releases the pointer subscriptions.
func (c *Controller) Detach() {
	for _, release := range c.release {
		release()
	}
	c.release = nil
}

func (c *Controller) open(ev model.PointerEvent) {
	if ev.At == nil || !ev.At.Valid() {
		return
	}
	p := *ev.At
	c.set.Set(&p)
	c.armedBy = ev.Seq
}

func (c *Controller) dismiss(ev model.PointerEvent) {
	if ev.Seq != 0 && ev.Seq == c.armedBy {
		return
	}
	if c.menu.Get() != nil {
		c.set.Set(nil)
	}
}

// Confirm promotes the menu location to the URL and closes the menu. It
// reports false when no menu was open.
func (c *Controller) Confirm() bool {
	p := c.menu.Get()
	if p == nil {
		return false
	}
	c.nav.Replace(location.EncodeGeoPoint(*p))
	c.set.Set(nil)
	return true
}

// Cancel closes the menu without navigating.
func (c *Controller) Cancel() {
	if c.menu.Get() != nil {
		c.set.Set(nil)
	}
}

// Point returns the open menu's location, or nil.
func (c *Controller) Point() *model.GeoPoint {
	return c.menu.Get()
}

func (c *Controller) Active() bool {
	return c.menu.Get() != nil
}
