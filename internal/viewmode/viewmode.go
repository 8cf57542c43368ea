// Package viewmode derives whether the results panel shows search results or
// favorites, and remembers the previous mode so callers can react to edges
// instead of steady state.
package viewmode

import (
	"net/url"

	"wander/internal/location"
	"wander/internal/model"
)

// Transition is the outcome of observing the query once.
type Transition struct {
	From model.ViewMode
	To   model.ViewMode
}

func (t Transition) Changed() bool { return t.From != t.To }

// EnteredFavorites reports the other → favorites edge.
func (t Transition) EnteredFavorites() bool {
	return t.Changed() && t.To == model.ViewFavorites
}

// LeftFavorites reports the favorites → other edge.
func (t Transition) LeftFavorites() bool {
	return t.Changed() && t.From == model.ViewFavorites
}

// Controller tracks the current and previous view mode.
type Controller struct {
	current  model.ViewMode
	previous model.ViewMode
}

func New() *Controller {
	return &Controller{}
}

// Derive maps a query to a view mode without touching controller state.
func Derive(q url.Values) model.ViewMode {
	if location.IsFavoritesRequested(q) {
		return model.ViewFavorites
	}
	return model.ViewSearch
}

// Observe records the mode requested by q and returns the transition from
// the last observed mode.
func (c *Controller) Observe(q url.Values) Transition {
	next := Derive(q)
	t := Transition{From: c.current, To: next}
	c.previous = c.current
	c.current = next
	return t
}

func (c *Controller) Mode() model.ViewMode     { return c.current }
func (c *Controller) Previous() model.ViewMode { return c.previous }
