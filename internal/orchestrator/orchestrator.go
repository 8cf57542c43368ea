// Package orchestrator keeps the shared UI state consistent across its three
// triggers: first load, a change of the URL location and a view-mode edge.
// It owns no data; every write goes through a setter bound under the writer
// name of the rule doing it.
package orchestrator

import (
	"fmt"
	"net/url"

	"wander/internal/location"
	"wander/internal/logger"
	"wander/internal/model"
	"wander/internal/pointer"
	"wander/internal/state"
	"wander/internal/viewmode"
)

const (
	// zoomFloor is the zoom below which a recenter also zooms in.
	zoomFloor = 12
	// recenterZoom is the zoom applied when the map is below zoomFloor.
	recenterZoom = 13
)

// MapWidget is the part of the map the orchestrator drives.
type MapWidget interface {
	PanTo(p model.GeoPoint)
	// Zoom reports the current zoom and whether it is known yet.
	Zoom() (int, bool)
	SetZoom(z int)
}

// TimerRef reports whether the search button's busy timer is pending.
type TimerRef interface {
	Pending() bool
}

// Snapshot is the state every rule observes for one pass.
type Snapshot struct {
	Query url.Values
	// Width is the viewport width in columns.
	Width int
	// FavoritesData is the favorites source's current data, nil until loaded.
	FavoritesData []model.Place
}

// Outcome reports which rules fired during Sync.
type Outcome struct {
	Point            *model.GeoPoint
	PointChanged     bool
	PointCleared     bool // a previously resolved point is gone
	Transition       viewmode.Transition
	PopulatedFavs    bool
	ClearedFavorites bool
}

type dismissSetters struct {
	selected state.Setter[string]
	busy     state.Setter[bool]
}

type mountSetters struct {
	showResults state.Setter[bool]
	clicked     state.Setter[string]
	showOptions state.Setter[bool]
	favorites   state.Setter[[]model.Place]
	position    state.Setter[*model.GeoPoint]
}

type locationSetters struct {
	clicked     state.Setter[string]
	showResults state.Setter[bool]
	favorites   state.Setter[[]model.Place]
	showOptions state.Setter[bool]
}

type viewSetters struct {
	showResults state.Setter[bool]
	favorites   state.Setter[[]model.Place]
}

// Orchestrator runs the dismiss, mount, URL and view-mode rules.
type Orchestrator struct {
	store  *state.Store
	mapw   MapWidget
	timer  TimerRef
	narrow int
	log    *logger.Logger

	dismiss dismissSetters
	mount   mountSetters
	loc     locationSetters
	view    viewSetters

	resolver  location.Resolver
	lastPoint *model.GeoPoint
	synced    bool
	modes     *viewmode.Controller

	release []func()
}

// Config wires the orchestrator to its collaborators.
type Config struct {
	Store  *state.Store
	Map    MapWidget
	Timer  TimerRef
	Narrow int // viewport columns below which the search panel collapses
	Log    *logger.Logger
}

func New(cfg Config) (*Orchestrator, error) {
	if cfg.Store == nil || cfg.Map == nil {
		return nil, fmt.Errorf("orchestrator: store and map are required")
	}
	if cfg.Log == nil {
		cfg.Log = logger.Discard()
	}
	if cfg.Timer == nil {
		cfg.Timer = noTimer{}
	}

	o := &Orchestrator{
		store:  cfg.Store,
		mapw:   cfg.Map,
		timer:  cfg.Timer,
		narrow: cfg.Narrow,
		log:    cfg.Log.WithComponent("orchestrator"),
		modes:  viewmode.New(),
	}
	if err := o.bind(); err != nil {
		return nil, err
	}
	return o, nil
}

type noTimer struct{}

func (noTimer) Pending() bool { return false }

func (o *Orchestrator) bind() error {
	st := o.store
	var errs []error
	bind := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	var err error
	o.dismiss.selected, err = st.SelectedPlace.Bind(state.WriterDismissRule)
	bind(err)
	o.dismiss.busy, err = st.SearchBusy.Bind(state.WriterDismissRule)
	bind(err)

	o.mount.showResults, err = st.ShowResults.Bind(state.WriterMountRule)
	bind(err)
	o.mount.clicked, err = st.ClickedPlace.Bind(state.WriterMountRule)
	bind(err)
	o.mount.showOptions, err = st.ShowSearchOptions.Bind(state.WriterMountRule)
	bind(err)
	o.mount.favorites, err = st.Favorites.Bind(state.WriterMountRule)
	bind(err)
	o.mount.position, err = st.CurrentPosition.Bind(state.WriterMountRule)
	bind(err)

	o.loc.clicked, err = st.ClickedPlace.Bind(state.WriterURLRule)
	bind(err)
	o.loc.showResults, err = st.ShowResults.Bind(state.WriterURLRule)
	bind(err)
	o.loc.favorites, err = st.Favorites.Bind(state.WriterURLRule)
	bind(err)
	o.loc.showOptions, err = st.ShowSearchOptions.Bind(state.WriterURLRule)
	bind(err)

	o.view.showResults, err = st.ShowResults.Bind(state.WriterViewModeRule)
	bind(err)
	o.view.favorites, err = st.Favorites.Bind(state.WriterViewModeRule)
	bind(err)

	if len(errs) > 0 {
		return fmt.Errorf("orchestrator: %w", errs[0])
	}
	return nil
}

// Attach installs the global dismiss rule on the pointer observer. Detach
// must be called when the owner goes away.
func (o *Orchestrator) Attach(obs *pointer.Observer) {
	o.Detach()
	leftOnly := pointer.NotButton(model.ButtonLeft)
	o.release = append(o.release,
		obs.Subscribe(o.clearBusy, leftOnly),
		obs.Subscribe(o.clearSelected, pointer.Any(
			leftOnly,
			pointer.InRegions(model.RegionCard, model.RegionImage, model.RegionMapPin),
		)),
	)
}

func (o *Orchestrator) Detach() {
	for _, release := range o.release {
		release()
	}
	o.release = nil
}

func (o *Orchestrator) clearBusy(model.PointerEvent) {
	if o.timer.Pending() {
		o.dismiss.busy.Set(false)
	}
}

func (o *Orchestrator) clearSelected(model.PointerEvent) {
	if o.store.SelectedPlace.Get() != "" {
		o.dismiss.selected.Set("")
	}
}

// initialize is the mount rule's state reset. Boot calls it once per
// process.
func (o *Orchestrator) initialize(width int) {
	o.mount.showResults.Set(true)
	o.mount.clicked.Set("")
	switch {
	case width < o.narrow:
		o.mount.showOptions.Set(false)
	case width > o.narrow:
		o.mount.showOptions.Set(true)
	}
	o.mount.favorites.Set(nil)
}

// CommitPosition stores a resolved device position.
func (o *Orchestrator) CommitPosition(p model.GeoPoint) {
	if !p.Valid() {
		return
	}
	o.mount.position.Set(&p)
}

// Sync runs the URL and view-mode rules against one snapshot. It is called
// after every update; rules only act when their own trigger changed.
func (o *Orchestrator) Sync(s Snapshot) Outcome {
	var out Outcome

	point := o.resolver.Resolve(s.Query)
	out.Point = point
	if o.pointChanged(point) {
		prev := o.lastPoint
		o.lastPoint = point
		switch {
		case point != nil:
			out.PointChanged = true
			o.onLocationChange(*point, s.Width)
		case prev != nil:
			out.PointCleared = true
		}
	}
	o.synced = true

	out.Transition = o.modes.Observe(s.Query)
	out.PopulatedFavs, out.ClearedFavorites = o.onViewMode(out.Transition, s.FavoritesData)

	return out
}

func (o *Orchestrator) pointChanged(p *model.GeoPoint) bool {
	if !o.synced {
		return true
	}
	switch {
	case p == nil && o.lastPoint == nil:
		return false
	case p == nil || o.lastPoint == nil:
		return true
	default:
		return *p != *o.lastPoint
	}
}

func (o *Orchestrator) onLocationChange(p model.GeoPoint, width int) {
	o.log.WithField("center", p.String()).Debug("location changed")

	o.mapw.PanTo(p)
	o.loc.clicked.Set("")
	if z, ok := o.mapw.Zoom(); ok && z < zoomFloor {
		o.mapw.SetZoom(recenterZoom)
	}
	o.loc.favorites.Set(nil)
	o.loc.showResults.Set(true)
	if width < o.narrow {
		o.loc.showOptions.Set(false)
	}
}

func (o *Orchestrator) onViewMode(t viewmode.Transition, data []model.Place) (populated, cleared bool) {
	if t.Changed() {
		o.view.showResults.Set(true)
	}

	favs := o.store.Favorites.Get()
	if t.LeftFavorites() && len(favs) > 0 {
		o.view.favorites.Set(nil)
		return false, true
	}

	if t.To == model.ViewFavorites && len(favs) == 0 && len(data) > 0 {
		o.view.favorites.Set(append([]model.Place(nil), data...))
		o.log.WithField("count", len(data)).Debug("favorites list populated")
		return true, false
	}
	return false, false
}

// Mode returns the view mode observed by the last Sync.
func (o *Orchestrator) Mode() model.ViewMode {
	return o.modes.Mode()
}

// Point returns the location observed by the last Sync.
func (o *Orchestrator) Point() *model.GeoPoint {
	return o.lastPoint
}
