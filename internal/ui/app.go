package ui

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"wander/internal/location"
	"wander/internal/logger"
	"wander/internal/mapview"
	"wander/internal/model"
	"wander/internal/orchestrator"
	"wander/internal/overlay"
	"wander/internal/pointer"
	"wander/internal/router"
	"wander/internal/search"
	"wander/internal/state"
)

const (
	fetchTimeout     = 15 * time.Second
	favoritesTimeout = 5 * time.Second

	// DefaultBusyDuration is how long the search button shows as busy.
	DefaultBusyDuration = 1500 * time.Millisecond
)

// FavoritesSource is the persisted favorites list.
type FavoritesSource interface {
	Load(ctx context.Context) ([]model.Place, error)
	Toggle(ctx context.Context, p model.Place) (added bool, removed *model.Favorite, err error)
	Restore(ctx context.Context, fav model.Favorite) error
	Remove(ctx context.Context, placeID string) error
}

// Config wires the root model to its collaborators.
type Config struct {
	Provider  search.Provider
	Photos    search.PhotoProvider
	Favorites FavoritesSource
	Boot      *orchestrator.Boot
	Router    *router.Router
	Log       *logger.Logger

	// Narrow is the width in columns below which the options panel collapses.
	Narrow int
	// AutoSearch fetches the first page after a user-driven recenter.
	AutoSearch   bool
	Defaults     SearchDefaults
	PrefsPath    string
	Terminal     TerminalCapabilities
	BusyDuration time.Duration
}

type mapSetters struct {
	selected state.Setter[string]
	clicked  state.Setter[string]
}

type listSetters struct {
	selected    state.Setter[string]
	clicked     state.Setter[string]
	showResults state.Setter[bool]
}

type panelSetters struct {
	showOptions state.Setter[bool]
	busy        state.Setter[bool]
}

// busyTimer is the search button's pending timer reference.
type busyTimer struct {
	id      int
	pending bool
}

func (t *busyTimer) Pending() bool { return t.pending }

func (t *busyTimer) start(d time.Duration) tea.Cmd {
	t.id++
	t.pending = true
	id := t.id
	return tea.Tick(d, func(time.Time) tea.Msg {
		return model.SearchTimerMsg{ID: id}
	})
}

// expire reports whether id is the live timer, and stops it.
func (t *busyTimer) expire(id int) bool {
	if !t.pending || id != t.id {
		return false
	}
	t.pending = false
	return true
}

func (t *busyTimer) stop() { t.pending = false }

// Model is the root Bubble Tea model.
type Model struct {
	provider  search.Provider
	photos    search.PhotoProvider
	favorites FavoritesSource
	boot      *orchestrator.Boot
	router    *router.Router
	log       *logger.Logger
	term      TerminalCapabilities

	narrow       int
	autoSearch   bool
	prefsPath    string
	busyDuration time.Duration

	store    *state.Store
	observer *pointer.Observer
	orch     *orchestrator.Orchestrator
	overlay  *overlay.Controller
	fetcher  *search.Fetcher
	mapw     *mapview.Widget
	timer    *busyTimer

	mapSet   mapSetters
	listSet  listSetters
	panelSet panelSetters

	screen model.Screen
	mode   model.Mode
	gState GState

	width  int
	height int

	error       string
	info        string
	showingHelp bool

	results       *ResultsModel
	detail        *PlaceDetailModel
	optionsForm   *SearchOptionsModel
	options       SearchOptions
	favoritesData []model.Place
	favoriteIDs   map[string]bool

	// recenterPending marks a URL change made by the user, as opposed to
	// the initial URL. Only the former auto-searches.
	recenterPending bool

	keys      KeyMap
	undoStack []undoAction
	redoStack []undoAction
}

// New creates the root model and attaches the global pointer rules.
func New(cfg Config) (Model, error) {
	if cfg.Log == nil {
		cfg.Log = logger.Discard()
	}
	if cfg.Provider == nil {
		cfg.Provider = search.Unavailable()
	}
	if cfg.Router == nil {
		cfg.Router = router.New(nil)
	}
	if cfg.Boot == nil {
		cfg.Boot = orchestrator.NewBoot(nil, cfg.Log)
	}
	if cfg.BusyDuration <= 0 {
		cfg.BusyDuration = DefaultBusyDuration
	}

	var resolver location.Resolver
	store := state.NewStore()
	mapw := mapview.New(resolver.Resolve(cfg.Router.Query()))
	timer := &busyTimer{}

	orch, err := orchestrator.New(orchestrator.Config{
		Store:  store,
		Map:    mapw,
		Timer:  timer,
		Narrow: cfg.Narrow,
		Log:    cfg.Log,
	})
	if err != nil {
		return Model{}, err
	}
	menu, err := overlay.New(store, cfg.Router)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		provider:     cfg.Provider,
		photos:       cfg.Photos,
		favorites:    cfg.Favorites,
		boot:         cfg.Boot,
		router:       cfg.Router,
		log:          cfg.Log.WithComponent("ui"),
		term:         cfg.Terminal,
		narrow:       cfg.Narrow,
		autoSearch:   cfg.AutoSearch,
		prefsPath:    cfg.PrefsPath,
		busyDuration: cfg.BusyDuration,
		store:        store,
		observer:     pointer.New(),
		orch:         orch,
		overlay:      menu,
		fetcher:      search.NewFetcher(cfg.Log),
		mapw:         mapw,
		timer:        timer,
		screen:       model.ScreenExplore,
		mode:         model.ModeNav,
		gState:       GStateIdle,
		results:      NewResultsModel(),
		favoriteIDs:  make(map[string]bool),
		keys:         DefaultKeyMap(),
	}

	prefs := loadUIPreferences(cfg.PrefsPath).withDefaults(cfg.Defaults)
	m.options = SearchOptions{Radius: prefs.Radius, Type: prefs.Type, Sort: prefs.Sort}

	if err := m.bind(); err != nil {
		return Model{}, err
	}
	m.orch.Attach(m.observer)
	m.overlay.Attach(m.observer)
	return m, nil
}

func (m *Model) bind() error {
	st := m.store
	var err error
	if m.mapSet.selected, err = st.SelectedPlace.Bind(state.WriterMapView); err != nil {
		return err
	}
	if m.mapSet.clicked, err = st.ClickedPlace.Bind(state.WriterMapView); err != nil {
		return err
	}
	if m.listSet.selected, err = st.SelectedPlace.Bind(state.WriterListView); err != nil {
		return err
	}
	if m.listSet.clicked, err = st.ClickedPlace.Bind(state.WriterListView); err != nil {
		return err
	}
	if m.listSet.showResults, err = st.ShowResults.Bind(state.WriterListView); err != nil {
		return err
	}
	if m.panelSet.showOptions, err = st.ShowSearchOptions.Bind(state.WriterSearchPanel); err != nil {
		return err
	}
	if m.panelSet.busy, err = st.SearchBusy.Bind(state.WriterSearchPanel); err != nil {
		return err
	}
	return nil
}

// Close releases the pointer subscriptions.
func (m Model) Close() {
	m.orch.Detach()
	m.overlay.Detach()
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return loadFavoritesCmd(m.favorites)
}

// Update handles messages, then runs the synchronization rules against the
// resulting state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	effects := m.sync()
	return m, tea.Batch(cmd, effects)
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, m.boot.Mount(m.orch, msg.Width)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if msg.String() == "?" && m.mode == model.ModeNav {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" || msg.String() == "?" {
				m.showingHelp = false
			}
			return m, nil
		}

		if m.mode == model.ModeNav {
			return m.handleNavMode(msg)
		}
		return m.handleInsertMode(msg)

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		return m, nil

	case model.PageResultMsg:
		if !m.fetcher.Apply(msg) {
			return m, nil
		}
		if msg.Request.FirstPage() && m.timer.Pending() {
			m.timer.stop()
			m.panelSet.busy.Set(false)
		}
		return m, nil

	case model.PositionMsg:
		m.orch.CommitPosition(msg.Point)
		if msg.Recenter {
			m.navigate(location.EncodeGeoPoint(msg.Point))
		}
		return m, nil

	case model.FavoritesLoadedMsg:
		m.favoritesData = msg.Places
		m.favoriteIDs = make(map[string]bool, len(msg.Places))
		for _, p := range msg.Places {
			m.favoriteIDs[p.ID] = true
		}
		if m.detail != nil {
			m.detail.SetFavorite(m.favoriteIDs[m.detail.Place().ID])
		}
		return m, nil

	case model.FavoriteToggledMsg:
		if action := m.buildFavoriteToggleAction(msg); action != nil {
			m.pushUndoAction(*action)
		}
		if msg.Added {
			m.info = "Saved " + msg.Place.Name
		} else {
			m.info = "Removed " + msg.Place.Name + " (u to undo)"
		}
		m.error = ""
		return m, loadFavoritesCmd(m.favorites)

	case undoAppliedMsg:
		return m, m.applyUndoResult(msg)

	case model.PhotoLoadedMsg:
		if m.detail != nil {
			m.detail.SetPhoto(msg)
		}
		return m, nil

	case model.SearchTimerMsg:
		if m.timer.expire(msg.ID) {
			m.panelSet.busy.Set(false)
		}
		return m, nil

	case searchOptionsSubmittedMsg:
		m.options = msg.Options
		m.savePrefs()
		m.mode = model.ModeNav
		m.screen = model.ScreenExplore
		m.optionsForm = nil
		m.error = ""
		return m, m.searchNow()

	case formCancelledMsg:
		m.mode = model.ModeNav
		m.screen = model.ScreenExplore
		m.optionsForm = nil
		return m, nil
	}

	return m, nil
}

// sync is the effects pass: the orchestrator rules observe one snapshot,
// then the fetcher and the presentation follow.
func (m *Model) sync() tea.Cmd {
	if m.width == 0 {
		return nil
	}

	out := m.orch.Sync(orchestrator.Snapshot{
		Query:         m.router.Query(),
		Width:         m.width,
		FavoritesData: m.favoritesData,
	})

	var cmd tea.Cmd
	if out.PointChanged {
		req := m.fetcher.SetQuery(m.searchQuery(*out.Point))
		if req == nil && m.recenterPending && m.autoSearch {
			req = m.fetcher.Fetch()
		}
		cmd = m.fetchCmd(req)
		if m.screen == model.ScreenPlaceDetail {
			m.closeDetail()
		}
	}
	if out.PointCleared {
		m.fetcher.Clear()
	}
	m.recenterPending = false

	if out.Transition.Changed() && m.screen == model.ScreenPlaceDetail {
		m.closeDetail()
	}

	m.refresh()
	return cmd
}

// refresh pushes the current state into the list and the map.
func (m *Model) refresh() {
	center := m.orch.Point()

	var places []model.Place
	if m.orch.Mode() == model.ViewFavorites {
		places = m.store.Favorites.Get()
	} else {
		places = m.fetcher.Results()
	}
	presented := search.Present(places, center, m.options.Sort)

	m.results.SetPlaces(presented)
	m.results.SetSelected(m.store.SelectedPlace.Get())

	m.resize()
	m.mapw.SetPins(presented)
	m.mapw.SetRadius(center, m.options.Radius)
	m.mapw.SetOverlay(m.overlay.Point())
	m.mapw.SetPosition(m.store.CurrentPosition.Get())

	highlight := m.store.ClickedPlace.Get()
	if highlight == "" {
		highlight = m.store.SelectedPlace.Get()
	}
	m.mapw.SetHighlight(highlight)
}

func (m *Model) resize() {
	l := m.layout()
	m.mapw.Resize(l.mapWidth, l.bodyHeight)
}

func (m *Model) searchQuery(center model.GeoPoint) model.SearchQuery {
	return model.SearchQuery{
		Center:  center,
		Radius:  m.options.Radius,
		Keyword: m.options.Keyword,
		Type:    m.options.Type,
	}
}

// navigate commits a user-driven URL change.
func (m *Model) navigate(q url.Values) {
	m.recenterPending = true
	m.router.Replace(q)
}

// searchNow is the explicit search action: it shows the busy indicator and
// starts the first page for the current center and options.
func (m *Model) searchNow() tea.Cmd {
	p := m.orch.Point()
	if p == nil {
		m.info = "Right-click the map to choose a center first"
		return nil
	}
	if location.IsFavoritesRequested(m.router.Query()) {
		m.router.Del(location.ParamFavorites)
	}

	req := m.fetcher.SetQuery(m.searchQuery(*p))
	if req == nil {
		req = m.fetcher.Fetch()
	}

	m.panelSet.busy.Set(true)
	return tea.Batch(m.timer.start(m.busyDuration), m.fetchCmd(req))
}

func (m *Model) fetchCmd(req *model.PageRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	return fetchPageCmd(m.provider, *req)
}

func (m *Model) loadMore() tea.Cmd {
	if m.orch.Mode() == model.ViewFavorites {
		return nil
	}
	return m.fetchCmd(m.fetcher.FetchNext())
}

func (m *Model) savePrefs() {
	err := saveUIPreferences(m.prefsPath, UIPreferences{
		Sort:   m.options.Sort,
		Radius: m.options.Radius,
		Type:   m.options.Type,
	})
	if err != nil {
		m.log.WithError(err).Warn("failed to save ui preferences")
	}
}

func (m *Model) toggleFavoritesView() {
	if location.IsFavoritesRequested(m.router.Query()) {
		m.router.Del(location.ParamFavorites)
	} else {
		m.router.Set(location.ParamFavorites, "1")
	}
}

// selectPlace highlights a place from the list.
func (m *Model) selectPlace(id string) {
	m.listSet.selected.Set(id)
	m.listSet.clicked.Set(id)
	m.results.SetSelected(id)
}

func (m *Model) openDetail(p model.Place) tea.Cmd {
	l := m.layout()
	rows := PhotoRows(l.bodyHeight)
	cmd := loadPhotoCmd(m.photos, m.term, p, max(8, l.panelWidth-6), rows)
	m.detail = NewPlaceDetailModel(p, m.favoriteIDs[p.ID], cmd != nil)
	m.screen = model.ScreenPlaceDetail
	m.listSet.showResults.Set(true)
	m.selectPlace(p.ID)
	return cmd
}

func (m *Model) closeDetail() {
	m.detail = nil
	m.screen = model.ScreenExplore
}

// currentPlace is the place actions apply to: the open detail, else the
// card under the cursor.
func (m *Model) currentPlace() (model.Place, bool) {
	if m.detail != nil {
		return m.detail.Place(), true
	}
	return m.results.Current()
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() != "g" {
		m.gState = GStateIdle
	}

	if m.overlay.Active() {
		switch msg.String() {
		case "enter":
			m.recenterPending = true
			m.overlay.Confirm()
			return m, nil
		case "esc":
			m.overlay.Cancel()
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if m.screen == model.ScreenPlaceDetail {
			m.closeDetail()
			return m, nil
		}
		if msg.String() == "esc" {
			m.listSet.selected.Set("")
			m.error = ""
			m.info = ""
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if m.screen == model.ScreenPlaceDetail {
			return m, nil
		}
		if p, ok := m.results.Current(); ok {
			return m, m.openDetail(p)
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.results.MoveDown()
		m.followCursor()
		if m.results.AtBottom() {
			return m, m.loadMore()
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.results.MoveUp()
		m.followCursor()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		if m.gState == GStateIdle {
			m.gState = GStateFirstG
			return m, nil
		}
		m.gState = GStateIdle
		m.results.JumpToTop()
		m.followCursor()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.results.JumpToBottom()
		m.followCursor()
		return m, nil

	case key.Matches(msg, m.keys.HalfPageDown):
		m.results.HalfPageDown()
		m.followCursor()
		return m, nil

	case key.Matches(msg, m.keys.HalfPageUp):
		m.results.HalfPageUp()
		m.followCursor()
		return m, nil

	case key.Matches(msg, m.keys.PanUp):
		m.mapw.Pan(0, -m.panStep())
		return m, nil
	case key.Matches(msg, m.keys.PanDown):
		m.mapw.Pan(0, m.panStep())
		return m, nil
	case key.Matches(msg, m.keys.PanLeft):
		m.mapw.Pan(-m.panStep(), 0)
		return m, nil
	case key.Matches(msg, m.keys.PanRight):
		m.mapw.Pan(m.panStep(), 0)
		return m, nil
	case key.Matches(msg, m.keys.ZoomIn):
		m.mapw.ZoomIn()
		return m, nil
	case key.Matches(msg, m.keys.ZoomOut):
		m.mapw.ZoomOut()
		return m, nil

	case key.Matches(msg, m.keys.Search):
		return m, m.searchNow()

	case key.Matches(msg, m.keys.LoadMore):
		return m, m.loadMore()

	case key.Matches(msg, m.keys.Retry):
		return m, m.fetchCmd(m.fetcher.Retry())

	case key.Matches(msg, m.keys.Options):
		m.panelSet.showOptions.Set(true)
		m.optionsForm = NewSearchOptionsModel(m.options)
		m.screen = model.ScreenSearchOptions
		m.mode = model.ModeInsert
		return m, nil

	case key.Matches(msg, m.keys.Sort):
		m.options.Sort = search.NextSortOption(m.options.Sort)
		m.savePrefs()
		m.info = "Sorted by " + string(m.options.Sort)
		return m, nil

	case key.Matches(msg, m.keys.Favorites):
		m.toggleFavoritesView()
		return m, nil

	case key.Matches(msg, m.keys.ToggleFav):
		p, ok := m.currentPlace()
		if !ok {
			return m, nil
		}
		return m, toggleFavoriteCmd(m.favorites, p)

	case key.Matches(msg, m.keys.Locate):
		m.info = "Locating..."
		return m, m.boot.Locate()

	case key.Matches(msg, m.keys.Recenter):
		if m.screen == model.ScreenPlaceDetail {
			m.navigate(location.EncodeGeoPoint(m.detail.Place().Location))
			return m, nil
		}
		// Keyboard equivalent of a right-click at the map center.
		center := m.mapw.Center()
		ev := model.PointerEvent{Button: model.ButtonRight, Region: model.RegionMap, At: &center}
		m.observer.Dispatch(ev)
		return m, nil

	case key.Matches(msg, m.keys.TogglePane):
		m.listSet.showResults.Set(!m.store.ShowResults.Get())
		return m, nil

	case key.Matches(msg, m.keys.Undo):
		return m, m.undoCmd()

	case key.Matches(msg, m.keys.Redo):
		return m, m.redoCmd()
	}

	return m, nil
}

func (m *Model) followCursor() {
	if p, ok := m.results.Current(); ok {
		m.listSet.selected.Set(p.ID)
		m.results.SetSelected(p.ID)
	}
}

func (m *Model) panStep() int {
	w, _ := m.mapw.Size()
	return max(1, w/8)
}

// handleInsertMode routes keys to the search options form.
func (m Model) handleInsertMode(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.optionsForm == nil {
		m.mode = model.ModeNav
		return m, nil
	}
	form, cmd := m.optionsForm.Update(msg)
	m.optionsForm = &form
	return m, cmd
}

func fetchPageCmd(provider search.Provider, req model.PageRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		page, err := provider.Nearby(ctx, req)
		if err != nil {
			err = fmt.Errorf("nearby search: %w", err)
		}
		return model.PageResultMsg{Request: req, Page: page, Err: err}
	}
}

func loadFavoritesCmd(src FavoritesSource) tea.Cmd {
	if src == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), favoritesTimeout)
		defer cancel()

		places, err := src.Load(ctx)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to load favorites: %w", err)}
		}
		return model.FavoritesLoadedMsg{Places: places}
	}
}

func toggleFavoriteCmd(src FavoritesSource, p model.Place) tea.Cmd {
	if src == nil {
		return func() tea.Msg {
			return model.ErrorMsg{Err: fmt.Errorf("favorites are not available")}
		}
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), favoritesTimeout)
		defer cancel()

		added, removed, err := src.Toggle(ctx, p)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to update favorites: %w", err)}
		}
		return model.FavoriteToggledMsg{Place: p, Added: added, Removed: removed}
	}
}
