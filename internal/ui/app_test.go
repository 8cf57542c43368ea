package ui

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"wander/internal/location"
	"wander/internal/logger"
	"wander/internal/model"
	"wander/internal/orchestrator"
	"wander/internal/router"
	"wander/internal/search"
)

type fakeProvider struct {
	mu    sync.Mutex
	pages map[string]model.ResultPage // keyed by cursor
	err   error
	calls []model.PageRequest
}

func (p *fakeProvider) Nearby(_ context.Context, req model.PageRequest) (model.ResultPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	if p.err != nil {
		return model.ResultPage{}, p.err
	}
	return p.pages[req.Cursor], nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

type fakeFavorites struct {
	mu    sync.Mutex
	items []model.Favorite
}

func (f *fakeFavorites) Load(context.Context) ([]model.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Place, len(f.items))
	for i, fav := range f.items {
		out[i] = fav.Place
	}
	return out, nil
}

func (f *fakeFavorites) Toggle(_ context.Context, p model.Place) (bool, *model.Favorite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, fav := range f.items {
		if fav.Place.ID == p.ID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return false, &fav, nil
		}
	}
	f.items = append(f.items, model.Favorite{Place: p, CreatedAt: time.Now()})
	return true, nil, nil
}

func (f *fakeFavorites) Restore(_ context.Context, fav model.Favorite) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, fav)
	return nil
}

func (f *fakeFavorites) Remove(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, fav := range f.items {
		if fav.Place.ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return errors.New("not a favorite")
}

func (f *fakeFavorites) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

var (
	shibuya  = model.GeoPoint{Lat: 35.6595, Lng: 139.7005}
	position = model.GeoPoint{Lat: 35.6812, Lng: 139.7671}
)

func testPlace(id string, lat, lng float64) model.Place {
	return model.Place{ID: id, Name: "Place " + id, Location: model.GeoPoint{Lat: lat, Lng: lng}, Rating: 4}
}

func twoPageProvider() *fakeProvider {
	return &fakeProvider{pages: map[string]model.ResultPage{
		"": {
			Items: []model.Place{
				testPlace("a", 35.660, 139.700),
				testPlace("b", 35.661, 139.701),
				testPlace("c", 35.662, 139.702),
			},
			NextCursor: "tok1",
		},
		"tok1": {
			Items: []model.Place{
				testPlace("c", 35.662, 139.702),
				testPlace("d", 35.663, 139.703),
			},
		},
	}}
}

type testApp struct {
	t         *testing.T
	m         Model
	provider  *fakeProvider
	favorites *fakeFavorites
	router    *router.Router
}

func newTestApp(t *testing.T, rawQuery string, provider *fakeProvider, favs *fakeFavorites) *testApp {
	t.Helper()
	r, err := router.Parse(rawQuery)
	if err != nil {
		t.Fatal(err)
	}
	if favs == nil {
		favs = &fakeFavorites{}
	}
	m, err := New(Config{
		Provider:     provider,
		Favorites:    favs,
		Boot:         orchestrator.NewBoot(location.FixedPosition{Point: position}, logger.Discard()),
		Router:       r,
		Narrow:       100,
		AutoSearch:   true,
		Defaults:     SearchDefaults{Radius: 1500, Type: model.TypeTouristAttraction},
		BusyDuration: time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(m.Close)

	app := &testApp{t: t, m: m, provider: provider, favorites: favs, router: r}
	app.run(m.Init())
	app.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app
}

// send delivers msg and runs every command it produces until the queue is
// empty.
func (a *testApp) send(msg tea.Msg) {
	a.t.Helper()
	next, cmd := a.m.Update(msg)
	a.m = next.(Model)
	a.run(cmd)
}

func (a *testApp) run(cmd tea.Cmd) {
	a.t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			a.t.Fatal("command queue did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			next, cmd := a.m.Update(msg)
			a.m = next.(Model)
			queue = append(queue, cmd)
		}
	}
}

func (a *testApp) key(k string) {
	a.t.Helper()
	switch k {
	case "enter":
		a.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		a.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "ctrl+r":
		a.send(tea.KeyMsg{Type: tea.KeyCtrlR})
	default:
		a.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}
}

func (a *testApp) click(button tea.MouseButton, x, y int) {
	a.t.Helper()
	a.send(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: button})
}

func (a *testApp) resultIDs() []string {
	var ids []string
	for _, p := range a.m.results.Places() {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestInitialLocationDoesNotSearch(t *testing.T) {
	app := newTestApp(t, "lat=35.6595&lng=139.7005", twoPageProvider(), nil)

	if got := app.provider.callCount(); got != 0 {
		t.Fatalf("provider called %d times on load, want 0", got)
	}
	if got := app.m.fetcher.Status(); got != search.StatusIdle {
		t.Fatalf("fetcher status = %s, want idle", got)
	}
	if got := app.m.listPlaceholder(); got != textIdleLocated {
		t.Fatalf("placeholder = %q, want %q", got, textIdleLocated)
	}
	if c := app.m.mapw.Center(); c != shibuya {
		t.Fatalf("map center = %v, want %v", c, shibuya)
	}
	if p := app.m.store.CurrentPosition.Get(); p == nil || *p != position {
		t.Fatalf("current position = %v, want %v", p, position)
	}
	if !app.m.store.ShowResults.Get() || !app.m.store.ShowSearchOptions.Get() {
		t.Fatal("wide viewport should show results and search options after mount")
	}
}

func TestNoLocationShowsIdleText(t *testing.T) {
	app := newTestApp(t, "", twoPageProvider(), nil)

	if got := app.m.listPlaceholder(); got != textIdle {
		t.Fatalf("placeholder = %q, want %q", got, textIdle)
	}
	app.key("s")
	if got := app.provider.callCount(); got != 0 {
		t.Fatalf("search without a center called the provider %d times", got)
	}
}

func TestSearchAndLoadMore(t *testing.T) {
	app := newTestApp(t, "lat=35.6595&lng=139.7005", twoPageProvider(), nil)

	app.key("s")
	if got := app.m.fetcher.Status(); got != search.StatusHasPage {
		t.Fatalf("status after search = %s, want hasPage", got)
	}
	if got := len(app.m.results.Places()); got != 3 {
		t.Fatalf("got %d results, want 3", got)
	}
	if app.m.store.SearchBusy.Get() {
		t.Fatal("search button still busy after the first page arrived")
	}
	if got := app.m.listFooter(); got != footerLoadMore {
		t.Fatalf("footer = %q, want %q", got, footerLoadMore)
	}

	app.key("m")
	if got := len(app.m.results.Places()); got != 4 {
		t.Fatalf("got %d results after load more, want 4 (one duplicate dropped)", got)
	}
	if got := app.m.fetcher.Status(); got != search.StatusExhausted {
		t.Fatalf("status = %s, want exhausted", got)
	}
	if got := app.m.listFooter(); got != footerNoMore {
		t.Fatalf("footer = %q, want %q", got, footerNoMore)
	}

	app.key("m")
	if got := app.provider.callCount(); got != 2 {
		t.Fatalf("provider called %d times, want 2", got)
	}
}

func TestRemovedLocationClearsResults(t *testing.T) {
	app := newTestApp(t, "lat=35.6595&lng=139.7005", twoPageProvider(), nil)
	app.key("s")
	if len(app.resultIDs()) == 0 {
		t.Fatal("search returned no results")
	}

	app.router.Replace(url.Values{})
	app.send(tea.WindowSizeMsg{Width: 120, Height: 40})

	if ids := app.resultIDs(); len(ids) != 0 {
		t.Fatalf("results = %v after the location was removed, want none", ids)
	}
	if got := app.m.fetcher.Status(); got != search.StatusIdle {
		t.Fatalf("status = %s, want idle", got)
	}
	if got := app.m.listPlaceholder(); got != textIdle {
		t.Fatalf("placeholder = %q, want %q", got, textIdle)
	}
	if got := app.m.listFooter(); got != "" {
		t.Fatalf("footer = %q, want none", got)
	}
}

func TestSearchFailureKeepsResultsAndRetries(t *testing.T) {
	provider := twoPageProvider()
	app := newTestApp(t, "lat=35.6595&lng=139.7005", provider, nil)
	app.key("s")

	provider.mu.Lock()
	provider.err = errors.New("boom")
	provider.mu.Unlock()

	app.key("m")
	if got := app.m.fetcher.Status(); got != search.StatusError {
		t.Fatalf("status = %s, want error", got)
	}
	if got := len(app.m.results.Places()); got != 3 {
		t.Fatalf("got %d results after a failed page, want 3", got)
	}

	provider.mu.Lock()
	provider.err = nil
	provider.mu.Unlock()

	app.key("r")
	if got := len(app.m.results.Places()); got != 4 {
		t.Fatalf("got %d results after retry, want 4", got)
	}
	last := provider.calls[len(provider.calls)-1]
	if last.Cursor != "tok1" {
		t.Fatalf("retry used cursor %q, want tok1", last.Cursor)
	}
}

func TestOverlayConfirmRecentersAndSearches(t *testing.T) {
	app := newTestApp(t, "lat=35.6595&lng=139.7005", twoPageProvider(), nil)

	app.click(tea.MouseButtonRight, 10, 10)
	menu := app.m.overlay.Point()
	if menu == nil {
		t.Fatal("right-click on the map did not open the overlay")
	}
	target := *menu

	app.key("enter")
	if app.m.overlay.Active() {
		t.Fatal("overlay still open after confirm")
	}
	got, ok := location.ParseGeoPoint(app.router.Query())
	if !ok {
		t.Fatalf("router query %q has no location", app.router.String())
	}
	want, _ := location.ParseGeoPoint(location.EncodeGeoPoint(target))
	if got != want {
		t.Fatalf("URL center = %v, want %v", got, want)
	}
	if c := app.m.mapw.Center(); c != want {
		t.Fatalf("map center = %v, want %v", c, want)
	}
	if got := app.provider.callCount(); got != 1 {
		t.Fatalf("provider called %d times after recenter, want 1", got)
	}
	if q, _ := app.m.fetcher.Query(); q.Center != want {
		t.Fatalf("query center = %v, want %v", q.Center, want)
	}
}

func TestOverlayDismissedByOutsideClick(t *testing.T) {
	app := newTestApp(t, "lat=35.6595&lng=139.7005", twoPageProvider(), nil)
	before := app.router.String()

	app.click(tea.MouseButtonRight, 10, 10)
	if !app.m.overlay.Active() {
		t.Fatal("overlay not opened")
	}

	app.click(tea.MouseButtonLeft, 60, 30)
	if app.m.overlay.Active() {
		t.Fatal("left-click elsewhere did not dismiss the overlay")
	}
	if app.router.String() != before {
		t.Fatalf("URL changed to %q without confirming", app.router.String())
	}
}

func TestLocateRecentersOnDevicePosition(t *testing.T) {
	app := newTestApp(t, "lat=35.6595&lng=139.7005", twoPageProvider(), nil)

	app.key("p")
	got, ok := location.ParseGeoPoint(app.router.Query())
	if !ok || got != position {
		t.Fatalf("URL center = %v (ok=%v), want %v", got, ok, position)
	}
	if got := app.provider.callCount(); got != 1 {
		t.Fatalf("provider called %d times after locate, want 1", got)
	}
}

func TestFavoritesViewPopulatesFromSource(t *testing.T) {
	favs := &fakeFavorites{items: []model.Favorite{
		{Place: testPlace("f1", 35.66, 139.70)},
		{Place: testPlace("f2", 35.67, 139.71)},
		{Place: testPlace("f3", 35.68, 139.72)},
	}}
	app := newTestApp(t, "lat=35.6595&lng=139.7005", twoPageProvider(), favs)
	app.key("s")

	app.key("F")
	if app.m.orch.Mode() != model.ViewFavorites {
		t.Fatal("not in favorites view")
	}
	if got := len(app.m.store.Favorites.Get()); got != 3 {
		t.Fatalf("favorites list has %d items, want 3", got)
	}
	if got := app.resultIDs(); len(got) != 3 || got[0] != "f1" {
		t.Fatalf("list shows %v, want the favorites", got)
	}

	app.key("F")
	if app.m.orch.Mode() != model.ViewSearch {
		t.Fatal("still in favorites view")
	}
	if got := len(app.m.store.Favorites.Get()); got != 0 {
		t.Fatalf("favorites list has %d items after leaving, want 0", got)
	}
	if got := len(app.resultIDs()); got != 3 {
		t.Fatalf("list shows %d search results, want 3", got)
	}
}

func TestEmptyFavoritesText(t *testing.T) {
	app := newTestApp(t, "lat=35.6595&lng=139.7005&favs=1", twoPageProvider(), nil)

	if got := app.m.listPlaceholder(); got != textNoFavorites {
		t.Fatalf("placeholder = %q, want %q", got, textNoFavorites)
	}
}

func TestToggleFavoriteUndoRedo(t *testing.T) {
	favs := &fakeFavorites{}
	app := newTestApp(t, "lat=35.6595&lng=139.7005", twoPageProvider(), favs)
	app.key("s")

	app.key("f")
	if got := favs.count(); got != 1 {
		t.Fatalf("favorites = %d after toggle, want 1", got)
	}
	if !app.m.favoriteIDs["a"] {
		t.Fatal("favorites not reloaded after toggle")
	}

	app.key("u")
	if got := favs.count(); got != 0 {
		t.Fatalf("favorites = %d after undo, want 0", got)
	}

	app.key("ctrl+r")
	if got := favs.count(); got != 1 {
		t.Fatalf("favorites = %d after redo, want 1", got)
	}
}

func TestCardClickSelectsThenOpensDetail(t *testing.T) {
	app := newTestApp(t, "lat=35.6595&lng=139.7005", twoPageProvider(), nil)
	app.key("s")

	l := app.m.layout()
	x := l.panelX + 2
	y := l.bodyTop + l.listTop + cardHeight // second card

	app.click(tea.MouseButtonLeft, x, y)
	if got := app.m.store.SelectedPlace.Get(); got != "b" {
		t.Fatalf("selected = %q, want b", got)
	}

	app.click(tea.MouseButtonLeft, x, y)
	if app.m.screen != model.ScreenPlaceDetail || app.m.detail == nil || app.m.detail.Place().ID != "b" {
		t.Fatal("second click on the selected card did not open its detail")
	}

	// A click on the map clears the selection.
	app.key("esc")
	app.click(tea.MouseButtonLeft, 5, 5)
	if got := app.m.store.SelectedPlace.Get(); got != "" {
		t.Fatalf("selected = %q after clicking the map, want empty", got)
	}
}

func TestSearchOptionsForm(t *testing.T) {
	app := newTestApp(t, "lat=35.6595&lng=139.7005", twoPageProvider(), nil)

	app.key("/")
	if app.m.mode != model.ModeInsert || app.m.optionsForm == nil {
		t.Fatal("options form not open")
	}
	app.key("ramen")
	app.key("enter")

	if app.m.mode != model.ModeNav {
		t.Fatal("form still open after submit")
	}
	q, ok := app.m.fetcher.Query()
	if !ok || q.Keyword != "ramen" {
		t.Fatalf("query keyword = %q, want ramen", q.Keyword)
	}
	if got := app.provider.callCount(); got != 1 {
		t.Fatalf("provider called %d times, want 1", got)
	}
}

func TestNarrowViewportCollapsesOptions(t *testing.T) {
	app := newTestApp(t, "lat=35.6595&lng=139.7005", twoPageProvider(), nil)
	if !app.m.store.ShowSearchOptions.Get() {
		t.Fatal("options hidden on a wide viewport")
	}

	app.send(tea.WindowSizeMsg{Width: 80, Height: 30})
	app.key("p")
	if app.m.store.ShowSearchOptions.Get() {
		t.Fatal("recentering on a narrow viewport should collapse the options")
	}
}
