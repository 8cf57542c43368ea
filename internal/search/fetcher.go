package search

import (
	"github.com/google/uuid"

	"wander/internal/logger"
	"wander/internal/model"
)

// Status is the fetcher's position in its pagination state machine.
type Status int

const (
	StatusIdle Status = iota
	StatusFetchingFirst
	StatusHasPage
	StatusFetchingNext
	StatusExhausted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusFetchingFirst:
		return "fetching-first"
	case StatusHasPage:
		return "has-page"
	case StatusFetchingNext:
		return "fetching-next"
	case StatusExhausted:
		return "exhausted"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Fetcher accumulates cursor-paginated results for one SearchQuery identity
// at a time. It never performs I/O: every transition that needs the network
// returns a PageRequest for the caller to run, and the outcome comes back
// through Apply. Responses that do not match the in-flight request are
// dropped.
type Fetcher struct {
	log   *logger.Logger
	newID func() string

	status   Status
	query    model.SearchQuery
	hasQuery bool

	results []model.Place
	seen    map[string]struct{}
	cursor  string

	inflight *model.PageRequest
	failed   *model.PageRequest
	err      error
}

func NewFetcher(log *logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Discard()
	}
	return &Fetcher{
		log:   log.WithComponent("fetcher"),
		newID: uuid.NewString,
		seen:  make(map[string]struct{}),
	}
}

// SetQuery installs the active query. A different identity drops the
// accumulated results and cursor chain. If the fetcher was already active it
// restarts at the first page and returns that request; an idle fetcher stays
// idle until Fetch.
func (f *Fetcher) SetQuery(q model.SearchQuery) *model.PageRequest {
	if f.hasQuery && q.Identity() == f.query.Identity() {
		return nil
	}

	f.query = q
	f.hasQuery = true
	f.reset()

	if f.status == StatusIdle {
		f.inflight = nil
		return nil
	}
	return f.issue("")
}

// Fetch explicitly starts the first page for the active query. Results from
// an earlier run of the same identity stay visible until the first page
// replaces them. The request is marked Refresh so caches go to the network.
func (f *Fetcher) Fetch() *model.PageRequest {
	if !f.hasQuery || f.status == StatusFetchingFirst {
		return nil
	}
	req := f.issue("")
	req.Refresh = true
	f.inflight.Refresh = true
	return req
}

// FetchNext requests the page after the last one received. It returns nil,
// and issues nothing, when there is no cursor or a fetch is running.
func (f *Fetcher) FetchNext() *model.PageRequest {
	if f.status != StatusHasPage || f.cursor == "" {
		return nil
	}
	return f.issue(f.cursor)
}

// Retry re-issues the page request that failed.
func (f *Fetcher) Retry() *model.PageRequest {
	if f.status != StatusError || f.failed == nil {
		return nil
	}
	return f.issue(f.failed.Cursor)
}

// Apply folds a provider response into the accumulated results. It reports
// false when the response was stale and ignored.
func (f *Fetcher) Apply(msg model.PageResultMsg) bool {
	req := msg.Request
	if f.inflight == nil || req.ID != f.inflight.ID || req.Query.Identity() != f.query.Identity() {
		f.log.WithFields(map[string]interface{}{
			"request_id": req.ID,
			"identity":   req.Query.Identity(),
		}).Debug("discarding stale page response")
		return false
	}
	f.inflight = nil

	if msg.Err != nil {
		f.status = StatusError
		f.err = msg.Err
		failed := req
		f.failed = &failed
		f.log.WithError(msg.Err).WithField("request_id", req.ID).Warn("page fetch failed")
		return true
	}

	if req.FirstPage() {
		f.results = nil
		f.seen = make(map[string]struct{})
	}
	for _, p := range msg.Page.Items {
		if _, dup := f.seen[p.ID]; dup {
			continue
		}
		f.seen[p.ID] = struct{}{}
		f.results = append(f.results, p)
	}

	f.err = nil
	f.failed = nil
	f.cursor = msg.Page.NextCursor
	if f.cursor == "" {
		f.status = StatusExhausted
	} else {
		f.status = StatusHasPage
	}

	f.log.WithFields(map[string]interface{}{
		"request_id": req.ID,
		"received":   len(msg.Page.Items),
		"total":      len(f.results),
		"status":     f.status.String(),
	}).Debug("page applied")
	return true
}

// Clear drops everything and returns to idle. The active query is kept so a
// later Fetch can restart it.
func (f *Fetcher) Clear() {
	f.reset()
	f.inflight = nil
	f.status = StatusIdle
}

func (f *Fetcher) reset() {
	f.results = nil
	f.seen = make(map[string]struct{})
	f.cursor = ""
	f.failed = nil
	f.err = nil
}

func (f *Fetcher) issue(cursor string) *model.PageRequest {
	req := &model.PageRequest{
		ID:     f.newID(),
		Query:  f.query,
		Cursor: cursor,
	}
	f.inflight = req
	if cursor == "" {
		f.status = StatusFetchingFirst
	} else {
		f.status = StatusFetchingNext
	}

	f.log.WithFields(map[string]interface{}{
		"request_id": req.ID,
		"identity":   f.query.Identity(),
		"cursor":     cursor,
	}).Debug("page fetch issued")

	out := *req
	return &out
}

func (f *Fetcher) Status() Status { return f.status }

// Query returns the active query, if any.
func (f *Fetcher) Query() (model.SearchQuery, bool) { return f.query, f.hasQuery }

// Results returns the accumulated places in arrival order.
func (f *Fetcher) Results() []model.Place {
	return append([]model.Place(nil), f.results...)
}

func (f *Fetcher) Err() error { return f.err }

func (f *Fetcher) HasNextPage() bool {
	return f.cursor != "" && (f.status == StatusHasPage || f.status == StatusFetchingNext)
}

func (f *Fetcher) IsFetching() bool {
	return f.status == StatusFetchingFirst || f.status == StatusFetchingNext
}

func (f *Fetcher) IsFetchingNextPage() bool { return f.status == StatusFetchingNext }

func (f *Fetcher) IsError() bool { return f.status == StatusError }

// IsEmpty reports a completed first page with zero items. It is distinct
// from both loading and error.
func (f *Fetcher) IsEmpty() bool {
	return (f.status == StatusHasPage || f.status == StatusExhausted) && len(f.results) == 0
}
