// Package router is the in-memory routing collaborator: the current query
// string is the source of truth for the search center and the favorites flag.
package router

import "net/url"

// Router holds the current URL query.
type Router struct {
	query   url.Values
	version uint64
}

func New(initial url.Values) *Router {
	return &Router{query: clone(initial)}
}

// Parse builds a router from a raw query string such as "lat=35.68&lng=139.65".
func Parse(raw string) (*Router, error) {
	q, err := url.ParseQuery(raw)
	if err != nil {
		return nil, err
	}
	return New(q), nil
}

// Query returns a copy of the current query.
func (r *Router) Query() url.Values {
	return clone(r.query)
}

// Replace swaps the whole query, like navigating to a new URL.
func (r *Router) Replace(q url.Values) {
	r.query = clone(q)
	r.version++
}

// Set changes one key and keeps the rest.
func (r *Router) Set(key, value string) {
	q := clone(r.query)
	q.Set(key, value)
	r.Replace(q)
}

// Del removes one key and keeps the rest.
func (r *Router) Del(key string) {
	if !r.query.Has(key) {
		return
	}
	q := clone(r.query)
	q.Del(key)
	r.Replace(q)
}

// Version increases on every navigation.
func (r *Router) Version() uint64 { return r.version }

func (r *Router) String() string {
	return r.query.Encode()
}

func clone(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, v := range q {
		out[k] = append([]string(nil), v...)
	}
	return out
}
