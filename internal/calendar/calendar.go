// Package calendar holds static per-product trading session
// configuration: session boundaries, the lunch recess, and the
// sampling interval. Pure lookup, no mutable state.
package calendar

import (
	"fmt"
	"sort"
)

// Session describes one product's trading day. All times are seconds
// since midnight.
type Session struct {
	Open           int64 // session start
	Close          int64 // session end
	RecessStart    int64 // last tradable second before the lunch recess
	RecessDuration int64 // recess length in seconds
	Interval       int64 // sampling interval in seconds
}

// SpansRecess reports whether the half-open interval (from, to] crosses
// the recess boundary.
func (s Session) SpansRecess(from, to int64) bool {
	return from <= s.RecessStart && to > s.RecessStart
}

// Calendar maps product names to sessions.
type Calendar struct {
	sessions map[string]Session
}

// New creates a calendar from an explicit product → session map.
func New(sessions map[string]Session) *Calendar {
	copied := make(map[string]Session, len(sessions))
	for k, v := range sessions {
		copied[k] = v
	}
	return &Calendar{sessions: copied}
}

// Default returns the built-in calendar: a 09:30–15:00 session with an
// 11:30:00 recess boundary and a 1.5 hour recess. Equities sample at
// 3 seconds, index futures at 1 second over a longer session.
func Default() *Calendar {
	return New(map[string]Session{
		"equity": {
			Open:           clock(9, 30, 0),
			Close:          clock(15, 0, 0),
			RecessStart:    clock(11, 30, 0),
			RecessDuration: 5400,
			Interval:       3,
		},
		"index_future": {
			Open:           clock(9, 15, 0),
			Close:          clock(15, 15, 0),
			RecessStart:    clock(11, 30, 0),
			RecessDuration: 5400,
			Interval:       1,
		},
	})
}

// Lookup returns the session for a product.
func (c *Calendar) Lookup(product string) (Session, error) {
	s, ok := c.sessions[product]
	if !ok {
		return Session{}, fmt.Errorf("calendar: unknown product %q", product)
	}
	return s, nil
}

// Products returns the configured product names, sorted.
func (c *Calendar) Products() []string {
	out := make([]string, 0, len(c.sessions))
	for k := range c.sessions {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func clock(h, m, s int64) int64 {
	return h*3600 + m*60 + s
}
