package graph

import (
	"strings"
)

// ResolveStop maps a user query to a stop.
//
// Matching order: exact stop ID, exact case-insensitive name (first in feed
// order when several stops share it), then case-insensitive substring of the
// name. A substring that hits stops with different names is ambiguous.
func (g *Graph) ResolveStop(query string) (Stop, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return Stop{}, &UnknownStopError{Query: query}
	}
	if s, ok := g.stops[q]; ok {
		return s, nil
	}
	lower := strings.ToLower(q)
	for _, id := range g.stopOrder {
		s := g.stops[id]
		if strings.ToLower(s.Name) == lower {
			return s, nil
		}
	}

	var first Stop
	var names []string
	seen := map[string]bool{}
	for _, id := range g.stopOrder {
		s := g.stops[id]
		if !strings.Contains(strings.ToLower(s.Name), lower) {
			continue
		}
		if len(names) == 0 {
			first = s
		}
		if !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	switch len(names) {
	case 0:
		return Stop{}, &UnknownStopError{Query: query}
	case 1:
		return first, nil
	default:
		return Stop{}, &AmbiguousStopError{Query: query, Candidates: names}
	}
}
