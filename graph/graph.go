package graph

import (
	"fmt"
)

// Graph is an immutable set of stops and outgoing connections.
type Graph struct {
	stops      map[string]Stop
	stopOrder  []string
	routes     map[string]Route
	routeOrder []string
	adjacency  map[string][]Connection
	edgeCount  int
}

// Build validates the feed snapshot and returns a read-only graph.
// Connections keep provider order per origin stop.
func Build(stops []Stop, routes []Route, conns []Connection) (*Graph, error) {
	g := &Graph{
		stops:     make(map[string]Stop, len(stops)),
		stopOrder: make([]string, 0, len(stops)),
		routes:    make(map[string]Route, len(routes)),
		adjacency: make(map[string][]Connection),
	}
	for _, s := range stops {
		if s.ID == "" {
			return nil, &DataIntegrityError{Reason: fmt.Sprintf("stop %q has an empty id", s.Name)}
		}
		if _, dup := g.stops[s.ID]; dup {
			return nil, &DataIntegrityError{Reason: fmt.Sprintf("duplicate stop id %q", s.ID)}
		}
		g.stops[s.ID] = s
		g.stopOrder = append(g.stopOrder, s.ID)
	}
	for _, r := range routes {
		if _, dup := g.routes[r.ID]; dup {
			continue
		}
		g.routes[r.ID] = r
		g.routeOrder = append(g.routeOrder, r.ID)
	}
	for _, c := range conns {
		if _, ok := g.stops[c.From]; !ok {
			return nil, &DataIntegrityError{Reason: fmt.Sprintf("connection on route %q references unknown stop %q", c.RouteID, c.From)}
		}
		if _, ok := g.stops[c.To]; !ok {
			return nil, &DataIntegrityError{Reason: fmt.Sprintf("connection on route %q references unknown stop %q", c.RouteID, c.To)}
		}
		if c.RouteID == "" {
			return nil, &DataIntegrityError{Reason: fmt.Sprintf("connection %s->%s has no route", c.From, c.To)}
		}
		if c.Minutes <= 0 {
			return nil, &DataIntegrityError{Reason: fmt.Sprintf("connection %s->%s on route %q has non-positive duration %d", c.From, c.To, c.RouteID, c.Minutes)}
		}
		if _, ok := g.routes[c.RouteID]; !ok {
			g.routes[c.RouteID] = Route{ID: c.RouteID}
			g.routeOrder = append(g.routeOrder, c.RouteID)
		}
		g.adjacency[c.From] = append(g.adjacency[c.From], c)
		g.edgeCount++
	}
	return g, nil
}

// Neighbors returns the outgoing connections of a stop in provider order.
func (g *Graph) Neighbors(stopID string) []Connection {
	adj := g.adjacency[stopID]
	out := make([]Connection, len(adj))
	copy(out, adj)
	return out
}

// Stop looks a stop up by ID.
func (g *Graph) Stop(id string) (Stop, bool) {
	s, ok := g.stops[id]
	return s, ok
}

// Route looks a route up by ID.
func (g *Graph) Route(id string) (Route, bool) {
	r, ok := g.routes[id]
	return r, ok
}

// RouteName returns the display name of a route, or the ID if it is unknown.
func (g *Graph) RouteName(id string) string {
	if r, ok := g.routes[id]; ok {
		return r.DisplayName()
	}
	return id
}

// Stops returns all stops in feed order.
func (g *Graph) Stops() []Stop {
	out := make([]Stop, 0, len(g.stopOrder))
	for _, id := range g.stopOrder {
		out = append(out, g.stops[id])
	}
	return out
}

// Routes returns all routes in feed order.
func (g *Graph) Routes() []Route {
	out := make([]Route, 0, len(g.routeOrder))
	for _, id := range g.routeOrder {
		out = append(out, g.routes[id])
	}
	return out
}

// StopCount returns the number of stops.
func (g *Graph) StopCount() int { return len(g.stopOrder) }

// ConnectionCount returns the number of directed connections.
func (g *Graph) ConnectionCount() int { return g.edgeCount }
