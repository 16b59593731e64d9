package gtfs

import (
	"github.com/theoremus-urban-solutions/transit-fol-planner/graph"
)

// Waypoint represents a geographical coordinate
type Waypoint struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Options controls how connection durations are derived.
type Options struct {
	DefaultMinutes int
	SpeedKMH       float64
}

// DefaultOptions matches the urban network defaults.
func DefaultOptions() Options {
	return Options{DefaultMinutes: 5, SpeedKMH: 20}
}

// Feed is a parsed GTFS static feed in provider order.
type Feed struct {
	AgencyName  string
	Stops       []graph.Stop
	Routes      []graph.Route
	Connections []graph.Connection
	Shapes      map[string][]Waypoint
	Warnings    Warnings
}

// Graph builds the transit graph for this feed.
func (f *Feed) Graph() (*graph.Graph, error) {
	return graph.Build(f.Stops, f.Routes, f.Connections)
}

// Closures lists stops and routes that carry no service.
type Closures struct {
	Stops  map[string]bool
	Routes map[string]bool
	// RouteStops closes one stop for one route only.
	RouteStops map[[2]string]bool
}

// Empty reports whether nothing is closed.
func (c *Closures) Empty() bool {
	return c == nil || len(c.Stops)+len(c.Routes)+len(c.RouteStops) == 0
}

// Without returns a copy of the feed minus connections touching closed
// stops or running on closed routes. Stops stay resolvable.
func (f *Feed) Without(c *Closures) *Feed {
	if c.Empty() {
		return f
	}
	out := *f
	out.Connections = make([]graph.Connection, 0, len(f.Connections))
	for _, conn := range f.Connections {
		if c.Stops[conn.From] || c.Stops[conn.To] || c.Routes[conn.RouteID] {
			continue
		}
		if c.RouteStops[[2]string{conn.RouteID, conn.From}] || c.RouteStops[[2]string{conn.RouteID, conn.To}] {
			continue
		}
		out.Connections = append(out.Connections, conn)
	}
	return &out
}
