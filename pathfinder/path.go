package pathfinder

import (
	"errors"
	"fmt"
)

// ErrEmptyPath is returned by Validate for a path without segments.
var ErrEmptyPath = errors.New("pathfinder: path has no segments")

// Segment is one hop of a candidate path.
type Segment struct {
	From      string `json:"from_stop"`
	To        string `json:"to_stop"`
	RouteID   string `json:"route_id"`
	RouteName string `json:"route_name"`
	Minutes   int    `json:"duration_minutes"`
}

// DirectHop is a synthetic connection that skips an intermediate stop.
// Hops are attached for verification only and never take part in the search.
type DirectHop struct {
	From string
	To   string
}

// CandidatePath is an ordered, contiguous sequence of segments.
type CandidatePath struct {
	Segments     []Segment
	DirectRoutes []DirectHop
}

// Origin returns the first stop of the path.
func (p *CandidatePath) Origin() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[0].From
}

// Destination returns the last stop of the path.
func (p *CandidatePath) Destination() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1].To
}

// Transfers counts the route changes between consecutive segments.
func (p *CandidatePath) Transfers() int {
	n := 0
	for i := 1; i < len(p.Segments); i++ {
		if p.Segments[i].RouteID != p.Segments[i-1].RouteID {
			n++
		}
	}
	return n
}

// TotalMinutes sums segment durations.
func (p *CandidatePath) TotalMinutes() int {
	total := 0
	for _, s := range p.Segments {
		total += s.Minutes
	}
	return total
}

// Legs merges consecutive segments on the same route into one segment.
func (p *CandidatePath) Legs() []Segment {
	var legs []Segment
	for _, s := range p.Segments {
		if n := len(legs); n > 0 && legs[n-1].RouteID == s.RouteID {
			legs[n-1].To = s.To
			legs[n-1].Minutes += s.Minutes
			continue
		}
		legs = append(legs, s)
	}
	return legs
}

// Stops returns every stop on the path in travel order.
func (p *CandidatePath) Stops() []string {
	if len(p.Segments) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.Segments)+1)
	out = append(out, p.Segments[0].From)
	for _, s := range p.Segments {
		out = append(out, s.To)
	}
	return out
}

// Validate checks that the path is non-empty and contiguous.
func (p *CandidatePath) Validate() error {
	if len(p.Segments) == 0 {
		return ErrEmptyPath
	}
	for i := 1; i < len(p.Segments); i++ {
		if p.Segments[i-1].To != p.Segments[i].From {
			return fmt.Errorf("pathfinder: segment %d ends at %q but segment %d starts at %q",
				i-1, p.Segments[i-1].To, i, p.Segments[i].From)
		}
	}
	return nil
}

// annotateDirect attaches, for each adjacent segment pair, hops from the
// first origin to the second origin and to the second destination.
func (p *CandidatePath) annotateDirect() {
	p.DirectRoutes = nil
	for i := 0; i+1 < len(p.Segments); i++ {
		p.DirectRoutes = append(p.DirectRoutes,
			DirectHop{From: p.Segments[i].From, To: p.Segments[i+1].From},
			DirectHop{From: p.Segments[i].From, To: p.Segments[i+1].To},
		)
	}
}
