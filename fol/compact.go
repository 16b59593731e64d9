package fol

import (
	"sort"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/transit-fol-planner/pathfinder"
)

// DirectRoute is the route symbol of synthetic direct hops.
const DirectRoute = "r_direct"

// NodeMapping translates between feed identifiers and program tokens.
//
// Stops always become dense integers. Integer-like ids come first in numeric
// order, the rest follow in lexicographic order. Integer-like route ids share
// the same numeric space and render as r<n>; other route ids become r_<name>.
type NodeMapping struct {
	dense      map[string]int // raw id -> dense number
	rawOf      []string       // dense number -> raw id
	routeTok   map[string]string
	routeRaw   map[string]string
	stopTokens []string
}

// Len returns how many dense integers are in use.
func (m *NodeMapping) Len() int { return len(m.rawOf) }

// StopToken returns the program token of a stop id.
func (m *NodeMapping) StopToken(id string) (string, bool) {
	n, ok := m.dense[id]
	if !ok {
		return "", false
	}
	return strconv.Itoa(n), true
}

// RouteToken returns the program token of a route id.
func (m *NodeMapping) RouteToken(id string) (string, bool) {
	t, ok := m.routeTok[id]
	return t, ok
}

// Stop translates a stop token back to its feed id.
func (m *NodeMapping) Stop(token string) (string, bool) {
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 || n >= len(m.rawOf) {
		return "", false
	}
	return m.rawOf[n], true
}

// Route translates a route token back to its feed id.
func (m *NodeMapping) Route(token string) (string, bool) {
	raw, ok := m.routeRaw[token]
	return raw, ok
}

// StopTokens returns the stop tokens in ascending numeric order.
func (m *NodeMapping) StopTokens() []string {
	return append([]string(nil), m.stopTokens...)
}

// Remap rewrites every stop and route of the path as program tokens.
// The input path is not modified.
func Remap(p *pathfinder.CandidatePath) (*pathfinder.CandidatePath, *NodeMapping) {
	stopSet := map[string]bool{}
	routeSet := map[string]bool{}
	for _, s := range p.Segments {
		stopSet[s.From] = true
		stopSet[s.To] = true
		routeSet[s.RouteID] = true
	}
	for _, h := range p.DirectRoutes {
		stopSet[h.From] = true
		stopSet[h.To] = true
	}

	var numeric, symbolic []string
	seen := map[string]bool{}
	for id := range stopSet {
		if isInteger(id) {
			numeric = append(numeric, id)
		} else {
			symbolic = append(symbolic, id)
		}
		seen[id] = true
	}
	var symbolicRoutes []string
	for id := range routeSet {
		if isInteger(id) {
			if !seen[id] {
				numeric = append(numeric, id)
				seen[id] = true
			}
			continue
		}
		symbolicRoutes = append(symbolicRoutes, id)
	}
	sort.Slice(numeric, func(i, j int) bool { return numericLess(numeric[i], numeric[j]) })
	sort.Strings(symbolic)
	sort.Strings(symbolicRoutes)

	m := &NodeMapping{
		dense:    map[string]int{},
		routeTok: map[string]string{},
		routeRaw: map[string]string{},
	}
	for _, id := range append(numeric, symbolic...) {
		m.dense[id] = len(m.rawOf)
		m.rawOf = append(m.rawOf, id)
	}
	for n, id := range m.rawOf {
		if stopSet[id] {
			m.stopTokens = append(m.stopTokens, strconv.Itoa(n))
		}
	}

	taken := map[string]bool{DirectRoute: true}
	for id := range routeSet {
		if isInteger(id) {
			tok := "r" + strconv.Itoa(m.dense[id])
			m.routeTok[id] = tok
			m.routeRaw[tok] = id
			taken[tok] = true
		}
	}
	for _, id := range symbolicRoutes {
		base := "r_" + sanitize(id)
		tok := base
		for i := 2; taken[tok]; i++ {
			tok = base + "_" + strconv.Itoa(i)
		}
		taken[tok] = true
		m.routeTok[id] = tok
		m.routeRaw[tok] = id
	}

	out := &pathfinder.CandidatePath{
		Segments: make([]pathfinder.Segment, len(p.Segments)),
	}
	for i, s := range p.Segments {
		s.From = strconv.Itoa(m.dense[s.From])
		s.To = strconv.Itoa(m.dense[s.To])
		s.RouteID = m.routeTok[s.RouteID]
		out.Segments[i] = s
	}
	for _, h := range p.DirectRoutes {
		out.DirectRoutes = append(out.DirectRoutes, pathfinder.DirectHop{
			From: strconv.Itoa(m.dense[h.From]),
			To:   strconv.Itoa(m.dense[h.To]),
		})
	}
	return out, m
}

func isInteger(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// numericLess orders digit strings by value, then by raw text.
func numericLess(a, b string) bool {
	ta, tb := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		return len(ta) < len(tb)
	}
	if ta != tb {
		return ta < tb
	}
	return a < b
}

func sanitize(id string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(id) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "x"
	}
	return sb.String()
}
