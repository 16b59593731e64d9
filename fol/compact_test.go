package fol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-fol-planner/pathfinder"
)

func mixedPath() *pathfinder.CandidatePath {
	return &pathfinder.CandidatePath{
		Segments: []pathfinder.Segment{
			{From: "100", To: "7", RouteID: "12", Minutes: 3},
			{From: "7", To: "007", RouteID: "M-1", Minutes: 4},
			{From: "007", To: "Gara", RouteID: "direct", Minutes: 5},
			{From: "Gara", To: "abc", RouteID: "m_1", Minutes: 6},
		},
		DirectRoutes: []pathfinder.DirectHop{{From: "100", To: "7"}, {From: "100", To: "007"}},
	}
}

func TestRemapOrdering(t *testing.T) {
	out, m := Remap(mixedPath())

	// 007 < 7 (same value, raw order) < 12 < 100, then Gara < abc
	want := map[string]string{"007": "0", "7": "1", "100": "3", "Gara": "4", "abc": "5"}
	for id, tok := range want {
		got, ok := m.StopToken(id)
		require.True(t, ok, id)
		assert.Equal(t, tok, got, id)
	}
	assert.Equal(t, 6, m.Len())

	r, _ := m.RouteToken("12")
	assert.Equal(t, "r2", r)
	r, _ = m.RouteToken("M-1")
	assert.Equal(t, "r_m_1", r)
	r, _ = m.RouteToken("m_1")
	assert.Equal(t, "r_m_1_2", r)
	r, _ = m.RouteToken("direct")
	assert.Equal(t, "r_direct_2", r)

	assert.Equal(t, "3", out.Segments[0].From)
	assert.Equal(t, "r2", out.Segments[0].RouteID)
	assert.Equal(t, []pathfinder.DirectHop{{From: "3", To: "1"}, {From: "3", To: "0"}}, out.DirectRoutes)
	assert.Equal(t, []string{"0", "1", "3", "4", "5"}, m.StopTokens())
}

func TestRemapRoundTrip(t *testing.T) {
	paths := []*pathfinder.CandidatePath{
		mixedPath(),
		{Segments: []pathfinder.Segment{{From: "A", To: "B", RouteID: "r1", Minutes: 10}, {From: "B", To: "C", RouteID: "r1", Minutes: 12}}},
		{Segments: []pathfinder.Segment{{From: "99999999999999999999", To: "3", RouteID: "3", Minutes: 1}}},
	}
	for _, p := range paths {
		orig := *p
		out, m := Remap(p)
		require.Len(t, out.Segments, len(p.Segments))
		for i, s := range out.Segments {
			from, ok := m.Stop(s.From)
			require.True(t, ok)
			to, ok := m.Stop(s.To)
			require.True(t, ok)
			route, ok := m.Route(s.RouteID)
			require.True(t, ok)
			assert.Equal(t, p.Segments[i].From, from)
			assert.Equal(t, p.Segments[i].To, to)
			assert.Equal(t, p.Segments[i].RouteID, route)
		}
		assert.Equal(t, orig.Segments, p.Segments, "input must not be modified")
	}
}

func TestRemapUnknownTokens(t *testing.T) {
	_, m := Remap(mixedPath())
	_, ok := m.Stop("42")
	assert.False(t, ok)
	_, ok = m.Stop("x")
	assert.False(t, ok)
	_, ok = m.Route("r_nope")
	assert.False(t, ok)
}
