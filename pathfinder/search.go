package pathfinder

import (
	"container/heap"

	"github.com/theoremus-urban-solutions/transit-fol-planner/graph"
)

// Network is the read-only view of a transit graph used by the search.
type Network interface {
	ResolveStop(query string) (graph.Stop, error)
	Neighbors(stopID string) []graph.Connection
	RouteName(routeID string) string
}

// Options controls the search order and path annotations.
type Options struct {
	PreferFewerTransfers bool
	IncludeDirectRoutes  bool
}

type state struct {
	stop  string
	route string
}

// label is one discovered way to reach a state.
type label struct {
	state     state
	transfers int
	minutes   int
	seq       int
	parent    int
	via       graph.Connection
}

// FindPath resolves both stop names and returns the best path between them.
func FindPath(net Network, start, end string, opts Options) (*CandidatePath, error) {
	from, err := net.ResolveStop(start)
	if err != nil {
		return nil, err
	}
	to, err := net.ResolveStop(end)
	if err != nil {
		return nil, err
	}
	if from.ID == to.ID {
		return nil, ErrSameStop
	}

	s := &searcher{net: net, fewer: opts.PreferFewerTransfers}
	idx := s.run(from.ID, to.ID)
	if idx < 0 {
		return nil, &NotFoundError{From: from.Name, To: to.Name}
	}
	path := &CandidatePath{Segments: s.unwind(idx)}
	if opts.IncludeDirectRoutes {
		path.annotateDirect()
	}
	return path, nil
}

type searcher struct {
	net    Network
	fewer  bool
	labels []label
	pq     labelPQ
}

func (s *searcher) push(l label) {
	l.seq = len(s.labels)
	s.labels = append(s.labels, l)
	heap.Push(&s.pq, pqItem{idx: l.seq, key: s.key(l)})
}

func (s *searcher) key(l label) [3]int {
	if s.fewer {
		return [3]int{l.transfers, l.minutes, l.seq}
	}
	return [3]int{l.minutes, l.transfers, l.seq}
}

// run returns the label index of the first settled destination state, or -1.
func (s *searcher) run(start, dest string) int {
	settled := make(map[state]bool)
	heap.Init(&s.pq)
	s.push(label{state: state{stop: start}, parent: -1})

	for s.pq.Len() > 0 {
		item := heap.Pop(&s.pq).(pqItem)
		cur := s.labels[item.idx]
		if settled[cur.state] {
			continue
		}
		settled[cur.state] = true
		if cur.state.stop == dest && cur.parent >= 0 {
			return item.idx
		}
		for _, c := range s.net.Neighbors(cur.state.stop) {
			next := state{stop: c.To, route: c.RouteID}
			if settled[next] {
				continue
			}
			transfers := cur.transfers
			if cur.state.route != "" && cur.state.route != c.RouteID {
				transfers++
			}
			s.push(label{
				state:     next,
				transfers: transfers,
				minutes:   cur.minutes + c.Minutes,
				parent:    item.idx,
				via:       c,
			})
		}
	}
	return -1
}

func (s *searcher) unwind(idx int) []Segment {
	var rev []Segment
	for i := idx; s.labels[i].parent >= 0; i = s.labels[i].parent {
		c := s.labels[i].via
		rev = append(rev, Segment{
			From:      c.From,
			To:        c.To,
			RouteID:   c.RouteID,
			RouteName: s.net.RouteName(c.RouteID),
			Minutes:   c.Minutes,
		})
	}
	out := make([]Segment, len(rev))
	for i := range rev {
		out[i] = rev[len(rev)-1-i]
	}
	return out
}

type pqItem struct {
	idx int
	key [3]int
}

// labelPQ is a min-heap ordered lexicographically by key.
type labelPQ []pqItem

func (pq labelPQ) Len() int { return len(pq) }
func (pq labelPQ) Less(i, j int) bool {
	a, b := pq[i].key, pq[j].key
	for k := range a {
		if a[k] != b[k] {
			return a[k] < b[k]
		}
	}
	return false
}
func (pq labelPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *labelPQ) Push(x any)   { *pq = append(*pq, x.(pqItem)) }
func (pq *labelPQ) Pop() any {
	old := *pq
	n := len(old)
	it := old[n-1]
	*pq = old[:n-1]
	return it
}
