package graph

import (
	"errors"
	"sync/atomic"
)

// ErrNotLoaded is returned by Store.Current before the first graph is published.
var ErrNotLoaded = errors.New("graph: no transit graph loaded")

type snapshot struct {
	graph *Graph
	err   error
}

// Store publishes the current graph to concurrent readers.
// Readers never observe a graph being modified; a refresh replaces the pointer.
type Store struct {
	current atomic.Pointer[snapshot]
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Swap publishes g and clears any recorded integrity failure.
func (s *Store) Swap(g *Graph) {
	s.current.Store(&snapshot{graph: g})
}

// Fail records a feed failure. Planning is blocked until the next Swap.
func (s *Store) Fail(err error) {
	s.current.Store(&snapshot{err: err})
}

// Current returns the published graph or the recorded failure.
func (s *Store) Current() (*Graph, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	if snap.err != nil {
		return nil, snap.err
	}
	return snap.graph, nil
}
