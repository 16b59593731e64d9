// Package graph holds the in-memory transit graph used for trip planning.
//
// A Graph is built once from a feed snapshot and is read-only afterwards.
// Concurrent planners share it through a Store, which publishes new graphs
// with an atomic swap when the feed is refreshed.
package graph
