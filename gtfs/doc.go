/*
Package gtfs loads GTFS static feeds into the stops, routes and directed
connections the planner graph is built from.

The loader is data-source agnostic: it accepts zip bytes, an io.ReaderAt or
a local file path. Fetch downloads a zip over HTTP for configured URLs.

# Connections

Every pair of consecutive stops in a trip becomes a connection on the
trip's route. The travel time is taken from the first source available:

  - departure/arrival times in stop_times.txt
  - the distance along the trip's shape (or the straight-line distance)
    at the configured average speed
  - the configured default (5 minutes)

Duplicate (from, to, route) connections keep the shortest duration and the
position of their first occurrence, so provider order is preserved.

# Snapshots

SaveSnapshot and LoadSnapshot keep a gob copy of the last good feed so a
planner can start when the upstream feed is unreachable.
*/
package gtfs
