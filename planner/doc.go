/*
Package planner is the planning boundary: it resolves the requested stops,
finds a candidate path, has it verified by the reasoning engines and prices
it.

Expected business outcomes (unknown stop, no route, disproved path) are
reported in TripResult.Success and TripResult.Error. Plan returns an error
only when no usable graph is published, which happens before the first
successful load or after a feed failed its integrity checks.

FeedSource loads the static feed and its service alerts and publishes the
resulting graph to the shared graph.Store.
*/
package planner
