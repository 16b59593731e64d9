// Package gtfsrt fetches GTFS-Realtime service alerts and turns NO_SERVICE
// alerts into closures for the static feed.
//
// Only the alerts feed is consumed. Trip updates and vehicle positions carry
// no information the planner's duration-weighted graph can use.
package gtfsrt
