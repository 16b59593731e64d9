// Package pathfinder selects a candidate route between two stops of a
// transit graph.
//
// The search runs over (stop, route) states so that riding on along one
// route is free while changing route at a stop counts one transfer. With
// PreferFewerTransfers the search is ordered by (transfers, minutes); without
// it by (minutes, transfers). Remaining ties go to discovery order, which is
// stable because graph neighbors are returned in provider order.
package pathfinder
