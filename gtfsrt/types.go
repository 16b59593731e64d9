package gtfsrt

// Alert is a simplified representation of a GTFS-RT service alert
type Alert struct {
	ID       string
	Header   string
	Effect   string
	Periods  []Period
	Entities []Entity
}

// Period is an active window in epoch seconds; zero means unbounded.
type Period struct {
	Start int64
	End   int64
}

// Entity is one informed entity selector.
type Entity struct {
	RouteID string
	StopID  string
	TripID  string
}

// ActiveAt reports whether the alert applies at epoch second ts.
// An alert without periods is always active.
func (a Alert) ActiveAt(ts int64) bool {
	if len(a.Periods) == 0 {
		return true
	}
	for _, p := range a.Periods {
		if (p.Start == 0 || ts >= p.Start) && (p.End == 0 || ts <= p.End) {
			return true
		}
	}
	return false
}
