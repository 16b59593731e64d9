package graph

// Stop is a physical transit stop
type Stop struct {
	ID   string  `json:"stop_id"`
	Name string  `json:"stop_name"`
	Lat  float64 `json:"stop_lat"`
	Lon  float64 `json:"stop_lon"`
}

// Route is a named transit line
type Route struct {
	ID        string `json:"route_id"`
	ShortName string `json:"route_short_name"`
	LongName  string `json:"route_long_name"`
}

// DisplayName returns the short name, falling back to the long name and then the ID.
func (r Route) DisplayName() string {
	if r.ShortName != "" {
		return r.ShortName
	}
	if r.LongName != "" {
		return r.LongName
	}
	return r.ID
}

// Connection is a directed edge between two stops served by one route
type Connection struct {
	From    string `json:"from_stop"`
	To      string `json:"to_stop"`
	RouteID string `json:"route_id"`
	Minutes int    `json:"duration_minutes"`
}
