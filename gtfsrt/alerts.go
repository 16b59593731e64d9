package gtfsrt

import (
	"fmt"
	"time"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/theoremus-urban-solutions/transit-fol-planner/gtfs"
)

// ParseAlerts decodes a service alerts FeedMessage. Entities without an
// alert are skipped.
func ParseAlerts(data []byte) ([]Alert, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var fm gtfsrtpb.FeedMessage
	if err := proto.Unmarshal(data, &fm); err != nil {
		return nil, fmt.Errorf("failed to decode alerts feed: %w", err)
	}

	var out []Alert
	for _, e := range fm.Entity {
		if e.Alert == nil {
			continue
		}
		a := e.Alert
		ra := Alert{ID: e.GetId(), Effect: a.GetEffect().String()}
		if a.HeaderText != nil {
			ra.Header = translatedText(a.HeaderText)
		}
		for _, ap := range a.ActivePeriod {
			ra.Periods = append(ra.Periods, Period{Start: int64(ap.GetStart()), End: int64(ap.GetEnd())})
		}
		for _, ie := range a.InformedEntity {
			ent := Entity{RouteID: ie.GetRouteId(), StopID: ie.GetStopId()}
			if ie.Trip != nil {
				ent.TripID = ie.Trip.GetTripId()
			}
			ra.Entities = append(ra.Entities, ent)
		}
		out = append(out, ra)
	}
	return out, nil
}

func translatedText(ts *gtfsrtpb.TranslatedString) string {
	for _, tr := range ts.Translation {
		if tr.Text != nil {
			return *tr.Text
		}
	}
	return ""
}

// Closures collects NO_SERVICE alerts active at now into stop and route
// closures. A selector naming both a route and a stop closes that stop for
// that route only. Trip-level selectors are ignored.
func Closures(alerts []Alert, now time.Time) *gtfs.Closures {
	c := &gtfs.Closures{
		Stops:      map[string]bool{},
		Routes:     map[string]bool{},
		RouteStops: map[[2]string]bool{},
	}
	ts := now.Unix()
	noService := gtfsrtpb.Alert_NO_SERVICE.String()
	for _, a := range alerts {
		if a.Effect != noService || !a.ActiveAt(ts) {
			continue
		}
		for _, e := range a.Entities {
			switch {
			case e.RouteID != "" && e.StopID != "":
				c.RouteStops[[2]string{e.RouteID, e.StopID}] = true
			case e.RouteID != "":
				c.Routes[e.RouteID] = true
			case e.StopID != "":
				c.Stops[e.StopID] = true
			}
		}
	}
	return c
}

// ParseClosures decodes an alerts feed and returns the closures active at now.
func ParseClosures(data []byte, now time.Time) (*gtfs.Closures, error) {
	alerts, err := ParseAlerts(data)
	if err != nil {
		return nil, err
	}
	return Closures(alerts, now), nil
}
