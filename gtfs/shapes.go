package gtfs

import (
	"math"
)

// HaversineKM returns the great-circle distance between two points.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// cumulativeKM returns the distance from the first point to each point.
func cumulativeKM(pts []Waypoint) []float64 {
	cum := make([]float64, len(pts))
	for i := 1; i < len(pts); i++ {
		cum[i] = cum[i-1] + HaversineKM(pts[i-1].Latitude, pts[i-1].Longitude, pts[i].Latitude, pts[i].Longitude)
	}
	return cum
}

// nearestIndex returns the shape point closest to (lat, lon), searching
// from index from onwards so stops project in travel order.
func nearestIndex(pts []Waypoint, lat, lon float64, from int) int {
	best, bestKM := -1, math.Inf(1)
	for i := from; i < len(pts); i++ {
		d := HaversineKM(lat, lon, pts[i].Latitude, pts[i].Longitude)
		if d < bestKM {
			best, bestKM = i, d
		}
	}
	return best
}

// shapeTrack measures distances between successive stops along one shape.
type shapeTrack struct {
	pts  []Waypoint
	cum  []float64
	last int
}

func newShapeTrack(pts []Waypoint) *shapeTrack {
	return &shapeTrack{pts: pts, cum: cumulativeKM(pts)}
}

// between returns the along-shape distance from a to b, or false when the
// projection does not move forward along the shape.
func (s *shapeTrack) between(a, b Waypoint) (float64, bool) {
	i := nearestIndex(s.pts, a.Latitude, a.Longitude, s.last)
	if i < 0 {
		return 0, false
	}
	j := nearestIndex(s.pts, b.Latitude, b.Longitude, i)
	if j <= i {
		return 0, false
	}
	s.last = i
	return s.cum[j] - s.cum[i], true
}
