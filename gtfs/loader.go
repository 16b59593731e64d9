package gtfs

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/transit-fol-planner/graph"
)

// ErrNoStops is returned for an archive without stops.txt rows.
var ErrNoStops = errors.New("gtfs: feed has no stops")

var wanted = map[string]bool{
	"agency.txt": true, "stops.txt": true, "routes.txt": true,
	"trips.txt": true, "stop_times.txt": true, "shapes.txt": true,
}

// LoadFromBytes parses a GTFS zip held in memory.
func LoadFromBytes(data []byte, opts Options) (*Feed, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open gtfs zip: %w", err)
	}
	return load(zr.File, opts)
}

// LoadFromReader parses a GTFS zip from any random-access source.
func LoadFromReader(r io.ReaderAt, size int64, opts Options) (*Feed, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open gtfs zip: %w", err)
	}
	return load(zr.File, opts)
}

// LoadFromFile opens a local GTFS zip file.
func LoadFromFile(p string, opts Options) (*Feed, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return load(zr.File, opts)
}

// Fetch downloads a GTFS zip and returns the raw bytes.
func Fetch(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

type table struct {
	head []string
	rows [][]string
}

// col returns a lookup for one column; missing columns yield "".
func (t *table) col(name string) func(row []string) string {
	i := -1
	for j, h := range t.head {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			i = j
			break
		}
	}
	return func(row []string) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
}

func readTable(f *zip.File) (*table, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	csvr.LazyQuotes = true
	rec, err := csvr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	if len(rec) == 0 {
		return &table{}, nil
	}
	head := rec[0]
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\ufeff")
	}
	return &table{head: head, rows: rec[1:]}, nil
}

type trip struct {
	id, route, shape string
}

type stopTime struct {
	stop     string
	seq      int
	arr, dep string
}

type feedReader struct {
	opts      Options
	feed      *Feed
	coords    map[string]Waypoint
	trips     []trip
	stopTimes map[string][]stopTime
}

func load(files []*zip.File, opts Options) (*Feed, error) {
	if opts.DefaultMinutes <= 0 {
		opts.DefaultMinutes = DefaultOptions().DefaultMinutes
	}
	tables := map[string]*table{}
	for _, f := range files {
		name := strings.ToLower(path.Base(f.Name))
		if !wanted[name] {
			continue
		}
		t, err := readTable(f)
		if err != nil {
			return nil, err
		}
		tables[name] = t
	}

	r := &feedReader{
		opts:      opts,
		feed:      &Feed{Shapes: map[string][]Waypoint{}, Warnings: Warnings{}},
		coords:    map[string]Waypoint{},
		stopTimes: map[string][]stopTime{},
	}
	// order matters: connections need stops, trips and shapes
	for _, name := range []string{"agency.txt", "stops.txt", "routes.txt", "trips.txt", "stop_times.txt", "shapes.txt"} {
		if t, ok := tables[name]; ok {
			r.consume(name, t)
		}
	}
	if len(r.feed.Stops) == 0 {
		return nil, ErrNoStops
	}
	r.buildConnections()
	return r.feed, nil
}

func (r *feedReader) consume(name string, t *table) {
	switch name {
	case "agency.txt":
		agName := t.col("agency_name")
		if len(t.rows) > 0 {
			r.feed.AgencyName = agName(t.rows[0])
		}
	case "stops.txt":
		sID, sN := t.col("stop_id"), t.col("stop_name")
		sLat, sLon := t.col("stop_lat"), t.col("stop_lon")
		for _, row := range t.rows {
			id := sID(row)
			if id == "" {
				r.feed.Warnings.add(WarningStopNoID, sN(row))
				continue
			}
			lat, errLat := strconv.ParseFloat(sLat(row), 64)
			lon, errLon := strconv.ParseFloat(sLon(row), 64)
			s := graph.Stop{ID: id, Name: sN(row)}
			if errLat == nil && errLon == nil && (lat != 0 || lon != 0) {
				s.Lat, s.Lon = lat, lon
				r.coords[id] = Waypoint{Longitude: lon, Latitude: lat}
			} else {
				r.feed.Warnings.add(WarningStopNoCoordinates, id)
			}
			r.feed.Stops = append(r.feed.Stops, s)
		}
	case "routes.txt":
		rID, rSN, rLN := t.col("route_id"), t.col("route_short_name"), t.col("route_long_name")
		for _, row := range t.rows {
			if id := rID(row); id != "" {
				r.feed.Routes = append(r.feed.Routes, graph.Route{ID: id, ShortName: rSN(row), LongName: rLN(row)})
			}
		}
	case "trips.txt":
		rID, tID, sh := t.col("route_id"), t.col("trip_id"), t.col("shape_id")
		for _, row := range t.rows {
			if tID(row) == "" || rID(row) == "" {
				r.feed.Warnings.add(WarningTripIncomplete, tID(row))
				continue
			}
			r.trips = append(r.trips, trip{id: tID(row), route: rID(row), shape: sh(row)})
		}
	case "stop_times.txt":
		tID, sID, sq := t.col("trip_id"), t.col("stop_id"), t.col("stop_sequence")
		arr, dep := t.col("arrival_time"), t.col("departure_time")
		for _, row := range t.rows {
			seq, err := strconv.Atoi(sq(row))
			if err != nil || tID(row) == "" || sID(row) == "" {
				r.feed.Warnings.add(WarningBadStopTime, tID(row))
				continue
			}
			r.stopTimes[tID(row)] = append(r.stopTimes[tID(row)], stopTime{
				stop: sID(row), seq: seq, arr: arr(row), dep: dep(row),
			})
		}
		for _, sts := range r.stopTimes {
			sort.SliceStable(sts, func(i, j int) bool { return sts[i].seq < sts[j].seq })
		}
	case "shapes.txt":
		sh, latIdx, lonIdx, seqIdx := t.col("shape_id"), t.col("shape_pt_lat"), t.col("shape_pt_lon"), t.col("shape_pt_sequence")
		tmp := map[string][]struct {
			pt  Waypoint
			seq int
		}{}
		for _, row := range t.rows {
			lat, err1 := strconv.ParseFloat(latIdx(row), 64)
			lon, err2 := strconv.ParseFloat(lonIdx(row), 64)
			seq, err3 := strconv.Atoi(seqIdx(row))
			if err1 != nil || err2 != nil || err3 != nil {
				r.feed.Warnings.add(WarningBadShapePoint, sh(row))
				continue
			}
			tmp[sh(row)] = append(tmp[sh(row)], struct {
				pt  Waypoint
				seq int
			}{Waypoint{Longitude: lon, Latitude: lat}, seq})
		}
		for shapeID, arr := range tmp {
			sort.SliceStable(arr, func(i, j int) bool { return arr[i].seq < arr[j].seq })
			pts := make([]Waypoint, len(arr))
			for i, p := range arr {
				pts[i] = p.pt
			}
			r.feed.Shapes[shapeID] = pts
		}
	}
}

func (r *feedReader) buildConnections() {
	seen := map[[3]string]int{}
	for _, tr := range r.trips {
		sts := r.stopTimes[tr.id]
		if len(sts) < 2 {
			r.feed.Warnings.add(WarningTripNoStopTimes, tr.id)
			continue
		}
		var track *shapeTrack
		if pts := r.feed.Shapes[tr.shape]; len(pts) > 1 {
			track = newShapeTrack(pts)
		}
		for i := 0; i+1 < len(sts); i++ {
			a, b := sts[i], sts[i+1]
			if a.stop == b.stop {
				continue
			}
			minutes := r.minutes(a, b, track)
			key := [3]string{a.stop, b.stop, tr.route}
			if idx, ok := seen[key]; ok {
				if minutes < r.feed.Connections[idx].Minutes {
					r.feed.Connections[idx].Minutes = minutes
				}
				continue
			}
			seen[key] = len(r.feed.Connections)
			r.feed.Connections = append(r.feed.Connections, graph.Connection{
				From: a.stop, To: b.stop, RouteID: tr.route, Minutes: minutes,
			})
		}
	}
}

func (r *feedReader) minutes(a, b stopTime, track *shapeTrack) int {
	dep, okDep := parseClock(firstNonEmpty(a.dep, a.arr))
	arr, okArr := parseClock(firstNonEmpty(b.arr, b.dep))
	if okDep && okArr && arr >= dep {
		return atLeastOne(int(math.Ceil(float64(arr-dep) / 60)))
	}

	ca, okA := r.coords[a.stop]
	cb, okB := r.coords[b.stop]
	if okA && okB && r.opts.SpeedKMH > 0 {
		km := 0.0
		if track != nil {
			if d, ok := track.between(ca, cb); ok {
				km = d
			}
		}
		if km == 0 {
			km = HaversineKM(ca.Latitude, ca.Longitude, cb.Latitude, cb.Longitude)
		}
		if km > 0 {
			return atLeastOne(int(math.Round(km / r.opts.SpeedKMH * 60)))
		}
	}
	r.feed.Warnings.add(WarningDefaultDuration, a.stop+"->"+b.stop)
	return r.opts.DefaultMinutes
}

// parseClock parses H:MM:SS; hours may exceed 23 for after-midnight trips.
func parseClock(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, false
		}
		v[i] = n
	}
	return v[0]*3600 + v[1]*60 + v[2], true
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
