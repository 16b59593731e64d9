package gtfs

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Warning kinds recorded while loading a feed.
const (
	WarningStopNoID          = "stop_no_id"
	WarningStopNoCoordinates = "stop_no_coordinates"
	WarningTripIncomplete    = "trip_incomplete"
	WarningBadStopTime       = "bad_stop_time"
	WarningTripNoStopTimes   = "trip_no_stop_times"
	WarningBadShapePoint     = "bad_shape_point"
	WarningDefaultDuration   = "default_duration"
)

const maxWarningExamples = 3

// WarningInfo aggregates one kind of skipped or degraded record.
type WarningInfo struct {
	Count    int
	Examples []string
}

// Warnings collects loader warnings by kind.
type Warnings map[string]*WarningInfo

func (w Warnings) add(kind, example string) {
	info := w[kind]
	if info == nil {
		info = &WarningInfo{}
		w[kind] = info
	}
	info.Count++
	if len(info.Examples) < maxWarningExamples && example != "" {
		info.Examples = append(info.Examples, example)
	}
}

// Count returns how often kind was recorded.
func (w Warnings) Count(kind string) int {
	if info := w[kind]; info != nil {
		return info.Count
	}
	return 0
}

// Log writes one consolidated line per warning kind.
func (w Warnings) Log(logger *zap.Logger, feed string) {
	kinds := make([]string, 0, len(w))
	for k := range w {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		info := w[k]
		logger.Warn("gtfs load warning",
			zap.String("feed", feed),
			zap.String("kind", k),
			zap.Int("count", info.Count),
			zap.String("examples", strings.Join(info.Examples, ", ")),
		)
	}
}
