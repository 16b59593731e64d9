package pathfinder

import (
	"errors"
	"fmt"
)

// ErrSameStop is returned when start and end resolve to the same stop.
var ErrSameStop = errors.New("start and end stops must be different")

// NotFoundError reports that no connection exists between two stops.
type NotFoundError struct {
	From string
	To   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no route found from %s to %s", e.From, e.To)
}
