package analytics

import (
	"errors"
	"fmt"
	"strings"
)

// TimeWindow is a symbolic relative range ending at "now".
type TimeWindow string

const (
	TimeWindow15M TimeWindow = "15M"
	TimeWindow1H  TimeWindow = "1H"
	TimeWindow6H  TimeWindow = "6H"
	TimeWindow12H TimeWindow = "12H"
	TimeWindow24H TimeWindow = "24H"
	TimeWindow7D  TimeWindow = "7D"

	DefaultTimeWindow = TimeWindow1H

	timeRangeTypeRelative = "relative"
)

var ErrInvalidTimeWindow = errors.New("invalid time window")

var timeWindowValues = map[TimeWindow]string{
	TimeWindow15M: "15m",
	TimeWindow1H:  "1h",
	TimeWindow6H:  "6h",
	TimeWindow12H: "12h",
	TimeWindow24H: "24h",
	TimeWindow7D:  "7d",
}

// TimeWindows returns the accepted symbols, shortest first.
func TimeWindows() []TimeWindow {
	return []TimeWindow{TimeWindow15M, TimeWindow1H, TimeWindow6H, TimeWindow12H, TimeWindow24H, TimeWindow7D}
}

// TimeWindowDescriptor is the backend representation of a relative time range.
type TimeWindowDescriptor struct {
	Type  string `json:"type"`
	Value string `json:"time_range"`
}

func ParseTimeWindow(s string) (TimeWindow, error) {
	w := TimeWindow(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := timeWindowValues[w]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeWindow, s)
	}
	return w, nil
}

func Resolve(w TimeWindow) (TimeWindowDescriptor, error) {
	v, ok := timeWindowValues[w]
	if !ok {
		return TimeWindowDescriptor{}, fmt.Errorf("%w: %q", ErrInvalidTimeWindow, string(w))
	}
	return TimeWindowDescriptor{Type: timeRangeTypeRelative, Value: v}, nil
}
