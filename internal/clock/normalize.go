package clock

import (
	"fmt"
	"time"

	"github.com/pBarszczewska/booking-api/internal/domain"
)

// Mode selects how the end of a booking interval is derived from its start.
type Mode string

const (
	// ModeDuration books start + N hours, minimum one.
	ModeDuration Mode = "duration"
	// ModeWholeDay books until 23:59:59 of the start's local calendar day.
	// The one-second gap before midnight matches the historical behavior.
	ModeWholeDay Mode = "whole_day"
)

// Interval is a canonical half-open UTC booking window [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// startLayouts are the wall-clock formats accepted for booking starts.
// None carry a zone; the location argument supplies the offset.
var startLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Normalize parses startLocal as a wall-clock timestamp in loc and derives
// the UTC interval for the requested mode. DST is handled by the offset in
// effect at that instant. durationHours is ignored for ModeWholeDay; for
// ModeDuration a zero or negative value defaults to one hour.
func Normalize(startLocal string, mode Mode, durationHours int, loc *time.Location) (Interval, error) {
	if loc == nil {
		loc = time.Local
	}

	start, err := parseLocal(startLocal, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %v", domain.ErrInvalidInterval, err)
	}

	var end time.Time
	switch mode {
	case ModeWholeDay:
		y, m, d := start.Date()
		end = time.Date(y, m, d, 23, 59, 59, 0, loc)
	case ModeDuration:
		hours := durationHours
		if hours <= 0 {
			hours = 1
		}
		end = start.Add(time.Duration(hours) * time.Hour)
	default:
		return Interval{}, fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInterval, mode)
	}

	iv := Interval{Start: start.UTC(), End: end.UTC()}
	if !iv.Start.Before(iv.End) {
		return Interval{}, fmt.Errorf("%w: end %s is not after start %s",
			domain.ErrInvalidInterval, iv.End.Format(time.RFC3339), iv.Start.Format(time.RFC3339))
	}
	return iv, nil
}

func parseLocal(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty start timestamp")
	}
	for _, layout := range startLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	// RFC3339 inputs carry their own offset; the instant is kept but
	// re-expressed in loc so ModeWholeDay derives the calendar day from
	// the same zone the end of day is built in.
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	return time.Time{}, fmt.Errorf("unparseable start timestamp %q", value)
}
