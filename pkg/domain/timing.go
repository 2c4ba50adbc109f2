package domain

import (
	"fmt"
	"strings"
	"time"

	domerr "github.com/opst/crqboard/pkg/domain/errors"
)

// TimeLayout is the format operators read and write times in.
const TimeLayout = "02/01/2006 15:04:05"

// layouts accepted in spreadsheet cells, in addition to TimeLayout.
var sheetLayouts = []string{
	TimeLayout,
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"02/01/2006",
	"2006-01-02",
}

// Zone returns the fixed time zone for the UTC offset in hours.
//
// The change window is operated in GMT-3, so Zone(-3) is the usual one.
func Zone(offsetHours int) *time.Location {
	name := "GMT"
	if offsetHours != 0 {
		name = fmt.Sprintf("GMT%+d", offsetHours)
	}
	return time.FixedZone(name, offsetHours*60*60)
}

// ParseTime parses a time written by an operator.
//
// Empty string means "unset" and gives (nil, nil).
func ParseTime(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(TimeLayout, s, loc)
	if err != nil {
		return nil, domerr.NewInvalid(
			"time", fmt.Sprintf("%q is not in the format DD/MM/YYYY HH:MM:SS", s),
		)
	}
	return &t, nil
}

// ParseSheetTime parses a time found in a spreadsheet cell.
//
// It accepts the operator format, ISO-like formats and dates without time.
func ParseSheetTime(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "nat") {
		return nil, nil
	}
	for _, layout := range sheetLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, nil
		}
	}
	return nil, domerr.NewInvalid("time", fmt.Sprintf("%q is not a known date format", s))
}

// FormatTime writes the time in the operator format, in the zone loc.
//
// nil is written as "".
func FormatTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format(TimeLayout)
}

// Delay is the lateness of an activity in whole minutes.
//
// Positive is late, negative is early. Fractions are truncated toward zero.
// When either time is unset, it is 0.
func Delay(plannedEnd, actualEnd *time.Time) int {
	if plannedEnd == nil || actualEnd == nil {
		return 0
	}
	return int(actualEnd.Sub(*plannedEnd).Minutes())
}

// FormatDelay renders delay minutes, like "+1h 15min" or "-30 min".
func FormatDelay(minutes int) string {
	if minutes == 0 {
		return "0 min"
	}
	sign := "+"
	abs := minutes
	if minutes < 0 {
		sign = "-"
		abs = -minutes
	}
	if abs < 60 {
		return fmt.Sprintf("%s%d min", sign, abs)
	}
	hours, mins := abs/60, abs%60
	if mins == 0 {
		return fmt.Sprintf("%s%dh", sign, hours)
	}
	return fmt.Sprintf("%s%dh %dmin", sign, hours, mins)
}

// StatusByDelay turns a done activity into late or early by its delay.
//
// Statuses other than StatusDone are returned as they are.
func StatusByDelay(status Status, delayMinutes int) Status {
	if status != StatusDone {
		return status
	}
	switch {
	case delayMinutes > 0:
		return StatusLate
	case delayMinutes < 0:
		return StatusEarly
	}
	return status
}
