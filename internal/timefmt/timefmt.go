// Package timefmt converts between the backend's year-less display format
// and the datetime-local input format used by the job form.
package timefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DisplayLayout is the backend's timestamp format, e.g. "05/03 - 08:30".
	DisplayLayout = "02/01 - 15:04"
	// InputLayout is the datetime-local control format.
	InputLayout = "2006-01-02T15:04"

	inputLayoutSeconds = "2006-01-02T15:04:05"
	displaySeparator   = " - "
)

// DisplayToInput converts "DD/MM - HH:MM" to "YYYY-MM-DDTHH:MM" using the
// year of now. The display format has no year, so a value from another
// year comes back with the wrong one. Empty or malformed input yields "".
func DisplayToInput(display string, now time.Time) string {
	if display == "" {
		return ""
	}
	datePart, timePart, ok := strings.Cut(display, displaySeparator)
	if !ok {
		return ""
	}
	dayStr, monthStr, ok := strings.Cut(datePart, "/")
	if !ok {
		return ""
	}
	day, err := strconv.Atoi(strings.TrimSpace(dayStr))
	if err != nil {
		return ""
	}
	month, err := strconv.Atoi(strings.TrimSpace(monthStr))
	if err != nil || month < 1 || month > 12 {
		return ""
	}
	clock, err := time.Parse("15:04", strings.TrimSpace(timePart))
	if err != nil {
		return ""
	}

	t := time.Date(now.Year(), time.Month(month), day, clock.Hour(), clock.Minute(), 0, 0, time.Local)
	// time.Date normalises 31/04 into May; reject instead.
	if t.Day() != day || int(t.Month()) != month {
		return ""
	}
	return t.Format(InputLayout)
}

// InputToDisplay converts "YYYY-MM-DDTHH:MM" (seconds optional) to
// "DD/MM - HH:MM", dropping the year. Empty or malformed input yields "".
func InputToDisplay(input string) string {
	if input == "" {
		return ""
	}
	t, err := parseInput(input)
	if err != nil {
		return ""
	}
	return t.Format(DisplayLayout)
}

func parseInput(s string) (time.Time, error) {
	for _, layout := range []string{InputLayout, inputLayoutSeconds} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime-local value %q", s)
}
