// Package dateutil parses the loosely formatted dates and times typed into
// the intake form and renders the canonical forms stored in the flat files.
package dateutil

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	// DateLayout is the canonical date of birth / appointment date form.
	DateLayout = "2006-01-02"
	// TimestampLayout is the ISO-8601 form used for slot start and end columns.
	TimestampLayout = "2006-01-02T15:04:05"
	// LogTimestampLayout stamps communications log rows, keeping microseconds.
	LogTimestampLayout = "2006-01-02T15:04:05.999999"
	// DisplayLayout is used in messages shown to patients.
	DisplayLayout = "2006-01-02 15:04"
)

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"15.04",
	"1504",
	"3:04PM",
	"3:04 PM",
	"3:04pm",
	"3:04 pm",
	"3PM",
	"3 PM",
	"3pm",
	"3 pm",
}

// dateLayouts cover month-first forms dateparse turns down.
var dateLayouts = []string{
	"01-02-2006",
	"1-2-2006",
	"Jan 2, 2006",
	"Jan 2 2006",
}

// monthNames rewrites spellings dateparse does not know.
var monthNames = strings.NewReplacer("Sept ", "Sep ", "sept ", "sep ", "SEPT ", "SEP ")

// ParseDate reads s with general-purpose parsing and keeps only the calendar date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	s = monthNames.Replace(s)
	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		var ok bool
		if t, ok = parseLayouts(dateLayouts, s); !ok {
			return time.Time{}, err
		}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local), nil
}

// NormalizeDate returns s as YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

func parseLayouts(layouts []string, s string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseClock reads a time of day. Bare clock forms are tried first, then
// full timestamps whose clock part is kept. Input without a clock part is
// rejected rather than read as midnight.
func ParseClock(s string) (hour, minute, second int, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, 0, fmt.Errorf("empty time")
	}
	if t, ok := parseLayouts(clockLayouts, s); ok {
		return t.Hour(), t.Minute(), t.Second(), nil
	}
	if !strings.Contains(s, ":") {
		return 0, 0, 0, fmt.Errorf("no time of day in %q", s)
	}
	t, perr := dateparse.ParseIn(s, time.Local)
	if perr != nil {
		return 0, 0, 0, perr
	}
	return t.Hour(), t.Minute(), t.Second(), nil
}

// FormatTimestamp renders t in the ledger's ISO-8601 form.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// FormatLogTimestamp renders t for the communications log.
func FormatLogTimestamp(t time.Time) string {
	return t.Format(LogTimestampLayout)
}

// ParseTimestamp reads a ledger timestamp in local time.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), time.Local)
}
