// Package dates turns the native date strings of every source into
// comparable instants.
//
// News items carry ISO timestamps, report entries use DD.MM.YYYY and
// gazettes DD/MM/YYYY. Parsing never fails loudly: a value that cannot be
// read normalizes to Epoch, so it sorts first ascending and last descending.
package dates

import (
	"strings"
	"time"
)

// Epoch is the sentinel returned for unparseable dates.
var Epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// BoundLayout is the layout of date query parameters.
const BoundLayout = "2006-01-02"

// NaiveISO is the layout used when rendering numeric legacy dates.
const NaiveISO = "2006-01-02T15:04:05"

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	NaiveISO,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	BoundLayout,
	"2.1.2006",
	"2/1/2006",
	"2.1.2006 15:04",
	"2/1/2006 15:04",
}

// Parse reads a date in any supported encoding. Values without a zone are UTC.
func Parse(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize parses raw or returns Epoch.
func Normalize(raw string) time.Time {
	if t, ok := Parse(raw); ok {
		return t
	}
	return Epoch
}

// Millis returns the derived timestamp of raw in epoch milliseconds.
// Absent and malformed dates both yield 0.
func Millis(raw string) int64 {
	return Normalize(raw).UnixMilli()
}

// StartOfDay truncates t to 00:00:00 in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay moves t to 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// ParseBound reads a YYYY-MM-DD query bound. Upper bounds cover the whole day.
func ParseBound(raw string, end bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(BoundLayout, raw, time.UTC)
	if err != nil {
		full, ok := Parse(raw)
		if !ok || !strings.Contains(raw, "-") {
			return time.Time{}, false
		}
		t = full
	}
	if end {
		return EndOfDay(t), true
	}
	return StartOfDay(t), true
}

// Range is an inclusive interval; a nil side is open.
type Range struct {
	Start *time.Time
	End   *time.Time
}

// NewRange builds a range from query bounds, dropping the ones that do not parse.
func NewRange(start, end string) Range {
	var r Range
	if t, ok := ParseBound(start, false); ok {
		r.Start = &t
	}
	if t, ok := ParseBound(end, true); ok {
		r.End = &t
	}
	return r
}

// IsZero reports whether the range constrains nothing.
func (r Range) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}
