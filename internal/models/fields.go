package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/DeafMist/legal-radar/internal/dates"
)

// Derived date fields are written next to a native date field by the ingest
// worker and the backfill job. <field>_ms holds epoch milliseconds and is only
// present when the native value parsed; <field>_checked marks the document as
// processed either way.
const (
	millisSuffix  = "_ms"
	checkedSuffix = "_checked"
)

// MillisField names the derived millisecond field of a native date field.
func MillisField(field string) string { return field + millisSuffix }

// CheckedField names the derived marker field of a native date field.
func CheckedField(field string) string { return field + checkedSuffix }

// NativeDateField returns the native date field of a collection with its
// accepted legacy variants, canonical name first.
func NativeDateField(collection string) []string {
	switch collection {
	case CollectionNews:
		return []string{"published_at"}
	case CollectionReports:
		return []string{"date", "Date"}
	case CollectionGazettes:
		return []string{"publish_date"}
	}
	return nil
}

// Derive stamps the derived date fields of rec in place.
func Derive(collection string, rec Record) {
	names := NativeDateField(collection)
	if len(names) == 0 {
		return
	}
	canonical := names[0]
	raw, _ := rec.First(names...)
	if t, ok := dates.Parse(nativeDate(raw)); ok {
		rec[MillisField(canonical)] = t.UnixMilli()
	} else {
		delete(rec, MillisField(canonical))
	}
	rec[CheckedField(canonical)] = true
}

func isDerived(key string) bool {
	return strings.HasSuffix(key, millisSuffix) || strings.HasSuffix(key, checkedSuffix)
}

// fieldReader pulls canonical values out of a record while remembering which
// keys were consumed, so that the rest can travel along untouched.
type fieldReader struct {
	rec  Record
	used map[string]struct{}
}

func newFieldReader(rec Record) *fieldReader {
	return &fieldReader{rec: rec, used: map[string]struct{}{KeyID: {}, KeyLegacyID: {}}}
}

func (f *fieldReader) value(names ...string) (any, bool) {
	var (
		out   any
		found bool
	)
	for _, name := range names {
		v, ok := f.rec[name]
		if !ok {
			continue
		}
		f.used[name] = struct{}{}
		if !found && v != nil {
			out, found = v, true
		}
	}
	return out, found
}

func (f *fieldReader) str(names ...string) string {
	v, ok := f.value(names...)
	if !ok {
		return ""
	}
	return toString(v)
}

func (f *fieldReader) date(names ...string) string {
	v, _ := f.value(names...)
	return nativeDate(v)
}

func (f *fieldReader) boolean(name string) bool {
	v, ok := f.value(name)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// triState distinguishes absent/null (nil) from an explicit boolean.
func (f *fieldReader) triState(name string) *bool {
	v, ok := f.value(name)
	if !ok {
		return nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return nil
	}
	return &b
}

func (f *fieldReader) float(name string) float64 {
	v, ok := f.value(name)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		out, _ := n.Float64()
		return out
	case string:
		out, _ := strconv.ParseFloat(n, 64)
		return out
	}
	return 0
}

func (f *fieldReader) instant(name string) *time.Time {
	v, ok := f.value(name)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		u := t.UTC()
		return &u
	case string:
		if parsed, ok := dates.Parse(t); ok {
			return &parsed
		}
	}
	return nil
}

func (f *fieldReader) list(names ...string) []any {
	v, ok := f.value(names...)
	if !ok {
		return nil
	}
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	}
	return []any{v}
}

func (f *fieldReader) extra() Record {
	var out Record
	for k, v := range f.rec {
		if _, ok := f.used[k]; ok || isDerived(k) {
			continue
		}
		if out == nil {
			out = Record{}
		}
		out[k] = v
	}
	return out
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case StorageID:
		return string(s)
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// nativeDate renders a stored date value as a string. Numeric values are
// legacy epoch milliseconds and come back as naive ISO.
func nativeDate(v any) string {
	switch d := v.(type) {
	case string:
		return d
	case time.Time:
		return d.UTC().Format(dates.NaiveISO)
	case float64:
		return time.UnixMilli(int64(d)).UTC().Format(dates.NaiveISO)
	case int64:
		return time.UnixMilli(d).UTC().Format(dates.NaiveISO)
	case int:
		return time.UnixMilli(int64(d)).UTC().Format(dates.NaiveISO)
	case json.Number:
		if n, err := d.Int64(); err == nil {
			return time.UnixMilli(n).UTC().Format(dates.NaiveISO)
		}
	}
	return ""
}
