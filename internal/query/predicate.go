// Package query builds per-source predicates out of a search request.
//
// Predicates are small values that evaluate against a record in memory and
// are translated into native queries by the storage backends.
package query

import (
	"strings"

	"github.com/DeafMist/legal-radar/internal/dates"
	"github.com/DeafMist/legal-radar/internal/models"
)

// Predicate selects records.
type Predicate interface {
	Match(rec models.Record) bool
}

// Field is a canonical field name followed by the legacy names it may be stored under.
type Field []string

// Canonical returns the preferred field name.
func (f Field) Canonical() string {
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

// All matches every record.
type All struct{}

func (All) Match(models.Record) bool { return true }

// And matches when every clause matches.
type And []Predicate

func (a And) Match(rec models.Record) bool {
	for _, p := range a {
		if !p.Match(rec) {
			return false
		}
	}
	return true
}

// Or matches when any clause matches. An empty Or matches nothing.
type Or []Predicate

func (o Or) Match(rec models.Record) bool {
	for _, p := range o {
		if p.Match(rec) {
			return true
		}
	}
	return false
}

// Contains is a case-insensitive substring match, ORed across Fields.
type Contains struct {
	Fields []string
	Value  string
}

func (c Contains) Match(rec models.Record) bool {
	needle := strings.ToLower(c.Value)
	for _, name := range c.Fields {
		v, ok := rec.Lookup(name)
		if !ok {
			continue
		}
		if s, isString := v.(string); isString && strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

// Equals compares a field with a scalar. A nil Value matches absent or null fields.
type Equals struct {
	Field string
	Value any
}

func (e Equals) Match(rec models.Record) bool {
	v, ok := rec.Lookup(e.Field)
	if e.Value == nil {
		return !ok || v == nil
	}
	if !ok {
		return false
	}
	return scalarEqual(v, e.Value)
}

// In matches when the field equals one of Values.
type In struct {
	Field  string
	Values []string
}

func (in In) Match(rec models.Record) bool {
	v, ok := rec.Lookup(in.Field)
	if !ok {
		return false
	}
	s, isString := v.(string)
	if !isString {
		return false
	}
	for _, want := range in.Values {
		if s == want {
			return true
		}
	}
	return false
}

// IDIs matches the record with the given storage identifier.
type IDIs struct {
	ID models.StorageID
}

func (p IDIs) Match(rec models.Record) bool {
	return p.ID != "" && rec.ID() == p.ID
}

// DateRange filters on a native date field. Records whose date is absent or
// does not parse are never excluded.
type DateRange struct {
	Field Field
	Range dates.Range
}

func (d DateRange) Match(rec models.Record) bool {
	if d.Range.IsZero() {
		return true
	}
	v, ok := rec.First(d.Field...)
	if !ok {
		return true
	}
	raw, isString := v.(string)
	if !isString {
		return true
	}
	t, parsed := dates.Parse(raw)
	if !parsed {
		return true
	}
	return d.Range.Contains(t)
}

func scalarEqual(got, want any) bool {
	switch w := want.(type) {
	case bool:
		g, ok := got.(bool)
		return ok && g == w
	case string:
		switch g := got.(type) {
		case string:
			return g == w
		case models.StorageID:
			return string(g) == w
		}
		return false
	}
	return got == want
}

// Simplify drops no-op clauses so backends receive the smallest tree.
func Simplify(p Predicate) Predicate {
	switch v := p.(type) {
	case nil:
		return All{}
	case And:
		out := make(And, 0, len(v))
		for _, clause := range v {
			s := Simplify(clause)
			if _, isAll := s.(All); isAll {
				continue
			}
			out = append(out, s)
		}
		switch len(out) {
		case 0:
			return All{}
		case 1:
			return out[0]
		}
		return out
	case DateRange:
		if v.Range.IsZero() {
			return All{}
		}
	}
	return p
}
