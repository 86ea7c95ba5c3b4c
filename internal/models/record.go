package models

import (
	"strings"
)

// StorageID is the opaque identifier the document store assigns on insertion.
type StorageID string

func (id StorageID) String() string { return string(id) }

// Record keys shared by every collection.
const (
	KeyID       = "_id"
	KeyLegacyID = "id"
)

// Record is a raw stored document. The storage identifier, when known,
// lives under KeyID as a StorageID.
type Record map[string]any

// ID returns the storage identifier of the record.
func (r Record) ID() StorageID {
	switch v := r[KeyID].(type) {
	case StorageID:
		return v
	case string:
		return StorageID(v)
	}
	return ""
}

// Lookup resolves a dotted path through nested records.
func (r Record) Lookup(path string) (any, bool) {
	var cur any = r
	for _, part := range strings.Split(path, ".") {
		var m map[string]any
		switch v := cur.(type) {
		case Record:
			m = v
		case map[string]any:
			m = v
		default:
			return nil, false
		}
		next, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// First returns the first non-nil value among the given field names.
func (r Record) First(names ...string) (any, bool) {
	for _, name := range names {
		if v, ok := r.Lookup(name); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
