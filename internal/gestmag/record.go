package gestmag

import "time"

// Field is one named scalar read from an archive row. Value holds a string,
// float64, time.Time, bool, or nil.
type Field struct {
	Name  string
	Value any
}

// Record is one archive row as an ordered field list. Order matters: legacy
// archives can carry duplicate column names, and the first occurrence is the
// authoritative one.
type Record []Field

// Get returns the value of the first field named name.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// String returns the first value of name as a string, or "" when absent or
// not a string.
func (r Record) String(name string) string {
	v, ok := r.Get(name)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Number returns the first value of name as a float64.
func (r Record) Number(name string) (float64, bool) {
	v, ok := r.Get(name)
	if !ok {
		return 0, false
	}
	n, ok := v.(float64)
	return n, ok
}

// Date returns the first value of name as a time.Time.
func (r Record) Date(name string) (time.Time, bool) {
	v, ok := r.Get(name)
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok
}
