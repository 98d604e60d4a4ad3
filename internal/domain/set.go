package domain

import (
	"encoding/json"
	"sort"
)

// StringSet is an unordered set of identifiers.
// It encodes to JSON as a sorted array so persisted documents are stable.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given values, dropping empty strings
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		if v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// Add inserts values and reports how many were new
func (s StringSet) Add(values ...string) int {
	added := 0
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := s[v]; !ok {
			s[v] = struct{}{}
			added++
		}
	}
	return added
}

// Has reports whether v is in the set
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of members
func (s StringSet) Len() int {
	return len(s)
}

// Sorted returns the members in ascending order
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy
func (s StringSet) Clone() StringSet {
	out := make(StringSet, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the set as a sorted array
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes an array into the set
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}
