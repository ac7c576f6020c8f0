package loop

import (
	"sort"
	"strconv"
	"strings"
)

// EdgeSet is a sorted, duplicate-free set of edge ids.
// The zero value is an empty set.
type EdgeSet []int

// NewEdgeSet builds a set from ids in any order.
func NewEdgeSet(ids ...int) EdgeSet {
	if len(ids) == 0 {
		return EdgeSet{}
	}
	s := append(EdgeSet(nil), ids...)
	sort.Ints(s)
	out := s[:1]
	for _, id := range s[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of edges in the set.
func (s EdgeSet) Len() int {
	return len(s)
}

// Contains reports whether edge is in the set.
func (s EdgeSet) Contains(edge int) bool {
	i := sort.SearchInts(s, edge)
	return i < len(s) && s[i] == edge
}

// Equal reports whether both sets hold the same edges.
func (s EdgeSet) Equal(other EdgeSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Union returns a new set holding the edges of s and other.
func (s EdgeSet) Union(other EdgeSet) EdgeSet {
	out := make(EdgeSet, 0, len(s)+len(other))
	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i] < other[j]:
			out = append(out, s[i])
			i++
		case s[i] > other[j]:
			out = append(out, other[j])
			j++
		default:
			out = append(out, s[i])
			i++
			j++
		}
	}
	out = append(out, s[i:]...)
	return append(out, other[j:]...)
}

// String returns the set as "{1 4 7}".
func (s EdgeSet) String() string {
	parts := make([]string, len(s))
	for i, id := range s {
		parts[i] = strconv.Itoa(id)
	}
	return "{" + strings.Join(parts, " ") + "}"
}
