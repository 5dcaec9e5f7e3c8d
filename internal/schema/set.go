package schema

import (
	"fmt"
	"sort"
	"strings"
)

// maxSetRepr bounds how much of a set is echoed back in error messages.
const maxSetRepr = 50

// Set is a membership test over a fixed collection of values.
type Set[T comparable] interface {
	Contains(v T) bool
	Len() int // -1 for the wildcard set
	String() string
}

type finiteSet[T comparable] map[T]struct{}

// NewSet returns the set holding exactly values. An empty set rejects
// everything.
func NewSet[T comparable](values ...T) Set[T] {
	s := make(finiteSet[T], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s finiteSet[T]) Contains(v T) bool {
	_, ok := s[v]
	return ok
}

func (s finiteSet[T]) Len() int {
	return len(s)
}

func (s finiteSet[T]) String() string {
	items := make([]string, 0, len(s))
	for v := range s {
		items = append(items, fmt.Sprintf("%v", v))
	}
	sort.Strings(items)
	repr := "{" + strings.Join(items, ", ") + "}"
	if len(repr) >= maxSetRepr {
		repr = repr[:maxSetRepr/2] + " ... " + repr[len(repr)-maxSetRepr/2:]
	}
	return repr
}

type anySet[T comparable] struct{}

// Any returns the wildcard set: every value is a member.
func Any[T comparable]() Set[T] {
	return anySet[T]{}
}

func (anySet[T]) Contains(T) bool { return true }
func (anySet[T]) Len() int        { return -1 }
func (anySet[T]) String() string  { return "{*}" }
