package matrix

import (
	"errors"
	"fmt"
	"sort"
)

// Set is an immutable set of labels naming the wired matrix positions.
// The zero value is an empty set.
type Set struct {
	members map[string]struct{}
}

// NewSet builds a Set from labels. Duplicates collapse.
func NewSet(labels ...string) Set {
	members := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		members[l] = struct{}{}
	}
	return Set{members: members}
}

// Contains reports whether label is in the set.
func (s Set) Contains(label string) bool {
	_, ok := s.members[label]
	return ok
}

// Len returns the number of distinct labels.
func (s Set) Len() int {
	return len(s.members)
}

// Labels returns the members in sorted order. The slice is a copy.
func (s Set) Labels() []string {
	out := make([]string, 0, len(s.members))
	for l := range s.members {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Validate checks every member of s against a rows x cols matrix and
// returns all problems joined, or nil. Malformed labels wrap
// ErrMalformedLabel; well-formed labels outside the matrix wrap
// ErrOutOfBounds.
func Validate(s Set, prefix string, rows, cols int) error {
	if err := CheckDimensions(rows, cols); err != nil {
		return err
	}

	var errs []error
	for _, label := range s.Labels() {
		coord, err := ParseLabel(prefix, label)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if coord.Row >= rows || coord.Col >= cols {
			errs = append(errs, fmt.Errorf("%w: %q at %s in %dx%d", ErrOutOfBounds, label, coord, rows, cols))
		}
	}
	return errors.Join(errs...)
}
