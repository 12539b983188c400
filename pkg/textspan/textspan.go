// Package textspan locates exact substring occurrences inside free text.
//
// Offsets are zero-based byte indexes into the searched string. Matches never
// overlap: after a match the scan resumes at the end of that match, so
// searching "aa" in "aaaa" yields 0 and 2 only.
package textspan

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrInvalidArgument is returned when the search string is empty.
var ErrInvalidArgument = errors.New("invalid argument")

func checkSubstr(substr string) error {
	if substr == "" {
		return fmt.Errorf("%w: search string must not be empty", ErrInvalidArgument)
	}
	return nil
}

func scan(substr, s string, yield func(int) bool) {
	cursor := 0
	for cursor <= len(s)-len(substr) {
		idx := strings.Index(s[cursor:], substr)
		if idx == -1 {
			return
		}
		if !yield(cursor + idx) {
			return
		}
		cursor += idx + len(substr)
	}
}

// Offsets returns the start offsets of substr in s as a lazy sequence.
// Every range over the sequence starts a fresh scan.
func Offsets(substr, s string) (iter.Seq[int], error) {
	if err := checkSubstr(substr); err != nil {
		return nil, err
	}

	return func(yield func(int) bool) {
		scan(substr, s, yield)
	}, nil
}

// IndexesOf returns the start offsets of all non-overlapping occurrences of
// substr in s in increasing order. The slice is empty, not nil, when there is
// no occurrence.
func IndexesOf(substr, s string) ([]int, error) {
	if err := checkSubstr(substr); err != nil {
		return nil, err
	}

	indexes := make([]int, 0)
	scan(substr, s, func(i int) bool {
		indexes = append(indexes, i)
		return true
	})
	return indexes, nil
}

// First returns the offset of the first occurrence of substr in s.
func First(substr, s string) (int, bool, error) {
	if err := checkSubstr(substr); err != nil {
		return 0, false, err
	}

	first, found := 0, false
	scan(substr, s, func(i int) bool {
		first, found = i, true
		return false
	})
	return first, found, nil
}
