package sexpr

import (
	"fmt"
	"strconv"
)

// Find returns the first child list of s whose key matches
// Example: Find(lesson, "title") finds (title "...") inside (lesson ...)
func Find(s *List, key string) (*List, bool) {
	for _, item := range s.Items() {
		if sub, ok := item.(*List); ok && sub.Key() == key {
			return sub, true
		}
	}
	return nil, false
}

// FindAll returns every child list of s whose key matches
func FindAll(s *List, key string) []*List {
	var results []*List
	for _, item := range s.Items() {
		if sub, ok := item.(*List); ok && sub.Key() == key {
			results = append(results, sub)
		}
	}
	return results
}

// Children returns the child lists of s, skipping atoms
func Children(s *List) []*List {
	var results []*List
	for _, item := range s.Items() {
		if sub, ok := item.(*List); ok {
			results = append(results, sub)
		}
	}
	return results
}

// HasFlag reports whether a bare symbol equal to flag appears among the args
// Example: HasFlag((choice "A" correct), "correct") == true
func HasFlag(s *List, flag string) bool {
	for _, item := range s.Args() {
		if sym, ok := item.(Symbol); ok && string(sym) == flag {
			return true
		}
	}
	return false
}

// GetString extracts the atom at index (0 is the key)
func GetString(s *List, index int) (string, error) {
	item := s.Get(index)
	if item == nil {
		return "", fmt.Errorf("line %d: (%s) index %d out of bounds (length %d)", s.Line, s.Key(), index, s.Len())
	}
	str, ok := Atom(item)
	if !ok {
		return "", fmt.Errorf("line %d: (%s) expected atom at index %d, got list", s.Line, s.Key(), index)
	}
	return str, nil
}

// GetFloat extracts a float64 at index
func GetFloat(s *List, index int) (float64, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: failed to parse float %q: %w", s.Line, str, err)
	}
	return val, nil
}

// GetInt extracts an int at index
func GetInt(s *List, index int) (int, error) {
	str, err := GetString(s, index)
	if err != nil {
		return 0, err
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("line %d: failed to parse int %q: %w", s.Line, str, err)
	}
	return val, nil
}

// Field returns the first argument of the child list named key,
// e.g. Field(lesson, "title") for (lesson (title "Intro")).
func Field(s *List, key string) (string, bool) {
	sub, ok := Find(s, key)
	if !ok {
		return "", false
	}
	str, err := GetString(sub, 1)
	if err != nil {
		return "", false
	}
	return str, true
}
