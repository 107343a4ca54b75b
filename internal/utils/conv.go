package utils

import (
	"strconv"
)

// IntOrDefault parses s as a positive int, returning def when it is empty,
// malformed or not positive.
func IntOrDefault(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

// ParseID parses a path or query id. ok is false for anything that is not a
// positive integer.
func ParseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
