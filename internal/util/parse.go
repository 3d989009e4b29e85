package util

import (
	"strconv"
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// ParseBoundedInt parses s and clamps the result into [min, max]
func ParseBoundedInt(s string, defaultValue, min, max int) int {
	v := ParseInt(s, defaultValue)
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
