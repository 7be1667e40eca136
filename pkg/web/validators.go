package web

import (
	"strconv"
)

// QueryInt reads an integer query parameter. An absent or malformed value yields def;
// the result is clamped to [min, max].
func QueryInt(query map[string][]string, key string, def, min, max int) int {
	values, ok := query[key]
	if !ok || len(values) == 0 || values[0] == "" {
		return def
	}
	n, err := strconv.Atoi(values[0])
	if err != nil {
		return def
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
