package utils

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// TrimmedSet builds a set from the given values, trimming whitespace and
// dropping empty entries.
func TrimmedSet(values []string) mapset.Set[string] {
	set := mapset.NewSet[string]()
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			set.Add(v)
		}
	}
	return set
}

// ToStringSlice converts loosely typed configuration values (as produced by
// viper or JSON decoding) to a string slice. ok is false when v is not a list
// of strings.
func ToStringSlice(v interface{}) ([]string, bool) {
	switch typed := v.(type) {
	case []string:
		return typed, true
	case []interface{}:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		return []string{typed}, true
	default:
		return nil, false
	}
}
