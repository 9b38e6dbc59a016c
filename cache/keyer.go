package cache

import (
	"fmt"
	"sort"
	"strings"
)

// NullToken is the serialization of an absent parameter value. Absent values
// are never omitted from the key: two calls with the same parameter shape
// collide predictably, so callers must always pass the full shape.
const NullToken = "null"

// BuildKey derives a deterministic cache key from a resource prefix and an
// unordered parameter set.
//
// Parameter names are sorted lexicographically, rendered as name=value pairs
// joined by "&", and prefixed with "prefix:". A nil value renders as
// NullToken. Identical (prefix, params) inputs always yield an identical
// key, regardless of map iteration order.
//
//	BuildKey("level", map[string]any{"levelId": "3", "language": nil})
//	// "level:language=null&levelId=3"
func BuildKey(prefix string, params map[string]any) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte(':')
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(stringify(params[name]))
	}
	return b.String()
}

func stringify(v any) string {
	if v == nil {
		return NullToken
	}
	switch val := v.(type) {
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
