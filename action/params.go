package action

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Params are the decoded members of an inbound request body.
type Params map[string]any

// Has reports whether key is present with a non-null value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Int returns key converted to an integer. Values that do not convert yield 0.
func (p Params) Int(key string) int64 {
	return toInt(p[key])
}

// Text returns key as sanitized single-line text.
func (p Params) Text(key string) string {
	return sanitizeText(toString(p[key]))
}

// Raw returns key as a string without sanitizing.
func (p Params) Raw(key string) string {
	return toString(p[key])
}

// Bool returns key as a boolean using loose truthiness.
func (p Params) Bool(key string) bool {
	switch v := p[key].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "0"
	default:
		return toInt(v) != 0
	}
}

// Map returns key when it holds an object.
func (p Params) Map(key string) (map[string]any, bool) {
	m, ok := p[key].(map[string]any)
	return m, ok
}

// List returns key when it holds an array.
func (p Params) List(key string) ([]any, bool) {
	l, ok := p[key].([]any)
	return l, ok
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case int32:
		return int64(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return int64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		f, _ := n.Float64()
		return int64(f)
	case string:
		return leadingInt(n)
	case bool:
		if n {
			return 1
		}
	}
	return 0
}

// leadingInt parses the integer prefix of s, ignoring surrounding space.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) {
		c := s[end]
		if (c == '-' || c == '+') && end == 0 {
			end++
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		end++
	}
	i, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return i
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		if s {
			return "1"
		}
		return ""
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case json.Number:
		return s.String()
	case map[string]any, []any:
		b, err := json.Marshal(s)
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return fmt.Sprint(s)
	}
}

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// sanitizeText strips markup and collapses whitespace.
func sanitizeText(s string) string {
	s = tagPattern.ReplaceAllString(s, "")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
