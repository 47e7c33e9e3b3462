package payload

import "strings"

// CollapseMeta flattens stored meta: a key with exactly one value becomes a
// scalar, any other count stays a list.
func CollapseMeta(meta map[string][]string) map[string]any {
	out := make(map[string]any, len(meta))
	for k, values := range meta {
		out[k] = collapse(values)
	}
	return out
}

func collapse(values []string) any {
	if len(values) == 1 {
		return values[0]
	}
	list := make([]string, len(values))
	copy(list, values)
	return list
}

// sensitiveUserMeta are user meta keys never included in a payload.
var sensitiveUserMeta = map[string]struct{}{
	"user_pass":       {},
	"session_tokens":  {},
	"wp_capabilities": {},
	"capabilities":    {},
}

func isSensitiveUserMeta(key string) bool {
	if _, ok := sensitiveUserMeta[key]; ok {
		return true
	}
	return strings.HasSuffix(key, "_capabilities")
}
