package payload

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/xraph/hookbridge/content"
	"github.com/xraph/hookbridge/trigger"
)

// BuildTest builds the payload for a manual test of triggerID.
//
// When supplied carries a non-empty id that resolves for the trigger's entity
// kind, the live payload is returned with the is_update (post) or
// comment_approved (comment) overrides from supplied layered on top.
// Otherwise supplied is returned unchanged.
func (b *Builder) BuildTest(ctx context.Context, triggerID string, supplied map[string]any) Document {
	if supplied == nil {
		supplied = map[string]any{}
	}

	entityID, ok := suppliedID(supplied["id"])
	if !ok {
		return Document(supplied)
	}

	kind, _ := trigger.KindOf(triggerID)
	switch kind {
	case content.KindPost:
		if _, err := b.src.GetPost(ctx, entityID); err == nil {
			doc := b.BuildPost(ctx, entityID)
			if v, set := supplied["is_update"]; set && v != nil {
				doc["is_update"] = truthy(v)
			}
			return doc
		}
	case content.KindUser:
		if _, err := b.src.GetUser(ctx, entityID); err == nil {
			return b.BuildUser(ctx, entityID)
		}
	case content.KindComment:
		if _, err := b.src.GetComment(ctx, entityID); err == nil {
			doc := b.BuildComment(ctx, entityID)
			if v, set := supplied["comment_approved"]; set && v != nil {
				doc["comment_approved"] = v
			}
			return doc
		}
	case content.KindOrder:
		if b.src.CommerceActive(ctx) {
			if _, err := b.src.GetOrder(ctx, entityID); err == nil {
				return b.BuildOrder(ctx, entityID)
			}
		}
	}

	return Document(supplied)
}

// suppliedID reads a user-supplied id as a non-negative integer. Empty, zero
// and non-numeric values report false.
func suppliedID(v any) (int64, bool) {
	var n int64
	switch id := v.(type) {
	case int:
		n = int64(id)
	case int64:
		n = id
	case float64:
		if math.IsNaN(id) || math.IsInf(id, 0) {
			return 0, false
		}
		n = int64(id)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if n < 0 {
		n = -n
	}
	return n, n != 0
}

// truthy mirrors loose boolean casting of user-supplied flags.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case string:
		return t != "" && t != "0"
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return v != nil
	}
}
