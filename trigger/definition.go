// Package trigger maps symbolic trigger names to their definitions,
// enablement and destination webhooks.
package trigger

import (
	"fmt"
	"strings"

	"github.com/xraph/hookbridge/content"
)

// Built-in trigger ids.
const (
	PostSave         = "post_save"
	UserRegister     = "user_register"
	CommentPost      = "comment_post"
	CommerceNewOrder = "commerce_new_order"
)

// legacyIDs maps trigger ids found in older stored settings to current ids.
var legacyIDs = map[string]string{
	"woocommerce_new_order": CommerceNewOrder,
}

// CanonicalID returns the current id for triggerID, translating legacy ids.
func CanonicalID(triggerID string) string {
	if id, ok := legacyIDs[triggerID]; ok {
		return id
	}
	return triggerID
}

// postSavePrefix prefixes the per-content-kind save triggers.
const postSavePrefix = PostSave + "_"

// Definition describes a trigger the host can fire.
type Definition struct {
	ID          string             `json:"id" yaml:"id"`
	DisplayName string             `json:"name" yaml:"name"`
	Description string             `json:"description" yaml:"description"`
	AppliesTo   content.EntityKind `json:"applies_to" yaml:"applies_to"`
}

var builtins = []Definition{
	{ID: PostSave, DisplayName: "Post Save", Description: "Triggered when a post is created or updated", AppliesTo: content.KindPost},
	{ID: UserRegister, DisplayName: "User Register", Description: "Triggered when a new user is registered", AppliesTo: content.KindUser},
	{ID: CommentPost, DisplayName: "Comment Post", Description: "Triggered when a new comment is posted", AppliesTo: content.KindComment},
}

var commerceOrder = Definition{
	ID:          CommerceNewOrder,
	DisplayName: "Commerce New Order",
	Description: "Triggered when a new commerce order is created",
	AppliesTo:   content.KindOrder,
}

// Definitions returns the built-in triggers, one save trigger per
// non-builtin content kind, and the order trigger when commerce is active.
func Definitions(kinds []content.Kind, commerce bool) []Definition {
	defs := make([]Definition, 0, len(builtins)+len(kinds)+1)
	defs = append(defs, builtins...)

	for _, k := range kinds {
		if k.Builtin || k.Name == "" {
			continue
		}
		label := k.Label
		if label == "" {
			label = k.Name
		}
		defs = append(defs, Definition{
			ID:          SaveTriggerFor(k.Name),
			DisplayName: fmt.Sprintf("%s Save", label),
			Description: fmt.Sprintf("Triggered when a %s is created or updated", strings.ToLower(label)),
			AppliesTo:   content.KindPost,
		})
	}

	if commerce {
		defs = append(defs, commerceOrder)
	}
	return defs
}

// SaveTriggerFor returns the save trigger id for a custom content kind.
func SaveTriggerFor(kind string) string {
	return postSavePrefix + kind
}

// KindOf returns the entity kind a trigger id delivers.
func KindOf(triggerID string) (content.EntityKind, bool) {
	switch {
	case triggerID == PostSave, strings.HasPrefix(triggerID, postSavePrefix):
		return content.KindPost, true
	case triggerID == UserRegister:
		return content.KindUser, true
	case triggerID == CommentPost:
		return content.KindComment, true
	case triggerID == CommerceNewOrder:
		return content.KindOrder, true
	default:
		return "", false
	}
}
