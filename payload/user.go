package payload

import (
	"context"

	"github.com/xraph/hookbridge/content"
)

type userOptions struct {
	meta bool
}

// UserOption adjusts what BuildUser includes.
type UserOption func(*userOptions)

// WithoutUserMeta omits the user meta block.
func WithoutUserMeta() UserOption { return func(o *userOptions) { o.meta = false } }

// BuildUser returns the payload for a user, or an empty Document when the
// user does not resolve. Credential and capability meta is never included.
func (b *Builder) BuildUser(ctx context.Context, userID int64, opts ...UserOption) Document {
	o := userOptions{meta: true}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := b.src.GetUser(ctx, userID)
	if err != nil {
		b.lookupFailed(ctx, "user", userID, err)
		return Document{}
	}

	doc := Document(userFields(u))

	if o.meta {
		meta, err := b.src.UserMeta(ctx, userID)
		if err != nil {
			b.lookupFailed(ctx, "user meta", userID, err)
		} else if len(meta) > 0 {
			filtered := make(map[string][]string, len(meta))
			for k, v := range meta {
				if isSensitiveUserMeta(k) {
					continue
				}
				filtered[k] = v
			}
			doc["meta"] = CollapseMeta(filtered)
		}
	}

	return doc
}

func userFields(u *content.User) map[string]any {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return map[string]any{
		"id":              u.ID,
		"username":        u.Username,
		"email":           u.Email,
		"display_name":    u.DisplayName,
		"first_name":      u.FirstName,
		"last_name":       u.LastName,
		"url":             u.URL,
		"registered_date": formatDate(u.Registered),
		"description":     u.Description,
		"roles":           roles,
	}
}
