package payload

import "context"

type commentOptions struct {
	meta bool
}

// CommentOption adjusts what BuildComment includes.
type CommentOption func(*commentOptions)

// WithoutCommentMeta omits the comment meta block.
func WithoutCommentMeta() CommentOption { return func(o *commentOptions) { o.meta = false } }

// BuildComment returns the payload for a comment with its parent post title
// and permalink, or an empty Document when the comment does not resolve.
func (b *Builder) BuildComment(ctx context.Context, commentID int64, opts ...CommentOption) Document {
	o := commentOptions{meta: true}
	for _, opt := range opts {
		opt(&o)
	}

	c, err := b.src.GetComment(ctx, commentID)
	if err != nil {
		b.lookupFailed(ctx, "comment", commentID, err)
		return Document{}
	}

	var postTitle string
	if p, err := b.src.GetPost(ctx, c.PostID); err == nil {
		postTitle = p.Title
	} else {
		b.lookupFailed(ctx, "comment post", c.PostID, err)
	}

	doc := Document{
		"id":           c.ID,
		"post_id":      c.PostID,
		"post_title":   postTitle,
		"author":       c.Author,
		"author_email": c.AuthorEmail,
		"author_url":   c.AuthorURL,
		"author_ip":    c.AuthorIP,
		"content":      c.Content,
		"status":       c.Approved,
		"type":         c.Type,
		"parent":       c.ParentID,
		"user_id":      c.UserID,
		"date":         formatDate(c.Date),
		"date_gmt":     formatDate(c.DateGMT),
		"permalink":    c.Permalink,
	}

	if o.meta {
		meta, err := b.src.CommentMeta(ctx, commentID)
		if err != nil {
			b.lookupFailed(ctx, "comment meta", commentID, err)
		} else if len(meta) > 0 {
			doc["meta"] = CollapseMeta(meta)
		}
	}

	return doc
}
