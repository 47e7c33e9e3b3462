package payload

import (
	"context"

	"github.com/xraph/hookbridge/content"
)

type postOptions struct {
	meta       bool
	taxonomies bool
	author     bool
}

// PostOption adjusts what BuildPost includes.
type PostOption func(*postOptions)

// WithoutMeta omits the post meta block.
func WithoutMeta() PostOption { return func(o *postOptions) { o.meta = false } }

// WithoutTaxonomies omits taxonomy, category and tag blocks.
func WithoutTaxonomies() PostOption { return func(o *postOptions) { o.taxonomies = false } }

// WithoutAuthor replaces the author block with a bare author_id.
func WithoutAuthor() PostOption { return func(o *postOptions) { o.author = false } }

// BuildPost returns the payload for a post of any content kind, or an empty
// Document when the post does not resolve.
func (b *Builder) BuildPost(ctx context.Context, postID int64, opts ...PostOption) Document {
	o := postOptions{meta: true, taxonomies: true, author: true}
	for _, opt := range opts {
		opt(&o)
	}

	p, err := b.src.GetPost(ctx, postID)
	if err != nil {
		b.lookupFailed(ctx, "post", postID, err)
		return Document{}
	}

	doc := Document{
		"id":             p.ID,
		"title":          p.Title,
		"content":        p.Content,
		"excerpt":        p.Excerpt,
		"status":         p.Status,
		"type":           p.Type,
		"date":           formatDate(p.Date),
		"modified":       formatDate(p.Modified),
		"url":            p.Permalink,
		"slug":           p.Slug,
		"guid":           p.GUID,
		"comment_status": p.CommentStatus,
		"ping_status":    p.PingStatus,
		"comment_count":  p.CommentCount,
	}

	if o.meta {
		meta, err := b.src.PostMeta(ctx, postID)
		if err != nil {
			b.lookupFailed(ctx, "post meta", postID, err)
		} else if len(meta) > 0 {
			doc["meta"] = CollapseMeta(meta)
		}
	}

	if o.taxonomies {
		b.addTaxonomies(ctx, doc, p)
	}

	if o.author && p.AuthorID != 0 {
		if author, err := b.src.GetUser(ctx, p.AuthorID); err == nil {
			doc["author"] = userFields(author)
		} else {
			b.lookupFailed(ctx, "author", p.AuthorID, err)
		}
	} else {
		doc["author_id"] = p.AuthorID
	}

	img, err := b.src.FeaturedImage(ctx, postID)
	switch {
	case err != nil:
		b.lookupFailed(ctx, "featured image", postID, err)
	case img != nil:
		doc["featured_image"] = map[string]any{
			"id":     img.ID,
			"url":    img.URL,
			"width":  img.Width,
			"height": img.Height,
			"alt":    img.Alt,
		}
	}

	return doc
}

// addTaxonomies groups terms by taxonomy and mirrors category and post_tag
// at the top level as categories and tags.
func (b *Builder) addTaxonomies(ctx context.Context, doc Document, p *content.Post) {
	taxonomies, err := b.src.Taxonomies(ctx, p.Type)
	if err != nil {
		b.lookupFailed(ctx, "taxonomies", p.ID, err)
		return
	}
	if len(taxonomies) == 0 {
		return
	}

	grouped := make(map[string]any, len(taxonomies))
	for _, tax := range taxonomies {
		terms, err := b.src.PostTerms(ctx, p.ID, tax)
		if err != nil {
			b.lookupFailed(ctx, "terms", p.ID, err)
			continue
		}
		if len(terms) == 0 {
			continue
		}
		grouped[tax] = termList(terms, true)
	}
	doc["taxonomies"] = grouped

	if cats, ok := grouped["category"]; ok {
		doc["categories"] = cats
	}
	if tags, ok := grouped["post_tag"]; ok {
		doc["tags"] = tags
	}
}
