// Package payload builds the structured documents delivered for posts, users,
// comments and commerce orders.
//
// Builders never fail: an id that does not resolve, or a repository error,
// yields an empty Document. Whether to send an empty document is the
// dispatcher's decision.
package payload

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xraph/hookbridge/content"
)

// Document is a JSON-compatible entity payload.
type Document map[string]any

// Source is the read side of the Content Repository a Builder needs.
type Source interface {
	content.Reader
	content.Commerce
}

// Builder constructs entity payloads from a content source.
type Builder struct {
	src    Source
	logger *slog.Logger
}

// NewBuilder creates a payload builder.
func NewBuilder(src Source, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{src: src, logger: logger}
}

// lookupFailed logs repository errors; plain not-found is silent.
func (b *Builder) lookupFailed(ctx context.Context, kind string, id int64, err error) {
	if errors.Is(err, content.ErrNotFound) {
		return
	}
	b.logger.WarnContext(ctx, "payload lookup failed",
		"kind", kind,
		"id", id,
		"error", err,
	)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(content.DateFormat)
}

func termList(terms []content.Term, withDescription bool) []map[string]any {
	out := make([]map[string]any, 0, len(terms))
	for _, t := range terms {
		m := map[string]any{
			"id":   t.ID,
			"name": t.Name,
			"slug": t.Slug,
		}
		if withDescription {
			m["description"] = t.Description
		}
		out = append(out, m)
	}
	return out
}
