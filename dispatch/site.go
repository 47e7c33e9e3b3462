package dispatch

import "context"

// SiteProvider supplies the host's identity for outgoing envelopes.
type SiteProvider interface {
	SiteInfo(ctx context.Context) (Site, error)
}

// StaticSite is a SiteProvider returning a fixed snapshot.
type StaticSite Site

// SiteInfo returns the snapshot.
func (s StaticSite) SiteInfo(context.Context) (Site, error) {
	return Site(s), nil
}

// SiteFunc adapts a function to SiteProvider.
type SiteFunc func(ctx context.Context) (Site, error)

// SiteInfo calls f.
func (f SiteFunc) SiteInfo(ctx context.Context) (Site, error) {
	return f(ctx)
}
