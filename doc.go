// Package hookbridge connects a content platform to a workflow-automation
// engine in both directions.
//
// Outbound, host events (a post saved, a user registered, a comment posted,
// an order created) are turned into stable JSON payloads and delivered to the
// webhook configured for the trigger. Inbound, the engine calls back with
// actions that create and update posts and users.
//
// Key features:
//   - Dynamic trigger list: one save trigger per custom content kind
//   - Settings-driven destinations with legacy string decoding and optional
//     expr conditions
//   - Uniform Result envelope for deliveries and inbound actions
//   - Bounded, debug-gated delivery log (memory, Redis, SQLite backends)
//   - Optional HMAC-SHA256 signing of outbound deliveries
//
// Quick start:
//
//	b, err := hookbridge.New(
//	    hookbridge.WithStore(memory.New()),
//	    hookbridge.WithContent(repo),
//	    hookbridge.WithSite(dispatch.StaticSite{Name: "My Site", URL: "https://example.com"}),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res := b.PostSaved(ctx, postID, true)
//	if !res.Success {
//	    log.Println(res.Message)
//	}
package hookbridge
