package cli

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/hookbridge"
	"github.com/xraph/hookbridge/dispatch"
	"github.com/xraph/hookbridge/observability"
	"github.com/xraph/hookbridge/store"
	"github.com/xraph/hookbridge/store/memory"
	"github.com/xraph/hookbridge/store/redis"
	"github.com/xraph/hookbridge/store/sqlite"
)

// openStore opens and migrates the configured backend.
func openStore(ctx context.Context, c StoreConfig) (store.Store, error) {
	var (
		s   store.Store
		err error
	)
	switch c.Driver {
	case "", "memory":
		s = memory.New()
	case "redis":
		s = redis.New(goredis.NewClient(&goredis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		}))
	case "sqlite":
		s, err = sqlite.Open(ctx, c.Path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Driver)
	}

	if err := s.Ping(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("ping %s store: %w", c.Driver, err)
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// openContent builds the in-memory content repository, seeded from the
// configured fixtures file.
func openContent(c *Config) (*memory.Content, error) {
	repo := memory.NewContent(c.Site.URL)
	if c.Content.Fixtures == "" {
		return repo, nil
	}
	f, err := LoadFixtures(c.Content.Fixtures)
	if err != nil {
		return nil, err
	}
	f.Seed(repo)
	logger.Info("content fixtures loaded",
		"path", c.Content.Fixtures,
		"posts", len(f.Posts),
		"users", len(f.Users),
		"comments", len(f.Comments),
	)
	return repo, nil
}

// newBridge opens the store and content and wires a Bridge. The returned
// store must be closed by the caller.
func newBridge(ctx context.Context, c *Config) (*hookbridge.Bridge, store.Store, error) {
	s, err := openStore(ctx, c.Store)
	if err != nil {
		return nil, nil, err
	}
	repo, err := openContent(c)
	if err != nil {
		s.Close()
		return nil, nil, err
	}

	b, err := hookbridge.New(
		hookbridge.WithStore(s),
		hookbridge.WithContent(repo),
		hookbridge.WithSite(dispatch.StaticSite{
			Name:       c.Site.Name,
			URL:        c.Site.URL,
			AdminEmail: c.Site.AdminEmail,
			Version:    c.Site.Version,
			Language:   c.Site.Language,
		}),
		hookbridge.WithLogger(logger),
		hookbridge.WithTracer(observability.NewTracer()),
		hookbridge.WithTriggerTimeout(c.Dispatch.TriggerTimeout),
		hookbridge.WithAPITimeout(c.Dispatch.APITimeout),
		hookbridge.WithStrictStatusCheck(c.Dispatch.StrictStatusCheck),
	)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return b, s, nil
}
