package errs_test

import (
	"errors"
	"testing"

	"github.com/xraph/hookbridge/internal/errs"
)

func TestMessages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&errs.ValidationError{Field: "title", Message: "is required"}, "validation error on title: is required"},
		{&errs.ValidationError{Message: "Missing required parameters"}, "Missing required parameters"},
		{&errs.NotFoundError{Entity: "Post", ID: 4}, "Post not found"},
		{&errs.RepositoryError{Op: "insert post", Err: errors.New("database is locked")}, "database is locked"},
		{&errs.TransportError{URL: "https://x", StatusCode: 503}, "unexpected status code 503"},
		{&errs.TransportError{URL: "https://x", Err: errors.New("dial tcp: refused")}, "dial tcp: refused"},
		{&errs.ConfigurationError{Setting: "engine_url", Message: "n8n URL is not configured"}, "n8n URL is not configured"},
	}
	for _, tc := range cases {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("got %q, want %q", got, tc.want)
		}
	}
}

func TestRepositoryErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&errs.RepositoryError{Op: "update user", Err: cause})
	if !errors.Is(err, cause) {
		t.Fatal("expected RepositoryError to unwrap to its cause")
	}
}
