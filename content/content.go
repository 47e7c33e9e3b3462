// Package content defines the host platform's domain entities and the
// Content Repository the bridge reads and mutates them through.
package content

import (
	"errors"
	"time"
)

// EntityKind names the kind of entity a trigger or payload describes.
type EntityKind string

// Entity kinds.
const (
	KindPost    EntityKind = "post"
	KindUser    EntityKind = "user"
	KindComment EntityKind = "comment"
	KindOrder   EntityKind = "order"
)

// DateFormat is the layout used for every date rendered into a payload.
const DateFormat = "2006-01-02 15:04:05"

// Post status and type values the bridge treats specially.
const (
	StatusDraft     = "draft"
	StatusAutoDraft = "auto-draft"
	TypeRevision    = "revision"
)

// ErrNotFound is returned by repository lookups for ids that do not resolve.
var ErrNotFound = errors.New("content: not found")

// Post is a content item of any registered content kind.
type Post struct {
	ID            int64
	Title         string
	Content       string
	Excerpt       string
	Status        string
	Type          string
	Date          time.Time
	Modified      time.Time
	Slug          string
	GUID          string
	CommentStatus string
	PingStatus    string
	CommentCount  int
	AuthorID      int64
	ParentID      int64
	Permalink     string
}

// IsRevision reports whether the post is a stored revision of another post.
func (p *Post) IsRevision() bool {
	return p.Type == TypeRevision
}

// User is a registered account.
type User struct {
	ID          int64
	Username    string
	Email       string
	DisplayName string
	FirstName   string
	LastName    string
	URL         string
	Registered  time.Time
	Description string
	Roles       []string
}

// Comment is a reader comment attached to a post.
type Comment struct {
	ID          int64
	PostID      int64
	Author      string
	AuthorEmail string
	AuthorURL   string
	AuthorIP    string
	Content     string
	Approved    string
	Type        string
	ParentID    int64
	UserID      int64
	Date        time.Time
	DateGMT     time.Time
	Permalink   string
}

// Term is a taxonomy term such as a category or tag.
type Term struct {
	ID          int64
	Name        string
	Slug        string
	Description string
}

// Image is an attachment rendered at full size.
type Image struct {
	ID     int64
	URL    string
	Width  int
	Height int
	Alt    string
}

// Kind is a content kind registered with the host platform.
type Kind struct {
	Name    string
	Label   string
	Builtin bool
}
