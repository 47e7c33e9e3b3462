package content

import "context"

// Reader resolves posts, users and comments with their metadata.
// Lookups of unknown ids return ErrNotFound.
type Reader interface {
	GetPost(ctx context.Context, id int64) (*Post, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	GetComment(ctx context.Context, id int64) (*Comment, error)

	// PostMeta, UserMeta and CommentMeta return every stored value per key.
	PostMeta(ctx context.Context, id int64) (map[string][]string, error)
	UserMeta(ctx context.Context, id int64) (map[string][]string, error)
	CommentMeta(ctx context.Context, id int64) (map[string][]string, error)

	// Taxonomies lists the taxonomy names registered for a post type.
	Taxonomies(ctx context.Context, postType string) ([]string, error)

	// PostTerms lists the terms a post carries in one taxonomy.
	PostTerms(ctx context.Context, postID int64, taxonomy string) ([]Term, error)

	// FeaturedImage returns nil without error when the post has none.
	FeaturedImage(ctx context.Context, postID int64) (*Image, error)
}

// Commerce resolves orders and their related records. Every method other
// than CommerceActive is only meaningful when CommerceActive reports true.
type Commerce interface {
	CommerceActive(ctx context.Context) bool
	GetOrder(ctx context.Context, id int64) (*Order, error)
	GetProduct(ctx context.Context, id int64) (*Product, error)
	GetCustomer(ctx context.Context, id int64) (*Customer, error)
	OrderNotes(ctx context.Context, orderID int64) ([]OrderNote, error)
}

// KindSource reports which content kinds and extensions the host currently
// has registered.
type KindSource interface {
	ContentKinds(ctx context.Context) ([]Kind, error)
	CommerceActive(ctx context.Context) bool
}

// Writer applies inbound mutations.
type Writer interface {
	InsertPost(ctx context.Context, in PostInput) (int64, error)
	UpdatePost(ctx context.Context, patch PostPatch) error
	DeletePost(ctx context.Context, id int64, force bool) error
	InsertUser(ctx context.Context, in UserInput) (int64, error)
	UpdateUser(ctx context.Context, patch UserPatch) error

	SetPostMeta(ctx context.Context, postID int64, key, value string) error
	SetUserMeta(ctx context.Context, userID int64, key, value string) error
	SetPostCategories(ctx context.Context, postID int64, categoryIDs []int64) error
	SetPostTags(ctx context.Context, postID int64, tags []string) error
}

// Repository is the full Content Repository.
type Repository interface {
	Reader
	Commerce
	KindSource
	Writer
}

// PostInput describes a new post.
type PostInput struct {
	Title    string
	Content  string
	Status   string
	Type     string
	AuthorID int64
}

// PostPatch describes a partial post update. Nil fields are unchanged.
type PostPatch struct {
	ID       int64
	Title    *string
	Content  *string
	Status   *string
	AuthorID *int64
}

// UserInput describes a new user account.
type UserInput struct {
	Username    string
	Email       string
	Password    string
	Role        string
	FirstName   string
	LastName    string
	DisplayName string
}

// UserPatch describes a partial user update. Nil fields are unchanged.
type UserPatch struct {
	ID          int64
	Email       *string
	Password    *string
	Role        *string
	FirstName   *string
	LastName    *string
	DisplayName *string
}
