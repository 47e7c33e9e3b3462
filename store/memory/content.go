package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/xraph/hookbridge/content"
)

// compile-time interface check.
var _ content.Repository = (*Content)(nil)

// Content is an in-memory Content Repository.
type Content struct {
	mu sync.RWMutex

	baseURL string
	nextID  int64

	posts       map[int64]*content.Post
	users       map[int64]*content.User
	passwords   map[int64][]byte // bcrypt hashes
	comments    map[int64]*content.Comment
	postMeta    map[int64]map[string][]string
	userMeta    map[int64]map[string][]string
	commentMeta map[int64]map[string][]string
	taxonomies  map[string][]string                 // post type -> taxonomy names
	terms       map[int64]map[string][]content.Term // post -> taxonomy -> terms
	categories  map[int64]content.Term              // category catalog by term id
	images      map[int64]*content.Image            // post -> featured image
	kinds       []content.Kind

	commerce  bool
	orders    map[int64]*content.Order
	products  map[int64]*content.Product
	customers map[int64]*content.Customer
	notes     map[int64][]content.OrderNote

	writeErr error
}

// NewContent creates an empty repository with the built-in post and page
// kinds and the category and post_tag taxonomies on posts.
func NewContent(baseURL string) *Content {
	if baseURL == "" {
		baseURL = "http://localhost"
	}
	return &Content{
		baseURL:     strings.TrimRight(baseURL, "/"),
		posts:       make(map[int64]*content.Post),
		users:       make(map[int64]*content.User),
		passwords:   make(map[int64][]byte),
		comments:    make(map[int64]*content.Comment),
		postMeta:    make(map[int64]map[string][]string),
		userMeta:    make(map[int64]map[string][]string),
		commentMeta: make(map[int64]map[string][]string),
		taxonomies: map[string][]string{
			"post": {"category", "post_tag"},
		},
		terms:      make(map[int64]map[string][]content.Term),
		categories: make(map[int64]content.Term),
		images:     make(map[int64]*content.Image),
		kinds: []content.Kind{
			{Name: "post", Label: "Post", Builtin: true},
			{Name: "page", Label: "Page", Builtin: true},
		},
		orders:    make(map[int64]*content.Order),
		products:  make(map[int64]*content.Product),
		customers: make(map[int64]*content.Customer),
		notes:     make(map[int64][]content.OrderNote),
	}
}

func (c *Content) id(requested int64) int64 {
	if requested != 0 {
		if requested > c.nextID {
			c.nextID = requested
		}
		return requested
	}
	c.nextID++
	return c.nextID
}

func (c *Content) permalink(postID int64) string {
	return fmt.Sprintf("%s/?p=%d", c.baseURL, postID)
}

// ──────────────────────────────────────────────────
// Seeding
// ──────────────────────────────────────────────────

// AddPost stores p, assigning an id when zero, and returns the id.
func (c *Content) AddPost(p content.Post) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	p.ID = c.id(p.ID)
	if p.Type == "" {
		p.Type = "post"
	}
	if p.Permalink == "" {
		p.Permalink = c.permalink(p.ID)
	}
	if p.GUID == "" {
		p.GUID = c.permalink(p.ID)
	}
	c.posts[p.ID] = &p
	return p.ID
}

// AddUser stores u, assigning an id when zero, and returns the id.
func (c *Content) AddUser(u content.User) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	u.ID = c.id(u.ID)
	c.users[u.ID] = &u
	return u.ID
}

// AddComment stores cm, assigning an id when zero, and returns the id.
func (c *Content) AddComment(cm content.Comment) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	cm.ID = c.id(cm.ID)
	if cm.Permalink == "" {
		cm.Permalink = fmt.Sprintf("%s#comment-%d", c.permalink(cm.PostID), cm.ID)
	}
	c.comments[cm.ID] = &cm
	return cm.ID
}

// AddPostMeta appends values under key.
func (c *Content) AddPostMeta(postID int64, key string, values ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	addMeta(c.postMeta, postID, key, values)
}

// AddUserMeta appends values under key.
func (c *Content) AddUserMeta(userID int64, key string, values ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	addMeta(c.userMeta, userID, key, values)
}

// AddCommentMeta appends values under key.
func (c *Content) AddCommentMeta(commentID int64, key string, values ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	addMeta(c.commentMeta, commentID, key, values)
}

// AddCategory registers a category in the catalog used by SetPostCategories.
func (c *Content) AddCategory(t content.Term) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.categories[t.ID] = t
}

// SetTerms assigns terms to a post in one taxonomy.
func (c *Content) SetTerms(postID int64, taxonomy string, terms ...content.Term) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setTerms(postID, taxonomy, terms)
}

// SetTaxonomies replaces the taxonomies registered for a post type.
func (c *Content) SetTaxonomies(postType string, taxonomies ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.taxonomies[postType] = taxonomies
}

// SetFeaturedImage attaches a featured image to a post.
func (c *Content) SetFeaturedImage(postID int64, img content.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[postID] = &img
}

// RegisterKind registers a content kind. Kinds can be added at any time.
func (c *Content) RegisterKind(k content.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kinds = append(c.kinds, k)
}

// SetCommerce switches the commerce extension on or off.
func (c *Content) SetCommerce(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commerce = active
}

// AddOrder stores o, assigning an id when zero, and returns the id.
func (c *Content) AddOrder(o content.Order) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	o.ID = c.id(o.ID)
	c.orders[o.ID] = &o
	return o.ID
}

// AddProduct stores p, assigning an id when zero, and returns the id.
func (c *Content) AddProduct(p content.Product) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.ID = c.id(p.ID)
	c.products[p.ID] = &p
	return p.ID
}

// AddCustomer stores cu under its id.
func (c *Content) AddCustomer(cu content.Customer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.customers[cu.ID] = &cu
}

// AddOrderNote appends a note to an order.
func (c *Content) AddOrderNote(orderID int64, n content.OrderNote) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes[orderID] = append(c.notes[orderID], n)
}

// FailWrites makes every subsequent primary mutation return err. Pass nil to
// restore normal behaviour.
func (c *Content) FailWrites(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

// CheckPassword reports whether password matches the stored hash for a user.
func (c *Content) CheckPassword(userID int64, password string) bool {
	c.mu.RLock()
	hash, ok := c.passwords[userID]
	c.mu.RUnlock()
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// ──────────────────────────────────────────────────
// content.Reader
// ──────────────────────────────────────────────────

// GetPost returns a copy of a post.
func (c *Content) GetPost(_ context.Context, id int64) (*content.Post, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.posts[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// GetUser returns a copy of a user.
func (c *Content) GetUser(_ context.Context, id int64) (*content.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	u, ok := c.users[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	cp := *u
	cp.Roles = slices.Clone(u.Roles)
	return &cp, nil
}

// GetComment returns a copy of a comment.
func (c *Content) GetComment(_ context.Context, id int64) (*content.Comment, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cm, ok := c.comments[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	cp := *cm
	return &cp, nil
}

// PostMeta returns a copy of a post's meta.
func (c *Content) PostMeta(_ context.Context, id int64) (map[string][]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneMeta(c.postMeta[id]), nil
}

// UserMeta returns a copy of a user's meta.
func (c *Content) UserMeta(_ context.Context, id int64) (map[string][]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneMeta(c.userMeta[id]), nil
}

// CommentMeta returns a copy of a comment's meta.
func (c *Content) CommentMeta(_ context.Context, id int64) (map[string][]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneMeta(c.commentMeta[id]), nil
}

// Taxonomies lists taxonomies registered for a post type.
func (c *Content) Taxonomies(_ context.Context, postType string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.taxonomies[postType]), nil
}

// PostTerms lists a post's terms in one taxonomy.
func (c *Content) PostTerms(_ context.Context, postID int64, taxonomy string) ([]content.Term, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.terms[postID][taxonomy]), nil
}

// FeaturedImage returns the post's featured image or nil.
func (c *Content) FeaturedImage(_ context.Context, postID int64) (*content.Image, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[postID]
	if !ok {
		return nil, nil //nolint:nilnil // no featured image
	}
	cp := *img
	return &cp, nil
}

// ──────────────────────────────────────────────────
// content.KindSource / content.Commerce
// ──────────────────────────────────────────────────

// ContentKinds lists the registered content kinds.
func (c *Content) ContentKinds(_ context.Context) ([]content.Kind, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.kinds), nil
}

// CommerceActive reports whether the commerce extension is on.
func (c *Content) CommerceActive(_ context.Context) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.commerce
}

// GetOrder returns a copy of an order.
func (c *Content) GetOrder(_ context.Context, id int64) (*content.Order, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	o, ok := c.orders[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

// GetProduct returns a copy of a product.
func (c *Content) GetProduct(_ context.Context, id int64) (*content.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// GetCustomer returns a copy of a customer.
func (c *Content) GetCustomer(_ context.Context, id int64) (*content.Customer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cu, ok := c.customers[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	cp := *cu
	return &cp, nil
}

// OrderNotes lists an order's notes.
func (c *Content) OrderNotes(_ context.Context, orderID int64) ([]content.OrderNote, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.notes[orderID]), nil
}

// ──────────────────────────────────────────────────
// content.Writer
// ──────────────────────────────────────────────────

// InsertPost creates a post. A post needs a title or content.
func (c *Content) InsertPost(_ context.Context, in content.PostInput) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeErr != nil {
		return 0, c.writeErr
	}
	if strings.TrimSpace(in.Title) == "" && strings.TrimSpace(in.Content) == "" {
		return 0, errors.New("Content, title, and excerpt are empty.") //nolint:staticcheck // host-facing message
	}

	now := time.Now().UTC()
	p := &content.Post{
		ID:            c.id(0),
		Title:         in.Title,
		Content:       in.Content,
		Status:        in.Status,
		Type:          in.Type,
		AuthorID:      in.AuthorID,
		Date:          now,
		Modified:      now,
		Slug:          slugify(in.Title),
		CommentStatus: "open",
		PingStatus:    "open",
	}
	if p.Status == "" {
		p.Status = content.StatusDraft
	}
	if p.Type == "" {
		p.Type = "post"
	}
	p.Permalink = c.permalink(p.ID)
	p.GUID = p.Permalink
	c.posts[p.ID] = p
	return p.ID, nil
}

// UpdatePost applies a partial update.
func (c *Content) UpdatePost(_ context.Context, patch content.PostPatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeErr != nil {
		return c.writeErr
	}
	p, ok := c.posts[patch.ID]
	if !ok {
		return content.ErrNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
		p.Slug = slugify(p.Title)
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.AuthorID != nil {
		p.AuthorID = *patch.AuthorID
	}
	p.Modified = time.Now().UTC()
	return nil
}

// DeletePost trashes a post, or removes it when force is set.
func (c *Content) DeletePost(_ context.Context, id int64, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeErr != nil {
		return c.writeErr
	}
	p, ok := c.posts[id]
	if !ok {
		return content.ErrNotFound
	}
	if !force {
		p.Status = "trash"
		return nil
	}
	delete(c.posts, id)
	delete(c.postMeta, id)
	delete(c.terms, id)
	delete(c.images, id)
	return nil
}

// InsertUser creates a user. Logins and emails must be unique.
func (c *Content) InsertUser(_ context.Context, in content.UserInput) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeErr != nil {
		return 0, c.writeErr
	}
	if strings.TrimSpace(in.Username) == "" {
		return 0, errors.New("Cannot create a user with an empty login name.") //nolint:staticcheck // host-facing message
	}
	for _, u := range c.users {
		if strings.EqualFold(u.Username, in.Username) {
			return 0, errors.New("Sorry, that username already exists!") //nolint:staticcheck // host-facing message
		}
		if in.Email != "" && strings.EqualFold(u.Email, in.Email) {
			return 0, errors.New("Sorry, that email address is already used!") //nolint:staticcheck // host-facing message
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	role := in.Role
	if role == "" {
		role = "subscriber"
	}
	display := in.DisplayName
	if display == "" {
		display = in.Username
	}
	u := &content.User{
		ID:          c.id(0),
		Username:    in.Username,
		Email:       in.Email,
		DisplayName: display,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Registered:  time.Now().UTC(),
		Roles:       []string{role},
	}
	c.users[u.ID] = u
	c.passwords[u.ID] = hash
	return u.ID, nil
}

// UpdateUser applies a partial update.
func (c *Content) UpdateUser(_ context.Context, patch content.UserPatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeErr != nil {
		return c.writeErr
	}
	u, ok := c.users[patch.ID]
	if !ok {
		return content.ErrNotFound
	}
	if patch.Email != nil {
		for id, other := range c.users {
			if id != u.ID && strings.EqualFold(other.Email, *patch.Email) {
				return errors.New("Sorry, that email address is already used!") //nolint:staticcheck // host-facing message
			}
		}
		u.Email = *patch.Email
	}
	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		c.passwords[u.ID] = hash
	}
	if patch.Role != nil {
		u.Roles = []string{*patch.Role}
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.DisplayName != nil {
		u.DisplayName = *patch.DisplayName
	}
	return nil
}

// SetPostMeta replaces every value under key with value.
func (c *Content) SetPostMeta(_ context.Context, postID int64, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.posts[postID]; !ok {
		return content.ErrNotFound
	}
	setMeta(c.postMeta, postID, key, value)
	return nil
}

// SetUserMeta replaces every value under key with value.
func (c *Content) SetUserMeta(_ context.Context, userID int64, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.users[userID]; !ok {
		return content.ErrNotFound
	}
	setMeta(c.userMeta, userID, key, value)
	return nil
}

// SetPostCategories replaces a post's categories. Unknown ids are ignored.
func (c *Content) SetPostCategories(_ context.Context, postID int64, categoryIDs []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.posts[postID]; !ok {
		return content.ErrNotFound
	}
	terms := make([]content.Term, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		if t, ok := c.categories[id]; ok {
			terms = append(terms, t)
		}
	}
	c.setTerms(postID, "category", terms)
	return nil
}

// SetPostTags replaces a post's tags, creating terms by name.
func (c *Content) SetPostTags(_ context.Context, postID int64, tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.posts[postID]; !ok {
		return content.ErrNotFound
	}
	terms := make([]content.Term, 0, len(tags))
	for _, name := range tags {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		terms = append(terms, content.Term{ID: c.id(0), Name: name, Slug: slugify(name)})
	}
	c.setTerms(postID, "post_tag", terms)
	return nil
}

func (c *Content) setTerms(postID int64, taxonomy string, terms []content.Term) {
	byTax, ok := c.terms[postID]
	if !ok {
		byTax = make(map[string][]content.Term)
		c.terms[postID] = byTax
	}
	byTax[taxonomy] = slices.Clone(terms)
}

func addMeta(m map[int64]map[string][]string, id int64, key string, values []string) {
	byKey, ok := m[id]
	if !ok {
		byKey = make(map[string][]string)
		m[id] = byKey
	}
	byKey[key] = append(byKey[key], values...)
}

func setMeta(m map[int64]map[string][]string, id int64, key, value string) {
	byKey, ok := m[id]
	if !ok {
		byKey = make(map[string][]string)
		m[id] = byKey
	}
	byKey[key] = []string{value}
}

func cloneMeta(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
