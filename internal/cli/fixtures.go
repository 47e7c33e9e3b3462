package cli

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xraph/hookbridge/content"
	"github.com/xraph/hookbridge/store/memory"
)

// Fixtures seeds the built-in content repository from YAML.
type Fixtures struct {
	Commerce   bool              `yaml:"commerce"`
	Kinds      []kindFixture     `yaml:"kinds"`
	Categories []termFixture     `yaml:"categories"`
	Users      []userFixture     `yaml:"users"`
	Posts      []postFixture     `yaml:"posts"`
	Comments   []commentFixture  `yaml:"comments"`
	Orders     []orderFixture    `yaml:"orders"`
	Products   []productFixture  `yaml:"products"`
	Customers  []customerFixture `yaml:"customers"`
}

type kindFixture struct {
	Name  string `yaml:"name"`
	Label string `yaml:"label"`
}

type termFixture struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

type userFixture struct {
	ID          int64               `yaml:"id"`
	Username    string              `yaml:"username"`
	Email       string              `yaml:"email"`
	DisplayName string              `yaml:"display_name"`
	FirstName   string              `yaml:"first_name"`
	LastName    string              `yaml:"last_name"`
	Roles       []string            `yaml:"roles"`
	Meta        map[string][]string `yaml:"meta"`
}

type postFixture struct {
	ID         int64               `yaml:"id"`
	Title      string              `yaml:"title"`
	Content    string              `yaml:"content"`
	Excerpt    string              `yaml:"excerpt"`
	Status     string              `yaml:"status"`
	Type       string              `yaml:"type"`
	AuthorID   int64               `yaml:"author_id"`
	Date       time.Time           `yaml:"date"`
	Meta       map[string][]string `yaml:"meta"`
	Categories []termFixture       `yaml:"categories"`
	Tags       []termFixture       `yaml:"tags"`
}

type commentFixture struct {
	ID          int64  `yaml:"id"`
	PostID      int64  `yaml:"post_id"`
	Author      string `yaml:"author"`
	AuthorEmail string `yaml:"author_email"`
	Content     string `yaml:"content"`
	Approved    string `yaml:"approved"`
	UserID      int64  `yaml:"user_id"`
}

type orderFixture struct {
	ID         int64             `yaml:"id"`
	Number     string            `yaml:"number"`
	Status     string            `yaml:"status"`
	Currency   string            `yaml:"currency"`
	Total      float64           `yaml:"total"`
	CustomerID int64             `yaml:"customer_id"`
	Items      []lineItemFixture `yaml:"items"`
}

type lineItemFixture struct {
	ID        int64   `yaml:"id"`
	Name      string  `yaml:"name"`
	ProductID int64   `yaml:"product_id"`
	Quantity  int     `yaml:"quantity"`
	Total     float64 `yaml:"total"`
}

type productFixture struct {
	ID    int64  `yaml:"id"`
	SKU   string `yaml:"sku"`
	Price string `yaml:"price"`
}

type customerFixture struct {
	ID        int64  `yaml:"id"`
	Email     string `yaml:"email"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
}

// LoadFixtures decodes a fixtures file.
func LoadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode fixtures %s: %w", path, err)
	}
	return &f, nil
}

// Seed loads every fixture into repo.
func (f *Fixtures) Seed(repo *memory.Content) {
	repo.SetCommerce(f.Commerce)
	for _, k := range f.Kinds {
		repo.RegisterKind(content.Kind{Name: k.Name, Label: k.Label})
	}
	for _, t := range f.Categories {
		repo.AddCategory(t.term())
	}
	for _, u := range f.Users {
		id := repo.AddUser(content.User{
			ID:          u.ID,
			Username:    u.Username,
			Email:       u.Email,
			DisplayName: u.DisplayName,
			FirstName:   u.FirstName,
			LastName:    u.LastName,
			Roles:       u.Roles,
			Registered:  time.Now().UTC(),
		})
		for k, v := range u.Meta {
			repo.AddUserMeta(id, k, v...)
		}
	}
	for _, p := range f.Posts {
		date := p.Date
		if date.IsZero() {
			date = time.Now().UTC()
		}
		id := repo.AddPost(content.Post{
			ID:       p.ID,
			Title:    p.Title,
			Content:  p.Content,
			Excerpt:  p.Excerpt,
			Status:   p.Status,
			Type:     p.Type,
			AuthorID: p.AuthorID,
			Date:     date,
			Modified: date,
		})
		for k, v := range p.Meta {
			repo.AddPostMeta(id, k, v...)
		}
		if len(p.Categories) > 0 {
			repo.SetTerms(id, "category", terms(p.Categories)...)
		}
		if len(p.Tags) > 0 {
			repo.SetTerms(id, "post_tag", terms(p.Tags)...)
		}
	}
	for _, c := range f.Comments {
		now := time.Now().UTC()
		repo.AddComment(content.Comment{
			ID:          c.ID,
			PostID:      c.PostID,
			Author:      c.Author,
			AuthorEmail: c.AuthorEmail,
			Content:     c.Content,
			Approved:    c.Approved,
			UserID:      c.UserID,
			Type:        "comment",
			Date:        now,
			DateGMT:     now,
		})
	}
	for _, p := range f.Products {
		repo.AddProduct(content.Product{ID: p.ID, SKU: p.SKU, Price: p.Price})
	}
	for _, c := range f.Customers {
		repo.AddCustomer(content.Customer{ID: c.ID, Email: c.Email, FirstName: c.FirstName, LastName: c.LastName})
	}
	for _, o := range f.Orders {
		items := make([]content.LineItem, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, content.LineItem{
				ID:        it.ID,
				Name:      it.Name,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Total:     it.Total,
			})
		}
		now := time.Now().UTC()
		repo.AddOrder(content.Order{
			ID:         o.ID,
			Number:     o.Number,
			Status:     o.Status,
			Currency:   o.Currency,
			Total:      o.Total,
			CustomerID: o.CustomerID,
			Items:      items,
			Created:    now,
			Modified:   now,
		})
	}
}

func (t termFixture) term() content.Term {
	return content.Term{ID: t.ID, Name: t.Name, Slug: t.Slug, Description: t.Description}
}

func terms(in []termFixture) []content.Term {
	out := make([]content.Term, 0, len(in))
	for _, t := range in {
		out = append(out, t.term())
	}
	return out
}
