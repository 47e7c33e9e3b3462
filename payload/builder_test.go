package payload_test

import (
	"context"
	"testing"
	"time"

	"github.com/xraph/hookbridge/content"
	"github.com/xraph/hookbridge/payload"
	"github.com/xraph/hookbridge/store/memory"
)

func newBuilder() (*payload.Builder, *memory.Content) {
	repo := memory.NewContent("https://example.test")
	return payload.NewBuilder(repo, nil), repo
}

func TestBuildPost(t *testing.T) {
	b, repo := newBuilder()
	ctx := context.Background()

	author := repo.AddUser(content.User{Username: "ada", Email: "ada@example.test", Roles: []string{"editor"}})
	date := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	postID := repo.AddPost(content.Post{
		Title:    "Hello",
		Content:  "World",
		Status:   "publish",
		AuthorID: author,
		Date:     date,
	})
	repo.AddPostMeta(postID, "color", "blue")
	repo.AddPostMeta(postID, "sizes", "s", "m")
	repo.SetTerms(postID, "category", content.Term{ID: 3, Name: "News", Slug: "news"})
	repo.SetTerms(postID, "post_tag", content.Term{ID: 4, Name: "go", Slug: "go"})
	repo.SetFeaturedImage(postID, content.Image{ID: 9, URL: "https://example.test/a.png", Width: 640, Height: 480})

	doc := b.BuildPost(ctx, postID)

	if doc["id"] != postID || doc["title"] != "Hello" || doc["status"] != "publish" {
		t.Fatalf("unexpected core fields: %v", doc)
	}
	if doc["date"] != "2024-03-01 09:30:00" {
		t.Errorf("date = %v", doc["date"])
	}
	if doc["url"] != "https://example.test/?p=2" {
		t.Errorf("url = %v", doc["url"])
	}

	meta, ok := doc["meta"].(map[string]any)
	if !ok {
		t.Fatalf("meta missing: %v", doc["meta"])
	}
	if meta["color"] != "blue" {
		t.Errorf("single-value meta should collapse to scalar, got %v", meta["color"])
	}
	if sizes, ok := meta["sizes"].([]string); !ok || len(sizes) != 2 {
		t.Errorf("multi-value meta should stay a list, got %v", meta["sizes"])
	}

	cats, ok := doc["categories"].([]map[string]any)
	if !ok || len(cats) != 1 || cats[0]["slug"] != "news" {
		t.Errorf("categories = %v", doc["categories"])
	}
	if _, ok := doc["tags"]; !ok {
		t.Error("tags missing")
	}

	a, ok := doc["author"].(map[string]any)
	if !ok || a["username"] != "ada" {
		t.Errorf("author = %v", doc["author"])
	}
	if _, ok := doc["featured_image"]; !ok {
		t.Error("featured_image missing")
	}
}

func TestBuildPost_Options(t *testing.T) {
	b, repo := newBuilder()
	postID := repo.AddPost(content.Post{Title: "Bare", AuthorID: 77})
	repo.AddPostMeta(postID, "k", "v")

	doc := b.BuildPost(context.Background(), postID, payload.WithoutMeta(), payload.WithoutTaxonomies(), payload.WithoutAuthor())

	if _, ok := doc["meta"]; ok {
		t.Error("meta should be omitted")
	}
	if _, ok := doc["taxonomies"]; ok {
		t.Error("taxonomies should be omitted")
	}
	if doc["author_id"] != int64(77) {
		t.Errorf("author_id = %v", doc["author_id"])
	}
}

func TestBuildMissingEntitiesAreEmpty(t *testing.T) {
	b, _ := newBuilder()
	ctx := context.Background()

	if doc := b.BuildPost(ctx, 404); len(doc) != 0 {
		t.Errorf("post: expected empty document, got %v", doc)
	}
	if doc := b.BuildUser(ctx, 404); len(doc) != 0 {
		t.Errorf("user: expected empty document, got %v", doc)
	}
	if doc := b.BuildComment(ctx, 404); len(doc) != 0 {
		t.Errorf("comment: expected empty document, got %v", doc)
	}
	if doc := b.BuildOrder(ctx, 404); len(doc) != 0 {
		t.Errorf("order: expected empty document, got %v", doc)
	}
}

func TestBuildUser_FiltersSensitiveMeta(t *testing.T) {
	b, repo := newBuilder()
	userID := repo.AddUser(content.User{Username: "bob"})
	repo.AddUserMeta(userID, "nickname", "bobby")
	repo.AddUserMeta(userID, "user_pass", "hash")
	repo.AddUserMeta(userID, "session_tokens", "tok")
	repo.AddUserMeta(userID, "site1_capabilities", "admin")

	doc := b.BuildUser(context.Background(), userID)

	meta := doc["meta"].(map[string]any)
	if meta["nickname"] != "bobby" {
		t.Errorf("nickname = %v", meta["nickname"])
	}
	for _, k := range []string{"user_pass", "session_tokens", "site1_capabilities"} {
		if _, ok := meta[k]; ok {
			t.Errorf("%s must not be included", k)
		}
	}
	if roles, ok := doc["roles"].([]string); !ok || len(roles) != 0 {
		t.Errorf("roles should default to an empty list, got %v", doc["roles"])
	}
}

func TestBuildComment(t *testing.T) {
	b, repo := newBuilder()
	postID := repo.AddPost(content.Post{Title: "Parent"})
	commentID := repo.AddComment(content.Comment{PostID: postID, Author: "Eve", Content: "Nice", Approved: "1"})

	doc := b.BuildComment(context.Background(), commentID)

	if doc["post_title"] != "Parent" || doc["author"] != "Eve" || doc["status"] != "1" {
		t.Fatalf("unexpected comment payload: %v", doc)
	}
	if doc["permalink"] == "" {
		t.Error("permalink missing")
	}
}

func TestBuildOrder(t *testing.T) {
	b, repo := newBuilder()
	ctx := context.Background()
	orderID := repo.AddOrder(content.Order{
		Number: "1001",
		Status: "processing",
		Total:  42.5,
		Items:  []content.LineItem{{ID: 1, Name: "Mug", Quantity: 2}},
	})

	if doc := b.BuildOrder(ctx, orderID); len(doc) != 0 {
		t.Fatalf("commerce inactive: expected empty document, got %v", doc)
	}

	repo.SetCommerce(true)
	doc := b.BuildOrder(ctx, orderID)
	if doc["order_number"] != "1001" || doc["total"] != 42.5 {
		t.Fatalf("unexpected order payload: %v", doc)
	}
	items, ok := doc["line_items"].([]map[string]any)
	if !ok || len(items) != 1 || items[0]["name"] != "Mug" {
		t.Errorf("line_items = %v", doc["line_items"])
	}
}

func TestBuildTest(t *testing.T) {
	b, repo := newBuilder()
	ctx := context.Background()
	postID := repo.AddPost(content.Post{Title: "Live"})

	t.Run("supplied data without id is returned unchanged", func(t *testing.T) {
		doc := b.BuildTest(ctx, "post_save", map[string]any{"title": "synthetic"})
		if len(doc) != 1 || doc["title"] != "synthetic" {
			t.Fatalf("doc = %v", doc)
		}
	})

	t.Run("unresolved id falls back to supplied data", func(t *testing.T) {
		doc := b.BuildTest(ctx, "post_save", map[string]any{"id": "999", "title": "synthetic"})
		if doc["title"] != "synthetic" {
			t.Fatalf("doc = %v", doc)
		}
	})

	t.Run("resolved id builds the live payload", func(t *testing.T) {
		doc := b.BuildTest(ctx, "post_save", map[string]any{"id": float64(postID), "is_update": "1"})
		if doc["title"] != "Live" {
			t.Fatalf("doc = %v", doc)
		}
		if doc["is_update"] != true {
			t.Errorf("is_update = %v", doc["is_update"])
		}
	})

	t.Run("nil supplied data is an empty document", func(t *testing.T) {
		if doc := b.BuildTest(ctx, "user_register", nil); doc == nil || len(doc) != 0 {
			t.Fatalf("doc = %v", doc)
		}
	})
}

func TestCollapseMeta(t *testing.T) {
	got := payload.CollapseMeta(map[string][]string{
		"one":  {"a"},
		"many": {"a", "b"},
		"none": {},
	})
	if got["one"] != "a" {
		t.Errorf("one = %v", got["one"])
	}
	if l, ok := got["many"].([]string); !ok || len(l) != 2 {
		t.Errorf("many = %v", got["many"])
	}
	if l, ok := got["none"].([]string); !ok || len(l) != 0 {
		t.Errorf("none = %v", got["none"])
	}
}
