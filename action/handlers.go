package action

import (
	"context"
	"net/http"

	"github.com/xraph/hookbridge/content"
	"github.com/xraph/hookbridge/internal/result"
)

func (r *Router) createPost(ctx context.Context, p Params) result.Result {
	in := content.PostInput{
		Title:    p.Text("title"),
		Content:  p.Raw("content"),
		Status:   content.StatusDraft,
		Type:     "post",
		AuthorID: p.Int("author_id"),
	}
	if p.Has("status") {
		in.Status = p.Text("status")
	}
	if p.Has("post_type") {
		in.Type = p.Text("post_type")
	}

	postID, err := r.repo.InsertPost(ctx, in)
	if err != nil {
		return r.writeFailure(ctx, "insert_post", err)
	}

	r.applyPostExtras(ctx, postID, p)
	return result.OK(http.StatusCreated, "Post created successfully").With("post_id", postID)
}

func (r *Router) updatePost(ctx context.Context, p Params) result.Result {
	postID := p.Int("post_id")
	if _, err := r.repo.GetPost(ctx, postID); err != nil {
		return r.lookupFailure(ctx, "Post", postID, err)
	}

	patch := content.PostPatch{ID: postID}
	if p.Has("title") {
		patch.Title = ptr(p.Text("title"))
	}
	if p.Has("content") {
		patch.Content = ptr(p.Raw("content"))
	}
	if p.Has("status") {
		patch.Status = ptr(p.Text("status"))
	}
	if p.Has("author_id") {
		patch.AuthorID = ptr(p.Int("author_id"))
	}

	if err := r.repo.UpdatePost(ctx, patch); err != nil {
		return r.writeFailure(ctx, "update_post", err)
	}

	r.applyPostExtras(ctx, postID, p)
	return result.OK(http.StatusOK, "Post updated successfully").With("post_id", postID)
}

func (r *Router) deletePost(ctx context.Context, p Params) result.Result {
	postID := p.Int("post_id")
	if _, err := r.repo.GetPost(ctx, postID); err != nil {
		return r.lookupFailure(ctx, "Post", postID, err)
	}

	if err := r.repo.DeletePost(ctx, postID, p.Bool("force_delete")); err != nil {
		r.logger.ErrorContext(ctx, "delete post failed", "post_id", postID, "error", err)
		return result.Fail(http.StatusInternalServerError, "Failed to delete post")
	}
	return result.OK(http.StatusOK, "Post deleted successfully").With("post_id", postID)
}

func (r *Router) createUser(ctx context.Context, p Params) result.Result {
	in := content.UserInput{
		Username: p.Text("username"),
		Email:    p.Text("email"),
		Password: p.Raw("password"),
		Role:     "subscriber",
	}
	if p.Has("role") {
		in.Role = p.Text("role")
	}
	if p.Has("first_name") {
		in.FirstName = p.Text("first_name")
	}
	if p.Has("last_name") {
		in.LastName = p.Text("last_name")
	}
	if p.Has("display_name") {
		in.DisplayName = p.Text("display_name")
	}

	userID, err := r.repo.InsertUser(ctx, in)
	if err != nil {
		return r.writeFailure(ctx, "insert_user", err)
	}

	r.applyUserMeta(ctx, userID, p)
	return result.OK(http.StatusCreated, "User created successfully").With("user_id", userID)
}

func (r *Router) updateUser(ctx context.Context, p Params) result.Result {
	userID := p.Int("user_id")
	if _, err := r.repo.GetUser(ctx, userID); err != nil {
		return r.lookupFailure(ctx, "User", userID, err)
	}

	patch := content.UserPatch{ID: userID}
	if p.Has("email") {
		patch.Email = ptr(p.Text("email"))
	}
	if p.Has("password") {
		patch.Password = ptr(p.Raw("password"))
	}
	if p.Has("role") {
		patch.Role = ptr(p.Text("role"))
	}
	if p.Has("first_name") {
		patch.FirstName = ptr(p.Text("first_name"))
	}
	if p.Has("last_name") {
		patch.LastName = ptr(p.Text("last_name"))
	}
	if p.Has("display_name") {
		patch.DisplayName = ptr(p.Text("display_name"))
	}

	if err := r.repo.UpdateUser(ctx, patch); err != nil {
		return r.writeFailure(ctx, "update_user", err)
	}

	r.applyUserMeta(ctx, userID, p)
	return result.OK(http.StatusOK, "User updated successfully").With("user_id", userID)
}

func (r *Router) customAction(ctx context.Context, p Params) result.Result {
	customType := p.Raw("custom_action_type")

	r.mu.RLock()
	h, ok := r.custom[customType]
	r.mu.RUnlock()

	res := result.Fail(http.StatusBadRequest, MessageNoCustomHandler)
	if ok {
		res = h(ctx, p)
	}
	if res.Success {
		res.Status = http.StatusOK
	} else {
		res.Status = http.StatusBadRequest
	}
	return res
}

// applyPostExtras writes meta, categories and tags. Failures are logged and
// do not change the action's outcome.
func (r *Router) applyPostExtras(ctx context.Context, postID int64, p Params) {
	if meta, ok := p.Map("meta"); ok {
		for k, v := range meta {
			if err := r.repo.SetPostMeta(ctx, postID, sanitizeText(k), sanitizeText(toString(v))); err != nil {
				r.logger.WarnContext(ctx, "set post meta failed", "post_id", postID, "key", k, "error", err)
			}
		}
	}
	if cats, ok := p.List("categories"); ok {
		ids := make([]int64, 0, len(cats))
		for _, c := range cats {
			ids = append(ids, toInt(c))
		}
		if err := r.repo.SetPostCategories(ctx, postID, ids); err != nil {
			r.logger.WarnContext(ctx, "set post categories failed", "post_id", postID, "error", err)
		}
	}
	if tags, ok := p.List("tags"); ok {
		names := make([]string, 0, len(tags))
		for _, t := range tags {
			names = append(names, sanitizeText(toString(t)))
		}
		if err := r.repo.SetPostTags(ctx, postID, names); err != nil {
			r.logger.WarnContext(ctx, "set post tags failed", "post_id", postID, "error", err)
		}
	}
}

func (r *Router) applyUserMeta(ctx context.Context, userID int64, p Params) {
	meta, ok := p.Map("meta")
	if !ok {
		return
	}
	for k, v := range meta {
		if err := r.repo.SetUserMeta(ctx, userID, sanitizeText(k), sanitizeText(toString(v))); err != nil {
			r.logger.WarnContext(ctx, "set user meta failed", "user_id", userID, "key", k, "error", err)
		}
	}
}

func ptr[T any](v T) *T { return &v }
