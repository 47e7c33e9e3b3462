// Package action routes inbound requests from the workflow engine to
// content mutations.
package action

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/xraph/hookbridge/content"
	"github.com/xraph/hookbridge/internal/errs"
	"github.com/xraph/hookbridge/internal/result"
	"github.com/xraph/hookbridge/observability"
)

// Action names.
const (
	CreatePost   = "create_post"
	UpdatePost   = "update_post"
	DeletePost   = "delete_post"
	CreateUser   = "create_user"
	UpdateUser   = "update_user"
	CustomAction = "custom_action"
)

// Response messages.
const (
	MessageMissingAction   = "Missing action parameter"
	MessageInvalidAction   = "Invalid action"
	MessageMissingRequired = "Missing required parameters"
	MessageNoCustomHandler = "No handler found for this custom action"
)

// Repository is the content access the router needs.
type Repository interface {
	GetPost(ctx context.Context, id int64) (*content.Post, error)
	GetUser(ctx context.Context, id int64) (*content.User, error)
	content.Writer
}

// CustomHandler handles one custom_action type. Its Result decides the
// response; the status is forced to 200 on success and 400 otherwise.
type CustomHandler func(ctx context.Context, params Params) result.Result

type handlerFunc func(r *Router, ctx context.Context, params Params) result.Result

var table = map[string]handlerFunc{
	CreatePost:   (*Router).createPost,
	UpdatePost:   (*Router).updatePost,
	DeletePost:   (*Router).deletePost,
	CreateUser:   (*Router).createUser,
	UpdateUser:   (*Router).updateUser,
	CustomAction: (*Router).customAction,
}

// required lists the params each action cannot run without, in check order.
var required = map[string][]string{
	CreatePost:   {"title", "content"},
	UpdatePost:   {"post_id"},
	DeletePost:   {"post_id"},
	CreateUser:   {"username", "email", "password"},
	UpdateUser:   {"user_id"},
	CustomAction: {"custom_action_type"},
}

// Config holds router configuration.
type Config struct {
	Metrics *observability.Metrics
	Tracer  *observability.Tracer
}

// Router dispatches inbound actions.
type Router struct {
	repo      Repository
	validator *Validator
	config    Config
	logger    *slog.Logger

	mu     sync.RWMutex
	custom map[string]CustomHandler
}

// NewRouter creates an action router.
func NewRouter(repo Repository, cfg Config, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		repo:      repo,
		validator: NewValidator(),
		config:    cfg,
		logger:    logger,
		custom:    make(map[string]CustomHandler),
	}
}

// Register installs the handler for a custom_action type, replacing any
// previous one.
func (r *Router) Register(customType string, h CustomHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.custom[customType] = h
}

// Actions returns the names of the built-in actions.
func Actions() []string {
	return []string{CreatePost, UpdatePost, DeletePost, CreateUser, UpdateUser, CustomAction}
}

// Receive runs the named action.
func (r *Router) Receive(ctx context.Context, name string, params Params) result.Result {
	if name == "" {
		return result.Fail(http.StatusBadRequest, MessageMissingAction)
	}
	h, ok := table[name]
	if !ok {
		r.logger.WarnContext(ctx, "unknown action", "action", name)
		return result.Fail(http.StatusBadRequest, MessageInvalidAction)
	}
	if params == nil {
		params = Params{}
	}

	ctx, span := r.config.Tracer.StartActionSpan(ctx, name)
	res := r.run(ctx, name, h, params)
	r.config.Tracer.EndActionSpan(span, res.Success, res.Message)

	status := "success"
	if !res.Success {
		status = "error"
	}
	r.config.Metrics.RecordAction(name, status)
	r.logger.InfoContext(ctx, "action handled",
		"action", name,
		"success", res.Success,
		"status", res.HTTPStatus(),
	)
	return res
}

func (r *Router) run(ctx context.Context, name string, h handlerFunc, params Params) result.Result {
	if err := checkRequired(name, params); err != nil {
		return result.Fail(http.StatusBadRequest, err.Message)
	}
	if err := r.validator.Validate(name, schemas[name], params); err != nil {
		verr := &errs.ValidationError{Message: "Invalid parameters: " + err.Error()}
		return result.Fail(http.StatusBadRequest, verr.Error())
	}
	return h(r, ctx, params)
}

func checkRequired(name string, params Params) *errs.ValidationError {
	fields := required[name]
	for _, f := range fields {
		if params.Has(f) {
			continue
		}
		// Create actions report the group; the rest name the field.
		if len(fields) > 1 {
			return &errs.ValidationError{Field: f, Message: MessageMissingRequired}
		}
		return &errs.ValidationError{Field: f, Message: "Missing " + f + " parameter"}
	}
	return nil
}

// lookupFailure maps a failed lookup to a 404 or 500 result.
func (r *Router) lookupFailure(ctx context.Context, entity string, id int64, err error) result.Result {
	if errors.Is(err, content.ErrNotFound) {
		nf := &errs.NotFoundError{Entity: entity, ID: id}
		return result.Fail(http.StatusNotFound, nf.Error())
	}
	rerr := &errs.RepositoryError{Op: "get " + strings.ToLower(entity), Err: err}
	r.logger.ErrorContext(ctx, "lookup failed", "entity", entity, "id", id, "error", err)
	return result.Fail(http.StatusInternalServerError, rerr.Error())
}

func (r *Router) writeFailure(ctx context.Context, op string, err error) result.Result {
	rerr := &errs.RepositoryError{Op: op, Err: err}
	r.logger.ErrorContext(ctx, "content write failed", "op", op, "error", err)
	return result.Fail(http.StatusInternalServerError, rerr.Error())
}
