package hookbridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/xraph/hookbridge/action"
	"github.com/xraph/hookbridge/content"
	"github.com/xraph/hookbridge/deliverylog"
	"github.com/xraph/hookbridge/dispatch"
	"github.com/xraph/hookbridge/internal/result"
	"github.com/xraph/hookbridge/payload"
	"github.com/xraph/hookbridge/store"
	"github.com/xraph/hookbridge/trigger"
	"github.com/xraph/hookbridge/workflow"
)

// Messages for events that end before a delivery is attempted.
const (
	MessagePostSkipped      = "post skipped"
	MessageConditionNotMet  = "condition not met"
	MessageTriggerDisabled  = "trigger is disabled"
	MessageUnknownTrigger   = "unknown trigger"
	MessageCommerceInactive = "commerce extension is not active"
)

// redactedParams are replaced before inbound params reach the delivery log.
var redactedParams = []string{"password"}

// wireServices initializes the internal services after options have been applied.
func (b *Bridge) wireServices() {
	b.triggers = trigger.NewRegistry(b.store, b.content, b.logger)
	b.conditions = trigger.NewConditions()
	b.payloads = payload.NewBuilder(b.content, b.logger)
	b.log = deliverylog.NewService(b.store, b.store, b.logger)

	b.dispatcher = dispatch.NewDispatcher(dispatch.Deps{
		Destinations: b.triggers,
		Transport:    b.transport,
		Log:          b.log,
		Settings:     b.store,
		Site:         b.site,
	}, dispatch.Config{
		TriggerTimeout:    b.config.TriggerTimeout,
		StrictStatusCheck: b.config.StrictStatusCheck,
		Metrics:           b.metrics,
		Tracer:            b.tracer,
	}, b.logger)

	b.actions = action.NewRouter(b.content, action.Config{
		Metrics: b.metrics,
		Tracer:  b.tracer,
	}, b.logger)

	b.workflows = workflow.NewClient(b.store, b.transport, b.site, workflow.Config{
		Timeout: b.config.APITimeout,
		Tracer:  b.tracer,
	}, b.logger)
}

// PostSaved handles a post create or update. Auto-drafts and revisions are
// skipped. Built-in kinds fire post_save; custom kinds fire post_save_<kind>.
func (b *Bridge) PostSaved(ctx context.Context, postID int64, update bool) Result {
	p, err := b.content.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return result.Fail(http.StatusNotFound, (&NotFoundError{Entity: "Post", ID: postID}).Error())
		}
		b.logger.ErrorContext(ctx, "post lookup failed", "post_id", postID, "error", err)
		return result.Fail(http.StatusInternalServerError, err.Error())
	}
	if p.Status == content.StatusAutoDraft || p.IsRevision() {
		return result.Fail(http.StatusOK, MessagePostSkipped)
	}

	triggerID, err := b.saveTrigger(ctx, p.Type)
	if err != nil {
		b.logger.ErrorContext(ctx, "content kinds lookup failed", "error", err)
		return result.Fail(http.StatusInternalServerError, err.Error())
	}

	return b.fire(ctx, triggerID, func() payload.Document {
		doc := b.payloads.BuildPost(ctx, postID)
		if len(doc) > 0 {
			doc["is_update"] = update
		}
		return doc
	})
}

// UserRegistered handles a new user account.
func (b *Bridge) UserRegistered(ctx context.Context, userID int64) Result {
	return b.fire(ctx, trigger.UserRegister, func() payload.Document {
		return b.payloads.BuildUser(ctx, userID)
	})
}

// CommentPosted handles a new comment. approved is the host's raw approval
// value (1, 0 or "spam").
func (b *Bridge) CommentPosted(ctx context.Context, commentID int64, approved any) Result {
	return b.fire(ctx, trigger.CommentPost, func() payload.Document {
		doc := b.payloads.BuildComment(ctx, commentID)
		if len(doc) > 0 {
			doc["comment_approved"] = approved
		}
		return doc
	})
}

// OrderCreated handles a new commerce order.
func (b *Bridge) OrderCreated(ctx context.Context, orderID int64) Result {
	if !b.content.CommerceActive(ctx) {
		return result.Fail(http.StatusBadRequest, MessageCommerceInactive)
	}
	return b.fire(ctx, trigger.CommerceNewOrder, func() payload.Document {
		return b.payloads.BuildOrder(ctx, orderID)
	})
}

// Fire delivers data for any available trigger, subject to enablement and
// the destination's condition.
func (b *Bridge) Fire(ctx context.Context, triggerID string, data payload.Document) Result {
	if _, ok, err := b.triggers.Lookup(ctx, triggerID); err != nil {
		return result.Fail(http.StatusInternalServerError, err.Error())
	} else if !ok {
		return result.Fail(http.StatusNotFound, MessageUnknownTrigger)
	}
	return b.fire(ctx, triggerID, func() payload.Document { return data })
}

// fire checks enablement, builds the payload only when needed, evaluates the
// destination condition and dispatches.
func (b *Bridge) fire(ctx context.Context, triggerID string, build func() payload.Document) Result {
	enabled, err := b.triggers.IsEnabled(ctx, triggerID)
	if err != nil {
		b.logger.ErrorContext(ctx, "read enabled triggers failed", "trigger", triggerID, "error", err)
		return result.Fail(http.StatusInternalServerError, err.Error())
	}
	if !enabled {
		b.logger.DebugContext(ctx, "trigger disabled", "trigger", triggerID)
		return result.Fail(http.StatusConflict, MessageTriggerDisabled)
	}

	dest, err := b.triggers.ResolveDestination(ctx, triggerID)
	if err != nil {
		b.logger.ErrorContext(ctx, "resolve destination failed", "trigger", triggerID, "error", err)
		return result.Fail(http.StatusInternalServerError, err.Error())
	}
	if dest == nil {
		// Nothing to send: skip building the payload.
		return b.dispatcher.Dispatch(ctx, triggerID, nil)
	}

	data := build()
	ok, err := b.conditions.Match(dest, triggerID, data)
	if err != nil {
		b.logger.WarnContext(ctx, "destination condition failed", "trigger", triggerID, "error", err)
		return result.Fail(http.StatusBadRequest, err.Error())
	}
	if !ok {
		b.logger.DebugContext(ctx, "destination condition not met", "trigger", triggerID)
		return result.Fail(http.StatusOK, MessageConditionNotMet)
	}

	return b.dispatcher.Dispatch(ctx, triggerID, data)
}

// TestTrigger sends a test delivery for triggerID. supplied may carry an
// "id" to replay live data; otherwise it is sent as is. Enablement and
// conditions are not checked.
func (b *Bridge) TestTrigger(ctx context.Context, triggerID string, supplied map[string]any) Result {
	if _, ok, err := b.triggers.Lookup(ctx, triggerID); err != nil {
		return result.Fail(http.StatusInternalServerError, err.Error())
	} else if !ok {
		return result.Fail(http.StatusNotFound, MessageUnknownTrigger)
	}
	data := b.payloads.BuildTest(ctx, triggerID, supplied)
	return b.dispatcher.Dispatch(ctx, triggerID, data, dispatch.Test())
}

// Receive runs an inbound action and records it in the delivery log.
func (b *Bridge) Receive(ctx context.Context, name string, params action.Params) Result {
	res := b.actions.Receive(ctx, name, params)

	entry := &deliverylog.Entry{
		Type:       deliverylog.TypeAction,
		Trigger:    name,
		Payload:    redact(params),
		Success:    res.Success,
		StatusCode: res.HTTPStatus(),
	}
	if res.Success {
		entry.Response = res.Message
	} else {
		entry.Error = res.Message
	}
	if err := b.log.Record(ctx, entry); err != nil {
		b.logger.WarnContext(ctx, "record action failed", "action", name, "error", err)
	}
	return res
}

func (b *Bridge) saveTrigger(ctx context.Context, postType string) (string, error) {
	kinds, err := b.content.ContentKinds(ctx)
	if err != nil {
		return "", err
	}
	for _, k := range kinds {
		if k.Name == postType && !k.Builtin {
			return trigger.SaveTriggerFor(k.Name), nil
		}
	}
	return trigger.PostSave, nil
}

func redact(params action.Params) json.RawMessage {
	clean := make(map[string]any, len(params))
	for k, v := range params {
		clean[k] = v
	}
	for _, k := range redactedParams {
		if _, ok := clean[k]; ok {
			clean[k] = "[redacted]"
		}
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return nil
	}
	return raw
}

// Triggers returns the trigger registry.
func (b *Bridge) Triggers() *trigger.Registry {
	return b.triggers
}

// Payloads returns the payload builder.
func (b *Bridge) Payloads() *payload.Builder {
	return b.payloads
}

// Dispatcher returns the webhook dispatcher.
func (b *Bridge) Dispatcher() *dispatch.Dispatcher {
	return b.dispatcher
}

// Log returns the delivery log service.
func (b *Bridge) Log() *deliverylog.Service {
	return b.log
}

// Actions returns the inbound action router.
func (b *Bridge) Actions() *action.Router {
	return b.actions
}

// Workflows returns the engine management API client.
func (b *Bridge) Workflows() *workflow.Client {
	return b.workflows
}

// Store returns the underlying store.
func (b *Bridge) Store() store.Store {
	return b.store
}

// Content returns the host content repository.
func (b *Bridge) Content() content.Repository {
	return b.content
}
