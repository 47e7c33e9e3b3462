package settings

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xraph/hookbridge/internal/errs"
)

// Snapshot is the admin view of the bridge settings.
type Snapshot struct {
	EngineURL       string          `json:"engine_url"`
	APIKey          string          `json:"api_key"`
	EngineAPIKey    string          `json:"engine_api_key"`
	EnabledTriggers []string        `json:"enabled_triggers"`
	WebhookURLs     json.RawMessage `json:"webhook_urls"`
	DebugMode       bool            `json:"debug_mode"`
}

// Load reads every admin-visible setting.
func Load(ctx context.Context, s Store) (*Snapshot, error) {
	var (
		snap = &Snapshot{}
		err  error
	)
	if snap.EngineURL, err = String(ctx, s, KeyEngineURL); err != nil {
		return nil, err
	}
	if snap.APIKey, err = String(ctx, s, KeyAPIKey); err != nil {
		return nil, err
	}
	if snap.EngineAPIKey, err = String(ctx, s, KeyEngineAPIKey); err != nil {
		return nil, err
	}
	if snap.EnabledTriggers, err = Strings(ctx, s, KeyEnabledTriggers); err != nil {
		return nil, err
	}
	if snap.EnabledTriggers == nil {
		snap.EnabledTriggers = []string{}
	}
	if snap.WebhookURLs, err = Get(ctx, s, KeyWebhookURLs, json.RawMessage(`{}`)); err != nil {
		return nil, err
	}
	if snap.DebugMode, err = Bool(ctx, s, KeyDebugMode); err != nil {
		return nil, err
	}
	return snap, nil
}

// Update is a partial settings change. Nil fields are left untouched.
type Update struct {
	EngineURL       *string         `json:"engine_url" validate:"omitempty,url"`
	APIKey          *string         `json:"api_key" validate:"omitempty,printascii"`
	EngineAPIKey    *string         `json:"engine_api_key" validate:"omitempty,printascii"`
	EnabledTriggers []string        `json:"enabled_triggers" validate:"omitempty,dive,required,max=128"`
	WebhookURLs     json.RawMessage `json:"webhook_urls"`
	DebugMode       *bool           `json:"debug_mode"`
	SigningSecret   *string         `json:"signing_secret" validate:"omitempty,min=16"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field formats and returns the first failure as a
// ValidationError.
func (u *Update) Validate() error {
	err := validate.Struct(u)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &errs.ValidationError{Field: fe.Field(), Message: "failed " + fe.Tag() + " check"}
	}
	return &errs.ValidationError{Message: err.Error()}
}

// Apply validates u and writes every non-nil field to s.
func (u *Update) Apply(ctx context.Context, s Store) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.EngineURL != nil {
		if err := Set(ctx, s, KeyEngineURL, strings.TrimSpace(*u.EngineURL)); err != nil {
			return err
		}
	}
	if u.APIKey != nil {
		if err := Set(ctx, s, KeyAPIKey, strings.TrimSpace(*u.APIKey)); err != nil {
			return err
		}
	}
	if u.EngineAPIKey != nil {
		if err := Set(ctx, s, KeyEngineAPIKey, strings.TrimSpace(*u.EngineAPIKey)); err != nil {
			return err
		}
	}
	if u.EnabledTriggers != nil {
		trimmed := make([]string, 0, len(u.EnabledTriggers))
		for _, t := range u.EnabledTriggers {
			trimmed = append(trimmed, strings.TrimSpace(t))
		}
		if err := Set(ctx, s, KeyEnabledTriggers, trimmed); err != nil {
			return err
		}
	}
	if len(u.WebhookURLs) > 0 {
		if err := s.SetSetting(ctx, KeyWebhookURLs, u.WebhookURLs); err != nil {
			return err
		}
	}
	if u.DebugMode != nil {
		if err := Set(ctx, s, KeyDebugMode, *u.DebugMode); err != nil {
			return err
		}
	}
	if u.SigningSecret != nil {
		if err := Set(ctx, s, KeySigningSecret, *u.SigningSecret); err != nil {
			return err
		}
	}
	return nil
}
