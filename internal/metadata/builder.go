package metadata

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"

	"clipdeck/internal/config"
	"clipdeck/internal/media"
)

const publishAtLayout = "2006-01-02T15:04:05.000Z"

// Options configures a Builder.
type Options struct {
	// MinLead is the enforced minimum distance between now and a publish time.
	MinLead     time.Duration
	CategoryID  string
	MadeForKids bool
	// ForcePrivate sends every upload private and requests a patch when the
	// final visibility differs.
	ForcePrivate bool
}

// OptionsFromConfig maps configuration onto builder options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return Options{MinLead: 15 * time.Minute}
	}
	return Options{
		MinLead:      cfg.MinLead(),
		CategoryID:   cfg.YouTube.CategoryID,
		MadeForKids:  cfg.YouTube.MadeForKids,
		ForcePrivate: cfg.YouTube.ForcePrivateUpload,
	}
}

// Builder validates upload forms.
type Builder struct {
	opts     Options
	validate *validator.Validate
}

type form struct {
	Title       string `validate:"required,max=100,excludesall=<>"`
	Description string `validate:"max=5000,excludesall=<>"`
	Visibility  string `validate:"oneof=private unlisted public"`
	Tags        string `validate:"max=500,excludesall=<>"`
}

// NewBuilder constructs a Builder.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts, validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Build validates req against now and returns the wire metadata.
func (b *Builder) Build(req Request, now time.Time) (Result, error) {
	title := cleanText(req.Title, false)
	if title == "" {
		title = cleanText(media.Stem(req.SourceName), false)
	}
	description := cleanText(req.Description, true)
	tags := cleanTags(req.Tags)
	visibility := req.Visibility
	if visibility == "" {
		visibility = Private
	}

	if err := b.validateForm(form{
		Title:       title,
		Description: description,
		Visibility:  string(visibility),
		Tags:        strings.Join(tags, ","),
	}); err != nil {
		return Result{}, err
	}

	result := Result{
		Wire: Wire{
			Snippet: Snippet{
				Title:       title,
				Description: description,
				Tags:        tags,
				CategoryID:  b.opts.CategoryID,
			},
			Status: Status{
				PrivacyStatus:           visibility,
				SelfDeclaredMadeForKids: b.opts.MadeForKids,
			},
		},
		FinalVisibility: visibility,
	}

	if req.PublishAt != nil {
		publishAt := req.PublishAt.UTC()
		earliest := now.Add(b.opts.MinLead)
		if !publishAt.After(earliest) {
			return Result{}, &ValidationError{
				Code:  CodeScheduleTooSoon,
				Field: "publish_at",
				Message: fmt.Sprintf("publish time %s must be later than %s (minimum lead %s)",
					publishAt.Format(time.RFC3339), earliest.UTC().Format(time.RFC3339), b.opts.MinLead),
			}
		}
		if visibility == Unlisted {
			return Result{}, &ValidationError{
				Code:    CodeScheduleVisibilityConflict,
				Field:   "publish_at",
				Message: "scheduled uploads become public at publish time; unlisted cannot be scheduled",
			}
		}
		// A publish time holds the asset private until it goes public.
		result.Wire.Status.PrivacyStatus = Private
		result.Wire.Status.PublishAt = publishAt.Format(publishAtLayout)
		result.FinalVisibility = Public
		result.PublishAt = &publishAt
		return result, nil
	}

	if b.opts.ForcePrivate && visibility != Private {
		result.Wire.Status.PrivacyStatus = Private
		result.NeedsPatch = true
	}
	return result, nil
}

func (b *Builder) validateForm(f form) error {
	err := b.validate.Struct(f)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Code: CodeInvalidField, Message: err.Error()}
	}
	fe := fieldErrs[0]
	return &ValidationError{
		Code:    CodeInvalidField,
		Field:   strings.ToLower(fe.Field()),
		Message: describeFieldError(fe),
	}
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "excludesall":
		return "must not contain < or >"
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

// cleanText applies NFC normalization, drops control characters, and trims.
// Newlines and tabs survive when multiline is set.
func cleanText(value string, multiline bool) string {
	value = norm.NFC.String(value)
	value = strings.Map(func(r rune) rune {
		if multiline && (r == '\n' || r == '\t') {
			return r
		}
		if unicode.IsControl(r) {
			if r == '\n' || r == '\r' || r == '\t' {
				return ' '
			}
			return -1
		}
		return r
	}, value)
	return strings.TrimSpace(value)
}

func cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = cleanText(tag, false)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
