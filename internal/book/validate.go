package book

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// WriteMode selects which fields a write payload must carry.
type WriteMode int

const (
	// ModeCreate requires title and pages; description defaults to empty.
	ModeCreate WriteMode = iota
	// ModeReplace requires all three mutable fields.
	ModeReplace
	// ModePatch requires at least one field; each present field is
	// checked individually.
	ModePatch
)

// Input is a client write payload. Pointer fields distinguish absent
// from zero so the same type serves create, replace and patch.
type Input struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Pages       *int    `json:"pages"`
}

// FieldError describes a single violated rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every violated rule of a write payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid input"
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Validate checks in against mode and normalizes the title by trimming
// surrounding whitespace. It is the single validation entry point used
// by the create, replace and patch handlers.
func (in *Input) Validate(mode WriteMode) *ValidationError {
	var fields []FieldError

	if mode == ModePatch && in.Title == nil && in.Description == nil && in.Pages == nil {
		return &ValidationError{Fields: []FieldError{{
			Field:   "body",
			Message: "at least one of title, description or pages is required",
		}}}
	}

	if in.Title == nil {
		if mode != ModePatch {
			fields = append(fields, FieldError{Field: "title", Message: "title is required"})
		}
	} else {
		trimmed := strings.TrimSpace(*in.Title)
		*in.Title = trimmed
		if err := validate.Var(trimmed, "min=3"); err != nil {
			fields = append(fields, FieldError{Field: "title", Message: "title must be at least 3 characters long"})
		}
	}

	if in.Pages == nil {
		if mode != ModePatch {
			fields = append(fields, FieldError{Field: "pages", Message: "pages is required"})
		}
	} else if err := validate.Var(*in.Pages, "gte=1"); err != nil {
		fields = append(fields, FieldError{Field: "pages", Message: "pages must be at least 1"})
	}

	if in.Description == nil && mode == ModeReplace {
		fields = append(fields, FieldError{Field: "description", Message: "description is required"})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Fields converts the payload into the store's patch representation.
func (in *Input) Fields() PatchFields {
	return PatchFields{
		Title:       in.Title,
		Description: in.Description,
		Pages:       in.Pages,
	}
}
