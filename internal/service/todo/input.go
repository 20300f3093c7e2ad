package todo

import (
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/hustle-xp/internal/domain"
)

const (
	maxTitleLength = 200
	maxTodoXP      = 500
)

// CreateTodoInput holds the parameters for creating a todo.
type CreateTodoInput struct {
	Title   string
	XPValue int
}

// Validate checks all fields and collects all errors.
func (i *CreateTodoInput) Validate() error {
	var errs []domain.FieldError

	errs = appendTitleErrors(errs, i.Title)
	if i.XPValue < 0 || i.XPValue > maxTodoXP {
		errs = append(errs, domain.FieldError{Field: "xp_value", Message: "must be between 0 and 500"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateTodoInput holds a partial update. Nil fields are left unchanged.
type UpdateTodoInput struct {
	Title     *string
	Completed *bool
}

// Validate checks all fields and collects all errors.
func (i *UpdateTodoInput) Validate() error {
	var errs []domain.FieldError

	if i.Title == nil && i.Completed == nil {
		errs = append(errs, domain.FieldError{Field: "input", Message: "at least one field must be set"})
	}
	if i.Title != nil {
		errs = appendTitleErrors(errs, *i.Title)
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func appendTitleErrors(errs []domain.FieldError, title string) []domain.FieldError {
	trimmed := strings.TrimSpace(title)
	switch {
	case trimmed == "":
		errs = append(errs, domain.FieldError{Field: "title", Message: "required"})
	case utf8.RuneCountInString(trimmed) > maxTitleLength:
		errs = append(errs, domain.FieldError{Field: "title", Message: "max 200 characters"})
	}
	return errs
}
