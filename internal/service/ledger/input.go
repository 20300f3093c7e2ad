package ledger

import (
	"time"

	"github.com/heartmarshall/hustle-xp/internal/domain"
)

// RecordActionInput holds the parameters for recording an action.
type RecordActionInput struct {
	Type string
	// XPValue is optional. When set it must equal the type's fixed value.
	XPValue *int
}

// Validate checks all fields and collects all errors.
func (i *RecordActionInput) Validate() error {
	var errs []domain.FieldError

	at := domain.ActionType(i.Type)
	switch {
	case i.Type == "":
		errs = append(errs, domain.FieldError{Field: "type", Message: "required"})
	case !at.IsValid():
		errs = append(errs, domain.FieldError{Field: "type", Message: "unknown action type"})
	case i.XPValue != nil && *i.XPValue != at.XP():
		errs = append(errs, domain.FieldError{Field: "xp_value", Message: "must match the fixed value for the action type"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func validateDate(date string) error {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return domain.NewValidationError("date", "must be YYYY-MM-DD")
	}
	return nil
}
