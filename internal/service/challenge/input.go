package challenge

import "github.com/heartmarshall/hustle-xp/internal/domain"

const (
	maxTarget    = 10_000
	maxTimeLimit = 24 * 60 * 60
)

// CreateGoalInput holds the parameters for creating a goal.
type CreateGoalInput struct {
	Type             string
	Target           int
	TimeLimitSeconds int
}

// Validate checks all fields and collects all errors.
func (i *CreateGoalInput) Validate() error {
	var errs []domain.FieldError

	if i.Type == "" {
		errs = append(errs, domain.FieldError{Field: "type", Message: "required"})
	} else if !domain.ChallengeType(i.Type).IsValid() {
		errs = append(errs, domain.FieldError{Field: "type", Message: "unknown challenge type"})
	}
	if i.Target < 1 || i.Target > maxTarget {
		errs = append(errs, domain.FieldError{Field: "target", Message: "must be between 1 and 10000"})
	}
	if i.TimeLimitSeconds < 0 || i.TimeLimitSeconds > maxTimeLimit {
		errs = append(errs, domain.FieldError{Field: "time_limit_seconds", Message: "must be between 0 and 86400"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateGoalInput holds a partial update. Nil fields are left unchanged.
type UpdateGoalInput struct {
	Current              *int
	Target               *int
	TimeRemainingSeconds *int
}

// Validate checks all fields and collects all errors.
func (i *UpdateGoalInput) Validate() error {
	var errs []domain.FieldError

	if i.Current == nil && i.Target == nil && i.TimeRemainingSeconds == nil {
		errs = append(errs, domain.FieldError{Field: "input", Message: "at least one field must be set"})
	}
	if i.Current != nil && *i.Current < 0 {
		errs = append(errs, domain.FieldError{Field: "current", Message: "must not be negative"})
	}
	if i.Target != nil && (*i.Target < 1 || *i.Target > maxTarget) {
		errs = append(errs, domain.FieldError{Field: "target", Message: "must be between 1 and 10000"})
	}
	if i.TimeRemainingSeconds != nil && (*i.TimeRemainingSeconds < 0 || *i.TimeRemainingSeconds > maxTimeLimit) {
		errs = append(errs, domain.FieldError{Field: "time_remaining_seconds", Message: "must be between 0 and 86400"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
