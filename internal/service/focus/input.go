package focus

import (
	"github.com/google/uuid"

	"github.com/heartmarshall/hustle-xp/internal/domain"
)

const maxActionsPerSession = 10_000

// StartSessionInput holds the parameters for starting a session.
// A nil ChallengeType starts a freeform session.
type StartSessionInput struct {
	ChallengeType   *string
	DurationSeconds int
}

// Validate checks all fields and collects all errors.
func (i *StartSessionInput) Validate() error {
	var errs []domain.FieldError

	if i.ChallengeType != nil && !domain.ChallengeType(*i.ChallengeType).IsValid() {
		errs = append(errs, domain.FieldError{Field: "challenge_type", Message: "unknown challenge type"})
	}
	if i.DurationSeconds <= 0 {
		errs = append(errs, domain.FieldError{Field: "duration_seconds", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// EndSessionInput holds the parameters for ending a session.
type EndSessionInput struct {
	SessionID        uuid.UUID
	ActionsCompleted int
	// Completed is true when the full duration elapsed, false when stopped early.
	Completed bool
}

// Validate checks all fields and collects all errors.
func (i *EndSessionInput) Validate() error {
	var errs []domain.FieldError

	if i.SessionID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "session_id", Message: "required"})
	}
	if i.ActionsCompleted < 0 || i.ActionsCompleted > maxActionsPerSession {
		errs = append(errs, domain.FieldError{Field: "actions_completed", Message: "must be between 0 and 10000"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
