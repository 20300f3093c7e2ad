package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChallengeType is a kind of timed target-count challenge.
type ChallengeType string

const (
	ChallengeTypeDMSprint      ChallengeType = "dm_sprint"
	ChallengeTypeLoomMarathon  ChallengeType = "loom_marathon"
	ChallengeTypeCallSprint    ChallengeType = "call_sprint"
	ChallengeTypeClientSprint  ChallengeType = "client_sprint"
	ChallengeTypeContentSprint ChallengeType = "content_sprint"
	ChallengeTypeSystemSprint  ChallengeType = "system_sprint"
)

var challengeActions = map[ChallengeType]ActionType{
	ChallengeTypeDMSprint:      ActionTypeDM,
	ChallengeTypeLoomMarathon:  ActionTypeLoom,
	ChallengeTypeCallSprint:    ActionTypeCall,
	ChallengeTypeClientSprint:  ActionTypeClient,
	ChallengeTypeContentSprint: ActionTypeContent,
	ChallengeTypeSystemSprint:  ActionTypeSystem,
}

func (c ChallengeType) String() string { return string(c) }

func (c ChallengeType) IsValid() bool {
	_, ok := challengeActions[c]
	return ok
}

// TrackedAction returns the action kind whose events advance this challenge.
func (c ChallengeType) TrackedAction() (ActionType, bool) {
	a, ok := challengeActions[c]
	return a, ok
}

// ChallengeGoal is a target-count goal tied to an action kind.
// Completed implies !Active and Current >= Target.
type ChallengeGoal struct {
	ID                   uuid.UUID
	UserKey              string
	Type                 ChallengeType
	Target               int
	Current              int
	TimeLimitSeconds     int
	TimeRemainingSeconds int
	Active               bool
	Completed            bool
	StartedAt            *time.Time
	CompletedAt          *time.Time
	CreatedAt            time.Time
}

// Settle applies the completion check. It must run before every write of a
// goal. Returns true if this call flipped the goal to completed.
func (g *ChallengeGoal) Settle(now time.Time) bool {
	if g.Completed || g.Current < g.Target {
		return false
	}
	g.Completed = true
	g.Active = false
	g.CompletedAt = &now
	return true
}

// Tracks reports whether an action of kind a advances this goal.
func (g *ChallengeGoal) Tracks(a ActionType) bool {
	tracked, ok := g.Type.TrackedAction()
	return ok && tracked == a
}
