package domain

// Focus session scoring constants.
const (
	PerActionXP            = 5
	FirstCompletionBonus   = 30
	NewRecordBase          = 50
	RecordMarginMultiplier = 10
	NearRecordBonus        = 25

	// near-record ratio 0.8 expressed as 8/10 to keep the comparison in integers
	nearRecordNum = 8
	nearRecordDen = 10
)

// BonusKind names the tier a session's bonus came from.
type BonusKind string

const (
	BonusNone            BonusKind = "none"
	BonusFirstCompletion BonusKind = "first_completion"
	BonusNewRecord       BonusKind = "new_record"
	BonusNearRecord      BonusKind = "near_record"
)

// SessionHistory summarises a user's prior closed sessions of one challenge type.
type SessionHistory struct {
	HasPrior    bool
	BestActions int
}

// SessionScore is the result of scoring a closed session.
type SessionScore struct {
	BaseXP  int
	BonusXP int
	Kind    BonusKind
}

// Total is base plus bonus.
func (s SessionScore) Total() int {
	return s.BaseXP + s.BonusXP
}

// ScoreSession converts a finished session into base and bonus XP.
// Freeform sessions (typed=false) never earn a bonus. The strict > for a new
// record and >= for near-record decide tie behaviour: matching the best only
// pays the near-record bonus when the session ran its full duration.
func ScoreSession(actions int, completed, typed bool, h SessionHistory) SessionScore {
	score := SessionScore{BaseXP: actions * PerActionXP, Kind: BonusNone}
	if !typed {
		return score
	}

	if !h.HasPrior {
		if completed && actions > 0 {
			score.BonusXP = FirstCompletionBonus
			score.Kind = BonusFirstCompletion
		}
		return score
	}

	switch {
	case actions > h.BestActions:
		score.BonusXP = NewRecordBase + (actions-h.BestActions)*RecordMarginMultiplier
		score.Kind = BonusNewRecord
	case completed && actions*nearRecordDen >= h.BestActions*nearRecordNum:
		score.BonusXP = NearRecordBonus
		score.Kind = BonusNearRecord
	}

	return score
}
