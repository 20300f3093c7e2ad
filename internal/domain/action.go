package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActionType is a kind of scored work action.
type ActionType string

const (
	ActionTypeDM      ActionType = "dm"
	ActionTypeLoom    ActionType = "loom"
	ActionTypeCall    ActionType = "call"
	ActionTypeClient  ActionType = "client"
	ActionTypeContent ActionType = "content"
	ActionTypeSystem  ActionType = "system"
)

// ActionTypes lists every action kind in display order.
var ActionTypes = []ActionType{
	ActionTypeDM, ActionTypeLoom, ActionTypeCall,
	ActionTypeClient, ActionTypeContent, ActionTypeSystem,
}

var actionXP = map[ActionType]int{
	ActionTypeDM:      5,
	ActionTypeLoom:    20,
	ActionTypeCall:    30,
	ActionTypeClient:  50,
	ActionTypeContent: 15,
	ActionTypeSystem:  45,
}

func (a ActionType) String() string { return string(a) }

func (a ActionType) IsValid() bool {
	_, ok := actionXP[a]
	return ok
}

// XP returns the fixed base experience for the action type, 0 if unknown.
func (a ActionType) XP() int {
	return actionXP[a]
}

// ActionEvent is an immutable ledger record.
type ActionEvent struct {
	ID        uuid.UUID
	UserKey   string
	Type      ActionType
	XPValue   int
	Timestamp time.Time
	Date      string
}
