package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"workmill/domain/state"

	"github.com/fundwit/go-commons/types"
)

// LaunchMode decides how an enabled work item is first exposed.
type LaunchMode string

const (
	LaunchModeOffered       LaunchMode = "OFFERED"
	LaunchModeAllocated     LaunchMode = "ALLOCATED"
	LaunchModeStartBySystem LaunchMode = "START_BY_SYSTEM"

	// LaunchModeUserInitiated leaves the item ENABLED until somebody routes it,
	// typically by offering it to a pile.
	LaunchModeUserInitiated LaunchMode = "USER_INITIATED"
)

// Roster is a set of actor or role names stored as a JSON column.
// Insertion order carries no meaning.
type Roster []string

func (r Roster) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(&r)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (r *Roster) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), r)
}

func (r Roster) Contains(name string) bool {
	for _, v := range r {
		if v == name {
			return true
		}
	}
	return false
}

// ContainsAny reports whether any of the given names is a member.
func (r Roster) ContainsAny(names []string) bool {
	for _, name := range names {
		if r.Contains(name) {
			return true
		}
	}
	return false
}

// Payload is the opaque task input/output blob. The core never interprets it.
type Payload json.RawMessage

func (p Payload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "null", nil
	}
	return string(p), nil
}

func (p *Payload) Scan(v interface{}) error {
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	*p = Payload(jsonString)
	return nil
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	*p = Payload(data)
	return nil
}

// WorkItem is the unit of trackable work.
//
// AssignedUser is set if and only if State is ALLOCATED, EXECUTING or SUSPENDED.
// CandidateUsers is non-empty only in OFFERED.
// Version strictly increases with each accepted write; a write is rejected when
// the caller's observed version no longer matches the stored one.
type WorkItem struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	CaseID types.ID `json:"caseId"`
	TaskID string   `json:"taskId"`

	State      state.State `json:"state"`
	LaunchMode LaunchMode  `json:"launchMode"`

	AssignedUser   string `json:"assignedUser"`
	CandidateUsers Roster `json:"candidateUsers" sql:"type:TEXT"`
	CandidateRoles Roster `json:"candidateRoles" sql:"type:TEXT"`

	PileID types.ID `json:"pileId"`

	Version int64   `json:"version"`
	Data    Payload `json:"data" sql:"type:TEXT"`

	EnabledAt   types.Timestamp `json:"enabledAt" sql:"type:DATETIME(6) NOT NULL"`
	StartedAt   types.Timestamp `json:"startedAt" sql:"type:DATETIME(6)"`
	CompletedAt types.Timestamp `json:"completedAt" sql:"type:DATETIME(6)"`
}

func (r *WorkItem) TableName() string {
	return "work_items"
}

// WorkItemCreation is issued by the task enablement engine when a task fires.
type WorkItemCreation struct {
	CaseID     types.ID   `json:"caseId" validate:"required" binding:"required"`
	TaskID     string     `json:"taskId" validate:"required" binding:"required"`
	LaunchMode LaunchMode `json:"launchMode" validate:"required" binding:"required"`

	// roster for OFFERED, single assignee or roster for ALLOCATED,
	// assignee for START_BY_SYSTEM
	Candidates     Roster  `json:"candidates"`
	CandidateRoles Roster  `json:"candidateRoles"`
	Assignee       string  `json:"assignee"`
	Data           Payload `json:"data"`
}

// WorkItemDetail is a work item with the display names of its actors resolved
// against the user table.
type WorkItemDetail struct {
	WorkItem

	ActorNames map[string]string `json:"actorNames"`
}

type WorkItemQuery struct {
	CaseID       types.ID      `json:"caseId" form:"caseId"`
	TaskID       string        `json:"taskId" form:"taskId"`
	States       []state.State `json:"states" form:"state"`
	AssignedUser string        `json:"assignedUser" form:"assignedUser"`
	PileID       types.ID      `json:"pileId" form:"pileId"`

	// also match items where the actor is among the offered candidates
	CandidateUser string `json:"candidateUser" form:"candidateUser"`
}
