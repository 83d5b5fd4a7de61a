package event

import (
	"workmill/domain"
	"workmill/domain/state"

	"github.com/fundwit/go-commons/types"
)

const (
	EventTypeOffered     = "OFFERED"
	EventTypeAllocated   = "ALLOCATED"
	EventTypeStarted     = "STARTED"
	EventTypeCheckedIn   = "CHECKED_IN"
	EventTypeCompleted   = "COMPLETED"
	EventTypeDelegated   = "DELEGATED"
	EventTypeSuspended   = "SUSPENDED"
	EventTypeResumed     = "RESUMED"
	EventTypeReoffered   = "REOFFERED"
	EventTypeDeallocated = "DEALLOCATED"
	EventTypeReallocated = "REALLOCATED"
	EventTypeCancelled   = "CANCELLED"
)

type EventType string

// LifecycleEvent is the immutable audit record of one accepted transition.
// It is never mutated after emission; the sink owns it from then on.
type LifecycleEvent struct {
	WorkItemID types.ID `json:"workItemId"`
	CaseID     types.ID `json:"caseId"`
	TaskID     string   `json:"taskId"`

	EventType EventType   `json:"eventType"`
	Actor     string      `json:"actor"`
	FromState state.State `json:"fromState"`
	ToState   state.State `json:"toState"`

	Payload domain.Payload `json:"payload" sql:"type:TEXT"`
}

type EventRecord struct {
	LifecycleEvent

	ID        types.ID        `json:"id" gorm:"primary_key"`
	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6)"`
}

func (r *EventRecord) TableName() string {
	return "lifecycle_events"
}
