package state

// State is a work item lifecycle state.
type State string

const (
	StateEnabled   State = "ENABLED"
	StateOffered   State = "OFFERED"
	StateAllocated State = "ALLOCATED"
	StateExecuting State = "EXECUTING"
	StateSuspended State = "SUSPENDED"
	StateCompleted State = "COMPLETED"
	StateCancelled State = "CANCELLED"
)

type Transition struct {
	Name string `json:"name"`
	From State  `json:"from"`
	To   State  `json:"to"`
}

// stateless object, just used for state computing
type LifecycleManager struct {
	States      []State      `json:"states"`
	Transitions []Transition `json:"transitions"`
}

// NewLifecycleManager returns the fixed work item lifecycle.
// COMPLETED and CANCELLED are terminal, no outgoing transitions.
func NewLifecycleManager() *LifecycleManager {
	return &LifecycleManager{
		States: []State{StateEnabled, StateOffered, StateAllocated, StateExecuting,
			StateSuspended, StateCompleted, StateCancelled},
		Transitions: []Transition{
			{Name: "offer", From: StateEnabled, To: StateOffered},
			{Name: "allocate", From: StateEnabled, To: StateAllocated},
			{Name: "start", From: StateEnabled, To: StateExecuting},
			{Name: "cancel", From: StateEnabled, To: StateCancelled},

			{Name: "accept", From: StateOffered, To: StateExecuting},
			{Name: "reoffer", From: StateOffered, To: StateOffered},
			{Name: "cancel", From: StateOffered, To: StateCancelled},

			{Name: "start", From: StateAllocated, To: StateExecuting},
			{Name: "deallocate", From: StateAllocated, To: StateOffered},
			{Name: "reallocate", From: StateAllocated, To: StateAllocated},
			{Name: "cancel", From: StateAllocated, To: StateCancelled},

			{Name: "suspend", From: StateExecuting, To: StateSuspended},
			{Name: "complete", From: StateExecuting, To: StateCompleted},
			{Name: "delegate", From: StateExecuting, To: StateOffered},
			{Name: "cancel", From: StateExecuting, To: StateCancelled},

			{Name: "resume", From: StateSuspended, To: StateExecuting},
			{Name: "cancel", From: StateSuspended, To: StateCancelled},
		},
	}
}

func (m *LifecycleManager) AvailableTransitions(fromState State, toState State) []Transition {
	r := []Transition{}
	for _, transition := range m.Transitions {
		if (fromState == "" || fromState == transition.From) && (toState == "" || toState == transition.To) {
			r = append(r, transition)
		}
	}
	return r
}

// CanTransition is a pure query over the transition table. It never consults
// storage or privileges; a pair absent from the table is rejected for every caller.
func (m *LifecycleManager) CanTransition(fromState State, toState State) bool {
	for _, transition := range m.Transitions {
		if fromState == transition.From && toState == transition.To {
			return true
		}
	}
	return false
}

func IsTerminal(s State) bool {
	return s == StateCompleted || s == StateCancelled
}
