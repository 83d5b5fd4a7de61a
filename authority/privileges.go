package authority

// Privilege is a named capability gating a subset of work item operations
// beyond basic eligibility. The vocabulary is fixed.
type Privilege string

const (
	CanStart         Privilege = "can_start"
	CanComplete      Privilege = "can_complete"
	CanDelegate      Privilege = "can_delegate"
	CanSuspendResume Privilege = "can_suspend_resume"
	CanReallocate    Privilege = "can_reallocate"
	CanReoffer       Privilege = "can_reoffer"
	CanViewOthers    Privilege = "can_view_others"
)

type Privileges []Privilege

func (p Privileges) Has(privilege Privilege) bool {
	for _, v := range p {
		if v == privilege {
			return true
		}
	}
	return false
}

// PrivilegeSource supplies actor-role privilege bindings. Implementations come
// from the external role/resource collaborator and must not block: the checker
// is consulted on the non-suspending path of every operation handler.
type PrivilegeSource interface {
	PrivilegesOf(actor string, taskID string) Privileges
}

// StaticPrivilegeSource binds privileges per actor, optionally narrowed to a
// task. The empty task key holds actor-wide bindings.
type StaticPrivilegeSource struct {
	Bindings map[string]map[string]Privileges // actor -> taskID -> privileges
}

func (s *StaticPrivilegeSource) PrivilegesOf(actor string, taskID string) Privileges {
	byTask, found := s.Bindings[actor]
	if !found {
		return Privileges{}
	}
	r := Privileges{}
	r = append(r, byTask[""]...)
	if taskID != "" {
		r = append(r, byTask[taskID]...)
	}
	return r
}

// PrivilegeChecker is a pure predicate evaluator over the fixed privilege set:
// same (actor, privilege, task) always yields the same answer for a given source.
type PrivilegeChecker struct {
	Source PrivilegeSource
}

func NewPrivilegeChecker(source PrivilegeSource) *PrivilegeChecker {
	return &PrivilegeChecker{Source: source}
}

func (c *PrivilegeChecker) HasPrivilege(actor string, privilege Privilege, taskID string) bool {
	if c == nil || c.Source == nil {
		return false
	}
	return c.Source.PrivilegesOf(actor, taskID).Has(privilege)
}
