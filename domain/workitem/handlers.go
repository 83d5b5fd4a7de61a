package workitem

import (
	"context"
	"workmill/account"
	"workmill/authority"
	"workmill/bizerror"
	"workmill/domain"
	"workmill/domain/allocation"
	"workmill/domain/state"
	"workmill/eligibility"
	"workmill/event"
	"workmill/idgen"
	"workmill/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sony/sonyflake"
)

var (
	workItemIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryAccountNamesFunc = account.QueryAccountNames
)

type WorkItemManagerTraits interface {
	CreateWorkItem(ctx context.Context, c *domain.WorkItemCreation, s *session.Session) (*domain.WorkItem, error)
	DetailWorkItem(id types.ID, s *session.Session) (*domain.WorkItemDetail, error)
	QueryWorkItems(query *domain.WorkItemQuery, s *session.Session) ([]domain.WorkItem, error)

	Offer(ctx context.Context, id types.ID, candidates domain.Roster, roles domain.Roster, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
	Allocate(ctx context.Context, id types.ID, assignee string, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
	Checkout(ctx context.Context, id types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
	Checkin(ctx context.Context, id types.ID, data domain.Payload, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
	Complete(ctx context.Context, id types.ID, data domain.Payload, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
	Delegate(ctx context.Context, id types.ID, target string, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
	Suspend(ctx context.Context, id types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
	Resume(ctx context.Context, id types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
	Reoffer(ctx context.Context, id types.ID, candidates domain.Roster, roles domain.Roster, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
	Deallocate(ctx context.Context, id types.ID, candidates domain.Roster, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
	Reallocate(ctx context.Context, id types.ID, target string, data domain.Payload, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
	Cancel(ctx context.Context, id types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error)

	Apply(ctx context.Context, op *Operation, s *session.Session) (*domain.WorkItem, error)
}

// WorkItemManager drives every lifecycle operation through the same protocol:
// load, validate the transition, authorize, attempt exactly one versioned
// write, then emit the lifecycle event. Retry on version conflict belongs to
// the caller, never to a handler.
type WorkItemManager struct {
	repo       WorkItemRepository
	lifecycle  *state.LifecycleManager
	privileges *authority.PrivilegeChecker
	oracle     eligibility.Oracle
	allocator  allocation.Allocator
}

func NewWorkItemManager(repo WorkItemRepository, privileges *authority.PrivilegeChecker,
	oracle eligibility.Oracle) *WorkItemManager {
	return &WorkItemManager{
		repo:       repo,
		lifecycle:  state.NewLifecycleManager(),
		privileges: privileges,
		oracle:     oracle,
		allocator:  allocation.NewRoundRobinAllocator(),
	}
}

// WithAllocator overrides the assignee selection policy used when a creation
// names a roster instead of a single assignee.
func (m *WorkItemManager) WithAllocator(allocator allocation.Allocator) *WorkItemManager {
	m.allocator = allocator
	return m
}

// CreateWorkItem persists a new item in ENABLED state, then routes it by
// launch mode: offered to a roster, allocated to one assignee, or started
// directly for start-by-system tasks. User-initiated items stay ENABLED.
func (m *WorkItemManager) CreateWorkItem(ctx context.Context, c *domain.WorkItemCreation, s *session.Session) (*domain.WorkItem, error) {
	if !s.IsSystem() {
		return nil, bizerror.ErrForbidden
	}
	switch c.LaunchMode {
	case domain.LaunchModeOffered, domain.LaunchModeAllocated,
		domain.LaunchModeStartBySystem, domain.LaunchModeUserInitiated:
	default:
		return nil, &bizerror.ErrBadParam{}
	}

	item := &domain.WorkItem{
		ID:         idgen.NextID(workItemIdWorker),
		CaseID:     c.CaseID,
		TaskID:     c.TaskID,
		State:      state.StateEnabled,
		LaunchMode: c.LaunchMode,
		Version:    1,
		Data:       c.Data,
		EnabledAt:  types.CurrentTimestamp(),
	}
	if err := m.repo.Create(item); err != nil {
		return nil, err
	}

	switch c.LaunchMode {
	case domain.LaunchModeOffered:
		return m.Offer(ctx, item.ID, c.Candidates, c.CandidateRoles, item.Version, s)
	case domain.LaunchModeAllocated:
		assignee := c.Assignee
		if assignee == "" && len(c.Candidates) > 0 {
			chosen, err := m.allocator.Choose(c.Candidates)
			if err != nil {
				return nil, err
			}
			assignee = chosen
		}
		return m.Allocate(ctx, item.ID, assignee, item.Version, s)
	case domain.LaunchModeStartBySystem:
		return m.startDirectly(item.ID, c.Assignee, item.Version, s)
	}
	return item, nil
}

func (m *WorkItemManager) DetailWorkItem(workItemId types.ID, s *session.Session) (*domain.WorkItemDetail, error) {
	item, err := m.repo.Get(workItemId)
	if err != nil {
		return nil, err
	}
	if !m.visibleTo(item, s) {
		return nil, bizerror.ErrForbidden
	}

	actors := domain.Roster{}
	if item.AssignedUser != "" {
		actors = append(actors, item.AssignedUser)
	}
	actors = append(actors, item.CandidateUsers...)

	detail := domain.WorkItemDetail{WorkItem: *item, ActorNames: map[string]string{}}
	displayNames, err := QueryAccountNamesFunc(actors)
	if err != nil {
		return nil, err
	}
	for _, actor := range actors {
		displayName, found := displayNames[actor]
		if !found {
			displayName = actor
		}
		detail.ActorNames[actor] = displayName
	}
	return &detail, nil
}

func (m *WorkItemManager) QueryWorkItems(query *domain.WorkItemQuery, s *session.Session) ([]domain.WorkItem, error) {
	q := *query
	if !s.IsSystem() && !m.privileges.HasPrivilege(s.Actor(), authority.CanViewOthers, q.TaskID) {
		// narrow the scan to the actor's own or offered items
		q.AssignedUser = s.Actor()
		q.CandidateUser = s.Actor()
	}
	return m.repo.List(&q)
}

func (m *WorkItemManager) visibleTo(item *domain.WorkItem, s *session.Session) bool {
	if s.IsSystem() || m.privileges.HasPrivilege(s.Actor(), authority.CanViewOthers, item.TaskID) {
		return true
	}
	return item.AssignedUser == s.Actor() || item.CandidateUsers.Contains(s.Actor())
}

// Offer exposes an ENABLED item to a candidate roster, of named users, of
// roles, or both.
func (m *WorkItemManager) Offer(ctx context.Context, workItemId types.ID, candidates domain.Roster,
	roles domain.Roster, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	item, version, err := m.load(workItemId, observedVersion)
	if err != nil {
		return nil, err
	}
	if item.State != state.StateEnabled || !m.lifecycle.CanTransition(item.State, state.StateOffered) {
		return nil, bizerror.ErrInvalidStateTransition
	}

	fromState := item.State
	updated, err := m.repo.UpdateIfVersion(workItemId, version, func(it *domain.WorkItem) {
		it.State = state.StateOffered
		it.CandidateUsers = candidates
		it.CandidateRoles = roles
		it.AssignedUser = ""
	})
	if err != nil {
		return nil, err
	}

	m.emit(updated, event.EventTypeOffered, s.Actor(), fromState, nil)
	return updated, nil
}

// Allocate assigns an ENABLED item to one actor. The selection policy that
// chose the assignee is the caller's business.
func (m *WorkItemManager) Allocate(ctx context.Context, workItemId types.ID, assignee string,
	observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	if assignee == "" {
		return nil, &bizerror.ErrBadParam{}
	}
	item, version, err := m.load(workItemId, observedVersion)
	if err != nil {
		return nil, err
	}
	if !m.lifecycle.CanTransition(item.State, state.StateAllocated) {
		return nil, bizerror.ErrInvalidStateTransition
	}

	fromState := item.State
	updated, err := m.repo.UpdateIfVersion(workItemId, version, func(it *domain.WorkItem) {
		it.State = state.StateAllocated
		it.AssignedUser = assignee
		it.CandidateUsers = nil
		it.CandidateRoles = nil
	})
	if err != nil {
		return nil, err
	}

	m.emit(updated, event.EventTypeAllocated, s.Actor(), fromState, nil)
	return updated, nil
}

// Checkout claims an item for execution: from OFFERED when the actor is among
// the candidates, from ALLOCATED when the actor is the assignee. The
// eligibility oracle is the only suspension point besides persistence.
func (m *WorkItemManager) Checkout(ctx context.Context, workItemId types.ID,
	observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	item, version, err := m.load(workItemId, observedVersion)
	if err != nil {
		return nil, err
	}
	if !m.lifecycle.CanTransition(item.State, state.StateExecuting) {
		return nil, bizerror.ErrInvalidStateTransition
	}

	actor := s.Actor()
	switch item.State {
	case state.StateOffered:
		if !item.CandidateUsers.Contains(actor) && !item.CandidateRoles.ContainsAny(s.Perms) {
			return nil, bizerror.ErrActorNotEligible
		}
	case state.StateAllocated:
		if item.AssignedUser != actor {
			return nil, bizerror.ErrActorNotAssigned
		}
	default:
		return nil, bizerror.ErrInvalidStateTransition
	}

	eligible, err := m.oracle.IsEligible(ctx, actor, item.TaskID)
	if err != nil {
		return nil, &bizerror.ErrEligibilityCheckFailed{Cause: err}
	}
	if !eligible {
		return nil, bizerror.ErrActorNotEligible
	}

	fromState := item.State
	updated, err := m.repo.UpdateIfVersion(workItemId, version, func(it *domain.WorkItem) {
		it.State = state.StateExecuting
		it.AssignedUser = actor
		it.CandidateUsers = nil
		it.CandidateRoles = nil
		it.StartedAt = types.CurrentTimestamp()
	})
	if err != nil {
		return nil, err
	}

	m.emit(updated, event.EventTypeStarted, actor, fromState, nil)
	return updated, nil
}

// startDirectly is the start-by-system route from ENABLED straight to EXECUTING.
func (m *WorkItemManager) startDirectly(workItemId types.ID, assignee string,
	observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	item, version, err := m.load(workItemId, observedVersion)
	if err != nil {
		return nil, err
	}
	if item.State != state.StateEnabled || !m.lifecycle.CanTransition(item.State, state.StateExecuting) {
		return nil, bizerror.ErrInvalidStateTransition
	}
	actor := assignee
	if actor == "" {
		actor = s.Actor()
	}

	fromState := item.State
	updated, err := m.repo.UpdateIfVersion(workItemId, version, func(it *domain.WorkItem) {
		it.State = state.StateExecuting
		it.AssignedUser = actor
		it.CandidateUsers = nil
		it.CandidateRoles = nil
		it.StartedAt = types.CurrentTimestamp()
	})
	if err != nil {
		return nil, err
	}

	m.emit(updated, event.EventTypeStarted, s.Actor(), fromState, nil)
	return updated, nil
}

// Checkin saves intermediate task data of an EXECUTING item without leaving
// the state. The write still bumps the version.
func (m *WorkItemManager) Checkin(ctx context.Context, workItemId types.ID, data domain.Payload,
	observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	item, version, err := m.load(workItemId, observedVersion)
	if err != nil {
		return nil, err
	}
	if item.State != state.StateExecuting {
		return nil, bizerror.ErrInvalidStateTransition
	}
	if item.AssignedUser != s.Actor() {
		return nil, bizerror.ErrActorNotAssigned
	}

	updated, err := m.repo.UpdateIfVersion(workItemId, version, func(it *domain.WorkItem) {
		it.Data = data
	})
	if err != nil {
		return nil, err
	}

	m.emit(updated, event.EventTypeCheckedIn, s.Actor(), state.StateExecuting, data)
	return updated, nil
}

// Complete finishes an EXECUTING item, finalizing its data.
func (m *WorkItemManager) Complete(ctx context.Context, workItemId types.ID, data domain.Payload,
	observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	item, version, err := m.load(workItemId, observedVersion)
	if err != nil {
		return nil, err
	}
	if !m.lifecycle.CanTransition(item.State, state.StateCompleted) {
		return nil, bizerror.ErrInvalidStateTransition
	}
	if item.AssignedUser != s.Actor() {
		return nil, bizerror.ErrActorNotAssigned
	}
	if !m.privileges.HasPrivilege(s.Actor(), authority.CanComplete, item.TaskID) {
		return nil, bizerror.ErrPrivilegeDenied
	}

	fromState := item.State
	updated, err := m.repo.UpdateIfVersion(workItemId, version, func(it *domain.WorkItem) {
		it.State = state.StateCompleted
		it.CompletedAt = types.CurrentTimestamp()
		if data != nil {
			it.Data = data
		}
	})
	if err != nil {
		return nil, err
	}

	m.emit(updated, event.EventTypeCompleted, s.Actor(), fromState, data)
	return updated, nil
}

// Delegate hands an EXECUTING item back to OFFERED with the target as the
// only candidate.
func (m *WorkItemManager) Delegate(ctx context.Context, workItemId types.ID, target string,
	observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	if target == "" {
		return nil, &bizerror.ErrBadParam{}
	}
	item, version, err := m.load(workItemId, observedVersion)
	if err != nil {
		return nil, err
	}
	if !m.lifecycle.CanTransition(item.State, state.StateOffered) {
		return nil, bizerror.ErrInvalidStateTransition
	}
	if item.AssignedUser != s.Actor() {
		return nil, bizerror.ErrActorNotAssigned
	}
	if !m.privileges.HasPrivilege(s.Actor(), authority.CanDelegate, item.TaskID) {
		return nil, bizerror.ErrPrivilegeDenied
	}

	fromState := item.State
	updated, err := m.repo.UpdateIfVersion(workItemId, version, func(it *domain.WorkItem) {
		it.State = state.StateOffered
		it.CandidateUsers = domain.Roster{target}
		it.CandidateRoles = nil
		it.AssignedUser = ""
	})
	if err != nil {
		return nil, err
	}

	m.emit(updated, event.EventTypeDelegated, s.Actor(), fromState, nil)
	return updated, nil
}

func (m *WorkItemManager) Suspend(ctx context.Context, workItemId types.ID,
	observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	item, version, err := m.load(workItemId, observedVersion)
	if err != nil {
		return nil, err
	}
	if !m.lifecycle.CanTransition(item.State, state.StateSuspended) {
		return nil, bizerror.ErrInvalidStateTransition
	}
	if item.AssignedUser != s.Actor() {
		return nil, bizerror.ErrActorNotAssigned
	}
	if !m.privileges.HasPrivilege(s.Actor(), authority.CanSuspendResume, item.TaskID) {
		return nil, bizerror.ErrPrivilegeDenied
	}

	fromState := item.State
	updated, err := m.repo.UpdateIfVersion(workItemId, version, func(it *domain.WorkItem) {
		it.State = state.StateSuspended
	})
	if err != nil {
		return nil, err
	}

	m.emit(updated, event.EventTypeSuspended, s.Actor(), fromState, nil)
	return updated, nil
}

func (m *WorkItemManager) Resume(ctx context.Context, workItemId types.ID,
	observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	item, version, err := m.load(workItemId, observedVersion)
	if err != nil {
		return nil, err
	}
	if item.State != state.StateSuspended || !m.lifecycle.CanTransition(item.State, state.StateExecuting) {
		return nil, bizerror.ErrInvalidStateTransition
	}
	if item.AssignedUser != s.Actor() {
		return nil, bizerror.ErrActorNotAssigned
	}
	if !m.privileges.HasPrivilege(s.Actor(), authority.CanSuspendResume, item.TaskID) {
		return nil, bizerror.ErrPrivilegeDenied
	}

	fromState := item.State
	updated, err := m.repo.UpdateIfVersion(workItemId, version, func(it *domain.WorkItem) {
		it.State = state.StateExecuting
	})
	if err != nil {
		return nil, err
	}

	m.emit(updated, event.EventTypeResumed, s.Actor(), fromState, nil)
	return updated, nil
}

// Reoffer replaces the candidate roster of an OFFERED item. A declined offer
// re-enters the same state with the new roster.
func (m *WorkItemManager) Reoffer(ctx context.Context, workItemId types.ID, candidates domain.Roster,
	roles domain.Roster, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	if len(candidates) == 0 && len(roles) == 0 {
		return nil, &bizerror.ErrBadParam{}
	}
	item, version, err := m.load(workItemId, observedVersion)
	if err != nil {
		return nil, err
	}
	if item.State != state.StateOffered || !m.lifecycle.CanTransition(item.State, state.StateOffered) {
		return nil, bizerror.ErrInvalidStateTransition
	}
	if !s.IsSystem() && !m.privileges.HasPrivilege(s.Actor(), authority.CanReoffer, item.TaskID) {
		return nil, bizerror.ErrPrivilegeDenied
	}

	updated, err := m.repo.UpdateIfVersion(workItemId, version, func(it *domain.WorkItem) {
		it.CandidateUsers = candidates
		it.CandidateRoles = roles
	})
	if err != nil {
		return nil, err
	}

	m.emit(updated, event.EventTypeReoffered, s.Actor(), state.StateOffered, nil)
	return updated, nil
}

// Deallocate releases an ALLOCATED item back to OFFERED. Without an explicit
// roster the released assignee stays the only candidate, so a changed mind
// can take the item again.
func (m *WorkItemManager) Deallocate(ctx context.Context, workItemId types.ID, candidates domain.Roster,
	observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	item, version, err := m.load(workItemId, observedVersion)
	if err != nil {
		return nil, err
	}
	if item.State != state.StateAllocated || !m.lifecycle.CanTransition(item.State, state.StateOffered) {
		return nil, bizerror.ErrInvalidStateTransition
	}
	if !s.IsSystem() && item.AssignedUser != s.Actor() &&
		!m.privileges.HasPrivilege(s.Actor(), authority.CanReallocate, item.TaskID) {
		return nil, bizerror.ErrPrivilegeDenied
	}
	if len(candidates) == 0 {
		candidates = domain.Roster{item.AssignedUser}
	}

	fromState := item.State
	updated, err := m.repo.UpdateIfVersion(workItemId, version, func(it *domain.WorkItem) {
		it.State = state.StateOffered
		it.CandidateUsers = candidates
		it.AssignedUser = ""
	})
	if err != nil {
		return nil, err
	}

	m.emit(updated, event.EventTypeDeallocated, s.Actor(), fromState, nil)
	return updated, nil
}

// Reallocate swaps the assignee of an ALLOCATED item without passing through
// any other state. Data travels along when the caller supplies it.
func (m *WorkItemManager) Reallocate(ctx context.Context, workItemId types.ID, target string,
	data domain.Payload, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	if target == "" {
		return nil, &bizerror.ErrBadParam{}
	}
	item, version, err := m.load(workItemId, observedVersion)
	if err != nil {
		return nil, err
	}
	if item.State != state.StateAllocated || !m.lifecycle.CanTransition(item.State, state.StateAllocated) {
		return nil, bizerror.ErrInvalidStateTransition
	}
	if !s.IsSystem() && !m.privileges.HasPrivilege(s.Actor(), authority.CanReallocate, item.TaskID) {
		return nil, bizerror.ErrPrivilegeDenied
	}

	updated, err := m.repo.UpdateIfVersion(workItemId, version, func(it *domain.WorkItem) {
		it.AssignedUser = target
		if data != nil {
			it.Data = data
		}
	})
	if err != nil {
		return nil, err
	}

	m.emit(updated, event.EventTypeReallocated, s.Actor(), state.StateAllocated, data)
	return updated, nil
}

// Cancel aborts any non-terminal item. System/admin only.
func (m *WorkItemManager) Cancel(ctx context.Context, workItemId types.ID,
	observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	item, version, err := m.load(workItemId, observedVersion)
	if err != nil {
		return nil, err
	}
	if !m.lifecycle.CanTransition(item.State, state.StateCancelled) {
		return nil, bizerror.ErrInvalidStateTransition
	}
	if !s.IsSystem() {
		return nil, bizerror.ErrPrivilegeDenied
	}

	fromState := item.State
	updated, err := m.repo.UpdateIfVersion(workItemId, version, func(it *domain.WorkItem) {
		it.State = state.StateCancelled
		it.AssignedUser = ""
		it.CandidateUsers = nil
		it.CandidateRoles = nil
		it.CompletedAt = types.CurrentTimestamp()
	})
	if err != nil {
		return nil, err
	}

	m.emit(updated, event.EventTypeCancelled, s.Actor(), fromState, nil)
	return updated, nil
}

// load returns the item and the version the single write attempt will be
// conditioned on. A caller-supplied observed version that no longer matches
// the stored one is already a lost race: the handler reports the conflict
// before validating anything against the newer snapshot.
func (m *WorkItemManager) load(workItemId types.ID, observedVersion int64) (*domain.WorkItem, int64, error) {
	item, err := m.repo.Get(workItemId)
	if err != nil {
		return nil, 0, err
	}
	if observedVersion > 0 && observedVersion != item.Version {
		return nil, 0, bizerror.ErrVersionConflict
	}
	return item, item.Version, nil
}

func (m *WorkItemManager) emit(item *domain.WorkItem, eventType string, actor string,
	fromState state.State, payload domain.Payload) {

	event.EmitFunc(&event.LifecycleEvent{
		WorkItemID: item.ID,
		CaseID:     item.CaseID,
		TaskID:     item.TaskID,
		EventType:  event.EventType(eventType),
		Actor:      actor,
		FromState:  fromState,
		ToState:    item.State,
		Payload:    payload,
	})
}
