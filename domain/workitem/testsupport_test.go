package workitem_test

import (
	"context"
	"sync"
	"workmill/authority"
	"workmill/bizerror"
	"workmill/domain"
	"workmill/event"
	"workmill/session"

	"github.com/fundwit/go-commons/types"
)

// fakeRepo is an in-memory WorkItemRepository honoring the versioned-update
// contract, so handler tests exercise the same conflict behavior the gorm
// repository produces.
type fakeRepo struct {
	mutex sync.Mutex
	items map[types.ID]domain.WorkItem
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[types.ID]domain.WorkItem{}}
}

func (r *fakeRepo) Get(id types.ID) (*domain.WorkItem, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	item, found := r.items[id]
	if !found {
		return nil, bizerror.ErrNotFound
	}
	copied := item
	return &copied, nil
}

func (r *fakeRepo) List(query *domain.WorkItemQuery) ([]domain.WorkItem, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	result := []domain.WorkItem{}
	for _, item := range r.items {
		if query.CaseID != 0 && item.CaseID != query.CaseID {
			continue
		}
		if query.TaskID != "" && item.TaskID != query.TaskID {
			continue
		}
		if len(query.States) > 0 {
			matched := false
			for _, s := range query.States {
				if item.State == s {
					matched = true
				}
			}
			if !matched {
				continue
			}
		}
		if query.AssignedUser != "" || query.CandidateUser != "" {
			if !(query.AssignedUser != "" && item.AssignedUser == query.AssignedUser) &&
				!(query.CandidateUser != "" && item.CandidateUsers.Contains(query.CandidateUser)) {
				continue
			}
		}
		result = append(result, item)
	}
	return result, nil
}

func (r *fakeRepo) Create(item *domain.WorkItem) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.items[item.ID] = *item
	return nil
}

func (r *fakeRepo) UpdateIfVersion(id types.ID, expectedVersion int64,
	mutate func(*domain.WorkItem)) (*domain.WorkItem, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	item, found := r.items[id]
	if !found {
		return nil, bizerror.ErrNotFound
	}
	if item.Version != expectedVersion {
		return nil, bizerror.ErrVersionConflict
	}
	mutate(&item)
	item.ID = id
	item.Version = expectedVersion + 1
	r.items[id] = item
	copied := item
	return &copied, nil
}

// allowAllOracle / denyOracle / failingOracle drive the eligibility branches.
type stubOracle struct {
	eligible bool
	err      error
}

func (o *stubOracle) IsEligible(ctx context.Context, actor string, taskID string) (bool, error) {
	return o.eligible, o.err
}

func sessionOf(name string, perms ...string) *session.Session {
	return &session.Session{
		Token:    "test-token",
		Identity: session.Identity{ID: 1, Name: name, Nickname: name},
		Perms:    authority.Permissions(perms),
	}
}

func systemSession() *session.Session {
	return sessionOf("workflow-engine", "system:admin")
}

type emittedEvents struct {
	mutex   sync.Mutex
	records []event.LifecycleEvent
}

func (e *emittedEvents) capture() func(*event.LifecycleEvent) *event.EventRecord {
	return func(ev *event.LifecycleEvent) *event.EventRecord {
		e.mutex.Lock()
		defer e.mutex.Unlock()
		e.records = append(e.records, *ev)
		return &event.EventRecord{LifecycleEvent: *ev}
	}
}

func (e *emittedEvents) all() []event.LifecycleEvent {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return append([]event.LifecycleEvent{}, e.records...)
}
