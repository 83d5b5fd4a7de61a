package pile_test

import (
	"sync"
	"workmill/authority"
	"workmill/bizerror"
	"workmill/domain"
	"workmill/event"
	"workmill/session"

	"github.com/fundwit/go-commons/types"
)

type fakePileRepo struct {
	mutex sync.Mutex
	piles map[types.ID]domain.Pile
}

func newFakePileRepo() *fakePileRepo {
	return &fakePileRepo{piles: map[types.ID]domain.Pile{}}
}

func (r *fakePileRepo) Create(pile *domain.Pile) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.piles[pile.ID] = *pile
	return nil
}

func (r *fakePileRepo) Get(id types.ID) (*domain.Pile, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	pile, found := r.piles[id]
	if !found {
		return nil, bizerror.ErrNotFound
	}
	copied := pile
	return &copied, nil
}

func (r *fakePileRepo) UpdateMembers(id types.ID, members domain.Roster) (*domain.Pile, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	pile, found := r.piles[id]
	if !found {
		return nil, bizerror.ErrNotFound
	}
	pile.Members = members
	r.piles[id] = pile
	copied := pile
	return &copied, nil
}

// fakeItemRepo honors the versioned-update contract so claim races resolve
// the same way they would against the gorm repository.
type fakeItemRepo struct {
	mutex sync.Mutex
	items map[types.ID]domain.WorkItem
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{items: map[types.ID]domain.WorkItem{}}
}

func (r *fakeItemRepo) Get(id types.ID) (*domain.WorkItem, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	item, found := r.items[id]
	if !found {
		return nil, bizerror.ErrNotFound
	}
	copied := item
	return &copied, nil
}

func (r *fakeItemRepo) List(query *domain.WorkItemQuery) ([]domain.WorkItem, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	result := []domain.WorkItem{}
	for _, item := range r.items {
		if query.PileID != 0 && item.PileID != query.PileID {
			continue
		}
		result = append(result, item)
	}
	return result, nil
}

func (r *fakeItemRepo) Create(item *domain.WorkItem) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.items[item.ID] = *item
	return nil
}

func (r *fakeItemRepo) UpdateIfVersion(id types.ID, expectedVersion int64,
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

func authorityCheckerAllowNone() *authority.PrivilegeChecker {
	return authority.NewPrivilegeChecker(&authority.StaticPrivilegeSource{})
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

func discardEvents() func() {
	originEmitFunc := event.EmitFunc
	event.EmitFunc = func(ev *event.LifecycleEvent) *event.EventRecord {
		return &event.EventRecord{LifecycleEvent: *ev}
	}
	return func() {
		event.EmitFunc = originEmitFunc
	}
}
