package pile

import (
	"context"
	"errors"
	"time"
	"workmill/bizerror"
	"workmill/domain"
	"workmill/domain/state"
	"workmill/domain/workitem"
	"workmill/idgen"
	"workmill/session"

	"github.com/fundwit/go-commons/types"
	cache "github.com/patrickmn/go-cache"
	"github.com/sony/sonyflake"
)

var pileIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

type PileManagerTraits interface {
	CreatePile(c *domain.PileCreation, s *session.Session) (*domain.Pile, error)
	DetailPile(id types.ID, s *session.Session) (*domain.Pile, error)
	UpdateMembers(id types.ID, members domain.Roster, s *session.Session) (*domain.Pile, error)
	OfferToPile(ctx context.Context, pileId types.ID, workItemId types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
	Claim(ctx context.Context, pileId types.ID, workItemId types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
}

// PileRepository is the persistence contract for piles.
type PileRepository interface {
	Create(pile *domain.Pile) error
	Get(id types.ID) (*domain.Pile, error)
	UpdateMembers(id types.ID, members domain.Roster) (*domain.Pile, error)
}

// PileManager keeps shared-pool membership and lets members race for piled
// items. A claim rides the checkout handler's versioned write, so concurrent
// claims resolve to exactly one winner.
type PileManager struct {
	piles        PileRepository
	workItems    workitem.WorkItemManagerTraits
	repo         workitem.WorkItemRepository
	membersCache *cache.Cache
}

func NewPileManager(piles PileRepository, workItems workitem.WorkItemManagerTraits,
	repo workitem.WorkItemRepository) *PileManager {
	return &PileManager{
		piles:        piles,
		workItems:    workItems,
		repo:         repo,
		membersCache: cache.New(1*time.Minute, 5*time.Minute),
	}
}

func (m *PileManager) CreatePile(c *domain.PileCreation, s *session.Session) (*domain.Pile, error) {
	if !s.IsSystem() {
		return nil, bizerror.ErrForbidden
	}
	record := &domain.Pile{
		ID:         idgen.NextID(pileIdWorker),
		Name:       c.Name,
		TaskID:     c.TaskID,
		Members:    c.Members,
		CreateTime: types.CurrentTimestamp(),
	}
	if err := m.piles.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (m *PileManager) DetailPile(id types.ID, s *session.Session) (*domain.Pile, error) {
	pile, err := m.piles.Get(id)
	if err != nil {
		return nil, err
	}
	if !s.IsSystem() && !pile.Members.Contains(s.Actor()) {
		return nil, bizerror.ErrForbidden
	}
	return pile, nil
}

// UpdateMembers replaces the member roster. Already claimed items keep their
// assignee; only future claims see the new roster.
func (m *PileManager) UpdateMembers(id types.ID, members domain.Roster, s *session.Session) (*domain.Pile, error) {
	if !s.IsSystem() {
		return nil, bizerror.ErrForbidden
	}
	updated, err := m.piles.UpdateMembers(id, members)
	if err != nil {
		return nil, err
	}
	m.membersCache.Delete(id.String())
	return updated, nil
}

// OfferToPile links an ENABLED work item to the pile and offers it to the
// current member roster.
func (m *PileManager) OfferToPile(ctx context.Context, pileId types.ID, workItemId types.ID,
	observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	if !s.IsSystem() {
		return nil, bizerror.ErrForbidden
	}
	pile, err := m.piles.Get(pileId)
	if err != nil {
		return nil, err
	}

	updated, err := m.workItems.Offer(ctx, workItemId, pile.Members, nil, observedVersion, s)
	if err != nil {
		return nil, err
	}
	// the pile link rides a second versioned write; the offer above owns the
	// state transition
	linked, err := m.repo.UpdateIfVersion(workItemId, updated.Version, func(it *domain.WorkItem) {
		it.PileID = pileId
	})
	if err != nil {
		return nil, err
	}
	return linked, nil
}

// Claim lets a pile member take a piled item for execution. Losing a claim
// race surfaces as ErrAlreadyClaimed.
func (m *PileManager) Claim(ctx context.Context, pileId types.ID, workItemId types.ID,
	observedVersion int64, s *session.Session) (*domain.WorkItem, error) {

	pile, err := m.cachedPile(pileId)
	if err != nil {
		return nil, err
	}
	if !pile.Members.Contains(s.Actor()) {
		return nil, bizerror.ErrActorNotEligible
	}

	item, err := m.repo.Get(workItemId)
	if err != nil {
		return nil, err
	}
	if item.PileID != pileId {
		return nil, bizerror.ErrNotFound
	}
	if item.State != state.StateOffered && item.State != state.StateAllocated {
		if state.IsTerminal(item.State) || item.State == state.StateExecuting {
			return nil, bizerror.ErrAlreadyClaimed
		}
		return nil, bizerror.ErrInvalidStateTransition
	}

	// condition the checkout on the version seen here, so every losing
	// claimer fails the swap instead of observing the winner's state
	if observedVersion == 0 {
		observedVersion = item.Version
	}
	updated, err := m.workItems.Checkout(ctx, workItemId, observedVersion, s)
	if errors.Is(err, bizerror.ErrVersionConflict) {
		return nil, bizerror.ErrAlreadyClaimed
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (m *PileManager) cachedPile(id types.ID) (*domain.Pile, error) {
	if cached, found := m.membersCache.Get(id.String()); found {
		if pile, ok := cached.(*domain.Pile); ok {
			return pile, nil
		}
	}
	pile, err := m.piles.Get(id)
	if err != nil {
		return nil, err
	}
	m.membersCache.Set(id.String(), pile, cache.DefaultExpiration)
	return pile, nil
}
