package servehttp_test

import (
	"context"
	"workmill/domain"
	"workmill/domain/workitem"
	"workmill/session"

	"github.com/fundwit/go-commons/types"
)

type workItemManagerMock struct {
	CreateWorkItemFunc func(c *domain.WorkItemCreation, s *session.Session) (*domain.WorkItem, error)
	DetailWorkItemFunc func(id types.ID, s *session.Session) (*domain.WorkItemDetail, error)
	QueryWorkItemsFunc func(query *domain.WorkItemQuery, s *session.Session) ([]domain.WorkItem, error)
	ApplyFunc          func(op *workitem.Operation, s *session.Session) (*domain.WorkItem, error)
}

func (m *workItemManagerMock) CreateWorkItem(ctx context.Context, c *domain.WorkItemCreation, s *session.Session) (*domain.WorkItem, error) {
	return m.CreateWorkItemFunc(c, s)
}
func (m *workItemManagerMock) DetailWorkItem(id types.ID, s *session.Session) (*domain.WorkItemDetail, error) {
	return m.DetailWorkItemFunc(id, s)
}
func (m *workItemManagerMock) QueryWorkItems(query *domain.WorkItemQuery, s *session.Session) ([]domain.WorkItem, error) {
	return m.QueryWorkItemsFunc(query, s)
}
func (m *workItemManagerMock) Apply(ctx context.Context, op *workitem.Operation, s *session.Session) (*domain.WorkItem, error) {
	return m.ApplyFunc(op, s)
}

func (m *workItemManagerMock) Offer(ctx context.Context, id types.ID, candidates domain.Roster, roles domain.Roster, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.Apply(ctx, &workitem.Operation{Kind: workitem.OpOffer, WorkItemID: id, Candidates: candidates, CandidateRoles: roles, ObservedVersion: observedVersion}, s)
}
func (m *workItemManagerMock) Allocate(ctx context.Context, id types.ID, assignee string, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.Apply(ctx, &workitem.Operation{Kind: workitem.OpAllocate, WorkItemID: id, Assignee: assignee, ObservedVersion: observedVersion}, s)
}
func (m *workItemManagerMock) Checkout(ctx context.Context, id types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.Apply(ctx, &workitem.Operation{Kind: workitem.OpCheckout, WorkItemID: id, ObservedVersion: observedVersion}, s)
}
func (m *workItemManagerMock) Checkin(ctx context.Context, id types.ID, data domain.Payload, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.Apply(ctx, &workitem.Operation{Kind: workitem.OpCheckin, WorkItemID: id, Data: data, ObservedVersion: observedVersion}, s)
}
func (m *workItemManagerMock) Complete(ctx context.Context, id types.ID, data domain.Payload, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.Apply(ctx, &workitem.Operation{Kind: workitem.OpComplete, WorkItemID: id, Data: data, ObservedVersion: observedVersion}, s)
}
func (m *workItemManagerMock) Delegate(ctx context.Context, id types.ID, target string, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.Apply(ctx, &workitem.Operation{Kind: workitem.OpDelegate, WorkItemID: id, Target: target, ObservedVersion: observedVersion}, s)
}
func (m *workItemManagerMock) Suspend(ctx context.Context, id types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.Apply(ctx, &workitem.Operation{Kind: workitem.OpSuspend, WorkItemID: id, ObservedVersion: observedVersion}, s)
}
func (m *workItemManagerMock) Resume(ctx context.Context, id types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.Apply(ctx, &workitem.Operation{Kind: workitem.OpResume, WorkItemID: id, ObservedVersion: observedVersion}, s)
}
func (m *workItemManagerMock) Reoffer(ctx context.Context, id types.ID, candidates domain.Roster, roles domain.Roster, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.Apply(ctx, &workitem.Operation{Kind: workitem.OpReoffer, WorkItemID: id, Candidates: candidates, CandidateRoles: roles, ObservedVersion: observedVersion}, s)
}
func (m *workItemManagerMock) Deallocate(ctx context.Context, id types.ID, candidates domain.Roster, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.Apply(ctx, &workitem.Operation{Kind: workitem.OpDeallocate, WorkItemID: id, Candidates: candidates, ObservedVersion: observedVersion}, s)
}
func (m *workItemManagerMock) Reallocate(ctx context.Context, id types.ID, target string, data domain.Payload, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.Apply(ctx, &workitem.Operation{Kind: workitem.OpReallocate, WorkItemID: id, Target: target, Data: data, ObservedVersion: observedVersion}, s)
}
func (m *workItemManagerMock) Cancel(ctx context.Context, id types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.Apply(ctx, &workitem.Operation{Kind: workitem.OpCancel, WorkItemID: id, ObservedVersion: observedVersion}, s)
}

type pileManagerMock struct {
	CreatePileFunc    func(c *domain.PileCreation, s *session.Session) (*domain.Pile, error)
	DetailPileFunc    func(id types.ID, s *session.Session) (*domain.Pile, error)
	UpdateMembersFunc func(id types.ID, members domain.Roster, s *session.Session) (*domain.Pile, error)
	OfferToPileFunc   func(pileId types.ID, workItemId types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
	ClaimFunc         func(pileId types.ID, workItemId types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error)
}

func (m *pileManagerMock) CreatePile(c *domain.PileCreation, s *session.Session) (*domain.Pile, error) {
	return m.CreatePileFunc(c, s)
}
func (m *pileManagerMock) DetailPile(id types.ID, s *session.Session) (*domain.Pile, error) {
	return m.DetailPileFunc(id, s)
}
func (m *pileManagerMock) UpdateMembers(id types.ID, members domain.Roster, s *session.Session) (*domain.Pile, error) {
	return m.UpdateMembersFunc(id, members, s)
}
func (m *pileManagerMock) OfferToPile(ctx context.Context, pileId types.ID, workItemId types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.OfferToPileFunc(pileId, workItemId, observedVersion, s)
}
func (m *pileManagerMock) Claim(ctx context.Context, pileId types.ID, workItemId types.ID, observedVersion int64, s *session.Session) (*domain.WorkItem, error) {
	return m.ClaimFunc(pileId, workItemId, observedVersion, s)
}
