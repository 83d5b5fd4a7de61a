package workitem

import (
	"context"
	"workmill/bizerror"
	"workmill/domain"
	"workmill/session"

	"github.com/fundwit/go-commons/types"
)

// OperationKind enumerates the closed set of lifecycle operations.
type OperationKind string

const (
	OpOffer      OperationKind = "offer"
	OpAllocate   OperationKind = "allocate"
	OpCheckout   OperationKind = "checkout"
	OpCheckin    OperationKind = "checkin"
	OpComplete   OperationKind = "complete"
	OpDelegate   OperationKind = "delegate"
	OpSuspend    OperationKind = "suspend"
	OpResume     OperationKind = "resume"
	OpReoffer    OperationKind = "reoffer"
	OpDeallocate OperationKind = "deallocate"
	OpReallocate OperationKind = "reallocate"
	OpCancel     OperationKind = "cancel"
)

// Operation is the tagged request variant dispatched through Apply. Only the
// fields relevant to the kind are read; ObservedVersion zero means "use the
// version seen at load time".
type Operation struct {
	Kind            OperationKind `json:"kind" validate:"required" binding:"required"`
	WorkItemID      types.ID      `json:"workItemId" validate:"required"`
	ObservedVersion int64         `json:"observedVersion"`

	Candidates     domain.Roster  `json:"candidates"`     // offer, reoffer, deallocate
	CandidateRoles domain.Roster  `json:"candidateRoles"` // offer, reoffer
	Assignee       string         `json:"assignee"`       // allocate
	Target         string         `json:"target"`         // delegate, reallocate
	Data           domain.Payload `json:"data"`           // checkin, complete, reallocate
}

func (m *WorkItemManager) Apply(ctx context.Context, op *Operation, s *session.Session) (*domain.WorkItem, error) {
	switch op.Kind {
	case OpOffer:
		return m.Offer(ctx, op.WorkItemID, op.Candidates, op.CandidateRoles, op.ObservedVersion, s)
	case OpAllocate:
		return m.Allocate(ctx, op.WorkItemID, op.Assignee, op.ObservedVersion, s)
	case OpCheckout:
		return m.Checkout(ctx, op.WorkItemID, op.ObservedVersion, s)
	case OpCheckin:
		return m.Checkin(ctx, op.WorkItemID, op.Data, op.ObservedVersion, s)
	case OpComplete:
		return m.Complete(ctx, op.WorkItemID, op.Data, op.ObservedVersion, s)
	case OpDelegate:
		return m.Delegate(ctx, op.WorkItemID, op.Target, op.ObservedVersion, s)
	case OpSuspend:
		return m.Suspend(ctx, op.WorkItemID, op.ObservedVersion, s)
	case OpResume:
		return m.Resume(ctx, op.WorkItemID, op.ObservedVersion, s)
	case OpReoffer:
		return m.Reoffer(ctx, op.WorkItemID, op.Candidates, op.CandidateRoles, op.ObservedVersion, s)
	case OpDeallocate:
		return m.Deallocate(ctx, op.WorkItemID, op.Candidates, op.ObservedVersion, s)
	case OpReallocate:
		return m.Reallocate(ctx, op.WorkItemID, op.Target, op.Data, op.ObservedVersion, s)
	case OpCancel:
		return m.Cancel(ctx, op.WorkItemID, op.ObservedVersion, s)
	}
	return nil, &bizerror.ErrBadParam{}
}
