package domain

import (
	"github.com/fundwit/go-commons/types"
)

// Pile is a named group of users sharing visibility of a set of work items.
// A work item is linked to at most one pile at a time. Membership changes do
// not retroactively affect already claimed items.
type Pile struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	Name   string   `json:"name"`
	TaskID string   `json:"taskId"`

	Members Roster `json:"members" sql:"type:TEXT"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (r *Pile) TableName() string {
	return "piles"
}

type PileCreation struct {
	Name    string `json:"name" validate:"required" binding:"required"`
	TaskID  string `json:"taskId" validate:"required" binding:"required"`
	Members Roster `json:"members" validate:"required,gt=0" binding:"required"`
}

type PileMemberChange struct {
	Members Roster `json:"members" validate:"required" binding:"required"`
}
