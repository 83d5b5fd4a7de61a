package session

import (
	"time"
	"workmill/authority"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`

	Perms      authority.Permissions `json:"perms"`
	Privileges authority.Privileges  `json:"privileges"`

	SigningTime time.Time `json:"-"`
}

type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

// Actor is the identifier the lifecycle core tracks in work item assignments.
func (s *Session) Actor() string {
	return s.Identity.Name
}

func (s *Session) IsSystem() bool {
	return s.Perms.HasSystemRole()
}
