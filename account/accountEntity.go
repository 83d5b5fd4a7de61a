package account

import (
	"github.com/fundwit/go-commons/types"
)

type User struct {
	ID       types.ID `json:"id" gorm:"primary_key"`
	Name     string   `json:"name" gorm:"unique_index:uni_user_name"`
	Nickname string   `json:"nickname"`
	Secret   string   `json:"-"`
}

func (u *User) TableName() string {
	return "users"
}

// UserRoleBinding grants one permission string to one user. System level
// permissions carry the "system:" prefix.
type UserRoleBinding struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	UserID types.ID `json:"userId" gorm:"unique_index:uni_user_role"`
	Role   string   `json:"role" gorm:"unique_index:uni_user_role"`
}

func (u *UserRoleBinding) TableName() string {
	return "user_role_bindings"
}

type UserCreation struct {
	Name     string `json:"name" validate:"required" binding:"required"`
	Nickname string `json:"nickname"`
	Secret   string `json:"secret" validate:"required" binding:"required"`
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (u *UserInfo) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Name
}
