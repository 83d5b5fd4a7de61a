package account

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"workmill/authority"
	"workmill/bizerror"
	"workmill/idgen"
	"workmill/persistence"
	"workmill/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	SystemAdminPermission = "system:admin"

	LoadPermFunc = loadPerms
)

func LoadPermFuncReset() {
	LoadPermFunc = loadPerms
}

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

// DefaultSecurityConfiguration seeds the admin account when the user table is
// empty, so a fresh deployment can sign in and create work items.
func DefaultSecurityConfiguration() error {
	db := persistence.ActiveDataSourceManager.GormDB()
	return db.Transaction(func(tx *gorm.DB) error {
		admin := User{}
		err := tx.Model(&User{}).Where(&User{ID: 1}).First(&admin).Error
		if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
			initialAdminPassword := os.ExpandEnv("${INITIAL_ADMIN_PASSWORD}")
			if initialAdminPassword == "" {
				initialAdminPassword = "admin123"
			}
			if err := tx.Save(&User{ID: 1, Name: "admin", Secret: HashSha256(initialAdminPassword)}).Error; err != nil {
				return err
			}
		}
		if err := tx.Save(&UserRoleBinding{ID: 1, UserID: 1, Role: SystemAdminPermission}).Error; err != nil {
			return err
		}
		return nil
	})
}

func loadPerms(uid types.ID) authority.Permissions {
	var roles []string
	db := persistence.ActiveDataSourceManager.GormDB()
	if err := db.Model(&UserRoleBinding{}).Where(&UserRoleBinding{UserID: uid}).Pluck("role", &roles).Error; err != nil {
		panic(err)
	}
	return authority.Permissions(roles)
}

func CreateUser(c *UserCreation, s *session.Session) (*UserInfo, error) {
	if !s.Perms.HasRole(SystemAdminPermission) {
		return nil, bizerror.ErrForbidden
	}

	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname, Secret: HashSha256(c.Secret)}
	if err := persistence.ActiveDataSourceManager.GormDB().Save(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname}, nil
}

// QueryAccountNames resolves actor names to display names. Names without a
// matching user account are simply absent from the result.
func QueryAccountNames(names []string) (map[string]string, error) {
	if len(names) == 0 {
		return map[string]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB()
	var records []UserInfo
	if err := db.Model(&User{}).Where("name IN (?)", names).Scan(&records).Error; err != nil {
		return nil, err
	}
	result := map[string]string{}
	for _, r := range records {
		result[r.Name] = r.DisplayName()
	}
	return result, nil
}
