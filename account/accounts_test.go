package account_test

import (
	"testing"
	"workmill/account"
	"workmill/authority"
	"workmill/bizerror"
	"workmill/persistence"
	"workmill/session"
	"workmill/testinfra"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

func setupAccountTestDatabase(t *testing.T) *testinfra.TestDatabase {
	testDatabase := testinfra.StartMysqlTestDatabase("workmill")
	assert.Nil(t, testDatabase.DS.GormDB().AutoMigrate(&account.User{}, &account.UserRoleBinding{}).Error)
	persistence.ActiveDataSourceManager = testDatabase.DS
	return testDatabase
}

func TestDefaultSecurityConfiguration(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should seed the admin account exactly once", func(t *testing.T) {
		testDatabase := setupAccountTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		Expect(account.DefaultSecurityConfiguration()).To(BeNil())

		admin := account.User{}
		Expect(testDatabase.DS.GormDB().Where(&account.User{ID: 1}).First(&admin).Error).To(BeNil())
		Expect(admin.Name).To(Equal("admin"))
		Expect(admin.Secret).To(Equal(account.HashSha256("admin123")))

		perms := account.LoadPermFunc(1)
		Expect(perms.HasSystemRole()).To(BeTrue())

		// idempotent
		Expect(account.DefaultSecurityConfiguration()).To(BeNil())
		users := []account.User{}
		Expect(testDatabase.DS.GormDB().Find(&users).Error).To(BeNil())
		Expect(len(users)).To(Equal(1))
	})
}

func TestCreateUser(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should be able to create user as system admin", func(t *testing.T) {
		testDatabase := setupAccountTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		created, err := account.CreateUser(&account.UserCreation{Name: "ann", Nickname: "Ann", Secret: "abc123"},
			&session.Session{Perms: authority.Permissions{account.SystemAdminPermission}})
		Expect(err).To(BeNil())
		Expect(created.ID).ToNot(BeZero())
		Expect(created.Name).To(Equal("ann"))

		stored := account.User{}
		Expect(testDatabase.DS.GormDB().Where(&account.User{Name: "ann"}).First(&stored).Error).To(BeNil())
		Expect(stored.Secret).To(Equal(account.HashSha256("abc123")))
	})

	t.Run("should be forbidden for plain users", func(t *testing.T) {
		testDatabase := setupAccountTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		_, err := account.CreateUser(&account.UserCreation{Name: "ann", Secret: "abc123"},
			&session.Session{Perms: authority.Permissions{}})
		Expect(err).To(Equal(bizerror.ErrForbidden))
	})
}

func TestQueryAccountNames(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should map known names to display names and skip unknown ones", func(t *testing.T) {
		testDatabase := setupAccountTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		adminSession := &session.Session{Perms: authority.Permissions{account.SystemAdminPermission}}
		_, err := account.CreateUser(&account.UserCreation{Name: "ann", Nickname: "Ann Lee", Secret: "abc123"}, adminSession)
		Expect(err).To(BeNil())
		_, err = account.CreateUser(&account.UserCreation{Name: "bob", Secret: "abc123"}, adminSession)
		Expect(err).To(BeNil())

		names, err := account.QueryAccountNames([]string{"ann", "bob", "ghost"})
		Expect(err).To(BeNil())
		// nickname wins when present, name otherwise, absent accounts are left out
		Expect(names).To(Equal(map[string]string{"ann": "Ann Lee", "bob": "bob"}))
	})

	t.Run("should not touch the database for an empty query", func(t *testing.T) {
		names, err := account.QueryAccountNames(nil)
		Expect(err).To(BeNil())
		Expect(len(names)).To(BeZero())
	})
}
