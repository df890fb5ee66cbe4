package cnst

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsValid(t *testing.T) {
	for _, r := range Roles {
		assert.True(t, r.IsValid(), r)
	}
	assert.False(t, Role("Counselor").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestRole_CanManageUsers(t *testing.T) {
	assert.True(t, RoleSuperAdmin.CanManageUsers())
	assert.True(t, RoleAdmin.CanManageUsers())
	assert.False(t, RoleBranchManager.CanManageUsers())
	assert.False(t, RoleCounselor.CanManageUsers())
}

func TestDecision_IsValid(t *testing.T) {
	assert.True(t, DecisionAccepted.IsValid())
	assert.True(t, DecisionDeferred.IsValid())
	assert.False(t, Decision("maybe").IsValid())
}

func TestLangDefaults(t *testing.T) {
	assert.Equal(t, LangEN, LangDefault)
	assert.Equal(t, "X-Lang", XLang)
	assert.Equal(t, "Next Bot", SystemActorName)
}
