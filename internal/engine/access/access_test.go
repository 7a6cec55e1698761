package access

import (
	"testing"

	"github.com/go-tenancy/tenancy/internal/engine/model"
	"github.com/stretchr/testify/assert"
)

func TestEvaluate_MemberRole(t *testing.T) {
	tests := []struct {
		domain string
		action string
		want   bool
	}{
		{DomainOrganization, ActionRead, true},
		{DomainOrganization, ActionUpdate, false},
		{DomainOrganization, ActionCreate, false},
		{DomainOrganization, ActionDelete, false},
		{DomainOrganization, ActionInviteMember, false},
		{DomainMember, ActionRead, true},
		{DomainMember, ActionInvite, false},
		{DomainMember, ActionRemove, false},
		{DomainProject, ActionCreate, true},
		{DomainProject, ActionRead, true},
		{DomainProject, ActionUpdate, false},
		{DomainProject, ActionDelete, false},
	}

	for _, tt := range tests {
		got := Evaluate(model.RoleMember, tt.domain, tt.action)
		assert.Equal(t, tt.want, got, "member %s.%s", tt.domain, tt.action)
	}
}

func TestEvaluate_AdminAndOwner(t *testing.T) {
	for _, role := range []model.Role{model.RoleAdmin, model.RoleOwner} {
		assert.True(t, Evaluate(role, DomainOrganization, ActionRead), "%s organization.read", role)
		assert.True(t, Evaluate(role, DomainOrganization, ActionUpdate), "%s organization.update", role)
		assert.True(t, Evaluate(role, DomainOrganization, ActionInviteMember), "%s organization.invite_member", role)
		assert.True(t, Evaluate(role, DomainOrganization, ActionRemoveMember), "%s organization.remove_member", role)
		assert.True(t, Evaluate(role, DomainMember, ActionInvite), "%s member.invite", role)
		assert.True(t, Evaluate(role, DomainMember, ActionRemove), "%s member.remove", role)
		assert.True(t, Evaluate(role, DomainProject, ActionDelete), "%s project.delete", role)
	}
}

// admin and owner differ only in organization.create and organization.delete.
func TestEvaluate_AdminOwnerDelta(t *testing.T) {
	for domain, actions := range Statement {
		for _, action := range actions {
			adminGranted := Evaluate(model.RoleAdmin, domain, action)
			ownerGranted := Evaluate(model.RoleOwner, domain, action)

			if domain == DomainOrganization && (action == ActionCreate || action == ActionDelete) {
				assert.False(t, adminGranted, "admin %s.%s", domain, action)
				assert.True(t, ownerGranted, "owner %s.%s", domain, action)
				continue
			}
			assert.Equal(t, adminGranted, ownerGranted, "%s.%s", domain, action)
		}
	}
}

func TestEvaluate_UnknownInputsDeny(t *testing.T) {
	assert.False(t, Evaluate(model.Role("superuser"), DomainOrganization, ActionRead))
	assert.False(t, Evaluate(model.RoleOwner, "billing", ActionRead))
	assert.False(t, Evaluate(model.RoleOwner, DomainOrganization, "transfer"))
}

func TestGrants(t *testing.T) {
	grants := Grants(model.RoleMember)
	assert.ElementsMatch(t, []string{ActionRead}, grants[DomainOrganization])
	assert.ElementsMatch(t, []string{ActionCreate, ActionRead}, grants[DomainProject])

	assert.Nil(t, Grants(model.Role("nobody")))
}
