// Copyright 2025 Tenancy Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package access

import (
	"github.com/go-tenancy/tenancy/internal/engine/model"
)

// capability domains
const (
	DomainOrganization = "organization"
	DomainMember       = "member"
	DomainProject      = "project"
)

// organization actions
const (
	ActionCreate       = "create"
	ActionRead         = "read"
	ActionUpdate       = "update"
	ActionDelete       = "delete"
	ActionInviteMember = "invite_member"
	ActionRemoveMember = "remove_member"
	ActionInvite       = "invite"
	ActionRemove       = "remove"
)

// Statement 能力全集：domain -> actions
var Statement = map[string][]string{
	DomainOrganization: {ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionInviteMember, ActionRemoveMember},
	DomainMember:       {ActionRead, ActionInvite, ActionRemove},
	DomainProject:      {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
}

// 每个角色的授权集合独立枚举，角色之间没有结构上的继承关系。
// admin 与 owner 仅在 organization.create / organization.delete 上不同。
var roleGrants = map[model.Role]map[string][]string{
	model.RoleMember: {
		DomainOrganization: {ActionRead},
		DomainMember:       {ActionRead},
		DomainProject:      {ActionCreate, ActionRead},
	},
	model.RoleAdmin: {
		DomainOrganization: {ActionRead, ActionUpdate, ActionInviteMember, ActionRemoveMember},
		DomainMember:       {ActionRead, ActionInvite, ActionRemove},
		DomainProject:      {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
	},
	model.RoleOwner: {
		DomainOrganization: {ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionInviteMember, ActionRemoveMember},
		DomainMember:       {ActionRead, ActionInvite, ActionRemove},
		DomainProject:      {ActionCreate, ActionRead, ActionUpdate, ActionDelete},
	},
}

// grantIndex 是 roleGrants 的 O(1) 查询索引，进程启动时构建一次。
var grantIndex = buildIndex()

func buildIndex() map[model.Role]map[string]map[string]bool {
	idx := make(map[model.Role]map[string]map[string]bool, len(roleGrants))
	for role, grants := range roleGrants {
		idx[role] = make(map[string]map[string]bool, len(grants))
		for domain, actions := range grants {
			idx[role][domain] = make(map[string]bool, len(actions))
			for _, action := range actions {
				idx[role][domain][action] = true
			}
		}
	}
	return idx
}

// Evaluate reports whether the role's grant set contains the
// (domain, action) pair. Unknown roles, domains and actions deny.
func Evaluate(role model.Role, domain, action string) bool {
	domains, ok := grantIndex[role]
	if !ok {
		return false
	}
	actions, ok := domains[domain]
	if !ok {
		return false
	}
	return actions[action]
}

// Grants returns a copy of the role's grant set, keyed by domain.
func Grants(role model.Role) map[string][]string {
	grants, ok := roleGrants[role]
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(grants))
	for domain, actions := range grants {
		out[domain] = append([]string(nil), actions...)
	}
	return out
}
