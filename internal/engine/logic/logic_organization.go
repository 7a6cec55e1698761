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

package logic

import (
	"errors"
	"fmt"

	"github.com/go-tenancy/tenancy/internal/engine/access"
	"github.com/go-tenancy/tenancy/internal/engine/model"
	"github.com/go-tenancy/tenancy/internal/engine/repo"
	"github.com/go-tenancy/tenancy/pkg/ctx"
	"github.com/go-tenancy/tenancy/pkg/id"
	"github.com/go-tenancy/tenancy/pkg/log"
	"gorm.io/gorm"
)

// OrganizationLogic 组织域服务：解析与变更组织/成员状态。
// 变更操作在服务内部做能力校验，不依赖路由层把关。
type OrganizationLogic struct {
	ctx        *ctx.Context
	orgRepo    repo.IOrganizationRepository
	memberRepo repo.IMemberRepository
}

func NewOrganizationLogic(ctx *ctx.Context, orgRepo repo.IOrganizationRepository, memberRepo repo.IMemberRepository) *OrganizationLogic {
	return &OrganizationLogic{
		ctx:        ctx,
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
	}
}

// ListOrganizationsForUser 返回用户所属的全部组织。
// 两段式查询：先取成员记录，再按 id 集合取组织；两段之间的成员
// 变动是被接受的陈旧窗口。
func (ol *OrganizationLogic) ListOrganizationsForUser(userId string) ([]*model.Organization, error) {
	if userId == "" {
		return nil, ErrNotAuthenticated
	}

	members, err := ol.memberRepo.ListByUserId(userId)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	if len(members) == 0 {
		return []*model.Organization{}, nil
	}

	orgIds := make([]string, 0, len(members))
	for _, m := range members {
		orgIds = append(orgIds, m.OrganizationId)
	}

	orgs, err := ol.orgRepo.ListByIds(orgIds)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return orgs, nil
}

// GetActiveOrganization 返回用户"第一条"成员记录对应的组织；
// 多个成员关系时取哪一条是任意的，没有成员关系时返回 nil。
func (ol *OrganizationLogic) GetActiveOrganization(userId string) (*model.Organization, error) {
	if userId == "" {
		return nil, ErrNotAuthenticated
	}

	m, err := ol.memberRepo.FirstByUserId(userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("first membership: %w", err)
	}

	org, err := ol.orgRepo.GetById(m.OrganizationId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load organization: %w", err)
	}
	return org, nil
}

// GetOrganizationBySlug 按 slug 获取组织及其成员（含用户信息）。
// 不存在返回 ErrNotFound，瞬时失败原样返回，由调用方决定是否降级。
func (ol *OrganizationLogic) GetOrganizationBySlug(slug string) (*model.Organization, error) {
	if slug == "" {
		return nil, ErrNotFound
	}

	org, err := ol.orgRepo.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load organization by slug: %w", err)
	}
	return org, nil
}

// GetFullOrganizationForSession 返回会话当前组织的全量视图：
// 成员（含用户）与全部邀请。会话没有选中组织时返回 nil, nil。
func (ol *OrganizationLogic) GetFullOrganizationForSession(session *model.Session) (*model.Organization, error) {
	if session == nil {
		return nil, ErrNotAuthenticated
	}
	if session.ActiveOrganizationId == "" {
		return nil, nil
	}

	org, err := ol.orgRepo.GetFull(session.ActiveOrganizationId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load full organization: %w", err)
	}
	return org, nil
}

// CreateOrganization 创建组织，创建者成为 owner，两条记录同事务写入。
// slug 冲突返回 ErrSlugTaken。
func (ol *OrganizationLogic) CreateOrganization(userId string, req *model.CreateOrgReq) (*model.Organization, error) {
	if userId == "" {
		return nil, ErrNotAuthenticated
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrCreationFailed)
	}

	org := &model.Organization{
		Id:   id.GetUUID(),
		Name: req.Name,
		Logo: req.Logo,
	}
	if req.Slug != "" {
		exists, err := ol.orgRepo.SlugExists(req.Slug)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCreationFailed, err)
		}
		if exists {
			return nil, fmt.Errorf("%w: %q", ErrSlugTaken, req.Slug)
		}
		slug := req.Slug
		org.Slug = &slug
	}

	owner := &model.Member{
		Id:             id.GetUUID(),
		OrganizationId: org.Id,
		UserId:         userId,
		Role:           model.RoleOwner,
	}

	if err := ol.orgRepo.CreateWithOwner(org, owner); err != nil {
		// 并发创建同一 slug 时唯一键兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %q", ErrSlugTaken, req.Slug)
		}
		return nil, fmt.Errorf("%w: %v", ErrCreationFailed, err)
	}

	log.Infow("organization created",
		"orgId", org.Id,
		"name", org.Name,
		"ownerId", userId,
	)
	return org, nil
}

// GetUserRoleInOrganization 返回用户在组织内的角色；
// 无成员关系时返回空角色且无错误。
func (ol *OrganizationLogic) GetUserRoleInOrganization(userId, organizationId string) (model.Role, error) {
	m, err := ol.memberRepo.GetByUserAndOrg(userId, organizationId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load membership: %w", err)
	}
	return m.Role, nil
}

// CanInviteMembers 判断用户是否能在组织内发出邀请：
// 角色为 owner 或 admin 时为 true，无成员关系时为 false（不是错误）。
func (ol *OrganizationLogic) CanInviteMembers(userId, organizationId string) (bool, error) {
	role, err := ol.GetUserRoleInOrganization(userId, organizationId)
	if err != nil {
		return false, err
	}
	if role == "" {
		return false, nil
	}
	return access.Evaluate(role, access.DomainOrganization, access.ActionInviteMember), nil
}

// DeleteOrganization 删除组织，成员与邀请级联删除。
// 只有 owner 具备 organization.delete 能力。
func (ol *OrganizationLogic) DeleteOrganization(callerId, organizationId string) error {
	if callerId == "" {
		return ErrNotAuthenticated
	}

	callerRole, err := ol.GetUserRoleInOrganization(callerId, organizationId)
	if err != nil {
		return err
	}
	if !access.Evaluate(callerRole, access.DomainOrganization, access.ActionDelete) {
		return ErrUnauthorized
	}

	if _, err := ol.orgRepo.GetById(organizationId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load organization: %w", err)
	}

	if err := ol.orgRepo.Delete(organizationId); err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}

	log.Infow("organization deleted", "orgId", organizationId, "deletedBy", callerId)
	return nil
}

// RemoveMember 把成员移出组织。调用方需要 member.remove 能力；
// owner 只能被 owner 移除，最后一个 owner 不可移除。
func (ol *OrganizationLogic) RemoveMember(callerId, organizationId, targetUserId string) error {
	if callerId == "" {
		return ErrNotAuthenticated
	}

	callerRole, err := ol.GetUserRoleInOrganization(callerId, organizationId)
	if err != nil {
		return err
	}
	if !access.Evaluate(callerRole, access.DomainMember, access.ActionRemove) {
		return ErrUnauthorized
	}

	target, err := ol.memberRepo.GetByUserAndOrg(targetUserId, organizationId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load target membership: %w", err)
	}
	if target.Role == model.RoleOwner {
		if callerRole != model.RoleOwner {
			return ErrUnauthorized
		}
		owners, err := ol.memberRepo.CountByOrgAndRole(organizationId, model.RoleOwner)
		if err != nil {
			return fmt.Errorf("count owners: %w", err)
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}

	if err := ol.memberRepo.Delete(organizationId, targetUserId); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}

	log.Infow("member removed",
		"orgId", organizationId,
		"userId", targetUserId,
		"removedBy", callerId,
	)
	return nil
}
