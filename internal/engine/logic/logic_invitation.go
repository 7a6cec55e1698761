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
	"time"

	"gorm.io/gorm"

	"github.com/go-tenancy/tenancy/internal/engine/access"
	"github.com/go-tenancy/tenancy/internal/engine/model"
	"github.com/go-tenancy/tenancy/internal/engine/repo"
	"github.com/go-tenancy/tenancy/internal/pkg/queue"
	"github.com/go-tenancy/tenancy/pkg/ctx"
	"github.com/go-tenancy/tenancy/pkg/id"
	"github.com/go-tenancy/tenancy/pkg/log"
)

// 邀请有效期
const invitationTTL = 48 * time.Hour

// MailEnqueuer 邮件任务发布端
type MailEnqueuer interface {
	Enqueue(taskType string, payload []byte, queueName string) error
}

// InvitationLogic 邀请域服务：邀请的签发、接受、拒绝与过期清理。
type InvitationLogic struct {
	ctx        *ctx.Context
	orgRepo    repo.IOrganizationRepository
	memberRepo repo.IMemberRepository
	invRepo    repo.IInvitationRepository
	userRepo   repo.IUserRepository
	enqueuer   MailEnqueuer
	baseURL    string
}

func NewInvitationLogic(ctx *ctx.Context, orgRepo repo.IOrganizationRepository, memberRepo repo.IMemberRepository,
	invRepo repo.IInvitationRepository, userRepo repo.IUserRepository, enqueuer MailEnqueuer, baseURL string) *InvitationLogic {
	return &InvitationLogic{
		ctx:        ctx,
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
		invRepo:    invRepo,
		userRepo:   userRepo,
		enqueuer:   enqueuer,
		baseURL:    baseURL,
	}
}

// InviteMember 在组织内签发邀请。调用方角色需具备 organization.invite_member
// 能力；邮件投递走队列，入队失败只记日志，不回滚已写入的邀请。
func (il *InvitationLogic) InviteMember(callerId, organizationId string, req *model.InviteMemberReq) (*model.Invitation, error) {
	if callerId == "" {
		return nil, ErrNotAuthenticated
	}
	if req.Email == "" {
		return nil, fmt.Errorf("invitee email is required")
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	callerRole, err := il.roleOf(callerId, organizationId)
	if err != nil {
		return nil, err
	}
	if !access.Evaluate(callerRole, access.DomainOrganization, access.ActionInviteMember) {
		return nil, ErrUnauthorized
	}

	org, err := il.orgRepo.GetById(organizationId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load organization: %w", err)
	}

	inv := &model.Invitation{
		Id:             id.GetUlid(),
		OrganizationId: organizationId,
		Email:          req.Email,
		Role:           role,
		Status:         model.InvitationStatusPending,
		ExpiresAt:      time.Now().Add(invitationTTL),
		InviterId:      callerId,
	}
	if err := il.invRepo.Create(inv); err != nil {
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	il.enqueueInvitationEmail(inv, org, callerId)

	log.Infow("invitation created",
		"invitationId", inv.Id,
		"orgId", organizationId,
		"email", req.Email,
		"role", role,
	)
	return inv, nil
}

// enqueueInvitationEmail 投递邀请邮件任务，尽力而为
func (il *InvitationLogic) enqueueInvitationEmail(inv *model.Invitation, org *model.Organization, inviterId string) {
	inviterName := ""
	if inviter, err := il.userRepo.GetById(inviterId); err == nil {
		inviterName = inviter.Name
	}

	payload, err := queue.NewInvitationEmailTask(&queue.InvitationEmailPayload{
		InvitationId: inv.Id,
		Email:        inv.Email,
		OrgName:      org.Name,
		InviterName:  inviterName,
		Role:         string(inv.Role),
		AcceptURL:    fmt.Sprintf("%s/accept-invitation/%s", il.baseURL, inv.Id),
	})
	if err != nil {
		log.Warnw("build invitation email task", "invitationId", inv.Id, "error", err)
		return
	}
	if err := il.enqueuer.Enqueue(queue.TypeInvitationEmail, payload, queue.Default); err != nil {
		log.Warnw("enqueue invitation email", "invitationId", inv.Id, "error", err)
	}
}

// AcceptInvitation 接受邀请：创建成员记录并把邀请置为 accepted。
// 重复接受（成员已存在）按成功处理，保证操作幂等。
func (il *InvitationLogic) AcceptInvitation(userId, userEmail, invitationId string) (*model.Invitation, error) {
	if userId == "" {
		return nil, ErrNotAuthenticated
	}

	inv, err := il.loadActionable(userEmail, invitationId)
	if err != nil {
		return nil, err
	}

	m := &model.Member{
		Id:             id.GetUUID(),
		OrganizationId: inv.OrganizationId,
		UserId:         userId,
		Role:           inv.Role,
	}
	if err := il.memberRepo.Create(m); err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create member: %w", err)
		}
		// 已是成员，继续落邀请状态
	}

	if err := il.invRepo.UpdateStatus(inv.Id, model.InvitationStatusAccepted); err != nil {
		return nil, fmt.Errorf("mark invitation accepted: %w", err)
	}
	inv.Status = model.InvitationStatusAccepted

	log.Infow("invitation accepted",
		"invitationId", inv.Id,
		"orgId", inv.OrganizationId,
		"userId", userId,
	)
	return inv, nil
}

// RejectInvitation 拒绝邀请
func (il *InvitationLogic) RejectInvitation(userId, userEmail, invitationId string) (*model.Invitation, error) {
	if userId == "" {
		return nil, ErrNotAuthenticated
	}

	inv, err := il.loadActionable(userEmail, invitationId)
	if err != nil {
		return nil, err
	}

	if err := il.invRepo.UpdateStatus(inv.Id, model.InvitationStatusRejected); err != nil {
		return nil, fmt.Errorf("mark invitation rejected: %w", err)
	}
	inv.Status = model.InvitationStatusRejected

	log.Infow("invitation rejected", "invitationId", inv.Id, "orgId", inv.OrganizationId)
	return inv, nil
}

// loadActionable 加载邀请并校验仍然可处理、收件人与调用方一致
func (il *InvitationLogic) loadActionable(userEmail, invitationId string) (*model.Invitation, error) {
	inv, err := il.invRepo.GetById(invitationId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load invitation: %w", err)
	}

	if !inv.Actionable(time.Now()) {
		return nil, ErrInvitationNotActionable
	}
	if inv.Email != userEmail {
		return nil, ErrUnauthorized
	}
	return inv, nil
}

// ListInvitations 返回组织的全部邀请，仅组织成员可见
func (il *InvitationLogic) ListInvitations(callerId, organizationId string) ([]*model.Invitation, error) {
	if callerId == "" {
		return nil, ErrNotAuthenticated
	}

	role, err := il.roleOf(callerId, organizationId)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return nil, ErrUnauthorized
	}

	invs, err := il.invRepo.ListByOrgId(organizationId)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invs, nil
}

// SweepExpired 把已过期但仍为 pending 的邀请批量置为 expired，
// 由定时任务周期触发。
func (il *InvitationLogic) SweepExpired() (int64, error) {
	n, err := il.invRepo.MarkExpired(time.Now())
	if err != nil {
		return 0, fmt.Errorf("mark expired invitations: %w", err)
	}
	if n > 0 {
		log.Infow("expired invitations swept", "count", n)
	}
	return n, nil
}

// roleOf 查用户在组织内的角色，无成员关系时为空角色
func (il *InvitationLogic) roleOf(userId, organizationId string) (model.Role, error) {
	m, err := il.memberRepo.GetByUserAndOrg(userId, organizationId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load membership: %w", err)
	}
	return m.Role, nil
}
