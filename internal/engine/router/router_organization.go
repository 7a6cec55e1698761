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

package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/go-tenancy/tenancy/internal/engine/consts"
	"github.com/go-tenancy/tenancy/internal/engine/logic"
	"github.com/go-tenancy/tenancy/internal/engine/model"
	httpx "github.com/go-tenancy/tenancy/pkg/http"
	"github.com/go-tenancy/tenancy/pkg/http/middleware"
	"github.com/go-tenancy/tenancy/pkg/log"
)

func (rt *Router) organizationRouter(r fiber.Router, auth fiber.Handler) {
	orgGroup := r.Group("/orgs")
	{
		// 当前用户的组织列表
		orgGroup.Get("/", auth, rt.listOrganizations)

		// 创建组织
		orgGroup.Post("/create", auth, rt.createOrganization)

		// 会话当前组织
		orgGroup.Get("/active", auth, rt.getActiveOrganization)

		// 会话当前组织的全量视图（成员 + 邀请）
		orgGroup.Get("/full", auth, rt.getFullOrganization)

		// 按 slug 获取组织
		orgGroup.Get("/slug/:slug", auth, rt.getOrganizationBySlug)

		// 当前用户在组织内的角色
		orgGroup.Get("/:orgId/role", auth, rt.getRoleInOrganization)

		// 当前用户能否发出邀请
		orgGroup.Get("/:orgId/can-invite", auth, rt.canInviteMembers)

		// 签发邀请
		orgGroup.Post("/:orgId/invite", auth, rt.inviteMember)

		// 组织的全部邀请
		orgGroup.Get("/:orgId/invitations", auth, rt.listInvitations)

		// 移除成员
		orgGroup.Delete("/:orgId/members/:userId", auth, rt.removeMember)

		// 删除组织
		orgGroup.Delete("/:orgId", auth, rt.deleteOrganization)
	}
}

// listOrganizations 当前用户所属的全部组织
func (rt *Router) listOrganizations(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	orgs, err := rt.orgLogic.ListOrganizationsForUser(claims.UserId)
	if err != nil {
		log.Errorf("list organizations failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, orgs)
	return nil
}

// createOrganization 创建组织，创建者成为 owner
func (rt *Router) createOrganization(c *fiber.Ctx) error {
	var req model.CreateOrgReq
	if err := c.BodyParser(&req); err != nil {
		log.Errorf("create organization failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}

	claims := middleware.ClaimsFromCtx(c)

	org, err := rt.orgLogic.CreateOrganization(claims.UserId, &req)
	if err != nil {
		if errors.Is(err, logic.ErrSlugTaken) {
			return httpx.WithRepErrMsg(c, httpx.OrgSlugAlreadyExist.Code, httpx.OrgSlugAlreadyExist.Msg, c.Path())
		}
		log.Errorf("create organization failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.OrganizationCreateFailed.Code, httpx.OrganizationCreateFailed.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, org)
	return nil
}

// getActiveOrganization 会话当前组织，无成员关系时返回空
func (rt *Router) getActiveOrganization(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	org, err := rt.orgLogic.GetActiveOrganization(claims.UserId)
	if err != nil {
		log.Errorf("get active organization failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}
	if org == nil {
		c.Locals(consts.OPERATION, "")
		return nil
	}

	c.Locals(consts.DETAIL, org)
	return nil
}

// getFullOrganization 会话当前组织的全量视图
func (rt *Router) getFullOrganization(c *fiber.Ctx) error {
	session, err := rt.sessionFromRequest(c)
	if err != nil {
		return httpx.WithRepErrMsg(c, httpx.AuthenticationFailed.Code, httpx.AuthenticationFailed.Msg, c.Path())
	}

	org, err := rt.orgLogic.GetFullOrganizationForSession(session)
	if err != nil {
		if errors.Is(err, logic.ErrNotFound) {
			return httpx.WithRepErrMsg(c, httpx.OrgNotExist.Code, httpx.OrgNotExist.Msg, c.Path())
		}
		log.Errorf("get full organization failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}
	if org == nil {
		// 会话尚未选中组织
		c.Locals(consts.OPERATION, "")
		return nil
	}

	c.Locals(consts.DETAIL, org)
	return nil
}

// getOrganizationBySlug 按 slug 获取组织及其成员
func (rt *Router) getOrganizationBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	org, err := rt.orgLogic.GetOrganizationBySlug(slug)
	if err != nil {
		if errors.Is(err, logic.ErrNotFound) {
			return httpx.WithRepErrMsg(c, httpx.OrgNotExist.Code, httpx.OrgNotExist.Msg, c.Path())
		}
		log.Errorf("get organization by slug failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, org)
	return nil
}

// getRoleInOrganization 当前用户在组织内的角色
func (rt *Router) getRoleInOrganization(c *fiber.Ctx) error {
	orgId := c.Params("orgId")
	if orgId == "" {
		return httpx.WithRepErrMsg(c, httpx.OrgIdIsEmpty.Code, httpx.OrgIdIsEmpty.Msg, c.Path())
	}

	claims := middleware.ClaimsFromCtx(c)

	role, err := rt.orgLogic.GetUserRoleInOrganization(claims.UserId, orgId)
	if err != nil {
		log.Errorf("get role failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, fiber.Map{"role": role})
	return nil
}

// canInviteMembers 当前用户能否在组织内发出邀请
func (rt *Router) canInviteMembers(c *fiber.Ctx) error {
	orgId := c.Params("orgId")
	if orgId == "" {
		return httpx.WithRepErrMsg(c, httpx.OrgIdIsEmpty.Code, httpx.OrgIdIsEmpty.Msg, c.Path())
	}

	claims := middleware.ClaimsFromCtx(c)

	ok, err := rt.orgLogic.CanInviteMembers(claims.UserId, orgId)
	if err != nil {
		log.Errorf("can invite check failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, fiber.Map{"canInvite": ok})
	return nil
}

// inviteMember 签发邀请
func (rt *Router) inviteMember(c *fiber.Ctx) error {
	orgId := c.Params("orgId")
	if orgId == "" {
		return httpx.WithRepErrMsg(c, httpx.OrgIdIsEmpty.Code, httpx.OrgIdIsEmpty.Msg, c.Path())
	}

	var req model.InviteMemberReq
	if err := c.BodyParser(&req); err != nil {
		log.Errorf("invite member failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}

	claims := middleware.ClaimsFromCtx(c)

	inv, err := rt.invLogic.InviteMember(claims.UserId, orgId, &req)
	if err != nil {
		switch {
		case errors.Is(err, logic.ErrUnauthorized):
			return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
		case errors.Is(err, logic.ErrNotFound):
			return httpx.WithRepErrMsg(c, httpx.OrgNotExist.Code, httpx.OrgNotExist.Msg, c.Path())
		case errors.Is(err, model.ErrUnknownRole):
			return httpx.WithRepErrMsg(c, httpx.UnknownRole.Code, httpx.UnknownRole.Msg, c.Path())
		}
		log.Errorf("invite member failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, inv)
	return nil
}

// listInvitations 组织的全部邀请
func (rt *Router) listInvitations(c *fiber.Ctx) error {
	orgId := c.Params("orgId")
	if orgId == "" {
		return httpx.WithRepErrMsg(c, httpx.OrgIdIsEmpty.Code, httpx.OrgIdIsEmpty.Msg, c.Path())
	}

	claims := middleware.ClaimsFromCtx(c)

	invs, err := rt.invLogic.ListInvitations(claims.UserId, orgId)
	if err != nil {
		if errors.Is(err, logic.ErrUnauthorized) {
			return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
		}
		log.Errorf("list invitations failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, invs)
	return nil
}

// removeMember 移除组织成员
func (rt *Router) removeMember(c *fiber.Ctx) error {
	orgId := c.Params("orgId")
	targetUserId := c.Params("userId")
	if orgId == "" || targetUserId == "" {
		return httpx.WithRepErrMsg(c, httpx.BadRequest.Code, httpx.BadRequest.Msg, c.Path())
	}

	claims := middleware.ClaimsFromCtx(c)

	if err := rt.orgLogic.RemoveMember(claims.UserId, orgId, targetUserId); err != nil {
		switch {
		case errors.Is(err, logic.ErrUnauthorized):
			return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
		case errors.Is(err, logic.ErrLastOwner):
			return httpx.WithRepErrMsg(c, httpx.LastOwnerCannotBeRemoved.Code, httpx.LastOwnerCannotBeRemoved.Msg, c.Path())
		case errors.Is(err, logic.ErrNotFound):
			return httpx.WithRepErrMsg(c, httpx.NotFound.Code, httpx.NotFound.Msg, c.Path())
		}
		log.Errorf("remove member failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.OPERATION, "")
	return nil
}

// deleteOrganization 删除组织，仅 owner
func (rt *Router) deleteOrganization(c *fiber.Ctx) error {
	orgId := c.Params("orgId")
	if orgId == "" {
		return httpx.WithRepErrMsg(c, httpx.OrgIdIsEmpty.Code, httpx.OrgIdIsEmpty.Msg, c.Path())
	}

	claims := middleware.ClaimsFromCtx(c)

	if err := rt.orgLogic.DeleteOrganization(claims.UserId, orgId); err != nil {
		switch {
		case errors.Is(err, logic.ErrUnauthorized):
			return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
		case errors.Is(err, logic.ErrNotFound):
			return httpx.WithRepErrMsg(c, httpx.OrgNotExist.Code, httpx.OrgNotExist.Msg, c.Path())
		}
		log.Errorf("delete organization failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.OPERATION, "")
	return nil
}

// sessionFromRequest 取当前请求对应的会话记录
func (rt *Router) sessionFromRequest(c *fiber.Ctx) (*model.Session, error) {
	return rt.userLogic.GetSessionByToken(bearerToken(c))
}
