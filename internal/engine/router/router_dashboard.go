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
	"github.com/gofiber/fiber/v2"

	"github.com/go-tenancy/tenancy/internal/engine/consts"
	"github.com/go-tenancy/tenancy/internal/engine/model"
	"github.com/go-tenancy/tenancy/pkg/http/middleware"
	"github.com/go-tenancy/tenancy/pkg/log"
)

func (rt *Router) dashboardRouter(r fiber.Router, auth fiber.Handler) {
	r.Get("/dashboard", auth, rt.dashboard)
}

// dashboard 面板聚合读：会话、会话列表、设备授权、当前组织的
// 全量视图与组织列表。每一块失败都记日志并降级为空，刚注册、
// 尚无任何组织的用户走的也是这条路径。
func (rt *Router) dashboard(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	resp := &model.DashboardResp{
		Organizations:  []*model.Organization{},
		Sessions:       []*model.Session{},
		DeviceSessions: []*model.DeviceCode{},
	}

	session, err := rt.sessionFromRequest(c)
	if err != nil {
		log.Warnw("dashboard: load session", "userId", claims.UserId, "error", err)
	} else {
		resp.Session = session
	}

	sessions, err := rt.userLogic.ListSessions(claims.UserId)
	if err != nil {
		log.Warnw("dashboard: list sessions", "userId", claims.UserId, "error", err)
	} else {
		resp.Sessions = sessions
	}

	deviceSessions, err := rt.userLogic.ListDeviceSessions(claims.UserId)
	if err != nil {
		log.Warnw("dashboard: list device sessions", "userId", claims.UserId, "error", err)
	} else {
		resp.DeviceSessions = deviceSessions
	}

	orgs, err := rt.orgLogic.ListOrganizationsForUser(claims.UserId)
	if err != nil {
		log.Warnw("dashboard: list organizations", "userId", claims.UserId, "error", err)
	} else {
		resp.Organizations = orgs
	}

	org := rt.dashboardActiveOrganization(claims.UserId, session)
	if org != nil {
		resp.ActiveOrganization = org

		role, err := rt.orgLogic.GetUserRoleInOrganization(claims.UserId, org.Id)
		if err != nil {
			log.Warnw("dashboard: role lookup", "userId", claims.UserId, "orgId", org.Id, "error", err)
		} else {
			resp.Role = role
		}

		canInvite, err := rt.orgLogic.CanInviteMembers(claims.UserId, org.Id)
		if err != nil {
			log.Warnw("dashboard: invite check", "userId", claims.UserId, "orgId", org.Id, "error", err)
		} else {
			resp.CanInvite = canInvite
		}
	}

	c.Locals(consts.DETAIL, resp)
	return nil
}

// dashboardActiveOrganization 当前组织的全量视图（成员 + 邀请）。
// 会话没选中组织或全量读失败时退回按成员关系取的浅视图。
func (rt *Router) dashboardActiveOrganization(userId string, session *model.Session) *model.Organization {
	if session != nil {
		org, err := rt.orgLogic.GetFullOrganizationForSession(session)
		if err != nil {
			log.Warnw("dashboard: full organization", "userId", userId, "error", err)
		} else if org != nil {
			return org
		}
	}

	org, err := rt.orgLogic.GetActiveOrganization(userId)
	if err != nil {
		log.Warnw("dashboard: active organization", "userId", userId, "error", err)
		return nil
	}
	return org
}
