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
	httpx "github.com/go-tenancy/tenancy/pkg/http"
	"github.com/go-tenancy/tenancy/pkg/http/jwt"
	"github.com/go-tenancy/tenancy/pkg/http/middleware"
	"github.com/go-tenancy/tenancy/pkg/log"
)

func (rt *Router) invitationRouter(r fiber.Router, auth fiber.Handler) {
	// 邮件里的邀请链接落在这里。浏览器直接打开，不走鉴权中间件：
	// 鉴权在 handler 内部做，任何失败都要跳转而不是回 JSON
	r.Get("/accept-invitation/:invitationId", rt.acceptInvitation)

	invGroup := r.Group("/invitations")
	{
		invGroup.Post("/:invitationId/reject", auth, rt.rejectInvitation)
	}
}

// acceptInvitation 接受邀请。结果如何都跳转 /dashboard：
// 成功后用户在面板里看到新组织，未登录或失败时面板按无组织降级
// 展示，不给邮件链接单独做错误页。
func (rt *Router) acceptInvitation(c *fiber.Ctx) error {
	invitationId := c.Params("invitationId")

	token := bearerToken(c)
	if token == "" {
		log.Warnw("accept invitation without credentials", "invitationId", invitationId)
		return c.Redirect("/dashboard", fiber.StatusFound)
	}

	claims, err := jwt.ParseToken(token, rt.Http.Auth.SecretKey)
	if err != nil {
		log.Warnw("accept invitation with invalid token", "invitationId", invitationId, "error", err)
		return c.Redirect("/dashboard", fiber.StatusFound)
	}

	user, err := rt.userLogic.GetUserById(claims.UserId)
	if err != nil {
		log.Errorf("accept invitation: load user failed: %v", err)
		return c.Redirect("/dashboard", fiber.StatusFound)
	}

	if _, err := rt.invLogic.AcceptInvitation(claims.UserId, user.Email, invitationId); err != nil {
		log.Warnw("accept invitation failed",
			"invitationId", invitationId,
			"userId", claims.UserId,
			"error", err,
		)
	}

	return c.Redirect("/dashboard", fiber.StatusFound)
}

// rejectInvitation 拒绝邀请
func (rt *Router) rejectInvitation(c *fiber.Ctx) error {
	invitationId := c.Params("invitationId")
	claims := middleware.ClaimsFromCtx(c)

	user, err := rt.userLogic.GetUserById(claims.UserId)
	if err != nil {
		log.Errorf("reject invitation: load user failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	inv, err := rt.invLogic.RejectInvitation(claims.UserId, user.Email, invitationId)
	if err != nil {
		switch {
		case errors.Is(err, logic.ErrNotFound):
			return httpx.WithRepErrMsg(c, httpx.InvitationNotExist.Code, httpx.InvitationNotExist.Msg, c.Path())
		case errors.Is(err, logic.ErrInvitationNotActionable):
			return httpx.WithRepErrMsg(c, httpx.InvitationNoLongerValid.Code, httpx.InvitationNoLongerValid.Msg, c.Path())
		case errors.Is(err, logic.ErrUnauthorized):
			return httpx.WithRepErrMsg(c, httpx.PermissionDenied.Code, httpx.PermissionDenied.Msg, c.Path())
		}
		log.Errorf("reject invitation failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, inv)
	return nil
}
