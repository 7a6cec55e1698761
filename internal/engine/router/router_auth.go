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

func (rt *Router) authRouter(r fiber.Router, auth fiber.Handler) {
	authGroup := r.Group("/auth")
	{
		// not auth
		authGroup.Post("/register", rt.register)
		authGroup.Post("/login", rt.login)
		authGroup.Post("/device/code", rt.startDeviceAuthorization)

		// auth
		authGroup.Post("/logout", auth, rt.logout)
		authGroup.Post("/device/approve", auth, rt.approveDeviceCode)
		authGroup.Get("/refresh", auth, rt.refresh)
		authGroup.Get("/me", auth, rt.me)
		authGroup.Get("/sessions", auth, rt.listSessions)
		authGroup.Get("/device-sessions", auth, rt.listDeviceSessions)
	}
}

// register 凭证注册
func (rt *Router) register(c *fiber.Ctx) error {
	var req model.Register
	if err := c.BodyParser(&req); err != nil {
		log.Errorf("register failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}
	if req.Email == "" || req.Password == "" {
		return httpx.WithRepErrMsg(c, httpx.EmailAndPasswordRequired.Code, httpx.EmailAndPasswordRequired.Msg, c.Path())
	}

	if err := rt.userLogic.Register(&req); err != nil {
		if errors.Is(err, logic.ErrEmailTaken) {
			return httpx.WithRepErrMsg(c, httpx.UserAlreadyExist.Code, httpx.UserAlreadyExist.Msg, c.Path())
		}
		log.Errorf("register failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.OPERATION, "")
	return nil
}

// login 凭证登录
func (rt *Router) login(c *fiber.Ctx) error {
	var req model.Login
	if err := c.BodyParser(&req); err != nil {
		log.Errorf("login failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}

	resp, err := rt.userLogic.Login(&req, rt.Http.Auth, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		if errors.Is(err, logic.ErrIncorrectCredentials) {
			return httpx.WithRepErrMsg(c, httpx.UserIncorrectPassword.Code, httpx.UserIncorrectPassword.Msg, c.Path())
		}
		log.Errorf("login failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, resp)
	return nil
}

// logout 注销当前会话
func (rt *Router) logout(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	if err := rt.userLogic.Logout(claims.UserId, bearerToken(c)); err != nil {
		log.Errorf("logout failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.OPERATION, "")
	return nil
}

// refresh 刷新令牌对
func (rt *Router) refresh(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	rToken := c.Get("X-Refresh-Token")
	if rToken == "" {
		return httpx.WithRepErrMsg(c, httpx.TokenBeEmpty.Code, httpx.TokenBeEmpty.Msg, c.Path())
	}

	token, err := rt.userLogic.Refresh(claims.UserId, rToken, &rt.Http.Auth)
	if err != nil {
		log.Errorf("refresh token failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.InvalidToken.Code, httpx.InvalidToken.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, token)
	return nil
}

// me 当前用户信息
func (rt *Router) me(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	user, err := rt.userLogic.GetUserById(claims.UserId)
	if err != nil {
		if errors.Is(err, logic.ErrNotFound) {
			return httpx.WithRepErrMsg(c, httpx.UserNotExist.Code, httpx.UserNotExist.Msg, c.Path())
		}
		log.Errorf("get user failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, user)
	return nil
}

// listSessions 当前用户的未过期会话
func (rt *Router) listSessions(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	sessions, err := rt.userLogic.ListSessions(claims.UserId)
	if err != nil {
		log.Errorf("list sessions failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, sessions)
	return nil
}

// startDeviceAuthorization 设备发起授权，拿到 device_code/user_code 对
func (rt *Router) startDeviceAuthorization(c *fiber.Ctx) error {
	var req model.StartDeviceAuthReq
	if err := c.BodyParser(&req); err != nil {
		log.Errorf("start device authorization failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}

	resp, err := rt.userLogic.StartDeviceAuthorization(req.ClientId)
	if err != nil {
		log.Errorf("start device authorization failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, resp)
	return nil
}

// approveDeviceCode 已登录用户输入 user_code 批准设备
func (rt *Router) approveDeviceCode(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	var req model.ApproveDeviceCodeReq
	if err := c.BodyParser(&req); err != nil {
		log.Errorf("approve device code failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.RequestParameterParsingFailed.Code, httpx.RequestParameterParsingFailed.Msg, c.Path())
	}

	if err := rt.userLogic.ApproveDeviceCode(claims.UserId, req.UserCode); err != nil {
		switch {
		case errors.Is(err, logic.ErrNotFound):
			return httpx.WithRepErrMsg(c, httpx.DeviceCodeNotExist.Code, httpx.DeviceCodeNotExist.Msg, c.Path())
		case errors.Is(err, logic.ErrDeviceCodeNotActionable):
			return httpx.WithRepErrMsg(c, httpx.DeviceCodeNoLongerValid.Code, httpx.DeviceCodeNoLongerValid.Msg, c.Path())
		}
		log.Errorf("approve device code failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.OPERATION, "")
	return nil
}

// listDeviceSessions 当前用户已批准的设备授权
func (rt *Router) listDeviceSessions(c *fiber.Ctx) error {
	claims := middleware.ClaimsFromCtx(c)

	codes, err := rt.userLogic.ListDeviceSessions(claims.UserId)
	if err != nil {
		log.Errorf("list device sessions failed: %v", err)
		return httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Path())
	}

	c.Locals(consts.DETAIL, codes)
	return nil
}
