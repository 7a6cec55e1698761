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
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/go-tenancy/tenancy/internal/engine/logic"
	"github.com/go-tenancy/tenancy/pkg/ctx"
	httpx "github.com/go-tenancy/tenancy/pkg/http"
	"github.com/go-tenancy/tenancy/pkg/http/middleware"
	"github.com/go-tenancy/tenancy/pkg/version"
)

type Router struct {
	Http *httpx.Http
	Ctx  *ctx.Context

	userLogic *logic.UserLogic
	orgLogic  *logic.OrganizationLogic
	invLogic  *logic.InvitationLogic
}

func NewRouter(httpConf *httpx.Http, appCtx *ctx.Context,
	userLogic *logic.UserLogic, orgLogic *logic.OrganizationLogic, invLogic *logic.InvitationLogic) *Router {
	return &Router{
		Http:      httpConf,
		Ctx:       appCtx,
		userLogic: userLogic,
		orgLogic:  orgLogic,
		invLogic:  invLogic,
	}
}

func (rt *Router) Router(logger *zap.Logger) *fiber.App {
	bodyLimit := rt.Http.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = 4 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:      "Tenancy",
		ReadTimeout:  time.Duration(rt.Http.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(rt.Http.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(rt.Http.IdleTimeout) * time.Second,
		BodyLimit:    bodyLimit,
	})

	if rt.Http.AccessLog {
		app.Use(httpx.AccessLogFormat(logger))
	}

	// 中间件
	app.Use(
		middleware.ExceptionMiddleware,
		cors.New(),
		middleware.UnifiedResponseMiddleware(),
	)

	if rt.Http.PProf {
		app.Use(pprof.New(pprof.Config{Prefix: "/debug"}))
	}

	if rt.Http.ExposeMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	// 健康检查
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	// 版本信息
	app.Get("/version", func(c *fiber.Ctx) error {
		return c.JSON(version.GetVersion())
	})

	// api router
	api := app.Group(rt.Http.ContextPath)
	{
		rt.routerGroup(api)
	}

	// 找不到路径时的处理 - 必须在所有路由注册之后
	app.Use(func(c *fiber.Ctx) error {
		c.Status(fiber.StatusNotFound)
		return httpx.WithRepErr(c, fiber.StatusNotFound, "request path not found", c.Path())
	})

	return app
}

// bearerToken 从 Authorization 头剥出 Bearer 令牌，缺失或格式不符返回空串
func bearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func (rt *Router) routerGroup(r fiber.Router) {
	auth := middleware.AuthorizationMiddleware(rt.Http.Auth.SecretKey, rt.Ctx.GetRedis())

	rt.authRouter(r, auth)
	rt.organizationRouter(r, auth)
	rt.invitationRouter(r, auth)
	rt.dashboardRouter(r, auth)
}
