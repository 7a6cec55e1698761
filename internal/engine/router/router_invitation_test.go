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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-tenancy/tenancy/internal/engine/model"
)

// 邮件里的邀请链接由浏览器直接打开，无论成败都必须 302 到 /dashboard，
// 失败只记日志，绝不把错误响应回给链接。
func TestAcceptInvitationAlwaysRedirects(t *testing.T) {
	seedInvitation := func(f *routerFixture) {
		f.users.users["u1"] = &model.User{Id: "u1", Name: "Ada", Email: "ada@example.com"}
		f.invitations.invitations["inv1"] = &model.Invitation{
			Id:             "inv1",
			OrganizationId: "org1",
			Email:          "ada@example.com",
			Role:           model.RoleMember,
			Status:         model.InvitationStatusPending,
			ExpiresAt:      time.Now().Add(time.Hour),
			InviterId:      "owner",
		}
	}

	doGet := func(t *testing.T, f *routerFixture, token string) *http.Response {
		t.Helper()
		req := httptest.NewRequest(fiber.MethodGet, "/api/accept-invitation/inv1", nil)
		if token != "" {
			req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		}
		resp, err := f.app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("without credentials", func(t *testing.T) {
		f := newRouterFixture()
		seedInvitation(f)

		resp := doGet(t, f, "")
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/dashboard", resp.Header.Get(fiber.HeaderLocation))

		// 未登录不落成员关系，邀请保持 pending
		assert.Empty(t, f.members.members)
		assert.Equal(t, model.InvitationStatusPending, f.invitations.invitations["inv1"].Status)
	})

	t.Run("with garbage token", func(t *testing.T) {
		f := newRouterFixture()
		seedInvitation(f)

		resp := doGet(t, f, "not-a-jwt")
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/dashboard", resp.Header.Get(fiber.HeaderLocation))
		assert.Empty(t, f.members.members)
	})

	t.Run("authenticated user joins the organization", func(t *testing.T) {
		f := newRouterFixture()
		seedInvitation(f)

		resp := doGet(t, f, f.tokenFor(t, "u1"))
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/dashboard", resp.Header.Get(fiber.HeaderLocation))

		require.Len(t, f.members.members, 1)
		assert.Equal(t, "org1", f.members.members[0].OrganizationId)
		assert.Equal(t, model.RoleMember, f.members.members[0].Role)
		assert.Equal(t, model.InvitationStatusAccepted, f.invitations.invitations["inv1"].Status)
	})

	t.Run("unknown invitation still redirects", func(t *testing.T) {
		f := newRouterFixture()
		f.users.users["u1"] = &model.User{Id: "u1", Email: "ada@example.com"}

		resp := doGet(t, f, f.tokenFor(t, "u1"))
		assert.Equal(t, fiber.StatusFound, resp.StatusCode)
		assert.Equal(t, "/dashboard", resp.Header.Get(fiber.HeaderLocation))
	})
}
