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
	"context"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/go-tenancy/tenancy/internal/engine/logic"
	"github.com/go-tenancy/tenancy/internal/engine/model"
	"github.com/go-tenancy/tenancy/internal/engine/repo"
	"github.com/go-tenancy/tenancy/pkg/ctx"
	httpx "github.com/go-tenancy/tenancy/pkg/http"
	"github.com/go-tenancy/tenancy/pkg/http/jwt"
	"github.com/go-tenancy/tenancy/pkg/log"
)

func TestMain(m *testing.M) {
	log.MustInit(log.SetDefaults())
	os.Exit(m.Run())
}

const testSecret = "router-test-secret"

// stub 仓储只覆盖被测路由会触达的方法，其余走内嵌接口（不会被调用）。

type stubUserRepo struct {
	repo.IUserRepository
	users map[string]*model.User
}

func (s *stubUserRepo) GetById(userId string) (*model.User, error) {
	u, ok := s.users[userId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type stubSessionRepo struct {
	repo.ISessionRepository
	sessions    map[string]*model.Session // keyed by token
	deviceCodes []*model.DeviceCode
}

func (s *stubSessionRepo) GetByToken(token string) (*model.Session, error) {
	sess, ok := s.sessions[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return sess, nil
}

func (s *stubSessionRepo) ListByUserId(userId string) ([]*model.Session, error) {
	var out []*model.Session
	for _, sess := range s.sessions {
		if sess.UserId == userId {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *stubSessionRepo) ListDeviceSessions(userId string) ([]*model.DeviceCode, error) {
	var out []*model.DeviceCode
	for _, dc := range s.deviceCodes {
		if dc.UserId == userId && dc.Status == model.DeviceCodeStatusApproved {
			out = append(out, dc)
		}
	}
	return out, nil
}

type stubMemberRepo struct {
	repo.IMemberRepository
	members []*model.Member
}

func (s *stubMemberRepo) Create(m *model.Member) error {
	for _, existing := range s.members {
		if existing.OrganizationId == m.OrganizationId && existing.UserId == m.UserId {
			return gorm.ErrDuplicatedKey
		}
	}
	s.members = append(s.members, m)
	return nil
}

func (s *stubMemberRepo) ListByUserId(userId string) ([]*model.Member, error) {
	var out []*model.Member
	for _, m := range s.members {
		if m.UserId == userId {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *stubMemberRepo) FirstByUserId(userId string) (*model.Member, error) {
	for _, m := range s.members {
		if m.UserId == userId {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubMemberRepo) GetByUserAndOrg(userId, orgId string) (*model.Member, error) {
	for _, m := range s.members {
		if m.UserId == userId && m.OrganizationId == orgId {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type stubOrgRepo struct {
	repo.IOrganizationRepository
	orgs map[string]*model.Organization
}

func (s *stubOrgRepo) GetById(orgId string) (*model.Organization, error) {
	org, ok := s.orgs[orgId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return org, nil
}

func (s *stubOrgRepo) GetFull(orgId string) (*model.Organization, error) {
	return s.GetById(orgId)
}

func (s *stubOrgRepo) ListByIds(orgIds []string) ([]*model.Organization, error) {
	var out []*model.Organization
	for _, id := range orgIds {
		if org, ok := s.orgs[id]; ok {
			out = append(out, org)
		}
	}
	return out, nil
}

type stubInvitationRepo struct {
	repo.IInvitationRepository
	invitations map[string]*model.Invitation
}

func (s *stubInvitationRepo) GetById(invitationId string) (*model.Invitation, error) {
	inv, ok := s.invitations[invitationId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (s *stubInvitationRepo) UpdateStatus(invitationId, status string) error {
	inv, ok := s.invitations[invitationId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inv.Status = status
	return nil
}

type routerFixture struct {
	rt  *Router
	app *fiber.App

	users       *stubUserRepo
	sessions    *stubSessionRepo
	members     *stubMemberRepo
	orgs        *stubOrgRepo
	invitations *stubInvitationRepo
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		users:       &stubUserRepo{users: map[string]*model.User{}},
		sessions:    &stubSessionRepo{sessions: map[string]*model.Session{}},
		members:     &stubMemberRepo{},
		orgs:        &stubOrgRepo{orgs: map[string]*model.Organization{}},
		invitations: &stubInvitationRepo{invitations: map[string]*model.Invitation{}},
	}

	appCtx := ctx.NewContext(context.Background(), nil, nil, log.GetLogger())
	userLogic := logic.NewUserLogic(appCtx, f.users, f.sessions, f.members)
	orgLogic := logic.NewOrganizationLogic(appCtx, f.orgs, f.members)
	invLogic := logic.NewInvitationLogic(appCtx, f.orgs, f.members, f.invitations, f.users, nil, "http://localhost:8080")

	httpConf := &httpx.Http{
		ContextPath: "/api",
		Auth: httpx.Auth{
			SecretKey:     testSecret,
			AccessExpire:  time.Hour,
			RefreshExpire: 24 * time.Hour,
		},
	}

	f.rt = NewRouter(httpConf, appCtx, userLogic, orgLogic, invLogic)
	f.app = f.rt.Router(zap.NewNop())
	return f
}

func (f *routerFixture) tokenFor(t *testing.T, userId string) string {
	t.Helper()
	aToken, _, err := jwt.GenToken(userId, []byte(testSecret), time.Hour, 24*time.Hour)
	require.NoError(t, err)
	return aToken
}
