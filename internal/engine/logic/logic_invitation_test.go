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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-tenancy/tenancy/internal/engine/model"
	"github.com/go-tenancy/tenancy/internal/pkg/queue"
)

type invitationFixture struct {
	logic      *InvitationLogic
	orgRepo    *fakeOrgRepo
	memberRepo *fakeMemberRepo
	invRepo    *fakeInvitationRepo
	userRepo   *fakeUserRepo
	enqueuer   *fakeEnqueuer
}

func newInvitationFixture() *invitationFixture {
	f := &invitationFixture{
		orgRepo:    newFakeOrgRepo(),
		memberRepo: newFakeMemberRepo(),
		invRepo:    newFakeInvitationRepo(),
		userRepo:   newFakeUserRepo(),
		enqueuer:   &fakeEnqueuer{},
	}
	f.logic = NewInvitationLogic(testCtx(), f.orgRepo, f.memberRepo, f.invRepo, f.userRepo,
		f.enqueuer, "http://localhost:8080")

	seedOrg(f.orgRepo, f.memberRepo, "org1", map[string]model.Role{
		"owner":  model.RoleOwner,
		"admin":  model.RoleAdmin,
		"member": model.RoleMember,
	})
	f.userRepo.users["admin"] = &model.User{Id: "admin", Name: "Ada", Email: "ada@example.com"}
	return f
}

func TestInviteMember(t *testing.T) {
	t.Run("admin invites", func(t *testing.T) {
		f := newInvitationFixture()

		inv, err := f.logic.InviteMember("admin", "org1", &model.InviteMemberReq{Email: "new@example.com", Role: "member"})
		require.NoError(t, err)
		require.NotEmpty(t, inv.Id)
		assert.Equal(t, model.InvitationStatusPending, inv.Status)
		assert.Equal(t, model.RoleMember, inv.Role)
		assert.Equal(t, "admin", inv.InviterId)
		assert.WithinDuration(t, time.Now().Add(48*time.Hour), inv.ExpiresAt, time.Minute)

		require.Len(t, f.enqueuer.tasks, 1)
		task := f.enqueuer.tasks[0]
		assert.Equal(t, queue.TypeInvitationEmail, task.taskType)
		assert.True(t, strings.Contains(string(task.payload), "/accept-invitation/"+inv.Id))
	})

	t.Run("empty role defaults to member", func(t *testing.T) {
		f := newInvitationFixture()

		inv, err := f.logic.InviteMember("owner", "org1", &model.InviteMemberReq{Email: "new@example.com"})
		require.NoError(t, err)
		assert.Equal(t, model.RoleMember, inv.Role)
	})

	t.Run("member cannot invite", func(t *testing.T) {
		f := newInvitationFixture()

		_, err := f.logic.InviteMember("member", "org1", &model.InviteMemberReq{Email: "new@example.com"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("outsider cannot invite", func(t *testing.T) {
		f := newInvitationFixture()

		_, err := f.logic.InviteMember("outsider", "org1", &model.InviteMemberReq{Email: "new@example.com"})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		f := newInvitationFixture()

		_, err := f.logic.InviteMember("owner", "org1", &model.InviteMemberReq{Email: "new@example.com", Role: "superuser"})
		assert.ErrorIs(t, err, model.ErrUnknownRole)
	})

	t.Run("enqueue failure does not lose the invitation", func(t *testing.T) {
		f := newInvitationFixture()
		f.enqueuer.err = errors.New("redis down")

		inv, err := f.logic.InviteMember("owner", "org1", &model.InviteMemberReq{Email: "new@example.com"})
		require.NoError(t, err)

		stored, err := f.invRepo.GetById(inv.Id)
		require.NoError(t, err)
		assert.Equal(t, model.InvitationStatusPending, stored.Status)
	})
}

func TestAcceptInvitation(t *testing.T) {
	seedInvitation := func(f *invitationFixture, status string, expiresAt time.Time) *model.Invitation {
		inv := &model.Invitation{
			Id:             "inv1",
			OrganizationId: "org1",
			Email:          "new@example.com",
			Role:           model.RoleAdmin,
			Status:         status,
			ExpiresAt:      expiresAt,
			InviterId:      "owner",
		}
		f.invRepo.invitations[inv.Id] = inv
		return inv
	}

	t.Run("creates member with invited role", func(t *testing.T) {
		f := newInvitationFixture()
		seedInvitation(f, model.InvitationStatusPending, time.Now().Add(time.Hour))

		inv, err := f.logic.AcceptInvitation("u9", "new@example.com", "inv1")
		require.NoError(t, err)
		assert.Equal(t, model.InvitationStatusAccepted, inv.Status)

		m, err := f.memberRepo.GetByUserAndOrg("u9", "org1")
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, m.Role)
	})

	t.Run("already a member is success", func(t *testing.T) {
		f := newInvitationFixture()
		seedInvitation(f, model.InvitationStatusPending, time.Now().Add(time.Hour))
		f.memberRepo.members[memberKey{"org1", "u9"}] = &model.Member{
			OrganizationId: "org1", UserId: "u9", Role: model.RoleMember,
		}

		inv, err := f.logic.AcceptInvitation("u9", "new@example.com", "inv1")
		require.NoError(t, err)
		assert.Equal(t, model.InvitationStatusAccepted, inv.Status)
	})

	t.Run("expired pending invitation", func(t *testing.T) {
		f := newInvitationFixture()
		seedInvitation(f, model.InvitationStatusPending, time.Now().Add(-time.Hour))

		_, err := f.logic.AcceptInvitation("u9", "new@example.com", "inv1")
		assert.ErrorIs(t, err, ErrInvitationNotActionable)
	})

	t.Run("already accepted", func(t *testing.T) {
		f := newInvitationFixture()
		seedInvitation(f, model.InvitationStatusAccepted, time.Now().Add(time.Hour))

		_, err := f.logic.AcceptInvitation("u9", "new@example.com", "inv1")
		assert.ErrorIs(t, err, ErrInvitationNotActionable)
	})

	t.Run("email mismatch", func(t *testing.T) {
		f := newInvitationFixture()
		seedInvitation(f, model.InvitationStatusPending, time.Now().Add(time.Hour))

		_, err := f.logic.AcceptInvitation("u9", "other@example.com", "inv1")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("missing invitation", func(t *testing.T) {
		f := newInvitationFixture()

		_, err := f.logic.AcceptInvitation("u9", "new@example.com", "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRejectInvitation(t *testing.T) {
	f := newInvitationFixture()
	f.invRepo.invitations["inv1"] = &model.Invitation{
		Id:             "inv1",
		OrganizationId: "org1",
		Email:          "new@example.com",
		Role:           model.RoleMember,
		Status:         model.InvitationStatusPending,
		ExpiresAt:      time.Now().Add(time.Hour),
	}

	inv, err := f.logic.RejectInvitation("u9", "new@example.com", "inv1")
	require.NoError(t, err)
	assert.Equal(t, model.InvitationStatusRejected, inv.Status)

	// 拒绝后不再可处理
	_, err = f.logic.AcceptInvitation("u9", "new@example.com", "inv1")
	assert.ErrorIs(t, err, ErrInvitationNotActionable)
}

func TestListInvitations(t *testing.T) {
	f := newInvitationFixture()
	f.invRepo.invitations["inv1"] = &model.Invitation{Id: "inv1", OrganizationId: "org1", Status: model.InvitationStatusPending}
	f.invRepo.invitations["inv2"] = &model.Invitation{Id: "inv2", OrganizationId: "org2", Status: model.InvitationStatusPending}

	invs, err := f.logic.ListInvitations("member", "org1")
	require.NoError(t, err)
	assert.Len(t, invs, 1)

	_, err = f.logic.ListInvitations("outsider", "org1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSweepExpired(t *testing.T) {
	f := newInvitationFixture()
	f.invRepo.invitations["due"] = &model.Invitation{
		Id: "due", OrganizationId: "org1",
		Status: model.InvitationStatusPending, ExpiresAt: time.Now().Add(-time.Minute),
	}
	f.invRepo.invitations["fresh"] = &model.Invitation{
		Id: "fresh", OrganizationId: "org1",
		Status: model.InvitationStatusPending, ExpiresAt: time.Now().Add(time.Hour),
	}
	f.invRepo.invitations["done"] = &model.Invitation{
		Id: "done", OrganizationId: "org1",
		Status: model.InvitationStatusAccepted, ExpiresAt: time.Now().Add(-time.Minute),
	}

	n, err := f.logic.SweepExpired()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.Equal(t, model.InvitationStatusExpired, f.invRepo.invitations["due"].Status)
	assert.Equal(t, model.InvitationStatusPending, f.invRepo.invitations["fresh"].Status)
	assert.Equal(t, model.InvitationStatusAccepted, f.invRepo.invitations["done"].Status)
}
