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
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/go-tenancy/tenancy/internal/engine/model"
	"github.com/go-tenancy/tenancy/pkg/ctx"
	"github.com/go-tenancy/tenancy/pkg/log"
)

func TestMain(m *testing.M) {
	log.MustInit(log.SetDefaults())
	m.Run()
}

func testCtx() *ctx.Context {
	return ctx.NewContext(context.Background(), nil, nil, log.GetLogger())
}

// errBoom 模拟底层存储瞬时失败
var errBoom = errors.New("boom")

type fakeOrgRepo struct {
	orgs map[string]*model.Organization
	// 置位后所有读操作返回 errBoom
	failReads bool
}

func newFakeOrgRepo() *fakeOrgRepo {
	return &fakeOrgRepo{orgs: map[string]*model.Organization{}}
}

func (f *fakeOrgRepo) CreateWithOwner(org *model.Organization, owner *model.Member) error {
	if org.Slug != nil {
		for _, o := range f.orgs {
			if o.Slug != nil && *o.Slug == *org.Slug {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	org.Members = append(org.Members, *owner)
	f.orgs[org.Id] = org
	return nil
}

func (f *fakeOrgRepo) GetById(orgId string) (*model.Organization, error) {
	if f.failReads {
		return nil, errBoom
	}
	org, ok := f.orgs[orgId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return org, nil
}

func (f *fakeOrgRepo) GetBySlug(slug string) (*model.Organization, error) {
	if f.failReads {
		return nil, errBoom
	}
	for _, o := range f.orgs {
		if o.Slug != nil && *o.Slug == slug {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrgRepo) GetFull(orgId string) (*model.Organization, error) {
	return f.GetById(orgId)
}

func (f *fakeOrgRepo) ListByIds(orgIds []string) ([]*model.Organization, error) {
	if f.failReads {
		return nil, errBoom
	}
	var out []*model.Organization
	for _, id := range orgIds {
		if o, ok := f.orgs[id]; ok {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrgRepo) SlugExists(slug string) (bool, error) {
	if f.failReads {
		return false, errBoom
	}
	_, err := f.GetBySlug(slug)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeOrgRepo) Delete(orgId string) error {
	delete(f.orgs, orgId)
	return nil
}

type memberKey struct{ orgId, userId string }

type fakeMemberRepo struct {
	members map[memberKey]*model.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: map[memberKey]*model.Member{}}
}

func (f *fakeMemberRepo) Create(m *model.Member) error {
	k := memberKey{m.OrganizationId, m.UserId}
	if _, ok := f.members[k]; ok {
		return gorm.ErrDuplicatedKey
	}
	f.members[k] = m
	return nil
}

func (f *fakeMemberRepo) ListByUserId(userId string) ([]*model.Member, error) {
	var out []*model.Member
	for _, m := range f.members {
		if m.UserId == userId {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) FirstByUserId(userId string) (*model.Member, error) {
	ms, _ := f.ListByUserId(userId)
	if len(ms) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return ms[0], nil
}

func (f *fakeMemberRepo) GetByUserAndOrg(userId, orgId string) (*model.Member, error) {
	m, ok := f.members[memberKey{orgId, userId}]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (f *fakeMemberRepo) Delete(orgId, userId string) error {
	delete(f.members, memberKey{orgId, userId})
	return nil
}

func (f *fakeMemberRepo) CountByOrgAndRole(orgId string, role model.Role) (int64, error) {
	var n int64
	for _, m := range f.members {
		if m.OrganizationId == orgId && m.Role == role {
			n++
		}
	}
	return n, nil
}

type fakeInvitationRepo struct {
	invitations map[string]*model.Invitation
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{invitations: map[string]*model.Invitation{}}
}

func (f *fakeInvitationRepo) Create(inv *model.Invitation) error {
	f.invitations[inv.Id] = inv
	return nil
}

func (f *fakeInvitationRepo) GetById(invitationId string) (*model.Invitation, error) {
	inv, ok := f.invitations[invitationId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (f *fakeInvitationRepo) ListByOrgId(orgId string) ([]*model.Invitation, error) {
	var out []*model.Invitation
	for _, inv := range f.invitations {
		if inv.OrganizationId == orgId {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) UpdateStatus(invitationId, status string) error {
	inv, ok := f.invitations[invitationId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	inv.Status = status
	return nil
}

func (f *fakeInvitationRepo) MarkExpired(now time.Time) (int64, error) {
	var n int64
	for _, inv := range f.invitations {
		if inv.Status == model.InvitationStatusPending && !now.Before(inv.ExpiresAt) {
			inv.Status = model.InvitationStatusExpired
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct {
	users    map[string]*model.User
	accounts map[string]*model.Account // keyed by userId
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    map[string]*model.User{},
		accounts: map[string]*model.Account{},
	}
}

func (f *fakeUserRepo) CreateWithAccount(u *model.User, a *model.Account) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	f.users[u.Id] = u
	f.accounts[a.UserId] = a
	return nil
}

func (f *fakeUserRepo) GetById(userId string) (*model.User, error) {
	u, ok := f.users[userId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetCredential(userId string) (*model.Account, error) {
	a, ok := f.accounts[userId]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return a, nil
}

func (f *fakeUserRepo) EmailExists(email string) (bool, error) {
	_, err := f.GetByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

type fakeSessionRepo struct {
	sessions    map[string]*model.Session    // keyed by token
	tokens      map[string]string            // redis 侧的 userId -> token
	deviceCodes map[string]*model.DeviceCode // keyed by user code
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{
		sessions:    map[string]*model.Session{},
		tokens:      map[string]string{},
		deviceCodes: map[string]*model.DeviceCode{},
	}
}

func (f *fakeSessionRepo) Create(s *model.Session) error {
	f.sessions[s.Token] = s
	return nil
}

func (f *fakeSessionRepo) GetByToken(token string) (*model.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) ListByUserId(userId string) ([]*model.Session, error) {
	var out []*model.Session
	for _, s := range f.sessions {
		if s.UserId == userId && s.ExpiresAt.After(time.Now()) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) DeleteByToken(token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionRepo) CreateDeviceCode(dc *model.DeviceCode) error {
	f.deviceCodes[dc.UserCode] = dc
	return nil
}

func (f *fakeSessionRepo) GetDeviceCodeByUserCode(userCode string) (*model.DeviceCode, error) {
	dc, ok := f.deviceCodes[userCode]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return dc, nil
}

func (f *fakeSessionRepo) UpdateDeviceCodeStatus(id, status, userId string) error {
	for _, dc := range f.deviceCodes {
		if dc.Id == id {
			dc.Status = status
			dc.UserId = userId
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeSessionRepo) ListDeviceSessions(userId string) ([]*model.DeviceCode, error) {
	var out []*model.DeviceCode
	for _, dc := range f.deviceCodes {
		if dc.UserId == userId && dc.Status == model.DeviceCodeStatusApproved {
			out = append(out, dc)
		}
	}
	return out, nil
}

func (f *fakeSessionRepo) SetToken(_ context.Context, userId, token string, _ time.Duration) error {
	f.tokens[userId] = token
	return nil
}

func (f *fakeSessionRepo) DelToken(_ context.Context, userId string) error {
	delete(f.tokens, userId)
	return nil
}

type enqueuedTask struct {
	taskType string
	payload  []byte
	queue    string
}

type fakeEnqueuer struct {
	tasks []enqueuedTask
	err   error
}

func (f *fakeEnqueuer) Enqueue(taskType string, payload []byte, queueName string) error {
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, enqueuedTask{taskType: taskType, payload: payload, queue: queueName})
	return nil
}
