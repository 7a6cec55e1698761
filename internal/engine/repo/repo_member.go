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

package repo

import (
	"github.com/go-tenancy/tenancy/internal/engine/model"
	"github.com/go-tenancy/tenancy/pkg/database"
)

type IMemberRepository interface {
	// Create inserts a member row; a duplicate (organization_id, user_id)
	// surfaces as gorm.ErrDuplicatedKey and is the caller's signal that
	// the user already belongs to the organization.
	Create(m *model.Member) error
	ListByUserId(userId string) ([]*model.Member, error)
	// FirstByUserId returns some membership of the user, or
	// gorm.ErrRecordNotFound. The pick is arbitrary; callers must not
	// rely on any ordering.
	FirstByUserId(userId string) (*model.Member, error)
	GetByUserAndOrg(userId, orgId string) (*model.Member, error)
	Delete(orgId, userId string) error
	CountByOrgAndRole(orgId string, role model.Role) (int64, error)
}

type MemberRepo struct {
	database.IDatabase
}

func NewMemberRepo(db database.IDatabase) IMemberRepository {
	return &MemberRepo{IDatabase: db}
}

// Create 创建成员
func (r *MemberRepo) Create(m *model.Member) error {
	return r.Database().Create(m).Error
}

// ListByUserId 获取用户在所有组织的成员记录
func (r *MemberRepo) ListByUserId(userId string) ([]*model.Member, error) {
	var members []*model.Member
	err := r.Database().Where("user_id = ?", userId).Find(&members).Error
	return members, err
}

// FirstByUserId 获取用户任意一条成员记录
func (r *MemberRepo) FirstByUserId(userId string) (*model.Member, error) {
	var m model.Member
	err := r.Database().Where("user_id = ?", userId).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByUserAndOrg 按 (userId, orgId) 唯一键查询成员
func (r *MemberRepo) GetByUserAndOrg(userId, orgId string) (*model.Member, error) {
	var m model.Member
	err := r.Database().
		Where("user_id = ? AND organization_id = ?", userId, orgId).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete 移除成员
func (r *MemberRepo) Delete(orgId, userId string) error {
	return r.Database().
		Where("organization_id = ? AND user_id = ?", orgId, userId).
		Delete(&model.Member{}).Error
}

// CountByOrgAndRole 统计组织内某角色的成员数
func (r *MemberRepo) CountByOrgAndRole(orgId string, role model.Role) (int64, error) {
	var count int64
	err := r.Database().Model(&model.Member{}).
		Where("organization_id = ? AND role = ?", orgId, role).
		Count(&count).Error
	return count, err
}
