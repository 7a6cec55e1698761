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
	"time"

	"github.com/go-tenancy/tenancy/internal/engine/model"
	"github.com/go-tenancy/tenancy/pkg/database"
)

type IInvitationRepository interface {
	Create(inv *model.Invitation) error
	GetById(invitationId string) (*model.Invitation, error)
	ListByOrgId(orgId string) ([]*model.Invitation, error)
	UpdateStatus(invitationId, status string) error
	// MarkExpired flips overdue pending invitations to expired and
	// returns the number of rows touched.
	MarkExpired(now time.Time) (int64, error)
}

type InvitationRepo struct {
	database.IDatabase
}

func NewInvitationRepo(db database.IDatabase) IInvitationRepository {
	return &InvitationRepo{IDatabase: db}
}

// Create 创建邀请
func (r *InvitationRepo) Create(inv *model.Invitation) error {
	return r.Database().Create(inv).Error
}

// GetById 根据邀请ID获取邀请
func (r *InvitationRepo) GetById(invitationId string) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.Database().Where("id = ?", invitationId).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListByOrgId 获取组织的全部邀请，不过滤状态
func (r *InvitationRepo) ListByOrgId(orgId string) ([]*model.Invitation, error) {
	var invs []*model.Invitation
	err := r.Database().Where("organization_id = ?", orgId).Find(&invs).Error
	return invs, err
}

// UpdateStatus 更新邀请状态
func (r *InvitationRepo) UpdateStatus(invitationId, status string) error {
	return r.Database().Model(&model.Invitation{}).
		Where("id = ?", invitationId).
		Update("status", status).Error
}

// MarkExpired 将已过期的 pending 邀请批量置为 expired
func (r *InvitationRepo) MarkExpired(now time.Time) (int64, error) {
	result := r.Database().Model(&model.Invitation{}).
		Where("status = ? AND expires_at < ?", model.InvitationStatusPending, now).
		Update("status", model.InvitationStatusExpired)
	return result.RowsAffected, result.Error
}
