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
	"gorm.io/gorm"
)

type IOrganizationRepository interface {
	// CreateWithOwner inserts the organization and the creator's owner
	// member row in one transaction.
	CreateWithOwner(org *model.Organization, owner *model.Member) error
	GetById(orgId string) (*model.Organization, error)
	// GetBySlug loads the organization with its members and each
	// member's user record.
	GetBySlug(slug string) (*model.Organization, error)
	// GetFull loads the organization with members (+user) and all
	// invitations regardless of status.
	GetFull(orgId string) (*model.Organization, error)
	ListByIds(orgIds []string) ([]*model.Organization, error)
	SlugExists(slug string) (bool, error)
	Delete(orgId string) error
}

type OrganizationRepo struct {
	database.IDatabase
}

func NewOrganizationRepo(db database.IDatabase) IOrganizationRepository {
	return &OrganizationRepo{IDatabase: db}
}

// CreateWithOwner 创建组织并在同一事务里写入 owner 成员
func (r *OrganizationRepo) CreateWithOwner(org *model.Organization, owner *model.Member) error {
	return r.Database().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		return tx.Create(owner).Error
	})
}

// GetById 根据组织ID获取组织
func (r *OrganizationRepo) GetById(orgId string) (*model.Organization, error) {
	var org model.Organization
	err := r.Database().Where("id = ?", orgId).First(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetBySlug 根据 slug 获取组织，包含成员及其用户信息
func (r *OrganizationRepo) GetBySlug(slug string) (*model.Organization, error) {
	var org model.Organization
	err := r.Database().
		Preload("Members.User").
		Where("slug = ?", slug).
		First(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// GetFull 获取组织全量视图：成员（含用户）与全部邀请（不过滤状态）
func (r *OrganizationRepo) GetFull(orgId string) (*model.Organization, error) {
	var org model.Organization
	err := r.Database().
		Preload("Members.User").
		Preload("Invitations").
		Where("id = ?", orgId).
		First(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// ListByIds 批量获取组织
func (r *OrganizationRepo) ListByIds(orgIds []string) ([]*model.Organization, error) {
	if len(orgIds) == 0 {
		return []*model.Organization{}, nil
	}

	var orgs []*model.Organization
	err := r.Database().Where("id IN ?", orgIds).Find(&orgs).Error
	return orgs, err
}

// SlugExists 检查 slug 是否已被占用
func (r *OrganizationRepo) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.Database().Model(&model.Organization{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

// Delete 删除组织，成员与邀请由外键级联删除
func (r *OrganizationRepo) Delete(orgId string) error {
	return r.Database().Where("id = ?", orgId).Delete(&model.Organization{}).Error
}
