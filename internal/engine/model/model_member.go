package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownRole 角色不在闭合枚举内
var ErrUnknownRole = errors.New("unknown role")

// Role 组织内角色，闭合枚举。未知角色在边界处拒绝，不入库。
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// ParseRole validates a role string against the closed role set.
// An empty string maps to the default role `member`.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case "":
		return RoleMember, nil
	case RoleMember, RoleAdmin, RoleOwner:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Member 组织成员表。(organization_id, user_id) 唯一，
// 并发加入依赖该唯一键裁决。
type Member struct {
	Id             string    `gorm:"column:id;primaryKey" json:"id"`
	OrganizationId string    `gorm:"column:organization_id;uniqueIndex:uk_member_org_user" json:"organizationId"`
	UserId         string    `gorm:"column:user_id;uniqueIndex:uk_member_org_user" json:"userId"`
	Role           Role      `gorm:"column:role;default:member" json:"role"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	User *User `gorm:"foreignKey:UserId;references:Id" json:"user,omitempty"`
}

func (Member) TableName() string {
	return "member"
}
