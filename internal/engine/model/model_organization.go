package model

import (
	"time"

	"gorm.io/datatypes"
)

// Organization 组织（租户）表。删除组织时级联删除其成员与邀请。
type Organization struct {
	Id        string         `gorm:"column:id;primaryKey" json:"id"`
	Name      string         `gorm:"column:name" json:"name"`
	Slug      *string        `gorm:"column:slug;uniqueIndex" json:"slug,omitempty"` // 可选，全局唯一
	Logo      string         `gorm:"column:logo" json:"logo,omitempty"`
	Metadata  datatypes.JSON `gorm:"column:metadata;type:json" json:"metadata,omitempty"` // 不透明扩展数据
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`

	Members     []Member     `gorm:"foreignKey:OrganizationId;references:Id;constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Invitations []Invitation `gorm:"foreignKey:OrganizationId;references:Id;constraint:OnDelete:CASCADE" json:"invitations,omitempty"`
}

func (Organization) TableName() string {
	return "organization"
}

type CreateOrgReq struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
	Logo string `json:"logo,omitempty"`
}

// DashboardResp 面板聚合视图。任何一块取不到都置空，
// 页面按"尚无组织"展示，不整体报错。
// activeOrganization 是全量视图（成员 + 邀请）。
type DashboardResp struct {
	Session            *Session        `json:"session"`
	ActiveOrganization *Organization   `json:"activeOrganization"`
	Role               Role            `json:"role,omitempty"`
	CanInvite          bool            `json:"canInvite"`
	Organizations      []*Organization `json:"organizations"`
	Sessions           []*Session      `json:"sessions"`
	DeviceSessions     []*DeviceCode   `json:"deviceSessions"`
}
