package model

import "time"

// InvitationStatus 邀请状态
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusRejected = "rejected"
	InvitationStatusExpired  = "expired"
)

// Invitation 组织邀请表。过期未处理的邀请在存储里仍是 pending，
// 是否可用必须同时检查 expires_at。
type Invitation struct {
	Id             string    `gorm:"column:id;primaryKey" json:"id"`
	OrganizationId string    `gorm:"column:organization_id;index" json:"organizationId"`
	Email          string    `gorm:"column:email" json:"email"`
	Role           Role      `gorm:"column:role" json:"role"`
	Status         string    `gorm:"column:status;default:pending" json:"status"`
	ExpiresAt      time.Time `gorm:"column:expires_at" json:"expiresAt"`
	InviterId      string    `gorm:"column:inviter_id" json:"inviterId"`
}

func (Invitation) TableName() string {
	return "invitation"
}

// Actionable reports whether the invitation can still be accepted or
// rejected at the given instant. A pending status alone is not enough.
func (i *Invitation) Actionable(now time.Time) bool {
	return i.Status == InvitationStatusPending && now.Before(i.ExpiresAt)
}

type InviteMemberReq struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}
