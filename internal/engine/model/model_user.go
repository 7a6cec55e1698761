package model

import (
	"time"
)

// UserRole 全局角色（与组织内角色无关）
const (
	UserRoleAdmin = "admin"
	UserRoleUser  = "user"
)

// User 用户表，身份记录归身份层所有，组织域只读
type User struct {
	Id            string    `gorm:"column:id;primaryKey" json:"id"`
	Name          string    `gorm:"column:name" json:"name"`
	Email         string    `gorm:"column:email;uniqueIndex" json:"email"`
	EmailVerified bool      `gorm:"column:email_verified" json:"emailVerified"`
	Image         string    `gorm:"column:image" json:"image"`
	Role          string    `gorm:"column:role;default:user" json:"role"` // admin/user
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`

	// two-factor fields, managed by the identity layer
	TwoFactorEnabled     bool   `gorm:"column:two_factor_enabled" json:"twoFactorEnabled"`
	TwoFactorSecret      string `gorm:"column:two_factor_secret" json:"-"`
	TwoFactorBackupCodes string `gorm:"column:two_factor_backup_codes" json:"-"`

	// ban fields
	Banned     bool       `gorm:"column:banned" json:"banned"`
	BanReason  string     `gorm:"column:ban_reason" json:"banReason,omitempty"`
	BanExpires *time.Time `gorm:"column:ban_expires" json:"banExpires,omitempty"`
}

func (User) TableName() string {
	return "user"
}

type Register struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResp struct {
	UserInfo UserInfo          `json:"userInfo"`
	Token    map[string]string `json:"token"`
}

type UserInfo struct {
	UserId string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Image  string `json:"image"`
	Role   string `json:"role"`
}
