package model

import "time"

// Session 会话表。activeOrganizationId 表示该会话当前选中的组织，
// 为空时表示用户尚无任何组织成员关系。
type Session struct {
	Id                   string    `gorm:"column:id;primaryKey" json:"id"`
	Token                string    `gorm:"column:token;uniqueIndex" json:"token"`
	UserId               string    `gorm:"column:user_id;index" json:"userId"`
	ExpiresAt            time.Time `gorm:"column:expires_at" json:"expiresAt"`
	IpAddress            string    `gorm:"column:ip_address" json:"ipAddress"`
	UserAgent            string    `gorm:"column:user_agent" json:"userAgent"`
	ActiveOrganizationId string    `gorm:"column:active_organization_id" json:"activeOrganizationId"`
	ImpersonatedBy       string    `gorm:"column:impersonated_by" json:"impersonatedBy,omitempty"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Session) TableName() string {
	return "session"
}

// Account 账号凭证表（密码、三方 provider token），归身份层所有
type Account struct {
	Id                    string     `gorm:"column:id;primaryKey" json:"id"`
	AccountId             string     `gorm:"column:account_id" json:"accountId"`
	ProviderId            string     `gorm:"column:provider_id" json:"providerId"`
	UserId                string     `gorm:"column:user_id;index" json:"userId"`
	AccessToken           string     `gorm:"column:access_token" json:"-"`
	RefreshToken          string     `gorm:"column:refresh_token" json:"-"`
	IdToken               string     `gorm:"column:id_token" json:"-"`
	AccessTokenExpiresAt  *time.Time `gorm:"column:access_token_expires_at" json:"accessTokenExpiresAt,omitempty"`
	RefreshTokenExpiresAt *time.Time `gorm:"column:refresh_token_expires_at" json:"refreshTokenExpiresAt,omitempty"`
	Scope                 string     `gorm:"column:scope" json:"scope"`
	Password              string     `gorm:"column:password" json:"-"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Account) TableName() string {
	return "account"
}

// 凭证类账号的 providerId
const ProviderCredential = "credential"

// Verification 验证码表（邮箱验证等），归身份层所有
type Verification struct {
	Id         string    `gorm:"column:id;primaryKey" json:"id"`
	Identifier string    `gorm:"column:identifier" json:"identifier"`
	Value      string    `gorm:"column:value" json:"value"`
	ExpiresAt  time.Time `gorm:"column:expires_at" json:"expiresAt"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Verification) TableName() string {
	return "verification"
}
