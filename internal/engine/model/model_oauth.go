package model

import "time"

// OAuthClient 自建 OAuth provider 的客户端表，归身份层所有
type OAuthClient struct {
	Id           string    `gorm:"column:id;primaryKey" json:"id"`
	ClientId     string    `gorm:"column:client_id;uniqueIndex" json:"clientId"`
	ClientSecret string    `gorm:"column:client_secret" json:"-"`
	Name         string    `gorm:"column:name" json:"name"`
	RedirectUris string    `gorm:"column:redirect_uris" json:"redirectUris"`
	Icon         string    `gorm:"column:icon" json:"icon"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (OAuthClient) TableName() string {
	return "oauth_client"
}

// OAuthCode 授权码表
type OAuthCode struct {
	Id          string    `gorm:"column:id;primaryKey" json:"id"`
	Code        string    `gorm:"column:code;uniqueIndex" json:"-"`
	ClientId    string    `gorm:"column:client_id" json:"clientId"`
	UserId      string    `gorm:"column:user_id" json:"userId"`
	RedirectUri string    `gorm:"column:redirect_uri" json:"redirectUri"`
	Scope       string    `gorm:"column:scope" json:"scope"`
	ExpiresAt   time.Time `gorm:"column:expires_at" json:"expiresAt"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (OAuthCode) TableName() string {
	return "oauth_code"
}

// DeviceCodeStatus 设备授权状态
const (
	DeviceCodeStatusPending  = "pending"
	DeviceCodeStatusApproved = "approved"
	DeviceCodeStatusDenied   = "denied"
	DeviceCodeStatusExpired  = "expired"
)

// DeviceCode 设备授权表
type DeviceCode struct {
	Id         string    `gorm:"column:id;primaryKey" json:"id"`
	DeviceCode string    `gorm:"column:device_code;uniqueIndex" json:"-"`
	UserCode   string    `gorm:"column:user_code;uniqueIndex" json:"userCode"`
	ClientId   string    `gorm:"column:client_id" json:"clientId"`
	UserId     string    `gorm:"column:user_id" json:"userId"`
	Status     string    `gorm:"column:status;default:pending" json:"status"`
	ExpiresAt  time.Time `gorm:"column:expires_at" json:"expiresAt"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (DeviceCode) TableName() string {
	return "device_code"
}

type StartDeviceAuthReq struct {
	ClientId string `json:"clientId"`
}

type ApproveDeviceCodeReq struct {
	UserCode string `json:"userCode"`
}

// DeviceAuthResp 设备授权发起响应；device_code 只在此处下发一次
type DeviceAuthResp struct {
	DeviceCode string    `json:"deviceCode"`
	UserCode   string    `json:"userCode"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
