package model

import "time"

// Passkey WebAuthn 凭证表，归身份层所有，这里只保留表结构兼容
type Passkey struct {
	Id             string    `gorm:"column:id;primaryKey" json:"id"`
	Name           string    `gorm:"column:name" json:"name"`
	PublicKey      string    `gorm:"column:public_key" json:"-"`
	UserId         string    `gorm:"column:user_id;index" json:"userId"`
	WebauthnUserId string    `gorm:"column:webauthn_user_id" json:"webauthnUserId"`
	Counter        int       `gorm:"column:counter" json:"counter"`
	DeviceType     string    `gorm:"column:device_type" json:"deviceType"`
	BackedUp       bool      `gorm:"column:backed_up" json:"backedUp"`
	Transports     string    `gorm:"column:transports" json:"transports"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Passkey) TableName() string {
	return "passkey"
}
