package repo

import (
	"context"
	"time"

	"github.com/go-tenancy/tenancy/internal/engine/consts"
	"github.com/go-tenancy/tenancy/internal/engine/model"
	"github.com/go-tenancy/tenancy/pkg/database"
	"github.com/redis/go-redis/v9"
)

type ISessionRepository interface {
	Create(s *model.Session) error
	GetByToken(token string) (*model.Session, error)
	ListByUserId(userId string) ([]*model.Session, error)
	DeleteByToken(token string) error

	CreateDeviceCode(dc *model.DeviceCode) error
	GetDeviceCodeByUserCode(userCode string) (*model.DeviceCode, error)
	UpdateDeviceCodeStatus(id, status, userId string) error
	ListDeviceSessions(userId string) ([]*model.DeviceCode, error)

	// redis-backed token presence, checked by the authorization
	// middleware on every request
	SetToken(ctx context.Context, userId, token string, expire time.Duration) error
	DelToken(ctx context.Context, userId string) error
}

type SessionRepo struct {
	database.IDatabase
	rdb *redis.Client
}

func NewSessionRepo(db database.IDatabase, rdb *redis.Client) ISessionRepository {
	return &SessionRepo{IDatabase: db, rdb: rdb}
}

func (r *SessionRepo) Create(s *model.Session) error {
	return r.Database().Create(s).Error
}

func (r *SessionRepo) GetByToken(token string) (*model.Session, error) {
	var s model.Session
	err := r.Database().Where("token = ?", token).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByUserId 获取用户的未过期会话
func (r *SessionRepo) ListByUserId(userId string) ([]*model.Session, error) {
	var sessions []*model.Session
	err := r.Database().
		Where("user_id = ? AND expires_at > ?", userId, time.Now()).
		Find(&sessions).Error
	return sessions, err
}

func (r *SessionRepo) DeleteByToken(token string) error {
	return r.Database().Where("token = ?", token).Delete(&model.Session{}).Error
}

func (r *SessionRepo) CreateDeviceCode(dc *model.DeviceCode) error {
	return r.Database().Create(dc).Error
}

func (r *SessionRepo) GetDeviceCodeByUserCode(userCode string) (*model.DeviceCode, error) {
	var dc model.DeviceCode
	err := r.Database().Where("user_code = ?", userCode).First(&dc).Error
	if err != nil {
		return nil, err
	}
	return &dc, nil
}

func (r *SessionRepo) UpdateDeviceCodeStatus(id, status, userId string) error {
	return r.Database().Model(&model.DeviceCode{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "user_id": userId}).Error
}

// ListDeviceSessions 获取用户已批准的设备授权
func (r *SessionRepo) ListDeviceSessions(userId string) ([]*model.DeviceCode, error) {
	var codes []*model.DeviceCode
	err := r.Database().
		Where("user_id = ? AND status = ?", userId, model.DeviceCodeStatusApproved).
		Find(&codes).Error
	return codes, err
}

func (r *SessionRepo) SetToken(ctx context.Context, userId, token string, expire time.Duration) error {
	return r.rdb.Set(ctx, consts.SessionKey+userId, token, expire).Err()
}

func (r *SessionRepo) DelToken(ctx context.Context, userId string) error {
	return r.rdb.Del(ctx, consts.SessionKey+userId).Err()
}
