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

package logic

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/go-tenancy/tenancy/internal/engine/model"
	"github.com/go-tenancy/tenancy/internal/engine/repo"
	"github.com/go-tenancy/tenancy/pkg/ctx"
	httpx "github.com/go-tenancy/tenancy/pkg/http"
	"github.com/go-tenancy/tenancy/pkg/http/jwt"
	"github.com/go-tenancy/tenancy/pkg/id"
	"github.com/go-tenancy/tenancy/pkg/log"
)

// UserLogic 身份域服务：注册、登录、会话管理。
// 登录时为会话落 activeOrganizationId，组织域的读路径都以它为锚点。
type UserLogic struct {
	ctx         *ctx.Context
	userRepo    repo.IUserRepository
	sessionRepo repo.ISessionRepository
	memberRepo  repo.IMemberRepository
}

func NewUserLogic(ctx *ctx.Context, userRepo repo.IUserRepository,
	sessionRepo repo.ISessionRepository, memberRepo repo.IMemberRepository) *UserLogic {
	return &UserLogic{
		ctx:         ctx,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		memberRepo:  memberRepo,
	}
}

// Register 注册凭证账号：user 与 account 两条记录同事务写入，
// 密码只以 bcrypt 哈希落在 account.password。
func (ul *UserLogic) Register(register *model.Register) error {
	if register.Email == "" || register.Password == "" {
		return fmt.Errorf("email and password are required")
	}

	exists, err := ul.userRepo.EmailExists(register.Email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(register.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Id:    id.GetUUID(),
		Name:  register.Name,
		Email: register.Email,
		Role:  model.UserRoleUser,
	}
	account := &model.Account{
		Id:         id.GetUUID(),
		AccountId:  user.Id,
		ProviderId: model.ProviderCredential,
		UserId:     user.Id,
		Password:   string(hash),
	}

	if err := ul.userRepo.CreateWithAccount(user, account); err != nil {
		// 并发注册同一邮箱时唯一键兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	log.Infow("user registered", "userId", user.Id, "email", user.Email)
	return nil
}

// Login 凭证登录。签发 access/refresh 令牌，落会话记录，
// 并把令牌写入 Redis 供鉴权中间件校验。
func (ul *UserLogic) Login(login *model.Login, auth httpx.Auth, ip, userAgent string) (*model.LoginResp, error) {
	if login.Email == "" || login.Password == "" {
		return nil, ErrIncorrectCredentials
	}

	user, err := ul.userRepo.GetByEmail(login.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIncorrectCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	account, err := ul.userRepo.GetCredential(user.Id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 三方账号用户没有凭证记录
			return nil, ErrIncorrectCredentials
		}
		return nil, fmt.Errorf("load credential: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(login.Password)) != nil {
		return nil, ErrIncorrectCredentials
	}

	aToken, rToken, err := jwt.GenToken(user.Id, []byte(auth.SecretKey), auth.AccessExpire, auth.RefreshExpire)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	session := &model.Session{
		Id:                   id.GetUUID(),
		Token:                aToken,
		UserId:               user.Id,
		ExpiresAt:            time.Now().Add(auth.AccessExpire),
		IpAddress:            ip,
		UserAgent:            userAgent,
		ActiveOrganizationId: ul.resolveActiveOrganization(user.Id),
	}
	if err := ul.sessionRepo.Create(session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := ul.sessionRepo.SetToken(ul.ctx.Ctx, user.Id, aToken, auth.AccessExpire); err != nil {
		log.Errorf("failed to set token in Redis: %v", err)
		return nil, fmt.Errorf("store token: %w", err)
	}

	return &model.LoginResp{
		UserInfo: model.UserInfo{
			UserId: user.Id,
			Name:   user.Name,
			Email:  user.Email,
			Image:  user.Image,
			Role:   user.Role,
		},
		Token: map[string]string{
			"accessToken":  aToken,
			"refreshToken": rToken,
		},
	}, nil
}

// resolveActiveOrganization 会话创建钩子：取用户第一条成员记录的
// 组织作为会话当前组织，没有成员关系时为空。
func (ul *UserLogic) resolveActiveOrganization(userId string) string {
	m, err := ul.memberRepo.FirstByUserId(userId)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			// 解析失败不阻断登录，会话落空组织
			log.Warnw("resolve active organization", "userId", userId, "error", err)
		}
		return ""
	}
	return m.OrganizationId
}

// Refresh 用刷新令牌换新令牌对，同时刷新 Redis 中的令牌
func (ul *UserLogic) Refresh(userId, rToken string, auth *httpx.Auth) (map[string]string, error) {
	token, err := jwt.RefreshToken(auth, userId, rToken)
	if err != nil {
		return nil, err
	}

	if err := ul.sessionRepo.SetToken(ul.ctx.Ctx, userId, token["accessToken"], auth.AccessExpire); err != nil {
		log.Errorf("failed to set token in Redis: %v", err)
		return token, fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Logout 注销会话：删会话记录并清 Redis 令牌
func (ul *UserLogic) Logout(userId, token string) error {
	if err := ul.sessionRepo.DeleteByToken(token); err != nil {
		log.Warnw("delete session row", "userId", userId, "error", err)
	}
	if err := ul.sessionRepo.DelToken(ul.ctx.Ctx, userId); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// GetUserById 按 id 取用户
func (ul *UserLogic) GetUserById(userId string) (*model.User, error) {
	user, err := ul.userRepo.GetById(userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// GetSessionByToken 按令牌取会话记录，不存在返回 ErrNotFound
func (ul *UserLogic) GetSessionByToken(token string) (*model.Session, error) {
	session, err := ul.sessionRepo.GetByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return session, nil
}

// ListSessions 返回用户的未过期会话
func (ul *UserLogic) ListSessions(userId string) ([]*model.Session, error) {
	if userId == "" {
		return nil, ErrNotAuthenticated
	}
	sessions, err := ul.sessionRepo.ListByUserId(userId)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// ListDeviceSessions 返回用户已批准的设备授权
func (ul *UserLogic) ListDeviceSessions(userId string) ([]*model.DeviceCode, error) {
	if userId == "" {
		return nil, ErrNotAuthenticated
	}
	codes, err := ul.sessionRepo.ListDeviceSessions(userId)
	if err != nil {
		return nil, fmt.Errorf("list device sessions: %w", err)
	}
	return codes, nil
}

// deviceCodeTTL 设备码有效期
const deviceCodeTTL = 10 * time.Minute

// StartDeviceAuthorization 发起设备授权：落一条 pending 记录，
// device_code 只在响应里下发一次，user_code 是给用户抄录的短码。
func (ul *UserLogic) StartDeviceAuthorization(clientId string) (*model.DeviceAuthResp, error) {
	dc := &model.DeviceCode{
		Id:         id.GetUUID(),
		DeviceCode: id.GetUUIDWithoutDashes(),
		UserCode:   id.ShortId(),
		ClientId:   clientId,
		Status:     model.DeviceCodeStatusPending,
		ExpiresAt:  time.Now().Add(deviceCodeTTL),
	}
	if dc.UserCode == "" {
		return nil, fmt.Errorf("generate user code")
	}

	if err := ul.sessionRepo.CreateDeviceCode(dc); err != nil {
		return nil, fmt.Errorf("create device code: %w", err)
	}

	log.Infow("device authorization started", "clientId", clientId, "userCode", dc.UserCode)
	return &model.DeviceAuthResp{
		DeviceCode: dc.DeviceCode,
		UserCode:   dc.UserCode,
		ExpiresAt:  dc.ExpiresAt,
	}, nil
}

// ApproveDeviceCode 已登录用户批准设备授权：按 user_code 找到
// pending 且未过期的记录，绑定用户并置为 approved。
func (ul *UserLogic) ApproveDeviceCode(userId, userCode string) error {
	if userId == "" {
		return ErrNotAuthenticated
	}

	dc, err := ul.sessionRepo.GetDeviceCodeByUserCode(userCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("load device code: %w", err)
	}
	if dc.Status != model.DeviceCodeStatusPending || !time.Now().Before(dc.ExpiresAt) {
		return ErrDeviceCodeNotActionable
	}

	if err := ul.sessionRepo.UpdateDeviceCodeStatus(dc.Id, model.DeviceCodeStatusApproved, userId); err != nil {
		return fmt.Errorf("approve device code: %w", err)
	}

	log.Infow("device authorization approved", "userId", userId, "userCode", userCode)
	return nil
}
