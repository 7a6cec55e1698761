package logic

import (
	"errors"
	"fmt"
)

// 错误分级：读路径在路由层降级为空结果，写路径原样向上传递。
var (
	// ErrNotAuthenticated 调用方身份无法解析
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotFound 目标记录不存在，与瞬时查询失败显式区分
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized 调用方角色缺少所需能力
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCreationFailed 组织创建失败（含 slug 冲突），包装底层原因
	ErrCreationFailed = errors.New("organization creation failed")

	// ErrInvitationNotActionable 邀请非 pending 或已过期
	ErrInvitationNotActionable = errors.New("invitation is no longer valid")

	// ErrEmailTaken 注册邮箱已被占用
	ErrEmailTaken = errors.New("email already registered")

	// ErrIncorrectCredentials 邮箱不存在或密码不匹配，对外不区分
	ErrIncorrectCredentials = errors.New("incorrect email or password")

	// ErrLastOwner 组织最后一个 owner 不可移除
	ErrLastOwner = errors.New("cannot remove the last owner of an organization")

	// ErrDeviceCodeNotActionable 设备码非 pending 或已过期
	ErrDeviceCodeNotActionable = errors.New("device code is no longer valid")
)

// ErrSlugTaken slug 冲突，包装 ErrCreationFailed 以便两级 errors.Is 均可命中
var ErrSlugTaken = fmt.Errorf("%w: slug already taken", ErrCreationFailed)
