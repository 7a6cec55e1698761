package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/go-tenancy/tenancy/internal/engine/consts"
	httpx "github.com/go-tenancy/tenancy/pkg/http"
	"github.com/go-tenancy/tenancy/pkg/http/jwt"
	"github.com/go-tenancy/tenancy/pkg/log"
	"github.com/gofiber/fiber/v2"
	goJwt "github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// AuthorizationMiddleware 认证中间件
// secretKey: 用于验证 JWT 的密钥
// client: Redis 客户端
// This function is used as the middleware of fiber.
func AuthorizationMiddleware(secretKey string, client *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		aToken := c.Get("Authorization")
		if aToken == "" {
			return httpx.WithRepErrMsg(c, httpx.TokenBeEmpty.Code, httpx.TokenBeEmpty.Msg, c.Path())
		}

		parts := strings.SplitN(aToken, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return httpx.WithRepErrMsg(c, httpx.TokenBeEmpty.Code, httpx.TokenBeEmpty.Msg, c.Path())
		}

		claims, err := jwt.ParseToken(parts[1], secretKey)
		if err != nil {
			if errors.Is(err, goJwt.ErrTokenExpired) {
				return httpx.WithRepErrMsg(c, httpx.TokenExpired.Code, httpx.TokenExpired.Msg, c.Path())
			}
			log.Errorf("parse token failed: %v", err)
			return httpx.WithRepErrMsg(c, httpx.InvalidToken.Code, httpx.InvalidToken.Msg, c.Path())
		}

		// 检查 Redis 中是否存在 Token
		tokenKey := consts.SessionKey + claims.UserId
		exists, err := client.Exists(context.Background(), tokenKey).Result()
		if err != nil {
			log.Errorf("redis check token exists failed: %v", err)
			return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
		}
		if exists == 0 {
			return httpx.WithRepErrMsg(c, httpx.TokenExpired.Code, httpx.TokenExpired.Msg, c.Path())
		}

		// 检查 Redis 中的 Token 是否过期
		ttl, err := client.TTL(context.Background(), tokenKey).Result()
		if err != nil {
			log.Errorf("redis check token TTL failed: %v", err)
			return httpx.WithRepErrMsg(c, httpx.InternalError.Code, httpx.InternalError.Msg, c.Path())
		}
		if ttl <= 0 {
			log.Warnf("token has expired in Redis for user: %s", claims.UserId)
			return httpx.WithRepErrMsg(c, httpx.TokenExpired.Code, httpx.TokenExpired.Msg, c.Path())
		}

		c.Locals("claims", claims)
		return c.Next()
	}
}

// ClaimsFromCtx returns the parsed auth claims set by AuthorizationMiddleware,
// or nil when the request was not authenticated.
func ClaimsFromCtx(c *fiber.Ctx) *jwt.AuthClaims {
	claims, _ := c.Locals("claims").(*jwt.AuthClaims)
	return claims
}
