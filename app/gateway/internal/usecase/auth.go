package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	jwtauth "github.com/go-kratos/kratos/v2/middleware/auth/jwt"
	"github.com/golang-jwt/jwt/v5"

	"github.com/iWorld-y/intel_radar/app/gateway/internal/conf"
)

// ClaimUserID token 中的用户 id
const ClaimUserID = "uid"

// AuthUseCase 校验 ClickBank 接口的 bearer token
type AuthUseCase struct {
	key []byte
}

func NewAuthUseCase(auth *conf.Auth) *AuthUseCase {
	uc := &AuthUseCase{}
	if auth != nil && auth.JwtKey != "" {
		uc.key = []byte(auth.JwtKey)
	}
	return uc
}

// Enabled 是否配置了 jwt_key
func (uc *AuthUseCase) Enabled() bool {
	return len(uc.key) > 0
}

// Keyfunc 供 kratos jwt 中间件使用
func (uc *AuthUseCase) Keyfunc(*jwt.Token) (any, error) {
	return uc.key, nil
}

// Issue 签发带 uid 的 token
func (uc *AuthUseCase) Issue(userID string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		ClaimUserID: userID,
		"exp":       time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(uc.key)
}

// UserIDFromContext 从 jwt 中间件写入的 claims 中读取 uid
func UserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := jwtauth.FromContext(ctx)
	if !ok {
		return "", false
	}
	mc, ok := claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	switch v := mc[ClaimUserID].(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatInt(int64(v), 10), true
	case nil:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}
