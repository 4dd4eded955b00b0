package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"streamforge/pkg/config"
)

const (
	// CtxUserID 已验证的请求方用户ID（可能为空，表示匿名）
	CtxUserID = "user_id"
	// CtxRequestID 请求追踪ID
	CtxRequestID = "request_id"
)

// RequestContextMiddleware 注入 request_id，便于下游和日志使用。
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(CtxRequestID, reqID)
		c.Writer.Header().Set("X-Request-ID", reqID)
		c.Next()
	}
}

// IdentityMiddleware 解析 Bearer token 并注入 user_id。
// 身份校验本身属于外部协作方，这里只信任解出的 subject；
// 无token或解析失败按匿名处理，由各接口自行决定可见性。
func IdentityMiddleware(jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			c.Next()
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		claims := jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtCfg.Secret), nil
		})
		if err == nil && token.Valid && claims.Subject != "" {
			c.Set(CtxUserID, claims.Subject)
		}
		c.Next()
	}
}

// RequesterID 读取已解析的请求方用户ID，匿名返回空串。
func RequesterID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}
