package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"

	"github.com/mlyaho/ai-mem-generator/pkg/logctx"
)

// AuthMiddleware resolves the principal from an HS256 bearer token. Requests without a valid
// token continue with no principal; handlers decide whether that is acceptable.
func AuthMiddleware(secret string, log *zap.SugaredLogger) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || len(key) == 0 {
			c.Next()
			return
		}
		userID, err := parseSubject(raw, key)
		if err != nil {
			logctx.FromGin(c, log).Debugw("bearer_token_rejected", "err", err)
			c.Next()
			return
		}

		c.Set(logctx.GinUserIDKey, userID)
		ctx := logctx.WithUserID(c.Request.Context(), userID)
		if l, ok := c.Get(logctx.GinLoggerKey); ok {
			if lg, ok := l.(*zap.SugaredLogger); ok && lg != nil {
				lg = lg.With("user_id", userID)
				c.Set(logctx.GinLoggerKey, lg)
				ctx = logctx.WithLogger(ctx, lg)
			}
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// UserID returns the principal set by AuthMiddleware, or "".
func UserID(c *gin.Context) string {
	return c.GetString(logctx.GinUserIDKey)
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func parseSubject(raw string, key []byte) (string, error) {
	claims := &jwt.StandardClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return claims.Subject, nil
}
