package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/vladbogun1/tg-shop-miniapp/internal/dto"
	"github.com/vladbogun1/tg-shop-miniapp/internal/security"
	"github.com/vladbogun1/tg-shop-miniapp/internal/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Ключи контекста Gin
const (
	CtxTgUser  = "tg_user"
	CtxIsAdmin = "is_admin"

	initDataHeader      = "X-Tg-Init-Data"
	adminPasswordHeader = "X-Admin-Password"
)

// InitDataRequired проверяет подпись Telegram initData и кладёт
// пользователя в контекст запроса.
func InitDataRequired(validator *security.InitDataValidator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := validator.Validate(c.GetHeader(initDataHeader))
		if err != nil {
			log.Warn("Невалидный initData", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid init data"))
			return
		}
		c.Set(CtxTgUser, user)
		c.Next()
	}
}

// TgUser достаёт валидированного пользователя из контекста.
func TgUser(c *gin.Context) (*security.InitDataUser, bool) {
	v, ok := c.Get(CtxTgUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*security.InitDataUser)
	return user, ok
}

// AdminRequired пускает по одному из трёх способов: пароль админки,
// Bearer-токен сессии либо initData пользователя из списка админов.
func AdminRequired(adminPassword string, tokens token.Provider, validator *security.InitDataValidator, adminIDs []int64, log *zap.Logger) gin.HandlerFunc {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return func(c *gin.Context) {
		if pass := c.GetHeader(adminPasswordHeader); pass != "" {
			if subtle.ConstantTimeCompare([]byte(pass), []byte(adminPassword)) == 1 {
				c.Set(CtxIsAdmin, true)
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewForbiddenError("invalid admin password"))
			return
		}

		if authz := c.GetHeader("Authorization"); authz != "" {
			raw, ok := extractBearerToken(authz)
			if !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid Authorization header"))
				return
			}
			if _, err := tokens.Parse(raw); err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid token"))
				return
			}
			c.Set(CtxIsAdmin, true)
			c.Next()
			return
		}

		if initData := c.GetHeader(initDataHeader); initData != "" {
			user, err := validator.Validate(initData)
			if err == nil && admins[user.ID] {
				c.Set(CtxTgUser, user)
				c.Set(CtxIsAdmin, true)
				c.Next()
				return
			}
			if err != nil {
				log.Warn("Невалидный initData при входе в админку", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewForbiddenError("not an admin"))
			return
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing credentials"))
	}
}

func extractBearerToken(authz string) (string, bool) {
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	t := strings.TrimSpace(parts[1])
	if t == "" {
		return "", false
	}
	return t, true
}
