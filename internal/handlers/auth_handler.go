package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/vladbogun1/tg-shop-miniapp/internal/dto"
	"github.com/vladbogun1/tg-shop-miniapp/internal/middleware"
	"github.com/vladbogun1/tg-shop-miniapp/internal/token"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	adminPassword string
	tokens        token.Provider
	botUsername   string
	currency      string
	admins        map[int64]bool
	log           *zap.Logger
}

func NewAuthHandler(adminPassword string, tokens token.Provider, botUsername, currency string, adminIDs []int64, log *zap.Logger) *AuthHandler {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}
	return &AuthHandler{
		adminPassword: adminPassword,
		tokens:        tokens,
		botUsername:   botUsername,
		currency:      currency,
		admins:        admins,
		log:           log,
	}
}

// AdminLogin godoc
// @Summary Вход в админку по паролю
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.AdminLoginRequest true "Пароль админки"
// @Success 200 {object} dto.AdminLoginResponse
// @Failure 401 {object} dto.BaseError
// @Router /api/admin/login [post]
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.adminPassword)) != 1 {
		h.log.Warn("Неверный пароль админки")
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid password"))
		return
	}
	raw, err := h.tokens.Generate("admin")
	if err != nil {
		h.log.Error("Не удалось выпустить токен", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
		return
	}
	c.JSON(http.StatusOK, dto.AdminLoginResponse{Token: raw})
}

// AppInfo отдаёт публичные параметры мини-приложения.
func (h *AuthHandler) AppInfo(c *gin.Context) {
	c.JSON(http.StatusOK, dto.AppInfoResponse{
		BotUsername: h.botUsername,
		Currency:    h.currency,
	})
}

// Me возвращает текущего пользователя по initData.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.TgUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing user"))
		return
	}
	c.JSON(http.StatusOK, dto.MeResponse{
		TgUserID: user.ID,
		Username: user.Username,
		IsAdmin:  h.admins[user.ID],
	})
}
