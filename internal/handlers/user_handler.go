package handlers

import (
	"net/http"

	"caterconnect_backend/internal/services"
	"caterconnect_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	users.Use(h.RequireAuth())
	{
		users.GET("/me", h.GetCurrentUser)
		users.POST("/sync", h.SyncProfile)
		users.POST("/me/referral-code", h.GenerateReferralCode)
		users.GET("/me/referrals", h.GetReferralStats)
	}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	identity, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.userService.GetCurrentUser(h.GetDB(c), identity))
}

// SyncProfile создает профиль при первом входе или обновляет существующий
func (h *UserHandler) SyncProfile(c *gin.Context) {
	identity, ok := h.GetIdentity(c)
	if !ok {
		return
	}

	var req dto.SyncProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.SyncProfile(h.GetDB(c), identity, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GenerateReferralCode(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	code, err := h.userService.GenerateMissingReferralCode(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, code)
}

func (h *UserHandler) GetReferralStats(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	stats, err := h.userService.GetReferralStats(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
