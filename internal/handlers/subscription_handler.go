package handlers

import (
	"net/http"

	"caterconnect_backend/internal/services"
	"caterconnect_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	*BaseHandler
	subscriptionService services.SubscriptionService
}

func NewSubscriptionHandler(base *BaseHandler, subscriptionService services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		BaseHandler:         base,
		subscriptionService: subscriptionService,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(r *gin.RouterGroup) {
	subscription := r.Group("/subscription")
	subscription.Use(h.RequireAuth())
	{
		subscription.GET("", h.GetSubscription)
		subscription.POST("/orders", h.CreateOrder)
		subscription.POST("/verify", h.VerifyPayment)
		subscription.POST("/downgrade", h.Downgrade)
	}
}

func (h *SubscriptionHandler) GetSubscription(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	subscription, err := h.subscriptionService.GetSubscription(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}

// CreateOrder создает заказ Razorpay, клиент открывает checkout с order_id и key_id
func (h *SubscriptionHandler) CreateOrder(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	order, err := h.subscriptionService.CreateOrder(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *SubscriptionHandler) VerifyPayment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.VerifyPaymentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	subscription, err := h.subscriptionService.VerifyPayment(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}

func (h *SubscriptionHandler) Downgrade(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	subscription, err := h.subscriptionService.Downgrade(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, subscription)
}
