package handlers

import (
	"context"
	"net/http"

	"caterconnect_backend/internal/middleware"
	"caterconnect_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// JobRunner - фоновая задача, которую можно дернуть по HTTP (workers.Run)
type JobRunner func(ctx context.Context) (int64, error)

// CronHandler - вход для внешнего планировщика, закрыт X-Cron-Secret
type CronHandler struct {
	*BaseHandler
	secret    string
	reminders JobRunner
}

func NewCronHandler(base *BaseHandler, secret string, reminders JobRunner) *CronHandler {
	return &CronHandler{
		BaseHandler: base,
		secret:      secret,
		reminders:   reminders,
	}
}

func (h *CronHandler) RegisterRoutes(r *gin.RouterGroup) {
	cron := r.Group("/cron")
	cron.Use(middleware.CronSecretMiddleware(h.secret))
	{
		cron.POST("/reminders", h.RunReminders)
	}
}

func (h *CronHandler) RunReminders(c *gin.Context) {
	sent, err := h.reminders(c.Request.Context())
	if err != nil {
		h.HandleServiceError(c, apperrors.InternalError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent": sent})
}
