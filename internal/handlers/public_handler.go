package handlers

import (
	"net/http"

	"caterconnect_backend/internal/services"
	"caterconnect_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PublicHandler struct {
	*BaseHandler
	publicService services.PublicService
}

func NewPublicHandler(base *BaseHandler, publicService services.PublicService) *PublicHandler {
	return &PublicHandler{
		BaseHandler:   base,
		publicService: publicService,
	}
}

// RegisterRoutes - без авторизации
func (h *PublicHandler) RegisterRoutes(r *gin.RouterGroup) {
	public := r.Group("/public")
	{
		public.GET("/jobs", h.GetJobs)
		public.GET("/workers", h.GetWorkers)
	}
}

func (h *PublicHandler) GetJobs(c *gin.Context) {
	var query dto.PublicListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	c.JSON(http.StatusOK, h.publicService.GetPublicJobs(h.GetDB(c), query.Limit))
}

func (h *PublicHandler) GetWorkers(c *gin.Context) {
	var query dto.PublicListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	c.JSON(http.StatusOK, h.publicService.GetPublicWorkers(h.GetDB(c), query.Limit))
}
