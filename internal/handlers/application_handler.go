package handlers

import (
	"net/http"
	"strings"

	"caterconnect_backend/internal/models"
	"caterconnect_backend/internal/services"
	"caterconnect_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	*BaseHandler
	applicationService services.ApplicationService
}

func NewApplicationHandler(base *BaseHandler, applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        base,
		applicationService: applicationService,
	}
}

func (h *ApplicationHandler) RegisterRoutes(r *gin.RouterGroup) {
	applications := r.Group("/applications")
	applications.Use(h.RequireAuth())
	{
		applications.GET("/my", h.GetMyApplications)
		applications.GET("/owner", h.GetOwnerApplications)
		applications.PUT("/:applicationId/status", h.UpdateStatus)
	}
}

func (h *ApplicationHandler) GetMyApplications(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.applicationService.GetWorkerApplications(h.GetDB(c), userID))
}

func (h *ApplicationHandler) GetOwnerApplications(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.applicationService.GetOwnerJobApplications(h.GetDB(c), userID))
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	applicationID, ok := RequireParam(c, "applicationId")
	if !ok {
		return
	}

	var req dto.UpdateApplicationStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	status := models.ApplicationStatus(strings.ToUpper(req.Status))
	application, err := h.applicationService.UpdateStatus(h.GetDB(c), applicationID, userID, status)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}
