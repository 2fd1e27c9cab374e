package handlers

import (
	"net/http"

	"caterconnect_backend/internal/auth"
	"caterconnect_backend/internal/services"
	"caterconnect_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	*BaseHandler
	jobService         services.JobService
	applicationService services.ApplicationService
}

func NewJobHandler(base *BaseHandler, jobService services.JobService, applicationService services.ApplicationService) *JobHandler {
	return &JobHandler{
		BaseHandler:        base,
		jobService:         jobService,
		applicationService: applicationService,
	}
}

func (h *JobHandler) RegisterRoutes(r *gin.RouterGroup) {
	jobs := r.Group("/jobs")
	jobs.Use(h.RequireAuth())
	{
		jobs.GET("", h.GetJobs)
		jobs.POST("", h.Require(auth.PermJobsWrite), h.CreateJob)
		jobs.GET("/my", h.GetMyJobs)
		jobs.GET("/:jobId", h.GetJob)
		jobs.DELETE("/:jobId", h.DeleteJob)

		jobs.POST("/:jobId/apply", h.Require(auth.PermApplicationsApply), h.Apply)
		jobs.GET("/:jobId/applications", h.GetJobApplications)
		jobs.POST("/:jobId/applications/reject-pending", h.RejectPending)
	}
}

func (h *JobHandler) CreateJob(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.CreateJob(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, job)
}

func (h *JobHandler) GetJobs(c *gin.Context) {
	c.JSON(http.StatusOK, h.jobService.GetJobs(h.GetDB(c)))
}

func (h *JobHandler) GetMyJobs(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.jobService.GetOwnerJobs(h.GetDB(c), userID))
}

func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, ok := RequireParam(c, "jobId")
	if !ok {
		return
	}

	job, err := h.jobService.GetJob(h.GetDB(c), jobID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) DeleteJob(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	jobID, ok := RequireParam(c, "jobId")
	if !ok {
		return
	}

	if err := h.jobService.DeleteJob(h.GetDB(c), jobID, userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Job deleted"})
}

func (h *JobHandler) Apply(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	jobID, ok := RequireParam(c, "jobId")
	if !ok {
		return
	}

	application, err := h.applicationService.ApplyToJob(h.GetDB(c), jobID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

func (h *JobHandler) GetJobApplications(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	jobID, ok := RequireParam(c, "jobId")
	if !ok {
		return
	}

	applications, err := h.applicationService.GetApplicationsForJob(h.GetDB(c), jobID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, applications)
}

func (h *JobHandler) RejectPending(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	jobID, ok := RequireParam(c, "jobId")
	if !ok {
		return
	}

	rejected, err := h.applicationService.RejectPending(h.GetDB(c), jobID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.RejectPendingResponse{Rejected: rejected})
}
