package handlers

import (
	"net/http"

	"caterconnect_backend/internal/services"
	"caterconnect_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	*BaseHandler
	ratingService services.RatingService
}

func NewRatingHandler(base *BaseHandler, ratingService services.RatingService) *RatingHandler {
	return &RatingHandler{
		BaseHandler:   base,
		ratingService: ratingService,
	}
}

func (h *RatingHandler) RegisterRoutes(r *gin.RouterGroup) {
	ratings := r.Group("/ratings")
	ratings.Use(h.RequireAuth())
	{
		ratings.POST("", h.SubmitRating)
		ratings.GET("/check", h.CheckRating)
		ratings.GET("/users/:userId", h.GetUserRatings)
	}
}

func (h *RatingHandler) SubmitRating(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SubmitRatingRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	rating, err := h.ratingService.SubmitRating(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}

// CheckRating - оценил ли вызывающий пользователя по этой работе и какой оценкой
func (h *RatingHandler) CheckRating(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var query dto.RatingCheckQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	db := h.GetDB(c)
	rated, err := h.ratingService.HasUserRated(db, query.JobID, userID, query.RatedUserID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	response := dto.RatingCheckResponse{HasRated: rated}
	if rated {
		rating, err := h.ratingService.GetUserRating(db, query.JobID, userID, query.RatedUserID)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		response.Rating = rating
	}

	c.JSON(http.StatusOK, response)
}

func (h *RatingHandler) GetUserRatings(c *gin.Context) {
	userID, ok := RequireParam(c, "userId")
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.ratingService.GetUserRatings(h.GetDB(c), userID))
}
