package handler

import (
	"BrainShelf/internal/api/dto"
	"BrainShelf/internal/pkg/response"
	"BrainShelf/internal/pkg/util"
	"BrainShelf/internal/service"

	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	ratingSvc service.RatingService
}

func NewRatingHandler(ratingSvc service.RatingService) *RatingHandler {
	return &RatingHandler{ratingSvc: ratingSvc}
}

// RateProject 提交评分，重复提交覆盖旧值
func (s *RatingHandler) RateProject(c *gin.Context) {
	raterID, ok := currentUserID(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	projectID, ok := paramObjectID(c, "project_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	var req dto.RateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	result, err := s.ratingSvc.RateProject(c.Request.Context(), projectID, raterID, req.Rating)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *RatingHandler) GetUserRating(c *gin.Context) {
	raterID, ok := currentUserID(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	projectID, ok := paramObjectID(c, "project_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	result, err := s.ratingSvc.GetUserRating(c.Request.Context(), projectID, raterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *RatingHandler) GetPublicRatings(c *gin.Context) {
	projectID, ok := paramObjectID(c, "project_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	result, err := s.ratingSvc.GetPublicRatings(c.Request.Context(), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
