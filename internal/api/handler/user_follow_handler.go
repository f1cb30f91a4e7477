package handler

import (
	"BrainShelf/internal/pkg/response"
	"BrainShelf/internal/pkg/util"
	"BrainShelf/internal/service"

	"github.com/gin-gonic/gin"
)

type UserFollowHandler struct {
	userFollowSvc service.UserFollowService
}

func NewUserFollowHandler(userFollowSvc service.UserFollowService) *UserFollowHandler {
	return &UserFollowHandler{userFollowSvc: userFollowSvc}
}

func (s *UserFollowHandler) Follow(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	targetID, ok := paramObjectID(c, "target_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	result, err := s.userFollowSvc.Follow(c.Request.Context(), actorID, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *UserFollowHandler) Unfollow(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	targetID, ok := paramObjectID(c, "target_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	result, err := s.userFollowSvc.Unfollow(c.Request.Context(), actorID, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *UserFollowHandler) GetFollowStatus(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	targetID, ok := paramObjectID(c, "target_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	status, err := s.userFollowSvc.GetFollowStatus(c.Request.Context(), actorID, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, status)
}

func (s *UserFollowHandler) GetFollowers(c *gin.Context) {
	userID, ok := paramObjectID(c, "user_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	page, pageSize := util.GetPagination(c)

	list, err := s.userFollowSvc.GetFollowers(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *UserFollowHandler) GetFollowings(c *gin.Context) {
	userID, ok := paramObjectID(c, "user_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	page, pageSize := util.GetPagination(c)

	list, err := s.userFollowSvc.GetFollowing(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
