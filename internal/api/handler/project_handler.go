package handler

import (
	"BrainShelf/internal/api/dto"
	"BrainShelf/internal/pkg/response"
	"BrainShelf/internal/pkg/util"
	"BrainShelf/internal/service"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectSvc service.ProjectService
}

func NewProjectHandler(projectSvc service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectSvc: projectSvc}
}

// CreateProject multipart 表单：元数据字段 + image 文件
func (s *ProjectHandler) CreateProject(c *gin.Context) {
	owner := c.GetString("username")
	if owner == "" {
		response.Error(c, service.UnauthorizedError)
		return
	}

	var req dto.CreateProjectDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Fail(c, response.BadRequest, err.Error())
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	project, err := s.projectSvc.CreateProject(c.Request.Context(), owner, &req,
		file, fileHeader.Size, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

func (s *ProjectHandler) GetProjects(c *gin.Context) {
	page, pageSize := util.GetPagination(c)

	list, err := s.projectSvc.GetProjects(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

func (s *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := paramObjectID(c, "project_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	project, err := s.projectSvc.GetProject(c.Request.Context(), projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

func (s *ProjectHandler) GetUserProjects(c *gin.Context) {
	userID, ok := paramObjectID(c, "user_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	projects, err := s.projectSvc.GetUserProjects(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, projects)
}

func (s *ProjectHandler) DeleteProject(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		response.Error(c, service.UnauthorizedError)
		return
	}
	projectID, ok := paramObjectID(c, "project_id")
	if !ok {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.projectSvc.DeleteProject(c.Request.Context(), username, projectID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
