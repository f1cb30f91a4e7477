package service

import (
	"BrainShelf/internal/api/dto"
	"BrainShelf/internal/model"
	"BrainShelf/internal/pkg/consts"
	"BrainShelf/internal/pkg/minio"
	"BrainShelf/internal/repository"
	"context"
	"io"
	log "log/slog"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectService interface {
	CreateProject(ctx context.Context, owner string, createDTO *dto.CreateProjectDTO, image io.Reader, imageSize int64, imageName, contentType string) (*dto.ProjectDTO, error)
	GetProjects(ctx context.Context, page, pageSize int) (*dto.ProjectListDTO, error)
	GetProject(ctx context.Context, id primitive.ObjectID) (*dto.ProjectDTO, error)
	GetUserProjects(ctx context.Context, userID primitive.ObjectID) ([]*dto.ProjectDTO, error)
	DeleteProject(ctx context.Context, actorUsername string, id primitive.ObjectID) error
}

type ProjectServiceImpl struct {
	projectRepo repository.ProjectRepo
	userRepo    repository.UserRepo
}

func NewProjectService(projectRepo repository.ProjectRepo, userRepo repository.UserRepo) ProjectService {
	return &ProjectServiceImpl{projectRepo: projectRepo, userRepo: userRepo}
}

// CreateProject 上传项目配图后落库，owner 为创建者用户名
func (s *ProjectServiceImpl) CreateProject(ctx context.Context, owner string, createDTO *dto.CreateProjectDTO, image io.Reader, imageSize int64, imageName, contentType string) (*dto.ProjectDTO, error) {
	if !strings.HasPrefix(contentType, consts.MimePrefixImage+"/") {
		return nil, ErrFileNotSupported
	}

	ext := path.Ext(imageName)
	if ext == "" {
		ext = ".jpg"
	}
	objectName := "projects/" + uuid.NewString() + ext

	if _, err := minio.UploadFile(ctx, objectName, image, imageSize, contentType); err != nil {
		return nil, err
	}

	project := &model.Project{
		Name:        createDTO.Name,
		Title:       createDTO.Title,
		Description: createDTO.Description,
		Image:       minio.GetPublicURL(objectName),
		Owner:       owner,
		Tags:        createDTO.Tags,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}

	return s.toProjectDTO(project)
}

func (s *ProjectServiceImpl) GetProjects(ctx context.Context, page, pageSize int) (*dto.ProjectListDTO, error) {
	offset := (page - 1) * pageSize

	projects, total, err := s.projectRepo.FindAll(ctx, pageSize, offset)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ProjectDTO, 0, len(projects))
	for _, p := range projects {
		item, err := s.toProjectDTO(p)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &dto.ProjectListDTO{Projects: items, Total: total}, nil
}

func (s *ProjectServiceImpl) GetProject(ctx context.Context, id primitive.ObjectID) (*dto.ProjectDTO, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	// 浏览计数失败只记录，不影响详情返回
	if err = s.projectRepo.IncViews(ctx, id); err != nil {
		log.WarnContext(ctx, "inc project views failed", "project", id.Hex(), "err", err)
	} else {
		project.Views++
	}

	return s.toProjectDTO(project)
}

func (s *ProjectServiceImpl) GetUserProjects(ctx context.Context, userID primitive.ObjectID) ([]*dto.ProjectDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	projects, err := s.projectRepo.FindByOwner(ctx, user.Username)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.ProjectDTO, 0, len(projects))
	for _, p := range projects {
		item, err := s.toProjectDTO(p)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// DeleteProject 仅项目所有者可删除
func (s *ProjectServiceImpl) DeleteProject(ctx context.Context, actorUsername string, id primitive.ObjectID) error {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrProjectNotFound
	}
	if project.Owner != actorUsername {
		return UnauthorizedError
	}

	if err = s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}

	// 配图清理失败不回滚删除
	if objectName, ok := strings.CutPrefix(project.Image, minio.GetPublicURL("")); ok && objectName != "" {
		if err = minio.DeleteFile(ctx, objectName); err != nil {
			log.WarnContext(ctx, "delete project image failed", "project", id.Hex(), "err", err)
		}
	}
	return nil
}

func (s *ProjectServiceImpl) toProjectDTO(project *model.Project) (*dto.ProjectDTO, error) {
	projectDTO := &dto.ProjectDTO{}
	if err := copier.Copy(projectDTO, project); err != nil {
		return nil, err
	}
	projectDTO.ID = project.ID.Hex()
	return projectDTO, nil
}
