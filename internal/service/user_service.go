package service

import (
	"BrainShelf/internal/api/dto"
	"BrainShelf/internal/model"
	"BrainShelf/internal/pkg/consts"
	"BrainShelf/internal/pkg/minio"
	"BrainShelf/internal/pkg/redis"
	"BrainShelf/internal/pkg/security"
	"BrainShelf/internal/pkg/util"
	"BrainShelf/internal/repository"
	"context"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const profileCacheExpiration = time.Hour

type UserService interface {
	Register(ctx context.Context, regDTO *dto.RegisterDTO) error
	Login(ctx context.Context, credDTO *dto.CredentialDTO) (*dto.LoginResultDTO, error)
	Logout(ctx context.Context, token string) error
	GetProfileByUsername(ctx context.Context, username string) (*dto.UserDTO, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, updateDTO *dto.UpdateProfileDTO) error
	UpdateAvatar(ctx context.Context, id primitive.ObjectID, reader io.Reader) (string, error)
}

type UserServiceImpl struct {
	userRepo repository.UserRepo
}

func NewUserService(userRepo repository.UserRepo) UserService {
	return &UserServiceImpl{userRepo: userRepo}
}

func (s *UserServiceImpl) Register(ctx context.Context, regDTO *dto.RegisterDTO) error {
	existing, err := s.userRepo.FindByUsername(ctx, regDTO.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserUsernameExist
	}

	existing, err = s.userRepo.FindByEmail(ctx, regDTO.Email)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrUserEmailExist
	}

	passwordHash, err := security.HashPassword(regDTO.Password)
	if err != nil {
		return err
	}

	user := &model.User{
		Name:      regDTO.Name,
		Username:  regDTO.Username,
		Email:     regDTO.Email,
		Password:  passwordHash,
		AvatarURL: consts.DefaultAvatarURL,
	}
	return s.userRepo.CreateUser(ctx, user)
}

func (s *UserServiceImpl) Login(ctx context.Context, credDTO *dto.CredentialDTO) (*dto.LoginResultDTO, error) {
	user, err := s.userRepo.FindByEmail(ctx, credDTO.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err = security.CheckPasswordHash(credDTO.Password, user.Password); err != nil {
		return nil, ErrPasswordIncorrect
	}

	token, err := security.GenerateToken(user.ID.Hex(), user.Username)
	if err != nil {
		return nil, err
	}

	userDTO, err := s.toUserDTO(user)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResultDTO{Token: token, User: userDTO}, nil
}

// Logout 将 Token 签名加入黑名单，有效期与 Token 剩余寿命同阶
func (s *UserServiceImpl) Logout(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return err
	}
	return redis.SetWithExpiration(ctx, consts.TokenBlacklistPrefix+signature, true, security.JWTExpirationTime)
}

func (s *UserServiceImpl) GetProfileByUsername(ctx context.Context, username string) (*dto.UserDTO, error) {
	key := consts.UserSimpleInfoKey + username

	cached, err := redis.GetValue(ctx, key)
	if err == nil && cached != "" {
		var userDTO dto.UserDTO
		if err = json.Unmarshal([]byte(cached), &userDTO); err == nil {
			return &userDTO, nil
		}
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	userDTO, err := s.toUserDTO(user)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(userDTO); err == nil {
		_ = redis.SetWithExpiration(ctx, key, string(payload), profileCacheExpiration)
	}
	return userDTO, nil
}

func (s *UserServiceImpl) UpdateProfile(ctx context.Context, id primitive.ObjectID, updateDTO *dto.UpdateProfileDTO) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	update := &model.ProfileUpdate{
		Name:    updateDTO.Name,
		Bio:     updateDTO.Bio,
		College: updateDTO.College,
		Year:    updateDTO.Year,
	}
	if err = s.userRepo.UpdateProfile(ctx, id, update); err != nil {
		return err
	}

	_ = redis.DeleteKey(ctx, consts.UserSimpleInfoKey+user.Username)
	return nil
}

// UpdateAvatar 缩放头像后上传到对象存储，并回写用户记录
func (s *UserServiceImpl) UpdateAvatar(ctx context.Context, id primitive.ObjectID, reader io.Reader) (string, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	resized, err := util.ResizeAvatar(reader)
	if err != nil {
		return "", ErrFileNotSupported
	}

	objectName := "avatars/" + uuid.NewString() + ".jpg"
	if _, err = minio.UploadFile(ctx, objectName, resized, int64(resized.Len()), "image/jpeg"); err != nil {
		return "", err
	}

	avatarURL := minio.GetPublicURL(objectName)
	if err = s.userRepo.UpdateAvatar(ctx, id, avatarURL); err != nil {
		return "", err
	}

	_ = redis.DeleteKey(ctx, consts.UserSimpleInfoKey+user.Username)
	return avatarURL, nil
}

func (s *UserServiceImpl) toUserDTO(user *model.User) (*dto.UserDTO, error) {
	userDTO := &dto.UserDTO{}
	if err := copier.Copy(userDTO, user); err != nil {
		return nil, err
	}
	userDTO.ID = user.ID.Hex()
	return userDTO, nil
}
