package service

import (
	"BrainShelf/internal/api/dto"
	"BrainShelf/internal/model"
	"BrainShelf/internal/pkg/consts"
	"BrainShelf/internal/pkg/kafka"
	"BrainShelf/internal/pkg/redis"
	"BrainShelf/internal/repository"
	"context"
	log "log/slog"
	"math"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxRateAttempts 乐观锁冲突时的重试上限
const maxRateAttempts = 3

const ratingCacheExpiration = 10 * time.Minute

type RatingService interface {
	RateProject(ctx context.Context, projectID, raterID primitive.ObjectID, value int) (*dto.RatingResultDTO, error)
	GetUserRating(ctx context.Context, projectID, raterID primitive.ObjectID) (*dto.UserRatingDTO, error)
	GetPublicRatings(ctx context.Context, projectID primitive.ObjectID) (*dto.PublicRatingDTO, error)
}

type RatingServiceImpl struct {
	projectRepo repository.ProjectRepo
	publisher   kafka.Publisher
}

func NewRatingService(projectRepo repository.ProjectRepo, publisher kafka.Publisher) RatingService {
	return &RatingServiceImpl{projectRepo: projectRepo, publisher: publisher}
}

// RateProject 写入或覆盖 rater 在项目上的评分，并在同一次写入中
// 更新派生的平均分与总数。写入以读取时的版本号做条件，
// 版本冲突时重读重试，避免并发评分互相覆盖。
func (s *RatingServiceImpl) RateProject(ctx context.Context, projectID, raterID primitive.ObjectID, value int) (*dto.RatingResultDTO, error) {
	if value < 1 || value > 5 {
		return nil, ErrRatingOutOfRange
	}

	for attempt := 0; attempt < maxRateAttempts; attempt++ {
		project, err := s.projectRepo.FindByID(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, ErrProjectNotFound
		}

		ratings := make([]model.Rating, len(project.Ratings))
		copy(ratings, project.Ratings)

		now := time.Now()
		if idx := project.FindRating(raterID); idx >= 0 {
			// 重复评分原地覆盖，保持每人至多一条
			ratings[idx].Value = value
			ratings[idx].CreatedAt = now
		} else {
			ratings = append(ratings, model.Rating{UserID: raterID, Value: value, CreatedAt: now})
		}

		average := averageOf(ratings)
		total := int64(len(ratings))

		ok, err := s.projectRepo.UpdateRatings(ctx, projectID, project.Version, ratings, average, total)
		if err != nil {
			return nil, err
		}
		if !ok {
			// 版本号已被并发写入推进，重读最新状态再试
			continue
		}

		_ = redis.DeleteKey(ctx, consts.ProjectRatingKey+projectID.Hex())
		s.publishEvent(ctx, projectID, raterID, value)

		return &dto.RatingResultDTO{
			UserRating:    value,
			AverageRating: average,
			TotalRatings:  total,
		}, nil
	}

	log.ErrorContext(ctx, "rate project: retries exhausted on version conflict",
		"project", projectID.Hex(), "rater", raterID.Hex())
	return nil, UnExpectedError
}

// GetUserRating 查询当前用户的评分与项目聚合值。
// 用户尚未评分不是错误，返回 has_rated=false。
func (s *RatingServiceImpl) GetUserRating(ctx context.Context, projectID, raterID primitive.ObjectID) (*dto.UserRatingDTO, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	result := &dto.UserRatingDTO{
		AverageRating: project.AverageRating,
		TotalRatings:  project.TotalRatings,
	}
	if idx := project.FindRating(raterID); idx >= 0 {
		result.UserRating = project.Ratings[idx].Value
		result.HasRated = true
	}
	return result, nil
}

// GetPublicRatings 无需登录的聚合值查询，结果短暂缓存
func (s *RatingServiceImpl) GetPublicRatings(ctx context.Context, projectID primitive.ObjectID) (*dto.PublicRatingDTO, error) {
	key := consts.ProjectRatingKey + projectID.Hex()

	cached, err := redis.GetValue(ctx, key)
	if err == nil && cached != "" {
		var result dto.PublicRatingDTO
		if err = json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	result := &dto.PublicRatingDTO{
		AverageRating: project.AverageRating,
		TotalRatings:  project.TotalRatings,
	}

	if payload, err := json.Marshal(result); err == nil {
		_ = redis.SetWithExpiration(ctx, key, string(payload), ratingCacheExpiration)
	}
	return result, nil
}

// averageOf 计算平均分并保留一位小数，0.5 向远离零的方向进位
func averageOf(ratings []model.Rating) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Value
	}
	mean := float64(sum) / float64(len(ratings))
	return math.Round(mean*10) / 10
}

func (s *RatingServiceImpl) publishEvent(ctx context.Context, projectID, raterID primitive.ObjectID, value int) {
	if s.publisher == nil {
		return
	}
	// 事件发布失败不影响请求结果
	_ = s.publisher.Publish(ctx, &kafka.Event{
		Type:       kafka.EventProjectRated,
		ActorID:    raterID.Hex(),
		ProjectID:  projectID.Hex(),
		Value:      value,
		OccurredAt: time.Now(),
	})
}
