package repository

import (
	"BrainShelf/internal/model"
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProjectRepo interface {
	Create(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Project, error)
	FindAll(ctx context.Context, limit, offset int) ([]*model.Project, int64, error)
	FindByOwner(ctx context.Context, owner string) ([]*model.Project, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncViews(ctx context.Context, id primitive.ObjectID) error
	UpdateRatings(ctx context.Context, id primitive.ObjectID, version int64, ratings []model.Rating, average float64, total int64) (bool, error)
}

type ProjectRepoImpl struct {
	col *mongo.Collection
}

func NewProjectRepo(db *mongo.Database) ProjectRepo {
	return &ProjectRepoImpl{col: db.Collection(model.Project{}.CollectionName())}
}

func (s *ProjectRepoImpl) Create(ctx context.Context, project *model.Project) error {
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Ratings == nil {
		project.Ratings = []model.Rating{}
	}
	if project.Tags == nil {
		project.Tags = []string{}
	}

	res, err := s.col.InsertOne(ctx, project)
	if err != nil {
		return errors.Wrap(err, "insert project")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		project.ID = oid
	}
	return nil
}

func (s *ProjectRepoImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Project, error) {
	var project model.Project
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find project by id")
	}
	return &project, nil
}

// FindAll 按创建时间倒序分页返回项目列表
func (s *ProjectRepoImpl) FindAll(ctx context.Context, limit, offset int) ([]*model.Project, int64, error) {
	total, err := s.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, errors.Wrap(err, "count projects")
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := s.col.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find projects")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var projects []*model.Project
	if err = cursor.All(ctx, &projects); err != nil {
		return nil, 0, errors.Wrap(err, "decode projects")
	}
	return projects, total, nil
}

func (s *ProjectRepoImpl) FindByOwner(ctx context.Context, owner string) ([]*model.Project, error) {
	cursor, err := s.col.Find(ctx,
		bson.M{"owner": owner},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "find projects by owner")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var projects []*model.Project
	if err = cursor.All(ctx, &projects); err != nil {
		return nil, errors.Wrap(err, "decode owner projects")
	}
	return projects, nil
}

func (s *ProjectRepoImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	return errors.Wrap(err, "delete project")
}

func (s *ProjectRepoImpl) IncViews(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	return errors.Wrap(err, "inc views")
}

// UpdateRatings 以乐观锁方式写入新的评分数组与派生字段。
// 过滤条件携带读取时的版本号，版本不匹配说明有并发写入，
// 返回 false，调用方需要重读后重试。
func (s *ProjectRepoImpl) UpdateRatings(ctx context.Context, id primitive.ObjectID, version int64, ratings []model.Rating, average float64, total int64) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "version": version},
		bson.M{
			"$set": bson.M{
				"ratings":        ratings,
				"average_rating": average,
				"total_ratings":  total,
				"updated_at":     time.Now(),
			},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return false, errors.Wrap(err, "update ratings")
	}
	return res.MatchedCount == 1, nil
}
