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

type UserRepo interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update *model.ProfileUpdate) error
	UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) error

	AddFollowing(ctx context.Context, actorID, targetID primitive.ObjectID) (bool, error)
	RemoveFollowing(ctx context.Context, actorID, targetID primitive.ObjectID) (bool, error)
	AddFollower(ctx context.Context, targetID, actorID primitive.ObjectID) (int64, bool, error)
	RemoveFollower(ctx context.Context, targetID, actorID primitive.ObjectID) (int64, bool, error)

	ListFollowersPage(ctx context.Context, id primitive.ObjectID, skip, limit int) ([]*model.User, int64, error)
	ListFollowingPage(ctx context.Context, id primitive.ObjectID, skip, limit int) ([]*model.User, int64, error)

	ResyncFollowCounts(ctx context.Context) (int64, error)
}

type UserRepoImpl struct {
	col *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepo {
	return &UserRepoImpl{col: db.Collection(model.User{}.CollectionName())}
}

// CreateUser 创建用户，关注关系字段初始化为空数组与零计数
func (s *UserRepoImpl) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}

	res, err := s.col.InsertOne(ctx, user)
	if err != nil {
		return errors.Wrap(err, "insert user")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (s *UserRepoImpl) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var user model.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

func (s *UserRepoImpl) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.col.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find user by username")
	}
	return &user, nil
}

func (s *UserRepoImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "find user by email")
	}
	return &user, nil
}

func (s *UserRepoImpl) UpdateProfile(ctx context.Context, id primitive.ObjectID, update *model.ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Bio != nil {
		set["bio"] = *update.Bio
	}
	if update.College != nil {
		set["education.college"] = *update.College
	}
	if update.Year != nil {
		set["education.year"] = *update.Year
	}

	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return errors.Wrap(err, "update profile")
}

func (s *UserRepoImpl) UpdateAvatar(ctx context.Context, id primitive.ObjectID, avatarURL string) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"avatar_url": avatarURL, "updated_at": time.Now()},
	})
	return errors.Wrap(err, "update avatar")
}

// AddFollowing 原子地向 actor 的关注列表添加 target 并同步递增计数。
// 过滤条件排除已关注的情况，数组与计数在同一条命令中更新，
// 因此并发的重复关注不会导致计数漂移。返回 false 表示 target 已在列表中。
func (s *UserRepoImpl) AddFollowing(ctx context.Context, actorID, targetID primitive.ObjectID) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": actorID, "following": bson.M{"$ne": targetID}},
		bson.M{
			"$addToSet": bson.M{"following": targetID},
			"$inc":      bson.M{"following_count": 1},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, errors.Wrap(err, "add following")
	}
	return res.ModifiedCount == 1, nil
}

// RemoveFollowing 原子地移除关注并递减计数，返回 false 表示 target 不在列表中
func (s *UserRepoImpl) RemoveFollowing(ctx context.Context, actorID, targetID primitive.ObjectID) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": actorID, "following": targetID},
		bson.M{
			"$pull": bson.M{"following": targetID},
			"$inc":  bson.M{"following_count": -1},
			"$set":  bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return false, errors.Wrap(err, "remove following")
	}
	return res.ModifiedCount == 1, nil
}

// AddFollower 原子地向 target 的粉丝列表添加 actor 并递增计数，
// 返回更新后的粉丝数。modified 为 false 表示 actor 已在列表中（重试自愈场景）。
func (s *UserRepoImpl) AddFollower(ctx context.Context, targetID, actorID primitive.ObjectID) (int64, bool, error) {
	var updated model.User
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": targetID, "followers": bson.M{"$ne": actorID}},
		bson.M{
			"$addToSet": bson.M{"followers": actorID},
			"$inc":      bson.M{"follower_count": 1},
			"$set":      bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return s.currentFollowerCount(ctx, targetID)
		}
		return 0, false, errors.Wrap(err, "add follower")
	}
	return updated.FollowerCount, true, nil
}

// RemoveFollower 原子地移除粉丝并递减计数，返回更新后的粉丝数
func (s *UserRepoImpl) RemoveFollower(ctx context.Context, targetID, actorID primitive.ObjectID) (int64, bool, error) {
	var updated model.User
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"_id": targetID, "followers": actorID},
		bson.M{
			"$pull": bson.M{"followers": actorID},
			"$inc":  bson.M{"follower_count": -1},
			"$set":  bson.M{"updated_at": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return s.currentFollowerCount(ctx, targetID)
		}
		return 0, false, errors.Wrap(err, "remove follower")
	}
	return updated.FollowerCount, true, nil
}

// currentFollowerCount 条件更新未命中时读取当前计数，区分用户不存在与已处于目标状态
func (s *UserRepoImpl) currentFollowerCount(ctx context.Context, targetID primitive.ObjectID) (int64, bool, error) {
	user, err := s.FindByID(ctx, targetID)
	if err != nil {
		return 0, false, err
	}
	if user == nil {
		return 0, false, errors.New("follower update target missing")
	}
	return user.FollowerCount, false, nil
}

func (s *UserRepoImpl) ListFollowersPage(ctx context.Context, id primitive.ObjectID, skip, limit int) ([]*model.User, int64, error) {
	return s.listRelationPage(ctx, id, "followers", "follower_count", skip, limit)
}

func (s *UserRepoImpl) ListFollowingPage(ctx context.Context, id primitive.ObjectID, skip, limit int) ([]*model.User, int64, error) {
	return s.listRelationPage(ctx, id, "following", "following_count", skip, limit)
}

// listRelationPage 通过 $slice 投影取出 id 数组的一页，再批量查询用户摘要。
// 返回的切片保持数组中的插入顺序。用户不存在时返回 nil 切片，
// 存在但该页为空时返回空切片。
func (s *UserRepoImpl) listRelationPage(ctx context.Context, id primitive.ObjectID, field, countField string, skip, limit int) ([]*model.User, int64, error) {
	var page struct {
		IDs   []primitive.ObjectID `bson:"ids"`
		Total int64                `bson:"total"`
	}

	err := s.col.FindOne(ctx,
		bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{
			"ids":   bson.M{"$slice": []interface{}{"$" + field, skip, limit}},
			"total": "$" + countField,
		}),
	).Decode(&page)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, 0, nil
		}
		return nil, 0, errors.Wrap(err, "page relation ids")
	}

	if len(page.IDs) == 0 {
		return []*model.User{}, page.Total, nil
	}

	cursor, err := s.col.Find(ctx,
		bson.M{"_id": bson.M{"$in": page.IDs}},
		options.Find().SetProjection(bson.M{
			"password":  0,
			"email":     0,
			"following": 0,
			"followers": 0,
		}),
	)
	if err != nil {
		return nil, 0, errors.Wrap(err, "fetch relation users")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var fetched []*model.User
	if err = cursor.All(ctx, &fetched); err != nil {
		return nil, 0, errors.Wrap(err, "decode relation users")
	}

	byID := make(map[primitive.ObjectID]*model.User, len(fetched))
	for _, u := range fetched {
		byID[u.ID] = u
	}

	users := make([]*model.User, 0, len(page.IDs))
	for _, uid := range page.IDs {
		if u, ok := byID[uid]; ok {
			users = append(users, u)
		}
	}
	return users, page.Total, nil
}

// ResyncFollowCounts 对全表执行一次计数重建，用于修复历史漂移。
// 使用聚合管道更新，计数直接取自数组长度。
func (s *UserRepoImpl) ResyncFollowCounts(ctx context.Context) (int64, error) {
	res, err := s.col.UpdateMany(ctx,
		bson.M{},
		mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				"following_count": bson.M{"$size": bson.M{"$ifNull": []interface{}{"$following", []interface{}{}}}},
				"follower_count":  bson.M{"$size": bson.M{"$ifNull": []interface{}{"$followers", []interface{}{}}}},
			}}},
		},
	)
	if err != nil {
		return 0, errors.Wrap(err, "resync follow counts")
	}
	return res.ModifiedCount, nil
}
