package service

import (
	"BrainShelf/internal/api/dto"
	"BrainShelf/internal/model"
	"BrainShelf/internal/pkg/kafka"
	"BrainShelf/internal/pkg/util"
	"BrainShelf/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/jinzhu/copier"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserFollowService interface {
	Follow(ctx context.Context, actorID, targetID primitive.ObjectID) (*dto.FollowResultDTO, error)
	Unfollow(ctx context.Context, actorID, targetID primitive.ObjectID) (*dto.FollowResultDTO, error)
	GetFollowStatus(ctx context.Context, actorID, targetID primitive.ObjectID) (*dto.FollowStatusDTO, error)
	GetFollowers(ctx context.Context, userID primitive.ObjectID, page, pageSize int) (*dto.FollowListDTO, error)
	GetFollowing(ctx context.Context, userID primitive.ObjectID, page, pageSize int) (*dto.FollowListDTO, error)
}

type UserFollowServiceImpl struct {
	userRepo  repository.UserRepo
	publisher kafka.Publisher
}

func NewUserFollowService(userRepo repository.UserRepo, publisher kafka.Publisher) UserFollowService {
	return &UserFollowServiceImpl{userRepo: userRepo, publisher: publisher}
}

// Follow 建立 actor -> target 的关注关系。
// 两侧各为一条原子命令：数组变更与计数递增同时生效。
// 第一侧写入失败或未命中时整个操作报错且不会触碰第二侧；
// 第二侧失败会以服务端错误上报，客户端重试是安全的，
// 条件更新会让已生效的半边退化为空操作。
func (s *UserFollowServiceImpl) Follow(ctx context.Context, actorID, targetID primitive.ObjectID) (*dto.FollowResultDTO, error) {
	if actorID == targetID {
		return nil, ErrUserFollowSelf
	}

	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrUserNotFound
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	if actor.IsFollowing(targetID) {
		// 已关注时仍补齐粉丝侧：第二侧写入失败的半提交请求
		// 重试会落到这个分支，幂等写把两侧收敛到一致
		s.healFollowerAdd(ctx, targetID, actorID)
		return nil, ErrUserFollowExist
	}

	modified, err := s.userRepo.AddFollowing(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if !modified {
		// 与并发的同一请求竞争失败，对方已先提交
		s.healFollowerAdd(ctx, targetID, actorID)
		return nil, ErrUserFollowExist
	}

	count, _, err := s.userRepo.AddFollower(ctx, targetID, actorID)
	if err != nil {
		log.ErrorContext(ctx, "follow: follower side write failed after following side committed",
			"actor", actorID.Hex(), "target", targetID.Hex(), "err", err)
		return nil, err
	}

	s.publishEvent(ctx, kafka.EventUserFollowed, actorID, targetID)

	return &dto.FollowResultDTO{IsFollowing: true, FollowersCount: count}, nil
}

// Unfollow 解除关注关系，语义与 Follow 对称
func (s *UserFollowServiceImpl) Unfollow(ctx context.Context, actorID, targetID primitive.ObjectID) (*dto.FollowResultDTO, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrUserNotFound
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	if !actor.IsFollowing(targetID) {
		// 未关注时仍尝试移除粉丝侧残留，收敛半提交的取关
		s.healFollowerRemove(ctx, targetID, actorID)
		return nil, ErrUserFollowMissing
	}

	modified, err := s.userRepo.RemoveFollowing(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}
	if !modified {
		s.healFollowerRemove(ctx, targetID, actorID)
		return nil, ErrUserFollowMissing
	}

	count, _, err := s.userRepo.RemoveFollower(ctx, targetID, actorID)
	if err != nil {
		log.ErrorContext(ctx, "unfollow: follower side write failed after following side committed",
			"actor", actorID.Hex(), "target", targetID.Hex(), "err", err)
		return nil, err
	}

	s.publishEvent(ctx, kafka.EventUserUnfollowed, actorID, targetID)

	return &dto.FollowResultDTO{IsFollowing: false, FollowersCount: count}, nil
}

// GetFollowStatus 查询 actor 是否关注了 target。
// target 不存在时返回 false 而非报错，状态查询保持只读宽容。
func (s *UserFollowServiceImpl) GetFollowStatus(ctx context.Context, actorID, targetID primitive.ObjectID) (*dto.FollowStatusDTO, error) {
	actor, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrUserNotFound
	}

	return &dto.FollowStatusDTO{IsFollowing: actor.IsFollowing(targetID)}, nil
}

func (s *UserFollowServiceImpl) GetFollowers(ctx context.Context, userID primitive.ObjectID, page, pageSize int) (*dto.FollowListDTO, error) {
	return s.getRelationList(ctx, userID, page, pageSize, s.userRepo.ListFollowersPage)
}

func (s *UserFollowServiceImpl) GetFollowing(ctx context.Context, userID primitive.ObjectID, page, pageSize int) (*dto.FollowListDTO, error) {
	return s.getRelationList(ctx, userID, page, pageSize, s.userRepo.ListFollowingPage)
}

type fetchRelationFunc func(ctx context.Context, id primitive.ObjectID, skip, limit int) ([]*model.User, int64, error)

func (s *UserFollowServiceImpl) getRelationList(
	ctx context.Context,
	userID primitive.ObjectID,
	page, pageSize int,
	fetch fetchRelationFunc,
) (*dto.FollowListDTO, error) {
	skip := (page - 1) * pageSize

	users, total, err := fetch(ctx, userID, skip, pageSize)
	if err != nil {
		return nil, err
	}
	if users == nil {
		return nil, ErrUserNotFound
	}

	items := make([]*dto.UserSimpleDTO, 0, len(users))
	for _, u := range users {
		item := &dto.UserSimpleDTO{}
		if err = copier.Copy(item, u); err != nil {
			return nil, err
		}
		item.ID = u.ID.Hex()
		items = append(items, item)
	}

	return &dto.FollowListDTO{
		Items:       items,
		Total:       total,
		CurrentPage: page,
		TotalPages:  util.CeilDiv(total, pageSize),
	}, nil
}

// healFollowerAdd 幂等补齐 target 的粉丝记录。
// 关注的两侧不在同一事务中，第一侧提交后第二侧失败时粉丝数组会缺一条，
// 条件更新保证补写对已一致的状态是空操作。
func (s *UserFollowServiceImpl) healFollowerAdd(ctx context.Context, targetID, actorID primitive.ObjectID) {
	_, modified, err := s.userRepo.AddFollower(ctx, targetID, actorID)
	if err != nil {
		log.WarnContext(ctx, "follow: heal follower side failed",
			"actor", actorID.Hex(), "target", targetID.Hex(), "err", err)
		return
	}
	if modified {
		log.InfoContext(ctx, "follow: healed missing follower entry",
			"actor", actorID.Hex(), "target", targetID.Hex())
	}
}

// healFollowerRemove 幂等移除 target 粉丝数组中的残留记录
func (s *UserFollowServiceImpl) healFollowerRemove(ctx context.Context, targetID, actorID primitive.ObjectID) {
	_, modified, err := s.userRepo.RemoveFollower(ctx, targetID, actorID)
	if err != nil {
		log.WarnContext(ctx, "unfollow: heal follower side failed",
			"actor", actorID.Hex(), "target", targetID.Hex(), "err", err)
		return
	}
	if modified {
		log.InfoContext(ctx, "unfollow: healed stale follower entry",
			"actor", actorID.Hex(), "target", targetID.Hex())
	}
}

func (s *UserFollowServiceImpl) publishEvent(ctx context.Context, eventType string, actorID, targetID primitive.ObjectID) {
	if s.publisher == nil {
		return
	}
	// 事件发布失败不影响请求结果
	_ = s.publisher.Publish(ctx, &kafka.Event{
		Type:       eventType,
		ActorID:    actorID.Hex(),
		TargetID:   targetID.Hex(),
		OccurredAt: time.Now(),
	})
}
