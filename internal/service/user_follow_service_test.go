package service

import (
	"context"
	"testing"

	"BrainShelf/internal/model"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// flakyUserRepo 让粉丝侧写入失败若干次，模拟两侧写入之间的部分失败
type flakyUserRepo struct {
	*fakeUserRepo
	addFollowerFailures    int
	removeFollowerFailures int
}

func (s *flakyUserRepo) AddFollower(ctx context.Context, targetID, actorID primitive.ObjectID) (int64, bool, error) {
	if s.addFollowerFailures > 0 {
		s.addFollowerFailures--
		return 0, false, errors.New("write timeout")
	}
	return s.fakeUserRepo.AddFollower(ctx, targetID, actorID)
}

func (s *flakyUserRepo) RemoveFollower(ctx context.Context, targetID, actorID primitive.ObjectID) (int64, bool, error) {
	if s.removeFollowerFailures > 0 {
		s.removeFollowerFailures--
		return 0, false, errors.New("write timeout")
	}
	return s.fakeUserRepo.RemoveFollower(ctx, targetID, actorID)
}

func newTestUser(name string) *model.User {
	return &model.User{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Username: name,
		Email:    name + "@example.com",
	}
}

// 每次关注/取关之后，冗余计数必须等于对应数组的长度
func assertCountsMatchArrays(t *testing.T, repo *fakeUserRepo, ids ...primitive.ObjectID) {
	t.Helper()
	for _, id := range ids {
		u, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, int64(len(u.Following)), u.FollowingCount, "following_count drifted for %s", u.Username)
		assert.Equal(t, int64(len(u.Followers)), u.FollowerCount, "follower_count drifted for %s", u.Username)
	}
}

func TestFollowUpdatesBothSides(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	repo := newFakeUserRepo(alice, bob)
	svc := NewUserFollowService(repo, nil)

	result, err := svc.Follow(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, result.IsFollowing)
	assert.Equal(t, int64(1), result.FollowersCount)

	gotAlice, _ := repo.FindByID(context.Background(), alice.ID)
	gotBob, _ := repo.FindByID(context.Background(), bob.ID)
	assert.Equal(t, []primitive.ObjectID{bob.ID}, gotAlice.Following)
	assert.Equal(t, []primitive.ObjectID{alice.ID}, gotBob.Followers)
	assert.Empty(t, gotAlice.Followers)
	assert.Empty(t, gotBob.Following)

	assertCountsMatchArrays(t, repo, alice.ID, bob.ID)
}

func TestFollowSelfRejected(t *testing.T) {
	alice := newTestUser("alice")
	repo := newFakeUserRepo(alice)
	svc := NewUserFollowService(repo, nil)

	_, err := svc.Follow(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrUserFollowSelf)
}

func TestFollowDuplicateRejected(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	repo := newFakeUserRepo(alice, bob)
	svc := NewUserFollowService(repo, nil)

	_, err := svc.Follow(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)

	_, err = svc.Follow(context.Background(), alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrUserFollowExist)

	// 重复请求不得造成计数漂移
	gotBob, _ := repo.FindByID(context.Background(), bob.ID)
	assert.Equal(t, int64(1), gotBob.FollowerCount)
	assertCountsMatchArrays(t, repo, alice.ID, bob.ID)
}

func TestFollowUnknownUsers(t *testing.T) {
	alice := newTestUser("alice")
	repo := newFakeUserRepo(alice)
	svc := NewUserFollowService(repo, nil)

	_, err := svc.Follow(context.Background(), alice.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Follow(context.Background(), primitive.NewObjectID(), alice.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUnfollowRemovesRelation(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	repo := newFakeUserRepo(alice, bob)
	svc := NewUserFollowService(repo, nil)

	_, err := svc.Follow(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)

	result, err := svc.Unfollow(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, result.IsFollowing)
	assert.Equal(t, int64(0), result.FollowersCount)

	gotAlice, _ := repo.FindByID(context.Background(), alice.ID)
	gotBob, _ := repo.FindByID(context.Background(), bob.ID)
	assert.Empty(t, gotAlice.Following)
	assert.Empty(t, gotBob.Followers)
	assertCountsMatchArrays(t, repo, alice.ID, bob.ID)
}

func TestUnfollowNotFollowing(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	repo := newFakeUserRepo(alice, bob)
	svc := NewUserFollowService(repo, nil)

	_, err := svc.Unfollow(context.Background(), alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrUserFollowMissing)
	assertCountsMatchArrays(t, repo, alice.ID, bob.ID)
}

func TestFollowRetryHealsFollowerSide(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	base := newFakeUserRepo(alice, bob)
	repo := &flakyUserRepo{fakeUserRepo: base, addFollowerFailures: 1}
	svc := NewUserFollowService(repo, nil)
	ctx := context.Background()

	// 第一侧提交后粉丝侧失败，整个操作按失败上报
	_, err := svc.Follow(ctx, alice.ID, bob.ID)
	require.Error(t, err)

	gotAlice, _ := base.FindByID(ctx, alice.ID)
	gotBob, _ := base.FindByID(ctx, bob.ID)
	assert.Equal(t, []primitive.ObjectID{bob.ID}, gotAlice.Following)
	assert.Empty(t, gotBob.Followers)

	// 重试命中已关注分支，但必须补齐粉丝侧
	_, err = svc.Follow(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrUserFollowExist)

	gotBob, _ = base.FindByID(ctx, bob.ID)
	assert.Equal(t, []primitive.ObjectID{alice.ID}, gotBob.Followers)
	assert.Equal(t, int64(1), gotBob.FollowerCount)
	assertCountsMatchArrays(t, base, alice.ID, bob.ID)

	status, err := svc.GetFollowStatus(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, status.IsFollowing)
}

func TestUnfollowRetryHealsFollowerSide(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	base := newFakeUserRepo(alice, bob)
	repo := &flakyUserRepo{fakeUserRepo: base}
	svc := NewUserFollowService(repo, nil)
	ctx := context.Background()

	_, err := svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// 取关的第一侧提交后粉丝侧失败
	repo.removeFollowerFailures = 1
	_, err = svc.Unfollow(ctx, alice.ID, bob.ID)
	require.Error(t, err)

	gotBob, _ := base.FindByID(ctx, bob.ID)
	assert.Equal(t, []primitive.ObjectID{alice.ID}, gotBob.Followers)

	// 重试命中未关注分支，残留的粉丝记录被清除
	_, err = svc.Unfollow(ctx, alice.ID, bob.ID)
	assert.ErrorIs(t, err, ErrUserFollowMissing)

	gotBob, _ = base.FindByID(ctx, bob.ID)
	assert.Empty(t, gotBob.Followers)
	assert.Equal(t, int64(0), gotBob.FollowerCount)
	assertCountsMatchArrays(t, base, alice.ID, bob.ID)
}

func TestFollowGraphStaysConsistent(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	carol := newTestUser("carol")
	repo := newFakeUserRepo(alice, bob, carol)
	svc := NewUserFollowService(repo, nil)
	ctx := context.Background()

	_, err := svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Follow(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	_, err = svc.Follow(ctx, bob.ID, carol.ID)
	require.NoError(t, err)
	_, err = svc.Follow(ctx, carol.ID, alice.ID)
	require.NoError(t, err)
	_, err = svc.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	gotCarol, _ := repo.FindByID(ctx, carol.ID)
	assert.Equal(t, int64(2), gotCarol.FollowerCount)
	assert.Equal(t, int64(1), gotCarol.FollowingCount)
	assertCountsMatchArrays(t, repo, alice.ID, bob.ID, carol.ID)
}

func TestGetFollowStatus(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	repo := newFakeUserRepo(alice, bob)
	svc := NewUserFollowService(repo, nil)
	ctx := context.Background()

	status, err := svc.GetFollowStatus(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, status.IsFollowing)

	_, err = svc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	status, err = svc.GetFollowStatus(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, status.IsFollowing)

	// 关注方向是有向的
	status, err = svc.GetFollowStatus(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, status.IsFollowing)

	// target 不存在时状态查询保持宽容
	status, err = svc.GetFollowStatus(ctx, alice.ID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.False(t, status.IsFollowing)

	_, err = svc.GetFollowStatus(ctx, primitive.NewObjectID(), bob.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetFollowersPagination(t *testing.T) {
	target := newTestUser("target")
	followers := make([]*model.User, 5)
	users := []*model.User{target}
	for i := range followers {
		followers[i] = newTestUser("follower" + string(rune('a'+i)))
		users = append(users, followers[i])
	}
	repo := newFakeUserRepo(users...)
	svc := NewUserFollowService(repo, nil)
	ctx := context.Background()

	for _, f := range followers {
		_, err := svc.Follow(ctx, f.ID, target.ID)
		require.NoError(t, err)
	}

	page1, err := svc.GetFollowers(ctx, target.ID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page1.Items, 2)
	assert.Equal(t, int64(5), page1.Total)
	assert.Equal(t, 1, page1.CurrentPage)
	assert.Equal(t, int64(3), page1.TotalPages)
	// 列表保持关注发生的先后顺序
	assert.Equal(t, followers[0].Username, page1.Items[0].Username)
	assert.Equal(t, followers[1].Username, page1.Items[1].Username)

	page3, err := svc.GetFollowers(ctx, target.ID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page3.Items, 1)

	// 超出范围的页返回空列表而非错误
	page4, err := svc.GetFollowers(ctx, target.ID, 4, 2)
	require.NoError(t, err)
	assert.Empty(t, page4.Items)
	assert.Equal(t, int64(5), page4.Total)

	_, err = svc.GetFollowers(ctx, primitive.NewObjectID(), 1, 2)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetFollowingPagination(t *testing.T) {
	actor := newTestUser("actor")
	targets := make([]*model.User, 3)
	users := []*model.User{actor}
	for i := range targets {
		targets[i] = newTestUser("target" + string(rune('a'+i)))
		users = append(users, targets[i])
	}
	repo := newFakeUserRepo(users...)
	svc := NewUserFollowService(repo, nil)
	ctx := context.Background()

	for _, target := range targets {
		_, err := svc.Follow(ctx, actor.ID, target.ID)
		require.NoError(t, err)
	}

	list, err := svc.GetFollowing(ctx, actor.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)
	assert.Equal(t, int64(3), list.Total)
	assert.Equal(t, int64(1), list.TotalPages)

	// 摘要不携带凭据字段，ID 为十六进制形式
	for i, item := range list.Items {
		assert.Equal(t, targets[i].ID.Hex(), item.ID)
		assert.Equal(t, targets[i].Username, item.Username)
	}
}

func TestResyncFollowCountsRepairsDrift(t *testing.T) {
	alice := newTestUser("alice")
	bob := newTestUser("bob")
	alice.Following = []primitive.ObjectID{bob.ID}
	alice.FollowingCount = 5 // 人为制造漂移
	bob.Followers = []primitive.ObjectID{alice.ID}
	bob.FollowerCount = 0
	repo := newFakeUserRepo(alice, bob)

	modified, err := repo.ResyncFollowCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), modified)
	assertCountsMatchArrays(t, repo, alice.ID, bob.ID)
}
