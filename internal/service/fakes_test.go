package service

import (
	"BrainShelf/internal/model"
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeUserRepo 内存实现，遵循与 Mongo 实现相同的条件更新语义：
// 数组变更与计数递增在同一临界区内完成。
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	s := &fakeUserRepo{users: make(map[primitive.ObjectID]*model.User)}
	for _, u := range users {
		if u.Following == nil {
			u.Following = []primitive.ObjectID{}
		}
		if u.Followers == nil {
			u.Followers = []primitive.ObjectID{}
		}
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Following = []primitive.ObjectID{}
	user.Followers = []primitive.ObjectID{}
	user.CreatedAt = time.Now()
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	clone.Following = append([]primitive.ObjectID(nil), u.Following...)
	clone.Followers = append([]primitive.ObjectID(nil), u.Followers...)
	return &clone, nil
}

func (s *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeUserRepo) UpdateProfile(_ context.Context, id primitive.ObjectID, update *model.ProfileUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errors.New("user missing")
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	if update.College != nil {
		u.Education.College = *update.College
	}
	if update.Year != nil {
		u.Education.Year = *update.Year
	}
	return nil
}

func (s *fakeUserRepo) UpdateAvatar(_ context.Context, id primitive.ObjectID, avatarURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errors.New("user missing")
	}
	u.AvatarURL = avatarURL
	return nil
}

func (s *fakeUserRepo) AddFollowing(_ context.Context, actorID, targetID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[actorID]
	if !ok {
		return false, nil
	}
	for _, id := range u.Following {
		if id == targetID {
			return false, nil
		}
	}
	u.Following = append(u.Following, targetID)
	u.FollowingCount++
	return true, nil
}

func (s *fakeUserRepo) RemoveFollowing(_ context.Context, actorID, targetID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[actorID]
	if !ok {
		return false, nil
	}
	for i, id := range u.Following {
		if id == targetID {
			u.Following = append(u.Following[:i], u.Following[i+1:]...)
			u.FollowingCount--
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserRepo) AddFollower(_ context.Context, targetID, actorID primitive.ObjectID) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[targetID]
	if !ok {
		return 0, false, errors.New("follower update target missing")
	}
	for _, id := range u.Followers {
		if id == actorID {
			return u.FollowerCount, false, nil
		}
	}
	u.Followers = append(u.Followers, actorID)
	u.FollowerCount++
	return u.FollowerCount, true, nil
}

func (s *fakeUserRepo) RemoveFollower(_ context.Context, targetID, actorID primitive.ObjectID) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[targetID]
	if !ok {
		return 0, false, errors.New("follower update target missing")
	}
	for i, id := range u.Followers {
		if id == actorID {
			u.Followers = append(u.Followers[:i], u.Followers[i+1:]...)
			u.FollowerCount--
			return u.FollowerCount, true, nil
		}
	}
	return u.FollowerCount, false, nil
}

func (s *fakeUserRepo) ListFollowersPage(ctx context.Context, id primitive.ObjectID, skip, limit int) ([]*model.User, int64, error) {
	return s.listRelationPage(ctx, id, true, skip, limit)
}

func (s *fakeUserRepo) ListFollowingPage(ctx context.Context, id primitive.ObjectID, skip, limit int) ([]*model.User, int64, error) {
	return s.listRelationPage(ctx, id, false, skip, limit)
}

func (s *fakeUserRepo) listRelationPage(_ context.Context, id primitive.ObjectID, followers bool, skip, limit int) ([]*model.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, 0, nil
	}

	ids := u.Following
	total := u.FollowingCount
	if followers {
		ids = u.Followers
		total = u.FollowerCount
	}

	if skip >= len(ids) {
		return []*model.User{}, total, nil
	}
	end := skip + limit
	if end > len(ids) {
		end = len(ids)
	}

	users := make([]*model.User, 0, end-skip)
	for _, uid := range ids[skip:end] {
		if other, ok := s.users[uid]; ok {
			clone := *other
			users = append(users, &clone)
		}
	}
	return users, total, nil
}

func (s *fakeUserRepo) ResyncFollowCounts(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var modified int64
	for _, u := range s.users {
		following := int64(len(u.Following))
		followers := int64(len(u.Followers))
		if u.FollowingCount != following || u.FollowerCount != followers {
			u.FollowingCount = following
			u.FollowerCount = followers
			modified++
		}
	}
	return modified, nil
}

// fakeProjectRepo 内存实现，UpdateRatings 遵循版本号条件写语义。
// conflicts 大于零时前若干次写入模拟并发冲突：版本号被推进且写入未命中。
type fakeProjectRepo struct {
	mu             sync.Mutex
	projects       map[primitive.ObjectID]*model.Project
	conflicts      int
	updateAttempts int
}

func newFakeProjectRepo(projects ...*model.Project) *fakeProjectRepo {
	s := &fakeProjectRepo{projects: make(map[primitive.ObjectID]*model.Project)}
	for _, p := range projects {
		if p.Ratings == nil {
			p.Ratings = []model.Rating{}
		}
		s.projects[p.ID] = p
	}
	return s
}

func (s *fakeProjectRepo) Create(_ context.Context, project *model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if project.ID.IsZero() {
		project.ID = primitive.NewObjectID()
	}
	if project.Ratings == nil {
		project.Ratings = []model.Rating{}
	}
	project.CreatedAt = time.Now()
	s.projects[project.ID] = project
	return nil
}

func (s *fakeProjectRepo) FindByID(_ context.Context, id primitive.ObjectID) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	clone.Ratings = append([]model.Rating(nil), p.Ratings...)
	return &clone, nil
}

func (s *fakeProjectRepo) FindAll(_ context.Context, limit, offset int) ([]*model.Project, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*model.Project, 0, len(s.projects))
	for _, p := range s.projects {
		clone := *p
		all = append(all, &clone)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []*model.Project{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *fakeProjectRepo) FindByOwner(_ context.Context, owner string) ([]*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []*model.Project
	for _, p := range s.projects {
		if p.Owner == owner {
			clone := *p
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (s *fakeProjectRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
	return nil
}

func (s *fakeProjectRepo) IncViews(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.projects[id]; ok {
		p.Views++
	}
	return nil
}

func (s *fakeProjectRepo) UpdateRatings(_ context.Context, id primitive.ObjectID, version int64, ratings []model.Rating, average float64, total int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateAttempts++

	p, ok := s.projects[id]
	if !ok {
		return false, nil
	}
	if s.conflicts > 0 {
		s.conflicts--
		p.Version++
		return false, nil
	}
	if p.Version != version {
		return false, nil
	}

	p.Ratings = append([]model.Rating(nil), ratings...)
	p.AverageRating = average
	p.TotalRatings = total
	p.Version++
	p.UpdatedAt = time.Now()
	return true, nil
}
