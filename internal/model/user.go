package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	AvatarURL string             `bson:"avatar_url,omitempty" json:"avatar_url"`
	Bio       string             `bson:"bio,omitempty" json:"bio"`
	Education Education          `bson:"education,omitempty" json:"education"`

	// 关注关系：数组为权威数据，计数为同步维护的冗余字段
	Following      []primitive.ObjectID `bson:"following" json:"-"`
	Followers      []primitive.ObjectID `bson:"followers" json:"-"`
	FollowingCount int64                `bson:"following_count" json:"following_count"`
	FollowerCount  int64                `bson:"follower_count" json:"follower_count"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (User) CollectionName() string {
	return "users"
}

type Education struct {
	College string `bson:"college,omitempty" json:"college,omitempty"`
	Year    int    `bson:"year,omitempty" json:"year,omitempty"`
}

// ProfileUpdate 个人资料的部分更新，nil 字段不修改
type ProfileUpdate struct {
	Name    *string
	Bio     *string
	College *string
	Year    *int
}

// IsFollowing 判断 targetID 是否在关注列表中
func (u *User) IsFollowing(targetID primitive.ObjectID) bool {
	for _, id := range u.Following {
		if id == targetID {
			return true
		}
	}
	return false
}
