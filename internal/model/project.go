package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Title       string             `bson:"title,omitempty" json:"title"`
	Description string             `bson:"description" json:"description"`
	Image       string             `bson:"image" json:"image"`
	Owner       string             `bson:"owner" json:"owner"`
	Tags        []string           `bson:"tags" json:"tags"`
	Views       int64              `bson:"views" json:"views"`
	Likes       int64              `bson:"likes" json:"likes"`

	// 评分：ratings 为权威数据，average_rating / total_ratings 为派生字段，
	// 与 ratings 在同一次写入中更新
	Ratings       []Rating `bson:"ratings" json:"-"`
	AverageRating float64  `bson:"average_rating" json:"average_rating"`
	TotalRatings  int64    `bson:"total_ratings" json:"total_ratings"`

	// Version 乐观锁版本号，每次评分写入时递增
	Version int64 `bson:"version" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (Project) CollectionName() string {
	return "projects"
}

type Rating struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Value     int                `bson:"value" json:"value"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// FindRating 按评分人查找评分，未找到返回 -1
func (p *Project) FindRating(userID primitive.ObjectID) int {
	for i, r := range p.Ratings {
		if r.UserID == userID {
			return i
		}
	}
	return -1
}
