package dto

// RateDTO 评分请求体
type RateDTO struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

// RatingResultDTO 评分写入后的聚合结果
type RatingResultDTO struct {
	UserRating    int     `json:"user_rating"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int64   `json:"total_ratings"`
}

// UserRatingDTO 当前用户的评分与项目聚合值
type UserRatingDTO struct {
	UserRating    int     `json:"user_rating"`
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int64   `json:"total_ratings"`
	HasRated      bool    `json:"has_rated"`
}

// PublicRatingDTO 无需登录即可读取的聚合值
type PublicRatingDTO struct {
	AverageRating float64 `json:"average_rating"`
	TotalRatings  int64   `json:"total_ratings"`
}
