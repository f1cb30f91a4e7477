package dto

import "time"

type CreateProjectDTO struct {
	Name        string   `form:"name" validate:"required,max=100"`
	Title       string   `form:"title" validate:"omitempty,max=200"`
	Description string   `form:"description" validate:"required,max=2000"`
	Tags        []string `form:"tags" validate:"omitempty,dive,max=30"`
}

type ProjectDTO struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Title         string    `json:"title,omitempty"`
	Description   string    `json:"description"`
	Image         string    `json:"image"`
	Owner         string    `json:"owner"`
	Tags          []string  `json:"tags"`
	Views         int64     `json:"views"`
	Likes         int64     `json:"likes"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int64     `json:"total_ratings"`
	CreatedAt     time.Time `json:"created_at"`
}

type ProjectListDTO struct {
	Projects []*ProjectDTO `json:"projects"`
	Total    int64         `json:"total"`
}
