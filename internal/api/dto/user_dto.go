package dto

import "time"

type RegisterDTO struct {
	Name     string `json:"name" validate:"required,max=50"`
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=64"`
}

type CredentialDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResultDTO struct {
	Token string   `json:"token"`
	User  *UserDTO `json:"user"`
}

type UserDTO struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Username       string     `json:"username"`
	Email          string     `json:"email,omitempty"`
	AvatarURL      string     `json:"avatar_url,omitempty"`
	Bio            string     `json:"bio,omitempty"`
	FollowerCount  int64      `json:"follower_count"`
	FollowingCount int64      `json:"following_count"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

type UpdateProfileDTO struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=50"`
	Bio     *string `json:"bio,omitempty" validate:"omitempty,max=200"`
	College *string `json:"college,omitempty" validate:"omitempty,max=100"`
	Year    *int    `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
}

// UserSimpleDTO 关注列表中的用户摘要，绝不携带凭据字段
type UserSimpleDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Bio       string `json:"bio,omitempty"`
}
