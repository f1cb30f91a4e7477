package dto

// FollowResultDTO 关注/取关操作的结果
type FollowResultDTO struct {
	IsFollowing    bool  `json:"is_following"`
	FollowersCount int64 `json:"followers_count"`
}

// FollowStatusDTO 关注状态查询结果
type FollowStatusDTO struct {
	IsFollowing bool `json:"is_following"`
}

// FollowListDTO 分页的关注/粉丝列表
type FollowListDTO struct {
	Items       []*UserSimpleDTO `json:"items"`
	Total       int64            `json:"total"`
	CurrentPage int              `json:"current_page"`
	TotalPages  int64            `json:"total_pages"`
}
