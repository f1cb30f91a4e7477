package api

import "BrainShelf/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	UserHandler       *handler.UserHandler
	UserFollowHandler *handler.UserFollowHandler
	ProjectHandler    *handler.ProjectHandler
	RatingHandler     *handler.RatingHandler
}
