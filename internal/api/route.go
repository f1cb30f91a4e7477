package api

import (
	"BrainShelf/internal/api/middleware"
	"BrainShelf/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			// 无需登录即可访问的接口
			userGroup.POST("/register", group.UserHandler.Register)
			userGroup.POST("/login", group.UserHandler.Login)
			userGroup.GET("/:username/profile", group.UserHandler.GetProfile)

			authGroup := userGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/logout", group.UserHandler.Logout)
				authGroup.PUT("/profile", group.UserHandler.UpdateProfile)
				authGroup.POST("/avatar", group.UserHandler.UploadAvatar)
			}
		}

		userFollowGroup := apiGroup.Group("/user-relation")
		{
			userFollowGroup.GET("/:user_id/followers", group.UserFollowHandler.GetFollowers)
			userFollowGroup.GET("/:user_id/followings", group.UserFollowHandler.GetFollowings)

			authGroup := userFollowGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.GET("/isfollow/:target_id", group.UserFollowHandler.GetFollowStatus)
				authGroup.POST("/follow/:target_id", group.UserFollowHandler.Follow)
				authGroup.DELETE("/follow/:target_id", group.UserFollowHandler.Unfollow)
			}
		}

		projectGroup := apiGroup.Group("/projects")
		{
			projectGroup.GET("", group.ProjectHandler.GetProjects)
			projectGroup.GET("/detail/:project_id", group.ProjectHandler.GetProject)
			projectGroup.GET("/list/:user_id", group.ProjectHandler.GetUserProjects)
			projectGroup.GET("/:project_id/ratings", group.RatingHandler.GetPublicRatings)

			authGroup := projectGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("", group.ProjectHandler.CreateProject)
				authGroup.DELETE("/:project_id", group.ProjectHandler.DeleteProject)
				authGroup.POST("/:project_id/rate", group.RatingHandler.RateProject)
				authGroup.GET("/:project_id/rating", group.RatingHandler.GetUserRating)
			}
		}
	}

	return r
}
