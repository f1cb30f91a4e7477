package wire

import (
	"BrainShelf/internal/api"
	"BrainShelf/internal/api/config"
	"BrainShelf/internal/api/handler"
	"BrainShelf/internal/job"
	"BrainShelf/internal/pkg/cron"
	"BrainShelf/internal/pkg/kafka"
	"BrainShelf/internal/repository"
	"BrainShelf/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router    *gin.Engine
	DB        *mongo.Database
	CronMgr   *cron.Manager
	Publisher kafka.Publisher
}

func BuildApplication(db *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	publisher, err := kafka.NewPublisher(cfg.Kafka)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepo(db)
	projectRepo := repository.NewProjectRepo(db)

	userService := service.NewUserService(userRepo)
	userFollowService := service.NewUserFollowService(userRepo, publisher)
	projectService := service.NewProjectService(projectRepo, userRepo)
	ratingService := service.NewRatingService(projectRepo, publisher)

	handlers := &api.HandlersGroup{
		UserHandler:       handler.NewUserHandler(userService),
		UserFollowHandler: handler.NewUserFollowHandler(userFollowService),
		ProjectHandler:    handler.NewProjectHandler(projectService),
		RatingHandler:     handler.NewRatingHandler(ratingService),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(job.NewFollowAuditJob(userRepo))

	return &ApplicationContainer{
		Router:    router,
		DB:        db,
		CronMgr:   cronMgr,
		Publisher: publisher,
	}, nil
}
