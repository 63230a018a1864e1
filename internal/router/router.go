package router

import (
	"log/slog"
	"time"

	"DrinkBuddy/internal/handler"
	"DrinkBuddy/internal/middleware"
	"DrinkBuddy/internal/pkg"
	"DrinkBuddy/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps 路由需要的服务
type Deps struct {
	DB           *gorm.DB
	Logger       *slog.Logger
	CORSOrigins  []string
	Auth         *service.AuthService
	Users        *service.UserService
	Meetups      *service.MeetupService
	Participants *service.ParticipantService
	Comments     *service.CommentService
	Feed         *service.FeedService
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", pkg.RequestIDHeader},
		ExposeHeaders: []string{pkg.RequestIDHeader},
		MaxAge:        24 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func InitRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.AccessLog(d.Logger), gin.Recovery(), cors.New(corsConfig(d.CORSOrigins)))

	health := handler.NewHealthHandler(d.DB)
	user := handler.NewUserHandler(d.Users, d.Auth)
	meetup := handler.NewMeetupHandler(d.Meetups, d.Feed)
	participant := handler.NewParticipantHandler(d.Participants)
	comment := handler.NewCommentHandler(d.Comments)

	requireAuth := middleware.AuthMiddleware(d.Auth)
	optionalAuth := middleware.OptionalAuth(d.Auth)

	api := r.Group("/api")
	api.GET("/health", health.Health)

	// 用户相关接口
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", user.Register)
		authGroup.POST("/login", user.Login)
		authGroup.POST("/logout", requireAuth, user.Logout)
		authGroup.GET("/me", requireAuth, user.Me)
	}

	// 聚会相关接口
	meetupGroup := api.Group("/meetups")
	{
		meetupGroup.GET("", optionalAuth, meetup.List)
		meetupGroup.POST("", requireAuth, meetup.Create)
		meetupGroup.GET("/:id", optionalAuth, meetup.Get)
		meetupGroup.POST("/:id/close", requireAuth, meetup.Close)
		meetupGroup.POST("/:id/cancel", requireAuth, meetup.Cancel)

		meetupGroup.GET("/:id/participants", participant.List)
		meetupGroup.POST("/:id/join", requireAuth, participant.Join)
		meetupGroup.POST("/:id/leave", requireAuth, participant.Leave)
		meetupGroup.DELETE("/:id/participants/:userId", requireAuth, participant.Kick)
	}

	// 评论相关接口
	commentGroup := api.Group("/comments")
	{
		commentGroup.GET("/meetup/:meetupId", comment.List)
		commentGroup.POST("", requireAuth, comment.Create)
		commentGroup.PATCH("/:commentId", requireAuth, comment.Edit)
		commentGroup.DELETE("/:commentId", requireAuth, comment.Delete)
	}

	return r
}
