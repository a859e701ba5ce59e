package server

import (
	"context"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/pulseboard/backend/internal/config"
	"github.com/pulseboard/backend/internal/middleware"

	commentHttp "github.com/pulseboard/backend/internal/modules/comment/delivery/http"
	commentRepo "github.com/pulseboard/backend/internal/modules/comment/repository"
	commentService "github.com/pulseboard/backend/internal/modules/comment/service"

	karmaHttp "github.com/pulseboard/backend/internal/modules/karma/delivery/http"
	karmaRepo "github.com/pulseboard/backend/internal/modules/karma/repository"
	karmaService "github.com/pulseboard/backend/internal/modules/karma/service"

	likeHttp "github.com/pulseboard/backend/internal/modules/like/delivery/http"
	likeRepo "github.com/pulseboard/backend/internal/modules/like/repository"
	likeService "github.com/pulseboard/backend/internal/modules/like/service"

	postHttp "github.com/pulseboard/backend/internal/modules/post/delivery/http"
	postRepo "github.com/pulseboard/backend/internal/modules/post/repository"
	postService "github.com/pulseboard/backend/internal/modules/post/service"

	userHttp "github.com/pulseboard/backend/internal/modules/user/delivery/http"
	userRepo "github.com/pulseboard/backend/internal/modules/user/repository"
	userService "github.com/pulseboard/backend/internal/modules/user/service"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	cron        *cron.Cron
}

func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	usersRepo := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(usersRepo, cfg.JWTSecret, cfg.JWTTTL)
	authHandler := userHttp.NewAuthHandler(authSvc, int(cfg.JWTTTL.Seconds()))

	likesRepo := likeRepo.NewLikeRepository(db)
	likeSvc := likeService.NewLikeService(likesRepo)
	likeHandler := likeHttp.NewLikeHandler(likeSvc)

	postsRepo := postRepo.NewPostRepository(db)
	commentsRepo := commentRepo.NewCommentRepository(db)

	commentSvc := commentService.NewCommentService(commentsRepo, postsRepo, likesRepo)
	commentHandler := commentHttp.NewCommentHandler(commentSvc)

	postSvc := postService.NewPostService(postsRepo, likesRepo, commentSvc, postService.Options{
		RedisClient:  redisClient,
		PostCooldown: cfg.PostCooldown,
	})
	postHandler := postHttp.NewPostHandler(postSvc)

	karmasRepo := karmaRepo.NewKarmaRepository(db)
	karmaSvc := karmaService.NewKarmaService(karmasRepo, redisClient, cfg.KarmaWindow, cfg.LeaderboardLimit)
	leaderboardHandler := karmaHttp.NewLeaderboardHandler(karmaSvc)

	// Hourly eviction keeps the karma event table bounded by window activity.
	cr := cron.New()
	_, err := cr.AddFunc("@hourly", func() {
		if err := karmaSvc.EvictExpired(context.Background()); err != nil {
			logrus.WithError(err).Error("karma eviction failed")
		}
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to schedule karma eviction")
	}
	cr.Start()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	setupCORS(router, cfg.AllowedOrigins)

	auth := middleware.NewAuthMiddleware(cfg.JWTSecret)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register/", authHandler.Register)
		authGroup.POST("/login/", authHandler.Login)
		authGroup.POST("/logout/", authHandler.Logout)
		authGroup.GET("/me/", auth.OptionalAuth(), authHandler.Me)
	}

	// Reads are public; is_liked personalizes when an identity is present.
	public := api.Group("", auth.OptionalAuth())
	{
		public.GET("/posts/", postHandler.ListPosts)
		public.GET("/posts/:id/", postHandler.GetPost)
		public.GET("/leaderboard/", leaderboardHandler.GetLeaderboard)
	}

	protected := api.Group("", auth.RequireAuth())
	{
		protected.POST("/posts/", postHandler.CreatePost)
		protected.POST("/posts/:id/like/", likeHandler.LikePost)
		protected.POST("/posts/:id/unlike/", likeHandler.UnlikePost)
		protected.POST("/comments/", commentHandler.CreateComment)
		protected.POST("/comments/:id/like/", likeHandler.LikeComment)
		protected.POST("/comments/:id/unlike/", likeHandler.UnlikeComment)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		cron:        cr,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Engine exposes the router for httptest-driven tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
