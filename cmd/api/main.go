package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"picshare/internal/config"
	"picshare/internal/database"
	"picshare/internal/middleware"
	"picshare/internal/modules/auth"
	"picshare/internal/modules/feed"
	jwtsvc "picshare/internal/pkg/jwt"
	"picshare/internal/pkg/logger"
	"picshare/internal/repository"
	"picshare/internal/storage"
)

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	applog := logger.Init(cfg.LogLevel, cfg.Env == "development")

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	media, err := storage.NewMediaStore(cfg.UploadsDir)
	if err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	imageRepo := repository.NewImageRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	feedService := feed.NewService(imageRepo, commentRepo, media, applog)
	feedHandler := feed.NewHandler(feedService)

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.CORS(), middleware.Metrics())

	// Uploaded files are served straight from the media store directory,
	// addressable by storage key.
	r.Static("/uploads", media.Dir())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/")
	{
		// public
		authHandler.RegisterPublicRoutes(api)
		feedHandler.RegisterPublicRoutes(api)

		// protected
		protected := api.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			feedHandler.RegisterProtectedRoutes(protected)
		}
	}

	applog.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
