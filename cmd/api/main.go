package main

import (
	appcontext "github.com/SeakMengs/InstaPilot/internal/app_context"
	"github.com/SeakMengs/InstaPilot/internal/auth"
	"github.com/SeakMengs/InstaPilot/internal/config"
	"github.com/SeakMengs/InstaPilot/internal/controller"
	"github.com/SeakMengs/InstaPilot/internal/database"
	"github.com/SeakMengs/InstaPilot/internal/env"
	"github.com/SeakMengs/InstaPilot/internal/instagram"
	"github.com/SeakMengs/InstaPilot/internal/mailer"
	"github.com/SeakMengs/InstaPilot/internal/middleware"
	ratelimiter "github.com/SeakMengs/InstaPilot/internal/rate_limiter"
	"github.com/SeakMengs/InstaPilot/internal/repository"
	"github.com/SeakMengs/InstaPilot/internal/route"
	statestore "github.com/SeakMengs/InstaPilot/internal/state_store"
	"github.com/SeakMengs/InstaPilot/internal/util"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	igClient, err := instagram.NewClient(cfg.Auth.InstagramOAuthConfig, logger)
	if err != nil {
		logger.Error("Instagram oauth is misconfigured")
		logger.Panic(err)
	}

	stateStore := statestore.NewStateStore(cfg.Redis, logger)
	defer stateStore.Close()

	// Custom validation
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("strNotEmpty", util.StrNotEmpty); err != nil {
			return
		}
	}

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger)
	mail := mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)
	jwtService := auth.NewJwt(cfg.Auth, logger)
	repo := repository.NewRepository(db, logger, jwtService)
	app := appcontext.Application{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		Mailer:     mail,
		JWTService: jwtService,
	}

	_middleware := middleware.NewMiddleware(&app, rateLimiter)

	if cfg.IsProduction() {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.FrontendURL}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept"}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))
	r.Use(_middleware.RateLimiterMiddleware)

	_controller := controller.NewController(&app, igClient, stateStore)

	r.GET("/", _controller.Index.Index)

	rApi := r.Group("/api")

	route.V1_Auth(rApi, _controller.Auth)
	route.V1_OAuth(rApi, _controller.OAuth, _middleware)
	route.V1_Users(rApi, _controller.User)
	route.V1_Me(rApi, _controller.User, _controller.InstagramAccount, _middleware)
	route.V1_Instagram(rApi, _controller.InstagramAccount, _middleware)

	if err := r.Run("0.0.0.0:" + app.Config.Port); err != nil {
		logger.Panicf("Error running server: %v \n", err)
	}
}
