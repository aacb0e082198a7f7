package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "viewtube/internal/app"
	"viewtube/internal/bootstrap"
	"viewtube/internal/platform/rabbitmq"
	"viewtube/internal/repository"
	"viewtube/internal/transport/http/handler"
	"viewtube/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	videoRepo := repository.NewVideoRepository(app.MySQL)
	subscriptionRepo := repository.NewSubscriptionRepository(app.MySQL)
	watchEventRepo := repository.NewWatchEventRepository(app.MySQL)
	viewPublisher := rabbitmq.NewViewEventPublisher(app.MQConn, app.Config.RabbitMQ.ViewEventQueue)

	authCfg := app.Config.Auth
	authService := appsvc.NewAuthService(
		userRepo,
		app.Uploader,
		authCfg.AccessTokenSecret,
		time.Duration(authCfg.AccessExpireMinute)*time.Minute,
		authCfg.RefreshTokenSecret,
		time.Duration(authCfg.RefreshExpireHour)*time.Hour,
	)
	accountService := appsvc.NewAccountService(userRepo, app.Uploader)
	channelService := appsvc.NewChannelService(userRepo, subscriptionRepo, videoRepo, watchEventRepo, app.HistoryCache)
	videoService := appsvc.NewVideoService(videoRepo, app.Uploader, viewPublisher, app.HistoryCache)

	authHandler := handler.NewAuthHandler(authService, handler.CookieSettings{
		Secure:        authCfg.SecureCookies,
		AccessMaxAge:  authCfg.AccessExpireMinute * 60,
		RefreshMaxAge: authCfg.RefreshExpireHour * 3600,
	})
	accountHandler := handler.NewAccountHandler(accountService)
	channelHandler := handler.NewChannelHandler(channelService)
	videoHandler := handler.NewVideoHandler(videoService)

	guard := middleware.SessionGuard(authService)
	optional := middleware.OptionalSession(authService)

	v1 := router.Group("/api/v1")

	users := v1.Group("/users")
	users.POST("/register", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.POST("/refresh-token", authHandler.RefreshToken)
	users.GET("/c/:username", optional, channelHandler.Profile)
	users.POST("/c/:username/subscribe", guard, channelHandler.ToggleSubscription)
	users.POST("/logout", guard, authHandler.Logout)
	users.POST("/change-password", guard, authHandler.ChangePassword)
	users.PATCH("/update-account", guard, accountHandler.UpdateAccount)
	users.PATCH("/avatar", guard, accountHandler.UpdateAvatar)
	users.PATCH("/cover-image", guard, accountHandler.UpdateCoverImage)
	users.GET("/current-user", guard, accountHandler.CurrentUser)
	users.GET("/history", guard, channelHandler.WatchHistory)

	videos := v1.Group("/videos")
	videos.POST("", guard, videoHandler.Publish)
	videos.GET("/:id", optional, videoHandler.Get)

	return router
}
