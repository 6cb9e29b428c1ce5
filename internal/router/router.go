package router

import (
	"Gather_Events/internal/handler"
	"Gather_Events/internal/middleware"
	"Gather_Events/internal/pkg"
	"Gather_Events/internal/repository/mysql"
	"Gather_Events/internal/repository/redis"
	"Gather_Events/internal/service"

	"github.com/gin-gonic/gin"
)

func InitRouter(cfg pkg.Config) *gin.Engine {
	r := gin.Default()

	profileRepo := &mysql.ProfileRepository{DB: mysql.DB}
	eventRepo := &mysql.EventRepository{DB: mysql.DB}
	bookingRepo := &mysql.BookingRepository{DB: mysql.DB}
	messageRepo := &mysql.MessageRepository{DB: mysql.DB}
	viewCache := redis.NewViewCacheRepository()

	emailSvc := service.NewEmailService(cfg.SMTP)
	identitySvc := service.NewIdentityService(profileRepo)
	supportSvc := service.NewSupportService(profileRepo)
	profileSvc := service.NewProfileService(profileRepo, emailSvc)
	eventSvc := service.NewEventService(eventRepo, viewCache)
	bookingSvc := service.NewBookingService(bookingRepo, eventRepo, messageRepo, supportSvc, viewCache)
	messageSvc := service.NewMessageService(messageRepo, supportSvc, viewCache)

	user := handler.NewUserHandler(profileSvc)
	email := handler.NewEmailHandler(emailSvc)
	event := handler.NewEventHandler(eventSvc)
	booking := handler.NewBookingHandler(bookingSvc)
	message := handler.NewMessageHandler(messageSvc)
	preview := handler.NewPreviewHandler(profileSvc)
	admin := handler.NewAdminHandler(profileSvc)

	identity := middleware.IdentityMiddleware(identitySvc)

	// 邮件验证码
	emailGroup := r.Group("/api/email")
	{
		emailGroup.POST("/:scope/code", email.SendCode)
	}

	// 注册登录
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/reset", user.ResetPassword)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", user.TokenRefresh)
	}

	// 登录态接口
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware(), identity)
	{
		authGroup.POST("/logout", user.Logout)
		authGroup.POST("/change-password", user.ChangePassword)
		authGroup.GET("/me", user.Me)
	}

	// 活动：列表和详情匿名可看，按有效角色过滤；发布/修改要登录
	eventGroup := r.Group("/api/events")
	eventGroup.Use(middleware.OptionalAuthMiddleware(), identity)
	{
		eventGroup.GET("", event.List)
		eventGroup.GET("/:id", event.Get)
	}
	eventManageGroup := r.Group("/api/events")
	eventManageGroup.Use(middleware.AuthMiddleware(), identity)
	{
		eventManageGroup.POST("", event.Create)
		eventManageGroup.PUT("/:id", event.Update)
	}

	// 预订
	bookingGroup := r.Group("/api/bookings")
	bookingGroup.Use(middleware.AuthMiddleware(), identity)
	{
		bookingGroup.POST("", booking.Create)
		bookingGroup.DELETE("/:id", booking.Cancel)
		bookingGroup.GET("/mine", booking.ListMine)
	}

	// 消息
	messageGroup := r.Group("/api/messages")
	messageGroup.Use(middleware.AuthMiddleware(), identity)
	{
		messageGroup.POST("", message.Send)
		messageGroup.POST("/reply/:id", message.Reply)
		messageGroup.GET("/conversation", message.MyConversation)
		messageGroup.GET("/inbox", message.Inbox)
		messageGroup.POST("/:id/read", message.MarkRead)
		messageGroup.GET("/unread", message.UnreadCount)
	}

	// 预览模式开关。开关只需要真实登录态，身份解析每个请求都会重查角色
	previewGroup := r.Group("/api/preview")
	previewGroup.Use(middleware.AuthMiddleware())
	{
		previewGroup.POST("/enable", preview.Enable)
		previewGroup.POST("/disable", preview.Disable)
	}

	// 管理接口
	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware())
	{
		adminGroup.GET("/profiles", admin.ListProfiles)
		adminGroup.PUT("/profiles/:id/role", admin.ChangeRole)
	}

	return r
}
