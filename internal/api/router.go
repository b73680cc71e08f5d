package api

import (
	"github.com/gin-gonic/gin"

	"github.com/softskills/softskills_go_server/config"
	"github.com/softskills/softskills_go_server/internal/api/handler"
	"github.com/softskills/softskills_go_server/internal/api/middleware"
	"github.com/softskills/softskills_go_server/internal/repository"
)

type Router struct {
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	courseHandler       *handler.CourseHandler
	coachingHandler     *handler.CoachingHandler
	blogHandler         *handler.BlogHandler
	newsletterHandler   *handler.NewsletterHandler
	paymentHandler      *handler.PaymentHandler
	subscriptionHandler *handler.SubscriptionHandler
	websocketHandler    *handler.WebSocketHandler
	subscriptionRepo    *repository.SubscriptionRepository
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	courseHandler *handler.CourseHandler,
	coachingHandler *handler.CoachingHandler,
	blogHandler *handler.BlogHandler,
	newsletterHandler *handler.NewsletterHandler,
	paymentHandler *handler.PaymentHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	websocketHandler *handler.WebSocketHandler,
	subscriptionRepo *repository.SubscriptionRepository,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		userHandler:         userHandler,
		courseHandler:       courseHandler,
		coachingHandler:     coachingHandler,
		blogHandler:         blogHandler,
		newsletterHandler:   newsletterHandler,
		paymentHandler:      paymentHandler,
		subscriptionHandler: subscriptionHandler,
		websocketHandler:    websocketHandler,
		subscriptionRepo:    subscriptionRepo,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	api := engine.Group("/api/v1")
	{
		// WebSocket
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.POST("/verify-email", r.authHandler.VerifyEmail)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 需要认证的接口 - 用户
		user := api.Group("/user")
		user.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			user.GET("/profile", r.userHandler.GetProfile)
			user.PUT("/profile", r.userHandler.UpdateProfile)
			user.POST("/avatar", r.userHandler.UploadAvatar)
		}

		// 课程 - 公开浏览（可选认证，讲师可见自己的草稿）
		courses := api.Group("/courses")
		courses.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			courses.GET("", r.courseHandler.ListCourses)
			courses.GET("/categories", r.courseHandler.ListCategories)
			courses.GET("/featured", r.courseHandler.ListFeatured)
			courses.GET("/slug/:slug", r.courseHandler.GetCourse)
			courses.GET("/:id/lessons", r.courseHandler.ListLessons)
			courses.GET("/:id/ratings", r.courseHandler.GetRatingSummary)
		}

		// 课程 - 需要认证
		coursesAuth := api.Group("/courses")
		coursesAuth.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			coursesAuth.POST("", r.courseHandler.CreateCourse)
			coursesAuth.GET("/my-enrollments", r.courseHandler.ListMyEnrollments)
			coursesAuth.POST("/:id/publish", r.courseHandler.PublishCourse)
			coursesAuth.POST("/:id/enroll", r.courseHandler.Enroll)
			coursesAuth.GET("/:id/progress", r.courseHandler.GetProgress)
			coursesAuth.POST("/:id/rate", r.courseHandler.RateCourse)
		}

		// 课时
		lessons := api.Group("/lessons")
		lessons.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			lessons.POST("/:id/complete", r.courseHandler.CompleteLesson)

			// 订阅会员直读课时内容，非会员走课程入口按购买记录校验
			premium := lessons.Group("")
			premium.Use(middleware.RequireSubscription(r.subscriptionRepo))
			{
				premium.GET("/:id", r.courseHandler.GetLesson)
			}
		}

		// 辅导 - 公开浏览
		coaching := api.Group("/coaching")
		{
			coaching.GET("/coaches", r.coachingHandler.ListCoaches)
			coaching.GET("/coaches/:id", r.coachingHandler.GetCoach)
		}

		// 辅导 - 需要认证
		coachingAuth := api.Group("/coaching")
		coachingAuth.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			coachingAuth.POST("/sessions", r.coachingHandler.BookSession)
			coachingAuth.GET("/sessions", r.coachingHandler.ListMySessions)
			coachingAuth.GET("/coach-sessions", r.coachingHandler.ListCoachSessions)
			coachingAuth.POST("/sessions/:id/cancel", r.coachingHandler.CancelSession)
			coachingAuth.POST("/sessions/:id/complete", r.coachingHandler.CompleteSession)
			coachingAuth.POST("/sessions/:id/feedback", r.coachingHandler.SubmitFeedback)
		}

		// 博客 - 公开浏览（可选认证，作者可见自己的草稿）
		blog := api.Group("/blog")
		blog.Use(middleware.OptionalAuth(r.cfg.JWT.Secret))
		{
			blog.GET("/categories", r.blogHandler.ListCategories)
			blog.GET("/tags", r.blogHandler.ListTags)
			blog.GET("/posts", r.blogHandler.ListPosts)
			blog.GET("/posts/slug/:slug", r.blogHandler.GetPost)
			blog.GET("/posts/:id/comments", r.blogHandler.ListComments)
		}

		// 博客 - 需要认证
		blogAuth := api.Group("/blog")
		blogAuth.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			blogAuth.POST("/posts", r.blogHandler.CreatePost)
			blogAuth.POST("/posts/:id/publish", r.blogHandler.PublishPost)
			blogAuth.POST("/posts/:id/comments", r.blogHandler.CreateComment)
			blogAuth.POST("/comments/:id/approve", r.blogHandler.ApproveComment)
		}

		// 邮件通讯
		newsletter := api.Group("/newsletter")
		{
			newsletter.POST("/subscribe", r.newsletterHandler.Subscribe)
			newsletter.POST("/unsubscribe", r.newsletterHandler.Unsubscribe)
		}
		newsletterAuth := api.Group("/newsletter")
		newsletterAuth.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			newsletterAuth.POST("/send", r.newsletterHandler.Send)
		}

		// 支付网关异步通知，必须公开
		api.POST("/payments/paytech/ipn", r.paymentHandler.IPN)

		// 支付 - 需要认证
		payments := api.Group("/payments")
		payments.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			payments.GET("", r.paymentHandler.ListMyPayments)
			payments.POST("/courses/:id", r.paymentHandler.InitiateCoursePayment)
			payments.POST("/sessions/:id", r.paymentHandler.InitiateSessionPayment)
			payments.POST("/plans/:id", r.paymentHandler.InitiateSubscription)
			payments.POST("/:id/verify", r.paymentHandler.VerifyPayment)
			payments.POST("/coupons/validate", r.paymentHandler.ValidateCoupon)
			payments.GET("/invoices", r.paymentHandler.ListMyInvoices)
			payments.GET("/invoices/:id", r.paymentHandler.GetInvoice)
		}

		// 订阅 - 公开浏览套餐
		subscriptions := api.Group("/subscriptions")
		{
			subscriptions.GET("/plans", r.subscriptionHandler.ListPlans)
			subscriptions.GET("/plans/:id", r.subscriptionHandler.GetPlan)
		}

		// 订阅 - 需要认证
		subscriptionsAuth := api.Group("/subscriptions")
		subscriptionsAuth.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			subscriptionsAuth.POST("/plans", r.subscriptionHandler.CreatePlan)
			subscriptionsAuth.GET("/my", r.subscriptionHandler.GetMySubscription)
			subscriptionsAuth.GET("/history", r.subscriptionHandler.ListMySubscriptions)
			subscriptionsAuth.POST("/cancel", r.subscriptionHandler.CancelSubscription)
		}
	}

	return engine
}
